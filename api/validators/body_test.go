package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/carbon-ledger/pkg/errors"
)

type itemPayload struct {
	ProdID *int64 `json:"prod_id" validate:"required"`
	CompID *int64 `json:"comp_id"`
}

type payload struct {
	ID    *int64        `json:"id" validate:"required"`
	Cost  *float64      `json:"cost" validate:"required"`
	Items []itemPayload `json:"items" validate:"omitempty,dive"`
}

func decode(t *testing.T, body string) (payload, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest payload
	err := DecodeJSONBody(req, &dest)
	return dest, err
}

func TestDecodeJSONBodyAcceptsExplicitZero(t *testing.T) {
	got, err := decode(t, `{"id":0,"cost":0}`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID == nil || *got.ID != 0 || got.Cost == nil || *got.Cost != 0 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestDecodeJSONBodyRejectsMissingKey(t *testing.T) {
	_, err := decode(t, `{"id":1}`)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["cost"] != "is required" {
		t.Fatalf("unexpected details %#v", typed.Details())
	}
}

func TestDecodeJSONBodyValidatesNestedItems(t *testing.T) {
	_, err := decode(t, `{"id":1,"cost":2,"items":[{"prod_id":1},{"comp_id":3}]}`)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["items[1].prod_id"] != "is required" {
		t.Fatalf("unexpected details %#v", typed.Details())
	}
}

func TestDecodeJSONBodyRejectsUnknownAndMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"unknownField": `{"id":1,"cost":2,"extra":true}`,
		"malformed":    `{"id":`,
		"wrongType":    `{"id":"one","cost":2}`,
		"trailing":     `{"id":1,"cost":2}{"id":2}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := decode(t, body)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
