package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/carbon-ledger/internal/entities"
	"github.com/angelmondragon/carbon-ledger/internal/products"
	"github.com/angelmondragon/carbon-ledger/internal/purchases"
	"github.com/angelmondragon/carbon-ledger/pkg/config"
	pkgerrors "github.com/angelmondragon/carbon-ledger/pkg/errors"
	"github.com/angelmondragon/carbon-ledger/pkg/logger"
	"github.com/angelmondragon/carbon-ledger/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var body types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body.Error
}

type stubEntityService struct {
	updateInput *entities.UpdateInput
	listID      int64
	listStart   time.Time
	listEnd     time.Time
	getErr      error
}

func (s *stubEntityService) Get(_ context.Context, id int64) (*entities.EntityDTO, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &entities.EntityDTO{ID: id, DisplayName: "Albert"}, nil
}

func (s *stubEntityService) Update(_ context.Context, input entities.UpdateInput) (int64, error) {
	s.updateInput = &input
	return input.ID, nil
}

func (s *stubEntityService) ListPurchases(_ context.Context, id int64, start, end time.Time) (*entities.PurchaseListDTO, error) {
	s.listID, s.listStart, s.listEnd = id, start, end
	return &entities.PurchaseListDTO{UserID: id, PurchaseList: []purchases.HeaderDTO{}}, nil
}

func TestEntityGet(t *testing.T) {
	logg := testLogger()

	t.Run("invalid id", func(t *testing.T) {
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/entity/get/abc", nil), map[string]string{"id": "abc"})
		rec := httptest.NewRecorder()
		EntityGet(&stubEntityService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := &stubEntityService{getErr: pkgerrors.NotFound("entity id not in database")}
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/entity/get/42", nil), map[string]string{"id": "42"})
		rec := httptest.NewRecorder()
		EntityGet(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if got := decodeError(t, rec).Message; got != "entity id not in database" {
			t.Fatalf("unexpected message %q", got)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/entity/get/1", nil), map[string]string{"id": "1"})
		rec := httptest.NewRecorder()
		EntityGet(&stubEntityService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		want := "{\"id\":1,\"display_name\":\"Albert\",\"carbon_offset\":0,\"carbon_cost\":0}\n"
		if rec.Body.String() != want {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
	})
}

func TestEntityUpdate(t *testing.T) {
	logg := testLogger()

	t.Run("missing carbon_cost", func(t *testing.T) {
		svc := &stubEntityService{}
		req := httptest.NewRequest(http.MethodPost, "/entity/update", strings.NewReader(`{"id":1,"carbon_offset":2}`))
		rec := httptest.NewRecorder()
		EntityUpdate(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if svc.updateInput != nil {
			t.Fatal("service must not be called for invalid payloads")
		}
	})

	t.Run("success", func(t *testing.T) {
		svc := &stubEntityService{}
		req := httptest.NewRequest(http.MethodPost, "/entity/update", strings.NewReader(`{"id":3,"carbon_offset":0,"carbon_cost":1.5}`))
		rec := httptest.NewRecorder()
		EntityUpdate(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if *svc.updateInput != (entities.UpdateInput{ID: 3, CarbonOffset: 0, CarbonCost: 1.5}) {
			t.Fatalf("unexpected input %+v", *svc.updateInput)
		}
		if rec.Body.String() != "{\"status\":\"success\",\"data\":{\"id\":3}}\n" {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
	})
}

func TestEntityPurchases(t *testing.T) {
	logg := testLogger()

	t.Run("missing end_ts", func(t *testing.T) {
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/entity/purchases/get/4?start_ts=1", nil), map[string]string{"id": "4"})
		rec := httptest.NewRecorder()
		EntityPurchases(&stubEntityService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("converts epoch bounds", func(t *testing.T) {
		svc := &stubEntityService{}
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/entity/purchases/get/4?start_ts=1700000000.5&end_ts=1700000100", nil), map[string]string{"id": "4"})
		rec := httptest.NewRecorder()
		EntityPurchases(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if svc.listID != 4 {
			t.Fatalf("expected id 4, got %d", svc.listID)
		}
		if !svc.listStart.Equal(time.Unix(1700000000, 500000000)) || !svc.listEnd.Equal(time.Unix(1700000100, 0)) {
			t.Fatalf("unexpected bounds %v %v", svc.listStart, svc.listEnd)
		}
		if rec.Body.String() != "{\"user_id\":4,\"purchase_list\":[]}\n" {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
	})
}

type stubProductService struct {
	added  *products.AddInput
	update products.CostUpdate
	addErr error
}

func (s *stubProductService) Get(_ context.Context, compID, prodID int64) (*products.CostDTO, error) {
	return &products.CostDTO{ProdID: prodID, CarbonCost: 0.4}, nil
}

func (s *stubProductService) GetBase(_ context.Context, prodID int64) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: prodID, ItemName: "Apple", CarbonCost: 0.4}, nil
}

func (s *stubProductService) Add(_ context.Context, input products.AddInput) error {
	s.added = &input
	return s.addErr
}

func (s *stubProductService) UpdateCost(_ context.Context, update products.CostUpdate) error {
	s.update = update
	return nil
}

func TestProductGetFallbackBody(t *testing.T) {
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/product/get/6/1", nil), map[string]string{"comp_id": "6", "prod_id": "1"})
	rec := httptest.NewRecorder()
	ProductGet(&stubProductService{}, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "{\"comp_id\":null,\"prod_id\":1,\"carbon_cost\":0.4}\n" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestProductAdd(t *testing.T) {
	logg := testLogger()

	t.Run("success", func(t *testing.T) {
		svc := &stubProductService{}
		req := httptest.NewRequest(http.MethodPost, "/product/add", strings.NewReader(`{"comp_id":6,"prod_id":2,"carbon_cost":11}`))
		rec := httptest.NewRecorder()
		ProductAdd(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "{\"status\":\"success\"}\n" {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
		if *svc.added != (products.AddInput{CompID: 6, ProdID: 2, CarbonCost: 11}) {
			t.Fatalf("unexpected input %+v", *svc.added)
		}
	})

	t.Run("conflict", func(t *testing.T) {
		svc := &stubProductService{addErr: pkgerrors.Wrap(pkgerrors.CodeConflict, errors.New("UNIQUE constraint failed"), "comp_id, prod_id already in database")}
		req := httptest.NewRequest(http.MethodPost, "/product/add", strings.NewReader(`{"comp_id":5,"prod_id":1,"carbon_cost":1}`))
		rec := httptest.NewRecorder()
		ProductAdd(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestProductUpdateDispatch(t *testing.T) {
	logg := testLogger()
	cases := []struct {
		name string
		body string
		want products.CostUpdate
	}{
		{"entity", `{"comp_id":6,"prod_id":null,"carbon_cost":3}`, products.EntityCostUpdate{ID: 6, Cost: 3}},
		{"product", `{"prod_id":2,"carbon_cost":3}`, products.ProductCostUpdate{ID: 2, Cost: 3}},
		{"companyProduct", `{"comp_id":6,"prod_id":4,"carbon_cost":3}`, products.CompanyProductCostUpdate{CompID: 6, ProdID: 4, Cost: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubProductService{}
			req := httptest.NewRequest(http.MethodPost, "/product/update", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			ProductUpdate(svc, logg).ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if svc.update != tc.want {
				t.Fatalf("expected %#v, got %#v", tc.want, svc.update)
			}
		})
	}

	t.Run("no ids", func(t *testing.T) {
		svc := &stubProductService{}
		req := httptest.NewRequest(http.MethodPost, "/product/update", strings.NewReader(`{"comp_id":null,"prod_id":null,"carbon_cost":3}`))
		rec := httptest.NewRecorder()
		ProductUpdate(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if svc.update != nil {
			t.Fatal("service must not be called without ids")
		}
	})
}

type stubPurchaseService struct {
	addInput    *purchases.PurchaseInput
	updateID    int64
	updateInput *purchases.PurchaseInput
	updateErr   error
}

func (s *stubPurchaseService) Get(_ context.Context, id int64) (*purchases.PurchaseDTO, error) {
	return &purchases.PurchaseDTO{HeaderDTO: purchases.HeaderDTO{ID: id}, ItemList: []purchases.LineItemDTO{}}, nil
}

func (s *stubPurchaseService) Add(_ context.Context, input purchases.PurchaseInput) (int64, error) {
	s.addInput = &input
	return 12, nil
}

func (s *stubPurchaseService) Update(_ context.Context, id int64, input purchases.PurchaseInput) (int64, error) {
	s.updateID = id
	s.updateInput = &input
	if s.updateErr != nil {
		return 0, s.updateErr
	}
	return id, nil
}

func TestPurchaseAdd(t *testing.T) {
	logg := testLogger()

	t.Run("ignores prch_id and keeps null comp_id", func(t *testing.T) {
		svc := &stubPurchaseService{}
		body := `{"prch_id":1,"buyr_id":4,"selr_id":6,"price":123,"item_list":[{"prod_id":1,"comp_id":null},{"prod_id":4,"comp_id":6}]}`
		req := httptest.NewRequest(http.MethodPost, "/purchase/add", strings.NewReader(body))
		rec := httptest.NewRecorder()
		PurchaseAdd(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if rec.Body.String() != "{\"status\":\"success\",\"data\":{\"prch_id\":12}}\n" {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
		in := svc.addInput
		if in.BuyrID != 4 || in.SelrID != 6 || in.Price != 123 || in.CarbonCost != nil {
			t.Fatalf("unexpected input %+v", *in)
		}
		if len(in.Items) != 2 || in.Items[0].CompID != nil || *in.Items[1].CompID != 6 {
			t.Fatalf("unexpected items %+v", in.Items)
		}
	})

	t.Run("null item_list", func(t *testing.T) {
		svc := &stubPurchaseService{}
		req := httptest.NewRequest(http.MethodPost, "/purchase/add", strings.NewReader(`{"buyr_id":4,"selr_id":6,"price":123,"item_list":null}`))
		rec := httptest.NewRecorder()
		PurchaseAdd(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(svc.addInput.Items) != 0 {
			t.Fatalf("expected no items, got %+v", svc.addInput.Items)
		}
	})

	t.Run("item without prod_id", func(t *testing.T) {
		svc := &stubPurchaseService{}
		req := httptest.NewRequest(http.MethodPost, "/purchase/add", strings.NewReader(`{"buyr_id":4,"selr_id":6,"price":1,"item_list":[{"comp_id":6}]}`))
		rec := httptest.NewRecorder()
		PurchaseAdd(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if svc.addInput != nil {
			t.Fatal("service must not be called for invalid items")
		}
	})
}

func TestPurchaseUpdate(t *testing.T) {
	logg := testLogger()

	t.Run("requires prch_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/purchase/update", strings.NewReader(`{"buyr_id":4,"selr_id":6,"price":1}`))
		rec := httptest.NewRecorder()
		PurchaseUpdate(&stubPurchaseService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := &stubPurchaseService{updateErr: pkgerrors.NotFound("purchase id not in database")}
		req := httptest.NewRequest(http.MethodPost, "/purchase/update", strings.NewReader(`{"prch_id":99,"buyr_id":4,"selr_id":6,"price":1,"carbon_cost":2}`))
		rec := httptest.NewRecorder()
		PurchaseUpdate(svc, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if svc.updateID != 99 || *svc.updateInput.CarbonCost != 2 {
			t.Fatalf("unexpected call id=%d input=%+v", svc.updateID, svc.updateInput)
		}
	})
}

func TestPing(t *testing.T) {
	rec := httptest.NewRecorder()
	Ping().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "pong!" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvTest}}

	t.Run("dependency down", func(t *testing.T) {
		handler := HealthReady(cfg, nil, testLogger(), ReadinessCheck{
			Name: "database",
			Ping: func(context.Context) error { return errors.New("dial tcp: connection refused") },
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("ready", func(t *testing.T) {
		handler := HealthReady(cfg, nil, testLogger(), ReadinessCheck{
			Name: "database",
			Ping: func(context.Context) error { return nil },
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "{\"status\":\"ready\",\"tables\":[]}\n" {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
		if rec.Header().Get(envHeader) != config.AppEnvTest {
			t.Fatalf("expected env header")
		}
	})
}
