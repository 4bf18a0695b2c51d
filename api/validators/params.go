package validators

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/carbon-ledger/pkg/errors"
	"github.com/go-chi/chi/v5"
)

// ParsePathID reads a non-negative integer chi URL parameter.
func ParsePathID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").WithDetails(map[string]any{"field": key})
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a non-negative integer").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParseQueryFloat reads a required floating point query parameter.
func ParseQueryFloat(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": key})
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// maxEpochSeconds bounds epoch query values to roughly +/- 5000 years, well
// inside what time.Unix represents.
const maxEpochSeconds = 1e11

// ParseQueryEpoch reads a required epoch-seconds query parameter. NaN,
// infinities and magnitudes beyond maxEpochSeconds are rejected.
func ParseQueryEpoch(r *http.Request, key string) (float64, error) {
	value, err := ParseQueryFloat(r, key)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || math.Abs(value) > maxEpochSeconds {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a finite epoch timestamp").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}
