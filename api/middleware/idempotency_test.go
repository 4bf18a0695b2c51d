package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/angelmondragon/carbon-ledger/pkg/errors"
)

type fakeStore struct {
	data     map[string]string
	ttls     map[string]time.Duration
	getErr   error
	setNXErr error
	deleted  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.setNXErr != nil {
		return false, f.setNXErr
	}
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	str, _ := value.(string)
	f.data[key] = str
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
		f.deleted = append(f.deleted, key)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func purchaseAddRequest(body, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/purchase/add", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		ok      bool
	}{
		{"purchase add", http.MethodPost, "/purchase/add", true},
		{"purchase update", http.MethodPost, "/purchase/update", false},
		{"purchase add get", http.MethodGet, "/purchase/add", false},
	}

	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, tt.pattern)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && ttl != defaultIdempotencyTTL {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, defaultIdempotencyTTL, ttl)
		}
	}
}

func TestIdempotencyMiddlewarePassesThroughWithoutHeader(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), purchaseAddRequest(`{"buyr_id":1}`, ""))
	}
	if calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("nothing should be stored without a key")
	}
}

func TestIdempotencyMiddlewareNilStorePassesThrough(t *testing.T) {
	calls := 0
	handler := Idempotency(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	handler.ServeHTTP(httptest.NewRecorder(), purchaseAddRequest(`{}`, "abc"))
	handler.ServeHTTP(httptest.NewRecorder(), purchaseAddRequest(`{}`, "abc"))
	if calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d", calls)
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	var calls int
	var seenBody string
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		raw, _ := io.ReadAll(r.Body)
		seenBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","data":{"prch_id":1}}`))
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, purchaseAddRequest(`{"buyr_id":4}`, "abc"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected first response 200 got %d", resp.Code)
	}
	if seenBody != `{"buyr_id":4}` {
		t.Fatalf("handler should see the original body, got %q", seenBody)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, purchaseAddRequest(`{"buyr_id":4}`, "abc"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected replay status 200 got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if rec.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay marker header")
	}
	if rec.Body.String() != `{"status":"success","data":{"prch_id":1}}` {
		t.Fatalf("expected stored body got %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
	for _, ttl := range store.ttls {
		if ttl != defaultIdempotencyTTL {
			t.Fatalf("expected ttl %v, got %v", defaultIdempotencyTTL, ttl)
		}
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), purchaseAddRequest(`{"buyr_id":1}`, "xyz"))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, purchaseAddRequest(`{"buyr_id":2}`, "xyz"))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, payload.Error.Code)
	}
}

func TestIdempotencyMiddlewareSkipsFailedResponses(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), purchaseAddRequest(`{}`, "retry-me"))
	handler.ServeHTTP(httptest.NewRecorder(), purchaseAddRequest(`{}`, "retry-me"))
	if calls != 2 {
		t.Fatalf("failed responses must not be replayed, handler ran %d times", calls)
	}
	if len(store.data) != 0 || len(store.deleted) != 2 {
		t.Fatalf("expected each failed attempt to release its key, data=%v deleted=%v", store.data, store.deleted)
	}
}

func TestIdempotencyMiddlewareStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.setNXErr = errors.New("connection refused")
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run when the store is unavailable")
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, purchaseAddRequest(`{}`, "abc"))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestIdempotencyMiddlewareLookupFailure(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), purchaseAddRequest(`{}`, "abc"))

	store.getErr = errors.New("connection reset")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, purchaseAddRequest(`{}`, "abc"))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestIdempotencyMiddlewareRejectsDuplicateWhileInFlight(t *testing.T) {
	store := newFakeStore()
	calls := 0
	var duplicate *httptest.ResponseRecorder

	var handler http.Handler
	handler = Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			duplicate = httptest.NewRecorder()
			handler.ServeHTTP(duplicate, purchaseAddRequest(`{"buyr_id":4}`, "same"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","data":{"prch_id":7}}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, purchaseAddRequest(`{"buyr_id":4}`, "same"))

	if calls != 1 {
		t.Fatalf("handler ran %d times, expected 1", calls)
	}
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request 200 got %d", first.Code)
	}
	if duplicate.Code != http.StatusConflict || !strings.Contains(duplicate.Body.String(), "in progress") {
		t.Fatalf("expected in-progress conflict, got %d %s", duplicate.Code, duplicate.Body.String())
	}

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, purchaseAddRequest(`{"buyr_id":4}`, "same"))
	if replay.Body.String() != `{"status":"success","data":{"prch_id":7}}` || calls != 1 {
		t.Fatalf("expected stored response after completion, got %s (calls=%d)", replay.Body.String(), calls)
	}
}

func TestIdempotencyMiddlewareReleasesKeyOnPanic(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		handler.ServeHTTP(httptest.NewRecorder(), purchaseAddRequest(`{}`, "abc"))
	}()
	if len(store.data) != 0 || len(store.deleted) != 1 {
		t.Fatalf("expected reservation released, data=%v deleted=%v", store.data, store.deleted)
	}
}
