package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"menu-service/models"
	"menu-service/services"
)

func newTestRouter(store MenuStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewHandler(store, zerolog.Nop()), zerolog.Nop(), []string{"http://localhost:3000"})
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(services.NewMenuStore(nil, services.WithLatency(0)))
	w := do(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("response is missing a request id")
	}
}

func TestGetMenu_Seed(t *testing.T) {
	r := newTestRouter(services.NewMenuStore(models.SeedCatalog(), services.WithLatency(0)))
	w := do(r, http.MethodGet, "/menu", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}

	var got models.Catalog
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(models.SeedCatalog(), got); diff != "" {
		t.Errorf("GET /menu (-want +got):\n%s", diff)
	}
	if !strings.Contains(w.Body.String(), `"pricing_options":null`) {
		t.Errorf("pricing_options should be null on the wire: %s", w.Body)
	}
}

func TestPutMenu_RoundTrip(t *testing.T) {
	r := newTestRouter(services.NewMenuStore(models.SeedCatalog(), services.WithLatency(0)))

	body := `[
		{"id":"d1","name":"Masala Dosa","price":149,"type":"veg","category":"South Indian",
		 "description":"","image":"","availability":"Available","popular":false,
		 "pricing_options":[{"label":"Plain","price":99},{"label":"Masala","price":149}]},
		{"id":"d2","name":"Mystery","price":0,"type":"chef-special","availability":"Soon","pricing_options":null}
	]`
	w := do(r, http.MethodPut, "/menu", body)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", w.Code, w.Body)
	}
	var resp struct {
		OK    bool `json:"ok"`
		Items int  `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || !resp.OK || resp.Items != 2 {
		t.Fatalf("PUT response = %+v (%v)", resp, err)
	}

	w = do(r, http.MethodGet, "/menu", "")
	var got models.Catalog
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := models.Catalog{
		{
			ID: "d1", Name: "Masala Dosa", Price: 149, Type: "veg", Category: "South Indian",
			Availability: "Available",
			PricingOptions: []models.PricingOption{{Label: "Plain", Price: 99}, {Label: "Masala", Price: 149}},
		},
		{ID: "d2", Name: "Mystery", Type: "chef-special", Availability: "Soon"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GET after PUT (-want +got):\n%s", diff)
	}
}

func TestPutMenu_EmptyArray(t *testing.T) {
	r := newTestRouter(services.NewMenuStore(models.SeedCatalog(), services.WithLatency(0)))
	if w := do(r, http.MethodPut, "/menu", `[]`); w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d", w.Code)
	}
	w := do(r, http.MethodGet, "/menu", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("GET after empty PUT = %s, want []", w.Body)
	}
}

func TestPutMenu_BadJSON(t *testing.T) {
	r := newTestRouter(services.NewMenuStore(models.SeedCatalog(), services.WithLatency(0)))
	tests := []string{`{"id":"x"}`, `[{"price":"cheap"}]`, `not json`}
	for _, body := range tests {
		if w := do(r, http.MethodPut, "/menu", body); w.Code != http.StatusBadRequest {
			t.Errorf("PUT %q status = %d, want 400", body, w.Code)
		}
	}
}

type cancelledStore struct{}

func (cancelledStore) Load(ctx context.Context) (models.Catalog, error) {
	return nil, context.Canceled
}

func (cancelledStore) Replace(ctx context.Context, items models.Catalog) (bool, error) {
	return false, context.DeadlineExceeded
}

func TestMenu_AbandonedCalls(t *testing.T) {
	r := newTestRouter(cancelledStore{})
	if w := do(r, http.MethodGet, "/menu", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET status = %d, want 503", w.Code)
	}
	if w := do(r, http.MethodPut, "/menu", `[]`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("PUT status = %d, want 503", w.Code)
	}
}

func TestPutMenu_AppliesAfterClientGivesUp(t *testing.T) {
	store := services.NewMenuStore(models.SeedCatalog(), services.WithLatency(50*time.Millisecond))
	r := newTestRouter(store)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodPut, "/menu", strings.NewReader(`[]`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("PUT status = %d, want 503", w.Code)
	}

	time.Sleep(100 * time.Millisecond)
	items, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("catalog after delay = %+v, want empty", items)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newTestRouter(services.NewMenuStore(nil, services.WithLatency(0)))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "req-42" {
		t.Errorf("request id = %q, want req-42", got)
	}
}
