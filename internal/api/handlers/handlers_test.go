package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hauldesk/hauldesk/internal/api/middleware"
	"github.com/hauldesk/hauldesk/internal/registry"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(nil)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	return reg
}

// Helper to create test context with an authenticated user
func createUserTestContext(path string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, path, nil)
	c.Set(middleware.ContextUserID, uuid.New())
	return c, w
}

func TestListCollections(t *testing.T) {
	h := NewFormHandler(newRegistry(t))
	c, w := createUserTestContext("/api/collections")

	h.ListCollections(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Collections []struct {
			Name  string `json:"name"`
			Title string `json:"title"`
		} `json:"collections"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Collections) == 0 {
		t.Fatal("expected at least one collection")
	}
	for _, col := range body.Collections {
		if col.Name == "" || col.Title == "" {
			t.Errorf("collection entry missing name or title: %+v", col)
		}
	}
}

func TestDescribe_KnownCollection(t *testing.T) {
	h := NewFormHandler(newRegistry(t))
	c, w := createUserTestContext("/api/forms/clients")
	c.Params = gin.Params{{Key: "collection", Value: "clients"}}

	h.Describe(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, key := range []string{"name", "title", "form", "list_fields"} {
		if _, ok := body[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}
}

func TestDescribe_UnknownCollection(t *testing.T) {
	h := NewFormHandler(newRegistry(t))
	c, w := createUserTestContext("/api/forms/nope")
	c.Params = gin.Params{{Key: "collection", Value: "nope"}}

	h.Describe(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown collection, got %d", w.Code)
	}
}

func TestRecordList_UnknownCollection(t *testing.T) {
	h := NewRecordHandler(newRegistry(t))
	c, w := createUserTestContext("/api/records/nope")
	c.Params = gin.Params{{Key: "collection", Value: "nope"}}

	h.List(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown collection, got %d", w.Code)
	}
}

func TestRecordList_Unauthenticated(t *testing.T) {
	h := NewRecordHandler(newRegistry(t))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/records/clients", nil)
	c.Params = gin.Params{{Key: "collection", Value: "clients"}}

	h.List(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a session, got %d", w.Code)
	}
}

func TestRecordGet_InvalidID(t *testing.T) {
	h := NewRecordHandler(newRegistry(t))
	c, w := createUserTestContext("/api/records/clients/not-a-uuid")
	c.Params = gin.Params{
		{Key: "collection", Value: "clients"},
		{Key: "id", Value: "not-a-uuid"},
	}

	h.Get(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", w.Code)
	}
}

func TestFindSource(t *testing.T) {
	reg := newRegistry(t)
	cfg, ok := reg.Get("fuel_entries")
	if !ok {
		t.Fatal("fuel_entries not registered")
	}

	src, ok := findSource(cfg, "vehicle_id")
	if !ok {
		t.Fatal("vehicle_id should resolve to a lookup source")
	}
	if src.Collection != "vehicles" {
		t.Errorf("expected vehicles source, got %q", src.Collection)
	}

	// Plain fields are not lookup targets
	if _, ok := findSource(cfg, "liters"); ok {
		t.Error("liters should not resolve to a lookup source")
	}
	if _, ok := findSource(cfg, "missing"); ok {
		t.Error("unknown field should not resolve")
	}
}

func TestLookup_UnknownField(t *testing.T) {
	h := NewLookupHandler(newRegistry(t), nil)
	c, w := createUserTestContext("/api/lookups/fuel_entries?field=liters")
	c.Params = gin.Params{{Key: "collection", Value: "fuel_entries"}}

	h.Lookup(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a non-lookup field, got %d", w.Code)
	}
}

func TestSummary_UnknownMetric(t *testing.T) {
	h := NewSummaryHandler(newRegistry(t), nil)
	c, w := createUserTestContext("/api/summaries/fuel_entries?metric=nope")
	c.Params = gin.Params{{Key: "collection", Value: "fuel_entries"}}

	h.Totals(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown metric, got %d", w.Code)
	}
}

func TestSummary_BadMonth(t *testing.T) {
	h := NewSummaryHandler(newRegistry(t), nil)
	c, w := createUserTestContext("/api/summaries/fuel_entries?metric=cost&month=2024-1")
	c.Params = gin.Params{{Key: "collection", Value: "fuel_entries"}}

	h.Totals(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed month, got %d", w.Code)
	}
}

func TestMonthPattern(t *testing.T) {
	valid := []string{"2024-01", "1999-12"}
	invalid := []string{"2024-1", "2024", "2024-013", "24-01", "2024/01"}

	for _, m := range valid {
		if !monthPattern.MatchString(m) {
			t.Errorf("%q should be accepted", m)
		}
	}
	for _, m := range invalid {
		if monthPattern.MatchString(m) {
			t.Errorf("%q should be rejected", m)
		}
	}
}
