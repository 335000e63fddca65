package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEditorContext(t *testing.T) {
	var got string
	handler := EditorContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetEditor(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(EditorHeader, "editor@example.org")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "editor@example.org" {
		t.Errorf("GetEditor = %q, want editor@example.org", got)
	}
}

func TestEditorContextAnonymous(t *testing.T) {
	var got string
	handler := EditorContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetEditor(r)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got != "" {
		t.Errorf("GetEditor = %q for anonymous request, want empty", got)
	}
}

func TestEditorContextTrimsWhitespace(t *testing.T) {
	var got string
	handler := EditorContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetEditor(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(EditorHeader, "  editor@example.org  ")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "editor@example.org" {
		t.Errorf("GetEditor = %q, want trimmed value", got)
	}
}

func TestRequireEditor(t *testing.T) {
	called := false
	handler := EditorContext(RequireEditor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))

	// Without the header: 401 and the inner handler never runs.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if called {
		t.Error("inner handler ran without editor identity")
	}

	var apiErr APIError
	if err := json.NewDecoder(rec.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if apiErr.Error.Code != "unauthorized" {
		t.Errorf("error code = %q, want unauthorized", apiErr.Error.Code)
	}

	// With the header the request passes through.
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(EditorHeader, "editor@example.org")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if !called {
		t.Error("inner handler did not run with editor identity")
	}
}

func TestAPIRateLimit(t *testing.T) {
	handler := EditorContext(APIRateLimit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(EditorHeader, "burst@example.org")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	// Burst of 2 allowed, the rest rejected.
	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("first two statuses = %v, want 200s", statuses[:2])
	}
	if statuses[3] != http.StatusTooManyRequests {
		t.Errorf("fourth status = %d, want 429", statuses[3])
	}
}

func TestAPIRateLimitPerClient(t *testing.T) {
	handler := EditorContext(APIRateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	// Exhaust one client's budget.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(EditorHeader, "first@example.org")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d for exhausted client, want 429", rec.Code)
	}

	// A different client is unaffected.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.Header.Set(EditorHeader, "second@example.org")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d for fresh client, want 200", rec.Code)
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache(1, 1)
	lc.get("a")
	lc.get("b")
	lc.get("c")

	if cleared := lc.clearIfExceeds(10); cleared {
		t.Error("cache cleared below the limit")
	}
	if cleared := lc.clearIfExceeds(2); !cleared {
		t.Error("cache not cleared above the limit")
	}
	if len(lc.limiters) != 0 {
		t.Errorf("len = %d after clear, want 0", len(lc.limiters))
	}
}

func TestWriteAPIError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAPIError(rec, http.StatusBadRequest, "validation_failed", "number is required",
		map[string]string{"field": "number"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var apiErr APIError
	if err := json.NewDecoder(rec.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if apiErr.Error.Code != "validation_failed" {
		t.Errorf("code = %q", apiErr.Error.Code)
	}
	if apiErr.Error.Details["field"] != "number" {
		t.Errorf("details = %v", apiErr.Error.Details)
	}
}
