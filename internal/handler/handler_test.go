package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/formline/guidecms/internal/cache"
	"github.com/formline/guidecms/internal/middleware"
	"github.com/formline/guidecms/internal/store"
)

// testServer spins up the API over a temporary database.
func testServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()

	f, err := os.CreateTemp("", "guidecms-handler-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	manager := cache.NewManager(store.New(db), cache.DefaultConfig())
	h := NewHandler(db, manager)
	srv := httptest.NewServer(h.Routes(1000, 1000))

	t.Cleanup(func() {
		srv.Close()
		manager.Stop()
		_ = db.Close()
		_ = os.Remove(dbPath)
	})
	return srv, db
}

// doJSON issues a request with an editor identity and decodes the response.
func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.EditorHeader, "editor@example.org")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestLanguageEndpoints(t *testing.T) {
	srv, _ := testServer(t)

	var created struct {
		Data struct {
			Code string `json:"lang"`
			Name string `json:"language"`
		} `json:"data"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/languages", map[string]string{
		"lang":     "ES",
		"language": "Spanish",
		"phone":    "555-0100",
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("POST /languages status = %d, want 201", status)
	}
	if created.Data.Code != "es" {
		t.Errorf("lang = %q, want normalized es", created.Data.Code)
	}

	// Duplicate registration conflicts.
	status = doJSON(t, http.MethodPost, srv.URL+"/languages", map[string]string{
		"lang": "es", "language": "Spanish",
	}, nil)
	if status != http.StatusConflict {
		t.Errorf("duplicate POST /languages status = %d, want 409", status)
	}

	var list struct {
		Data []struct {
			Code string `json:"lang"`
		} `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/languages", nil, &list)
	if status != http.StatusOK {
		t.Fatalf("GET /languages status = %d, want 200", status)
	}
	if list.Meta.Total != 1 || len(list.Data) != 1 {
		t.Errorf("list = %+v, want one language", list)
	}

	status = doJSON(t, http.MethodGet, srv.URL+"/languages/es", nil, nil)
	if status != http.StatusOK {
		t.Errorf("GET /languages/es status = %d, want 200", status)
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/languages/xx", nil, nil)
	if status != http.StatusNotFound {
		t.Errorf("GET /languages/xx status = %d, want 404", status)
	}
}

func TestLanguageValidation(t *testing.T) {
	srv, _ := testServer(t)

	status := doJSON(t, http.MethodPost, srv.URL+"/languages", map[string]string{
		"language": "Nameless",
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("POST /languages without code status = %d, want 400", status)
	}
}

func TestMutationsRequireEditor(t *testing.T) {
	srv, _ := testServer(t)

	body := bytes.NewBufferString(`{"lang":"es","language":"Spanish"}`)
	resp, err := http.Post(srv.URL+"/languages", "application/json", body)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status without editor header = %d, want 401", resp.StatusCode)
	}
}

func TestDocumentEndpoints(t *testing.T) {
	srv, _ := testServer(t)

	status := doJSON(t, http.MethodPost, srv.URL+"/documents", map[string]any{
		"number": 101,
		"lang":   "en",
		"title":  "Tenant Rights Guide",
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("POST /documents status = %d, want 201", status)
	}

	// Duplicate number conflicts.
	status = doJSON(t, http.MethodPost, srv.URL+"/documents", map[string]any{
		"number": 101, "lang": "en", "title": "Other",
	}, nil)
	if status != http.StatusConflict {
		t.Errorf("duplicate POST /documents status = %d, want 409", status)
	}

	// Missing title is a validation failure.
	status = doJSON(t, http.MethodPost, srv.URL+"/documents", map[string]any{
		"number": 102, "lang": "en",
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("invalid POST /documents status = %d, want 400", status)
	}

	var got struct {
		Data struct {
			Number int64 `json:"number"`
		} `json:"data"`
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/documents/101", nil, &got)
	if status != http.StatusOK {
		t.Fatalf("GET /documents/101 status = %d, want 200", status)
	}
	if got.Data.Number != 101 {
		t.Errorf("number = %d, want 101", got.Data.Number)
	}

	status = doJSON(t, http.MethodGet, srv.URL+"/documents/999", nil, nil)
	if status != http.StatusNotFound {
		t.Errorf("GET /documents/999 status = %d, want 404", status)
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/documents/abc", nil, nil)
	if status != http.StatusBadRequest {
		t.Errorf("GET /documents/abc status = %d, want 400", status)
	}
}

func TestPublishWorkflowOverHTTP(t *testing.T) {
	srv, _ := testServer(t)

	// Language and document.
	if status := doJSON(t, http.MethodPost, srv.URL+"/languages", map[string]string{
		"lang": "es", "language": "Spanish",
	}, nil); status != http.StatusCreated {
		t.Fatalf("POST /languages status = %d", status)
	}
	if status := doJSON(t, http.MethodPost, srv.URL+"/documents", map[string]any{
		"number": 7, "lang": "en", "title": "Guide",
	}, nil); status != http.StatusCreated {
		t.Fatalf("POST /documents status = %d", status)
	}

	// One original with its Spanish text.
	var original struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if status := doJSON(t, http.MethodPost, srv.URL+"/documents/7/originals", map[string]any{
		"number": 1, "text": "Call before you sign anything.",
	}, &original); status != http.StatusCreated {
		t.Fatalf("POST originals status = %d", status)
	}
	translationsURL := fmt.Sprintf("%s/originals/%d/translations", srv.URL, original.Data.ID)
	if status := doJSON(t, http.MethodPost, translationsURL, map[string]any{
		"lang": "es", "text": "Llame antes de firmar cualquier cosa.",
	}, nil); status != http.StatusCreated {
		t.Fatalf("POST translations status = %d", status)
	}

	// Duplicate translation for the pair conflicts.
	if status := doJSON(t, http.MethodPost, translationsURL, map[string]any{
		"lang": "es", "text": "Otro texto.",
	}, nil); status != http.StatusConflict {
		t.Errorf("duplicate translation status = %d, want 409", status)
	}

	// State record, then publish.
	if status := doJSON(t, http.MethodPost, srv.URL+"/documents/7/translations/es", nil, nil); status != http.StatusCreated {
		t.Fatalf("POST state record status = %d", status)
	}

	// Guide invisible while draft.
	if status := doJSON(t, http.MethodGet, srv.URL+"/guides/7/es", nil, nil); status != http.StatusNotFound {
		t.Errorf("GET draft guide status = %d, want 404", status)
	}

	var pub struct {
		Data struct {
			Status  string `json:"status"`
			Changed bool   `json:"changed"`
		} `json:"data"`
	}
	if status := doJSON(t, http.MethodPost, srv.URL+"/documents/7/translations/es/publish", nil, &pub); status != http.StatusOK {
		t.Fatalf("publish status = %d", status)
	}
	if !pub.Data.Changed || pub.Data.Status != "published" {
		t.Errorf("publish result = %+v", pub.Data)
	}

	// Repeat publish is a no-op, still 200.
	if status := doJSON(t, http.MethodPost, srv.URL+"/documents/7/translations/es/publish", nil, &pub); status != http.StatusOK {
		t.Fatalf("repeat publish status = %d", status)
	}
	if pub.Data.Changed {
		t.Error("repeat publish reported a change")
	}

	// Assembled guide now visible.
	var guide struct {
		Data struct {
			Language struct {
				Code string `json:"lang"`
			} `json:"language"`
			Segments []struct {
				Number int64  `json:"number"`
				Text   string `json:"text"`
			} `json:"segments"`
		} `json:"data"`
	}
	if status := doJSON(t, http.MethodGet, srv.URL+"/guides/7/es", nil, &guide); status != http.StatusOK {
		t.Fatalf("GET guide status = %d", status)
	}
	if len(guide.Data.Segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(guide.Data.Segments))
	}
	if guide.Data.Segments[0].Text != "Llame antes de firmar cualquier cosa." {
		t.Errorf("segment text = %q", guide.Data.Segments[0].Text)
	}

	// The language's document listing includes the guide.
	var docs struct {
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if status := doJSON(t, http.MethodGet, srv.URL+"/languages/es/documents", nil, &docs); status != http.StatusOK {
		t.Fatalf("GET language documents status = %d", status)
	}
	if docs.Meta.Total != 1 {
		t.Errorf("total = %d, want 1", docs.Meta.Total)
	}

	// A second, draft-only state record stays out of the published view.
	if status := doJSON(t, http.MethodPost, srv.URL+"/languages", map[string]string{
		"lang": "ht", "language": "Haitian Creole",
	}, nil); status != http.StatusCreated {
		t.Fatalf("POST /languages ht status = %d", status)
	}
	if status := doJSON(t, http.MethodPost, srv.URL+"/documents/7/translations/ht", nil, nil); status != http.StatusCreated {
		t.Fatalf("POST ht state record status = %d", status)
	}
	var states struct {
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if status := doJSON(t, http.MethodGet, srv.URL+"/documents/7/translations", nil, &states); status != http.StatusOK {
		t.Fatalf("GET state records status = %d", status)
	}
	if states.Meta.Total != 2 {
		t.Errorf("state records total = %d, want 2", states.Meta.Total)
	}
	if status := doJSON(t, http.MethodGet, srv.URL+"/documents/7/translations?status=published", nil, &states); status != http.StatusOK {
		t.Fatalf("GET published state records status = %d", status)
	}
	if states.Meta.Total != 1 {
		t.Errorf("published state records total = %d, want 1", states.Meta.Total)
	}

	// Unpublish hides it again.
	if status := doJSON(t, http.MethodPost, srv.URL+"/documents/7/translations/es/unpublish", nil, &pub); status != http.StatusOK {
		t.Fatalf("unpublish status = %d", status)
	}
	if !pub.Data.Changed || pub.Data.Status != "draft" {
		t.Errorf("unpublish result = %+v", pub.Data)
	}
	if status := doJSON(t, http.MethodGet, srv.URL+"/guides/7/es", nil, nil); status != http.StatusNotFound {
		t.Errorf("GET unpublished guide status = %d, want 404", status)
	}
}

func TestInvalidBody(t *testing.T) {
	srv, _ := testServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/documents",
		bytes.NewBufferString(`{"number": 1, "unknown_field": true}`))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set(middleware.EditorHeader, "editor@example.org")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d for unknown field, want 400", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, db := testServer(t)

	h := NewHealthHandler(db, cache.Info{Backend: "memory"}, "test")

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Health status = %d, want 200", rec.Code)
	}
	var status HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if status.Status != "healthy" {
		t.Errorf("status = %q, want healthy", status.Status)
	}
	if status.Checks["database"].Status != "healthy" {
		t.Errorf("database check = %+v", status.Checks["database"])
	}

	rec = httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Liveness status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/healthz/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Readiness status = %d, want 200", rec.Code)
	}
}

// Context key misuse guard: GetEditor outside EditorContext is empty.
func TestGetEditorOutsideMiddleware(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background())
	if got := middleware.GetEditor(r); got != "" {
		t.Errorf("GetEditor = %q, want empty", got)
	}
}
