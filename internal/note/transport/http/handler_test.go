package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edumarket/internal/note/repository"
	"edumarket/internal/note/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestRouter() http.Handler {
	h := NewHandler(service.NewService(repository.NewMemoryRepository(), zap.NewNop()), zap.NewNop())
	r := chi.NewRouter()
	h.Routes(r, func(next http.Handler) http.Handler { return next })
	return r
}

func do(h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestNoteLifecycle(t *testing.T) {
	r := newTestRouter()

	rec, out := do(r, http.MethodPost, "/notes", `{"title":"Limits","subject_name":"math","publisher_id":3,"publisher_name":"Omar","content":"secret text","price":150}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	id := int64(out["id"].(float64))

	_, out = do(r, http.MethodGet, fmt.Sprintf("/notes/%d/preview", id), "")
	if _, has := out["content"]; has {
		t.Fatal("preview must not expose content")
	}
	_, out = do(r, http.MethodGet, fmt.Sprintf("/notes/%d", id), "")
	if out["content"] != "secret text" {
		t.Fatalf("full note missing content: %v", out)
	}

	for i := 0; i < 4; i++ {
		do(r, http.MethodPut, fmt.Sprintf("/notes/%d/reads/increase", id), "")
	}
	_, out = do(r, http.MethodGet, fmt.Sprintf("/notes/%d", id), "")
	if out["number_of_reads"] != float64(4) {
		t.Fatalf("got %v reads want 4", out["number_of_reads"])
	}

	_, out = do(r, http.MethodGet, "/notes/subject/math?Class=12&price=200&count=1&limit=5", "")
	if out["number_of_notes"] != float64(1) {
		t.Fatalf("subject listing: %v", out)
	}

	rec, _ = do(r, http.MethodDelete, fmt.Sprintf("/notes/%d", id), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec, out = do(r, http.MethodGet, fmt.Sprintf("/notes/%d", id), "")
	if rec.Code != http.StatusNotFound || out["error"] == nil {
		t.Fatalf("expected 404 JSON error, got %d %v", rec.Code, out)
	}
}

func TestCreateNoteValidation(t *testing.T) {
	r := newTestRouter()
	rec, out := do(r, http.MethodPost, "/notes", `{"subject_name":"math","publisher_id":3,"publisher_name":"Omar","content":"x"}`)
	if rec.Code != http.StatusBadRequest || out["field"] != "title" {
		t.Fatalf("expected title validation error, got %d %v", rec.Code, out)
	}

	rec, _ = do(r, http.MethodPost, "/notes", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestIncrementUnknownNote(t *testing.T) {
	r := newTestRouter()
	rec, _ := do(r, http.MethodPut, "/notes/77/purchases/increase", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec, _ = do(r, http.MethodPut, "/notes/abc/purchases/increase", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}
