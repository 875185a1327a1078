package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"edumarket/internal/readnote"
	"edumarket/internal/readnote/repository"
	"edumarket/internal/readnote/service"
	"edumarket/pkg/pagination"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type fakeRepo struct {
	mu    sync.Mutex
	notes map[int64]bool
	rows  []*readnote.ReadNote
}

func (f *fakeRepo) Upsert(_ context.Context, rn *readnote.ReadNote) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.notes[rn.NoteID] {
		return false, repository.ErrReferenceNotFound
	}
	for _, row := range f.rows {
		if row.StudentID == rn.StudentID && row.NoteID == rn.NoteID {
			row.NumberOfReads++
			*rn = *row
			return false, nil
		}
	}
	rn.ID = int64(len(f.rows) + 1)
	rn.NumberOfReads = 1
	cp := *rn
	f.rows = append(f.rows, &cp)
	return true, nil
}

func (f *fakeRepo) Increment(_ context.Context, id int64) (*readnote.ReadNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			row.NumberOfReads++
			cp := *row
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepo) ListByStudent(_ context.Context, studentID int64, limit, offset int) ([]readnote.ReadNote, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []readnote.ReadNote
	for _, row := range f.rows {
		if row.StudentID == studentID {
			all = append(all, *row)
		}
	}
	begin, end := pagination.Window(len(all), limit, offset)
	return all[begin:end], len(all), nil
}

func newTestRouter() http.Handler {
	repo := &fakeRepo{notes: map[int64]bool{7: true, 8: true}}
	h := NewHandler(service.NewService(repo, zap.NewNop()), zap.NewNop())
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

func TestRecordCreatesThenIncrements(t *testing.T) {
	r := newTestRouter()
	body := `{"student":5,"note_id":7,"subject_name":"math","note_name":"Limits","publisher_id":3,"publisher_name":"Omar"}`

	rec, out := do(r, http.MethodPost, "/read-notes", body)
	if rec.Code != http.StatusCreated || out["message"] != msgReadCreated {
		t.Fatalf("first read: %d %v", rec.Code, out)
	}

	rec, out = do(r, http.MethodPost, "/read-notes", body)
	if rec.Code != http.StatusOK || out["message"] != msgReadIncremented {
		t.Fatalf("second read: %d %v", rec.Code, out)
	}
	rn := out["read_note"].(map[string]interface{})
	if rn["number_of_reads"] != float64(2) {
		t.Fatalf("got %v reads want 2", rn["number_of_reads"])
	}

	rec, out = do(r, http.MethodPost, "/read-notes/1/increase", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("increase: %d %v", rec.Code, out)
	}
	if out["read_note"].(map[string]interface{})["number_of_reads"] != float64(3) {
		t.Fatalf("unexpected reads after increase: %v", out)
	}
}

func TestRecordUnknownNote(t *testing.T) {
	r := newTestRouter()
	rec, out := do(r, http.MethodPost, "/read-notes", `{"student":5,"note_id":99,"subject_name":"math","note_name":"x"}`)
	if rec.Code != http.StatusNotFound || out["error"] == nil {
		t.Fatalf("expected 404, got %d %v", rec.Code, out)
	}
}

func TestRecordValidation(t *testing.T) {
	r := newTestRouter()
	rec, out := do(r, http.MethodPost, "/read-notes", `{"note_id":7,"subject_name":"math","note_name":"x"}`)
	if rec.Code != http.StatusBadRequest || out["field"] != "student" {
		t.Fatalf("expected student validation error, got %d %v", rec.Code, out)
	}
}

func TestListByStudentPaginates(t *testing.T) {
	r := newTestRouter()
	do(r, http.MethodPost, "/read-notes", `{"student":5,"note_id":7,"subject_name":"math","note_name":"a"}`)
	do(r, http.MethodPost, "/read-notes", `{"student":5,"note_id":8,"subject_name":"math","note_name":"b"}`)

	_, out := do(r, http.MethodGet, "/read-notes/student/5?count=2&limit=1", "")
	if out["number_of_read_notes"] != float64(2) {
		t.Fatalf("unexpected total: %v", out)
	}
	items := out["read_notes"].([]interface{})
	if len(items) != 1 || items[0].(map[string]interface{})["note_id"] != float64(8) {
		t.Fatalf("unexpected page: %v", items)
	}
}

func TestIncreaseUnknownRecord(t *testing.T) {
	r := newTestRouter()
	rec, _ := do(r, http.MethodPost, "/read-notes/42/increase", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
