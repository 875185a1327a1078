package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"edumarket/internal/premium"
	"edumarket/internal/premium/repository"
	"edumarket/internal/premium/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestRouter() (http.Handler, *repository.MemoryRepository) {
	repo := repository.NewMemoryRepository(nil)
	repo.PutStudent(1, "Lina", 500)
	repo.PutTeacher(9, 0)
	h := NewHandler(service.NewService(repo, 70, zap.NewNop()), zap.NewNop())
	r := chi.NewRouter()
	h.Routes(r, func(next http.Handler) http.Handler { return next })
	return r, repo
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

func purchaseBody(price string, contentID int) string {
	return fmt.Sprintf(`{"student":1,"price":%s,"Class":"12","type":"note","subject_name":"math",
		"content_id":%d,"content_name":"Limits","publisher_id":9,"publisher_name":"Omar","date_of_expiry":"2099-01-01"}`,
		price, contentID)
}

func TestPurchaseEndpoint(t *testing.T) {
	r, repo := newTestRouter()

	rec, out := do(r, http.MethodPost, "/premium/purchase", purchaseBody(`"150"`, 3))
	if rec.Code != http.StatusCreated {
		t.Fatalf("purchase: %d %s", rec.Code, rec.Body.String())
	}
	if out["previous_balance"] != float64(500) || out["new_balance"] != float64(350) || out["teacher_commission_added"] != float64(105) {
		t.Fatalf("unexpected body: %v", out)
	}
	if repo.TotalNet(9) != 105 {
		t.Fatalf("teacher net %d want 105", repo.TotalNet(9))
	}

	rec, out = do(r, http.MethodPost, "/premium/purchase", purchaseBody("150", 3))
	if rec.Code != http.StatusBadRequest || out["balance_refunded"] != true {
		t.Fatalf("duplicate purchase: %d %v", rec.Code, out)
	}
	if repo.Balance(1) != 350 {
		t.Fatalf("balance %d want 350 after refund", repo.Balance(1))
	}

	rec, out = do(r, http.MethodPost, "/premium/purchase", purchaseBody("400", 4))
	if rec.Code != http.StatusBadRequest || out["current_balance"] != float64(350) || out["required_price"] != float64(400) {
		t.Fatalf("insufficient balance: %d %v", rec.Code, out)
	}
	if out["student_name"] != "Lina" || out["error"] == nil {
		t.Fatalf("insufficient body missing fields: %v", out)
	}
}

func TestPurchaseRejectsBadPrice(t *testing.T) {
	r, _ := newTestRouter()
	rec, out := do(r, http.MethodPost, "/premium/purchase", purchaseBody("12.5", 3))
	if rec.Code != http.StatusBadRequest || out["error"] != msgInvalidPrice {
		t.Fatalf("expected price error, got %d %v", rec.Code, out)
	}

	rec, out = do(r, http.MethodPost, "/premium/purchase", `{"student":1,"price":10}`)
	if rec.Code != http.StatusBadRequest || out["error"] == nil {
		t.Fatalf("expected missing field error, got %d %v", rec.Code, out)
	}
}

func TestPurchaseUnknownStudent(t *testing.T) {
	r, _ := newTestRouter()
	body := strings.Replace(purchaseBody("10", 3), `"student":1`, `"student":2`, 1)
	rec, _ := do(r, http.MethodPost, "/premium/purchase", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCheckAccessEndpoint(t *testing.T) {
	r, repo := newTestRouter()
	repo.Insert(premium.Content{StudentID: 1, ContentID: 5, Type: premium.TypeExam, DateOfExpiry: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)})
	repo.Insert(premium.Content{StudentID: 1, ContentID: 6, Type: premium.TypeExam, DateOfExpiry: time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)})

	_, out := do(r, http.MethodGet, "/premium/check-access/1/5/exam", "")
	if out["has_access"] != false || out["expiry_date"] != "2000-01-01" {
		t.Fatalf("expired access: %v", out)
	}
	_, out = do(r, http.MethodGet, "/premium/check-access/1/6/exam", "")
	if out["has_access"] != true || out["premium_content"] == nil {
		t.Fatalf("valid access: %v", out)
	}
	_, out = do(r, http.MethodGet, "/premium/check-access/1/7/exam", "")
	if out["has_access"] != false || out["reason"] != msgNoAccess {
		t.Fatalf("missing access: %v", out)
	}
}

func TestCheckPurchaseEndpoint(t *testing.T) {
	r, repo := newTestRouter()
	id := repo.Insert(premium.Content{StudentID: 1, ContentID: 5, Type: premium.TypeNote, ContentName: "old", DateOfExpiry: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)})

	rec, out := do(r, http.MethodGet, "/premium/check-purchase?student_id=1&content_type=video&content_id=5", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid type: %d %v", rec.Code, out)
	}
	rec, _ = do(r, http.MethodGet, "/premium/check-purchase?student_id=x&content_type=note&content_id=5", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid id: %d", rec.Code)
	}
	rec, out = do(r, http.MethodGet, "/premium/check-purchase?student_id=1", "")
	if rec.Code != http.StatusBadRequest || out["error"] != msgMissingParams {
		t.Fatalf("missing params: %d %v", rec.Code, out)
	}

	_, out = do(r, http.MethodGet, "/premium/check-purchase?student_id=1&content_type=note&content_id=5", "")
	if out["has_purchased"] != true || out["is_expired"] != true || out["content_name"] != "old" {
		t.Fatalf("expired purchase: %v", out)
	}
	rec, _ = do(r, http.MethodGet, fmt.Sprintf("/premium/%d", id), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expired record should be gone, got %d", rec.Code)
	}
	_, out = do(r, http.MethodGet, "/premium/check-purchase?student_id=1&content_type=note&content_id=5", "")
	if out["has_purchased"] != false {
		t.Fatalf("expected no purchase, got %v", out)
	}
}

func TestStudentListAndUpdate(t *testing.T) {
	r, _ := newTestRouter()
	do(r, http.MethodPost, "/premium/purchase", purchaseBody("10", 1))
	do(r, http.MethodPost, "/premium/purchase", purchaseBody("10", 2))

	_, out := do(r, http.MethodGet, "/premium/student/1?count=1&limit=1", "")
	if out["number_of_premium_content"] != float64(2) || len(out["premium_content"].([]interface{})) != 1 {
		t.Fatalf("student list: %v", out)
	}

	rec, out := do(r, http.MethodPut, "/premium/1", `{"content_name":"Derivatives","date_of_expiry":"2098-05-01"}`)
	if rec.Code != http.StatusOK || out["content_name"] != "Derivatives" {
		t.Fatalf("update: %d %v", rec.Code, out)
	}
	rec, _ = do(r, http.MethodDelete, "/premium/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec, _ = do(r, http.MethodDelete, "/premium/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", rec.Code)
	}
}

func TestMalformedExpiryDate(t *testing.T) {
	r, repo := newTestRouter()

	body := strings.Replace(purchaseBody("10", 3), "2099-01-01", "01/01/2099", 1)
	rec, out := do(r, http.MethodPost, "/premium/purchase", body)
	if rec.Code != http.StatusBadRequest || out["error"] != msgInvalidExpiry {
		t.Fatalf("purchase with bad date: %d %v", rec.Code, out)
	}
	if repo.Balance(1) != 500 {
		t.Fatalf("balance changed to %d", repo.Balance(1))
	}

	do(r, http.MethodPost, "/premium/purchase", purchaseBody("10", 3))
	rec, out = do(r, http.MethodPut, "/premium/1", `{"date_of_expiry":"2099-13-45"}`)
	if rec.Code != http.StatusBadRequest || out["error"] != msgInvalidExpiry {
		t.Fatalf("update with bad date: %d %v", rec.Code, out)
	}
}
