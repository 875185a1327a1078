package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"edumarket/internal/testpackage"
	"edumarket/internal/testpackage/service"
	"edumarket/pkg/httpjson"
	"edumarket/pkg/pagination"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Service *service.Service
	log     *zap.Logger
}

func NewHandler(svc *service.Service, log *zap.Logger) *Handler {
	return &Handler{Service: svc, log: log}
}

func (h *Handler) Routes(r chi.Router, write func(http.Handler) http.Handler) {
	r.Get("/packages/{id}", h.Get)
	r.Get("/packages/{id}/details", h.Details)
	r.Get("/packages/subject/{subject}", h.ListBySubject)
	r.Get("/packages/publisher/{publisherID}", h.ListByPublisher)

	r.Group(func(wr chi.Router) {
		wr.Use(write)
		wr.Post("/packages", h.Create)
		wr.Put("/packages/{id}", h.Update)
		wr.Delete("/packages/{id}", h.Delete)
		wr.Put("/packages/{id}/applications/increase", h.increment(testpackage.Applications, "تم تحديث عدد التطبيقات بنجاح"))
		wr.Put("/packages/{id}/purchases/increase", h.increment(testpackage.Purchases, "تم تحديث عدد المشتريات بنجاح"))
	})
}

type createRequest struct {
	PackageName       string `json:"package_name" validate:"required,max=500"`
	PublisherID       int64  `json:"publisher_id" validate:"required,gt=0"`
	PublisherName     string `json:"publisher_name" validate:"required,max=127"`
	Units             string `json:"units" validate:"required,max=1000"`
	Class             string `json:"Class" validate:"omitempty,oneof=9 12"`
	SubjectName       string `json:"subject_name" validate:"required,max=25"`
	Price             int64  `json:"price" validate:"gte=0"`
	NumberOfQuestions int    `json:"number_of_questions" validate:"gte=0"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if req.Class == "" {
		req.Class = "12"
	}

	p := &testpackage.Package{
		PackageName:       req.PackageName,
		PublisherID:       req.PublisherID,
		PublisherName:     req.PublisherName,
		Units:             req.Units,
		Class:             req.Class,
		SubjectName:       req.SubjectName,
		Price:             req.Price,
		NumberOfQuestions: req.NumberOfQuestions,
	}
	if err := h.Service.Create(r.Context(), p); err != nil {
		h.writeError(w, "create test package", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, p)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}

type details struct {
	ID                int64     `json:"id"`
	PackageName       string    `json:"package_name"`
	PublisherID       int64     `json:"publisher_id"`
	PublisherName     string    `json:"publisher_name"`
	Units             string    `json:"units"`
	Class             string    `json:"Class"`
	SubjectName       string    `json:"subject_name"`
	Price             int64     `json:"price"`
	DateAdded         time.Time `json:"date_added"`
	NumberOfQuestions int       `json:"number_of_questions"`
}

func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, details{
		ID:                p.ID,
		PackageName:       p.PackageName,
		PublisherID:       p.PublisherID,
		PublisherName:     p.PublisherName,
		Units:             p.Units,
		Class:             p.Class,
		SubjectName:       p.SubjectName,
		Price:             p.Price,
		DateAdded:         p.DateAdded,
		NumberOfQuestions: p.NumberOfQuestions,
	})
}

func (h *Handler) ListBySubject(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := testpackage.Filter{
		Unit:          q.Get("unit"),
		Name:          q.Get("name"),
		PublisherName: q.Get("publisher_name"),
	}
	if raw := q.Get("price"); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "يجب أن يكون السعر رقما صحيحا")
			return
		}
		filter.MaxPrice = &price
	}
	if raw := q.Get("number_of_questions"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "يجب أن يكون عدد الأسئلة رقما صحيحا")
			return
		}
		filter.MaxQuestions = &n
	}

	page := pagination.FromRequest(r)
	items, total, err := h.Service.ListBySubject(r.Context(), chi.URLParam(r, "subject"), filter, page.Limit, page.Offset())
	if err != nil {
		h.writeError(w, "list packages by subject", err)
		return
	}
	writeList(w, items, total)
}

func (h *Handler) ListByPublisher(w http.ResponseWriter, r *http.Request) {
	publisherID, ok := httpjson.IDParam(r, "publisherID")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	page := pagination.FromRequest(r)
	items, total, err := h.Service.ListByPublisher(r.Context(), publisherID, page.Limit, page.Offset())
	if err != nil {
		h.writeError(w, "list packages by publisher", err)
		return
	}
	writeList(w, items, total)
}

type updateRequest struct {
	PackageName       *string `json:"package_name" validate:"omitempty,min=1,max=500"`
	Units             *string `json:"units" validate:"omitempty,max=1000"`
	Class             *string `json:"Class" validate:"omitempty,oneof=9 12"`
	SubjectName       *string `json:"subject_name" validate:"omitempty,max=25"`
	Price             *int64  `json:"price"`
	NumberOfQuestions *int    `json:"number_of_questions" validate:"omitempty,gte=0"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	var req updateRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	p, err := h.Service.Update(r.Context(), id, testpackage.Update(req))
	if err != nil {
		h.writeError(w, "update test package", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{
		"message": "تم تحديث حزمة الاختبار بنجاح",
		"data":    p,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	name, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, "delete test package", err)
		return
	}
	httpjson.Message(w, http.StatusOK, fmt.Sprintf("تم حذف حزمة الاختبار \"%s\" بنجاح", name))
}

func (h *Handler) increment(counter testpackage.Counter, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := httpjson.IDParam(r, "id")
		if !ok {
			httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
			return
		}
		v, err := h.Service.Increment(r.Context(), id, counter)
		if err != nil {
			h.writeError(w, "package counter", err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]interface{}{
			"message":       msg,
			string(counter): v,
		})
	}
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*testpackage.Package, bool) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return nil, false
	}
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "get test package", err)
		return nil, false
	}
	return p, true
}

func writeList(w http.ResponseWriter, items []testpackage.Package, total int) {
	httpjson.Write(w, http.StatusOK, map[string]interface{}{
		"exams":           items,
		"number_of_exams": total,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrPackageNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNegativePrice):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error(op, zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.MsgInternal)
	}
}
