package http

import (
	"errors"
	"net/http"
	"strconv"

	"edumarket/internal/note"
	"edumarket/internal/note/service"
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
	r.Get("/notes", h.List)
	r.Get("/notes/{id}", h.Get)
	r.Get("/notes/{id}/preview", h.Preview)
	r.Get("/notes/{id}/edit-info", h.EditInfo)
	r.Get("/notes/subject/{subject}", h.ListBySubject)
	r.Get("/notes/publisher/{publisherID}", h.ListByPublisher)

	r.Group(func(wr chi.Router) {
		wr.Use(write)
		wr.Post("/notes", h.Create)
		wr.Put("/notes/{id}", h.Update)
		wr.Delete("/notes/{id}", h.Delete)
		wr.Put("/notes/{id}/reads/increase", h.increment(note.Reads, "تم زيادة عدد القراء بنجاح"))
		wr.Put("/notes/{id}/purchases/increase", h.increment(note.Purchases, "تم زيادة عدد المشتريات بنجاح"))
	})
}

type createRequest struct {
	Title         string `json:"title" validate:"required,max=2000"`
	SubjectName   string `json:"subject_name" validate:"required,max=25"`
	Class         string `json:"Class" validate:"omitempty,max=25"`
	PublisherID   int64  `json:"publisher_id" validate:"required,gt=0"`
	PublisherName string `json:"publisher_name" validate:"required,max=127"`
	Content       string `json:"content" validate:"required"`
	Price         int64  `json:"price" validate:"gte=0"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if req.Class == "" {
		req.Class = "12"
	}

	n := &note.Note{
		Title:         req.Title,
		SubjectName:   req.SubjectName,
		Class:         req.Class,
		PublisherID:   req.PublisherID,
		PublisherName: req.PublisherName,
		Content:       req.Content,
		Price:         req.Price,
	}
	if err := h.Service.Create(r.Context(), n); err != nil {
		h.writeError(w, "create note", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, n)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)
	items, total, err := h.Service.List(r.Context(), page.Limit, page.Offset())
	if err != nil {
		h.writeError(w, "list notes", err)
		return
	}
	writeList(w, items, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	n, ok := h.load(w, r)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, n)
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	n, ok := h.load(w, r)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, n.Preview())
}

type editInfo struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	PublisherName string `json:"publisher_name"`
	Price         int64  `json:"price"`
	Class         string `json:"Class"`
	SubjectName   string `json:"subject_name"`
}

func (h *Handler) EditInfo(w http.ResponseWriter, r *http.Request) {
	n, ok := h.load(w, r)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, editInfo{
		ID:            n.ID,
		Title:         n.Title,
		PublisherName: n.PublisherName,
		Price:         n.Price,
		Class:         n.Class,
		SubjectName:   n.SubjectName,
	})
}

func (h *Handler) ListBySubject(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := note.Filter{
		Class:         q.Get("Class"),
		Title:         q.Get("name"),
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

	page := pagination.FromRequest(r)
	items, total, err := h.Service.ListBySubject(r.Context(), chi.URLParam(r, "subject"), filter, page.Limit, page.Offset())
	if err != nil {
		h.writeError(w, "list notes by subject", err)
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
		h.writeError(w, "list notes by publisher", err)
		return
	}
	writeList(w, items, total)
}

type updateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=2000"`
	SubjectName *string `json:"subject_name" validate:"omitempty,max=25"`
	Class       *string `json:"Class" validate:"omitempty,max=25"`
	Content     *string `json:"content"`
	Price       *int64  `json:"price"`
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
	if err := h.Service.Update(r.Context(), id, note.Update(req)); err != nil {
		h.writeError(w, "update note", err)
		return
	}
	httpjson.Message(w, http.StatusOK, "تم تعديل الملاحظة بنجاح")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "delete note", err)
		return
	}
	httpjson.Message(w, http.StatusOK, "تم حذف الملاحظة بنجاح")
}

func (h *Handler) increment(counter note.Counter, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := httpjson.IDParam(r, "id")
		if !ok {
			httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
			return
		}
		v, err := h.Service.Increment(r.Context(), id, counter)
		if err != nil {
			h.writeError(w, "note counter", err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]interface{}{
			"message":       msg,
			string(counter): v,
		})
	}
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*note.Note, bool) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return nil, false
	}
	n, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "get note", err)
		return nil, false
	}
	return n, true
}

func writeList(w http.ResponseWriter, items []note.Preview, total int) {
	httpjson.Write(w, http.StatusOK, map[string]interface{}{
		"notes":           items,
		"number_of_notes": total,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNoteNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNegativePrice):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error(op, zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.MsgInternal)
	}
}
