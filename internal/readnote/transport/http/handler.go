package http

import (
	"errors"
	"net/http"

	"edumarket/internal/readnote"
	"edumarket/internal/readnote/service"
	"edumarket/pkg/httpjson"
	"edumarket/pkg/pagination"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgReadCreated     = "تم إنشاء سجل قراءة الطالب بنجاح"
	msgReadIncremented = "تم زيادة عدد القراءات بنجاح"
)

type Handler struct {
	Service *service.Service
	log     *zap.Logger
}

func NewHandler(svc *service.Service, log *zap.Logger) *Handler {
	return &Handler{Service: svc, log: log}
}

func (h *Handler) Routes(r chi.Router, write func(http.Handler) http.Handler) {
	r.Get("/read-notes/student/{id}", h.ListByStudent)

	r.Group(func(wr chi.Router) {
		wr.Use(write)
		wr.Post("/read-notes", h.Record)
		wr.Post("/read-notes/{id}/increase", h.Increment)
	})
}

type recordRequest struct {
	StudentID     int64  `json:"student" validate:"required,gt=0"`
	NoteID        int64  `json:"note_id" validate:"required,gt=0"`
	SubjectName   string `json:"subject_name" validate:"required,max=25"`
	NoteName      string `json:"note_name" validate:"required,max=2000"`
	PublisherID   int64  `json:"publisher_id" validate:"gte=0"`
	PublisherName string `json:"publisher_name" validate:"max=127"`
}

type readNoteResponse struct {
	Message  string             `json:"message"`
	ReadNote *readnote.ReadNote `json:"read_note"`
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	rn := &readnote.ReadNote{
		StudentID:     req.StudentID,
		SubjectName:   req.SubjectName,
		NoteName:      req.NoteName,
		NoteID:        req.NoteID,
		PublisherID:   req.PublisherID,
		PublisherName: req.PublisherName,
	}

	created, err := h.Service.Record(r.Context(), rn)
	if err != nil {
		h.writeError(w, "record read note", err)
		return
	}
	if created {
		httpjson.Write(w, http.StatusCreated, readNoteResponse{Message: msgReadCreated, ReadNote: rn})
		return
	}
	httpjson.Write(w, http.StatusOK, readNoteResponse{Message: msgReadIncremented, ReadNote: rn})
}

func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	rn, err := h.Service.Increment(r.Context(), id)
	if err != nil {
		h.writeError(w, "increment read note", err)
		return
	}
	httpjson.Write(w, http.StatusOK, readNoteResponse{Message: msgReadIncremented, ReadNote: rn})
}

func (h *Handler) ListByStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	page := pagination.FromRequest(r)
	items, total, err := h.Service.ListByStudent(r.Context(), studentID, page.Limit, page.Offset())
	if err != nil {
		h.writeError(w, "list read notes", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{
		"read_notes":           items,
		"number_of_read_notes": total,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrReadNoteNotFound), errors.Is(err, service.ErrReferenceNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error(op, zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.MsgInternal)
	}
}
