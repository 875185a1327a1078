package http

import (
	"errors"
	"net/http"

	"edumarket/internal/tracking"
	"edumarket/internal/tracking/service"
	"edumarket/pkg/httpjson"

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
	r.Get("/tracking/student/{id}/class/{class}", h.ListByStudentClass)
	r.With(write).Post("/tracking", h.Track)
}

// Required fields are checked by the service so the response carries a single
// combined message.
type trackRequest struct {
	StudentID   int64  `json:"student"`
	SubjectName string `json:"subject_name"`
	Class       string `json:"Class"`
	Increase    string `json:"increase"`
}

func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	t := &tracking.SubjectTracking{
		StudentID:   req.StudentID,
		SubjectName: req.SubjectName,
		Class:       req.Class,
	}

	created, err := h.Service.Track(r.Context(), t, tracking.Kind(req.Increase))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidKind), errors.Is(err, service.ErrMissingFields):
			httpjson.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrStudentNotFound):
			httpjson.Error(w, http.StatusNotFound, err.Error())
		default:
			h.log.Error("track subject", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, httpjson.MsgInternal)
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpjson.Write(w, status, t)
}

func (h *Handler) ListByStudentClass(w http.ResponseWriter, r *http.Request) {
	studentID, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	items, err := h.Service.ListByStudentClass(r.Context(), studentID, chi.URLParam(r, "class"))
	if err != nil {
		h.log.Error("list subject tracking", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.MsgInternal)
		return
	}
	httpjson.Write(w, http.StatusOK, items)
}
