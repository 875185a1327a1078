package http

import (
	"errors"
	"net/http"
	"strconv"

	"edumarket/internal/exam"
	"edumarket/internal/exam/service"
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
	r.Get("/exams/done/student/{id}", h.ListByStudent)
	r.Get("/packages/subject/{subject}/solved", h.Solved)

	r.With(write).Post("/exams/done", h.Record)
}

type recordRequest struct {
	StudentID     int64   `json:"student" validate:"required,gt=0"`
	SubjectName   string  `json:"subject_name" validate:"required,max=25"`
	ExamName      string  `json:"exam_name" validate:"required,max=100"`
	ExamID        string  `json:"exam_id" validate:"required,max=50"`
	PublisherID   int64   `json:"publisher_id" validate:"gte=0"`
	PublisherName string  `json:"publisher_name" validate:"max=127"`
	Result        float64 `json:"result"`
	Price         int64   `json:"price" validate:"gte=0"`
	TimeTaken     string  `json:"time_taken"`
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	e := &exam.DoneExam{
		StudentID:     req.StudentID,
		SubjectName:   req.SubjectName,
		ExamName:      req.ExamName,
		ExamID:        req.ExamID,
		PublisherID:   req.PublisherID,
		PublisherName: req.PublisherName,
		Result:        req.Result,
		Price:         req.Price,
		TimeTaken:     req.TimeTaken,
	}
	if e.PublisherName == "" {
		e.PublisherName = "SVI"
	}

	if err := h.Service.Record(r.Context(), e); err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			httpjson.Error(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidTime), errors.Is(err, service.ErrInvalidResult):
			httpjson.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.internalError(w, "record exam", err)
		}
		return
	}
	httpjson.Write(w, http.StatusCreated, e)
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
		h.internalError(w, "list done exams", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{
		"exams":           items,
		"number_of_exams": total,
	})
}

type solvedExam struct {
	ExamID string `json:"exam_id"`
}

func (h *Handler) Solved(w http.ResponseWriter, r *http.Request) {
	studentID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "معرف المستخدم مطلوب ويجب أن يكون رقما صحيحا")
		return
	}
	ids, err := h.Service.SolvedExamIDs(r.Context(), studentID, chi.URLParam(r, "subject"))
	if err != nil {
		h.internalError(w, "solved exams", err)
		return
	}
	out := make([]solvedExam, 0, len(ids))
	for _, id := range ids {
		out = append(out, solvedExam{ExamID: id})
	}
	httpjson.Write(w, http.StatusOK, out)
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op, zap.Error(err))
	httpjson.Error(w, http.StatusInternalServerError, httpjson.MsgInternal)
}
