package http

import (
	"errors"
	"net/http"

	"edumarket/internal/question"
	"edumarket/internal/question/service"
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
	r.Get("/questions/package/{packageID}", h.ListByPackage)

	r.Group(func(wr chi.Router) {
		wr.Use(write)
		wr.Post("/questions", h.Create)
		wr.Put("/questions/{id}", h.Update)
		wr.Delete("/questions/{id}", h.Delete)
	})
}

type questionRequest struct {
	PackageID   int64   `json:"package" validate:"required,gt=0"`
	TestContent string  `json:"test_content" validate:"required"`
	OptionA     *string `json:"option_A"`
	OptionB     *string `json:"option_B"`
	OptionC     *string `json:"option_C"`
	OptionD     *string `json:"option_D"`
	OptionE     *string `json:"option_E"`
	RightAnswer string  `json:"right_answer" validate:"omitempty,oneof=A B C D E"`
	Explanation *string `json:"explanation"`
}

func (req questionRequest) toModel() *question.Question {
	return &question.Question{
		PackageID:   req.PackageID,
		TestContent: req.TestContent,
		OptionA:     req.OptionA,
		OptionB:     req.OptionB,
		OptionC:     req.OptionC,
		OptionD:     req.OptionD,
		OptionE:     req.OptionE,
		RightAnswer: req.RightAnswer,
		Explanation: req.Explanation,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	q := req.toModel()
	if err := h.Service.Create(r.Context(), q); err != nil {
		h.writeError(w, "create question", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, q)
}

func (h *Handler) ListByPackage(w http.ResponseWriter, r *http.Request) {
	packageID, ok := httpjson.IDParam(r, "packageID")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	items, err := h.Service.ListByPackage(r.Context(), packageID)
	if err != nil {
		h.writeError(w, "list questions", err)
		return
	}
	httpjson.Write(w, http.StatusOK, items)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	var req questionRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	q := req.toModel()
	q.ID = id
	if err := h.Service.Update(r.Context(), q); err != nil {
		h.writeError(w, "update question", err)
		return
	}
	httpjson.Message(w, http.StatusOK, "تم تعديل السؤال بنجاح")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "delete question", err)
		return
	}
	httpjson.Message(w, http.StatusOK, "تم حذف السؤال بنجاح")
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound), errors.Is(err, service.ErrPackageNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidAnswer):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error(op, zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.MsgInternal)
	}
}
