package http

import (
	"errors"
	"net/http"
	"strconv"

	"edumarket/internal/account"
	"edumarket/internal/account/service"
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

// Routes mounts the account endpoints. write wraps mutating routes.
func (h *Handler) Routes(r chi.Router, write func(http.Handler) http.Handler) {
	r.Get("/users/{id}", h.GetUser)
	r.Get("/profiles/teachers", h.ListTeachers)
	r.Get("/profiles/teachers/{id}", h.GetTeacher)
	r.Get("/profiles/students/{id}", h.GetStudent)

	r.Post("/users/register", h.Register)
	r.Group(func(wr chi.Router) {
		wr.Use(write)
		wr.Get("/profiles/students/balance/check", h.CheckBalance)
		wr.Put("/profiles/students/{id}", h.UpdateStudent)
		wr.Put("/profiles/teachers/{id}", h.UpdateTeacher)
		wr.Post("/profiles/students/{id}/balance/credit", h.Credit)
		wr.Post("/profiles/teachers/{id}/exams/increase", h.teacherCounter(account.TeacherExams, 1))
		wr.Post("/profiles/teachers/{id}/exams/decrease", h.teacherCounter(account.TeacherExams, -1))
		wr.Post("/profiles/teachers/{id}/notes/increase", h.teacherCounter(account.TeacherNotes, 1))
		wr.Post("/profiles/teachers/{id}/notes/decrease", h.teacherCounter(account.TeacherNotes, -1))
	})
}

type registerRequest struct {
	Username         string `json:"username" validate:"required,min=3,max=150"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	IsTeacher        bool   `json:"is_teacher"`
	FullName         string `json:"full_name" validate:"required,max=127"`
	PhoneNumber      string `json:"phone_number" validate:"max=15"`
	Class            string `json:"Class" validate:"omitempty,oneof=9 12 9_12"`
	City             string `json:"city" validate:"max=50"`
	School           string `json:"school" validate:"max=200"`
	Gender           string `json:"gender" validate:"omitempty,oneof=M F"`
	StudyingSubjects string `json:"studying_subjects" validate:"required_if=IsTeacher true"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}

	u, err := h.Service.Register(r.Context(), account.Registration{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		IsTeacher:        req.IsTeacher,
		FullName:         req.FullName,
		PhoneNumber:      req.PhoneNumber,
		Class:            req.Class,
		City:             req.City,
		School:           req.School,
		Gender:           req.Gender,
		StudyingSubjects: req.StudyingSubjects,
	})
	if err != nil {
		var dup *service.DuplicateError
		switch {
		case errors.As(err, &dup):
			body := map[string]string{"error": dup.Error()}
			for field, msg := range dup.Fields {
				body[field] = msg
			}
			httpjson.Write(w, http.StatusBadRequest, body)
		case errors.Is(err, account.ErrUnknownSubject):
			httpjson.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.internalError(w, "register", err)
		}
		return
	}

	httpjson.Write(w, http.StatusCreated, map[string]interface{}{
		"details": "تم تسجيل حسابك بنجاح!",
		"user":    u,
	})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	u, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, "get user", err)
		return
	}
	httpjson.Write(w, http.StatusOK, u)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	p, err := h.Service.GetStudent(r.Context(), id)
	if err != nil {
		h.writeError(w, "get student", err)
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}

type updateStudentRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,max=127"`
	City        *string `json:"city" validate:"omitempty,max=50"`
	School      *string `json:"school" validate:"omitempty,max=200"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=15"`
	Class       *string `json:"Class"`
	Gender      *string `json:"gender"`
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	var req updateStudentRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}

	p, err := h.Service.UpdateStudent(r.Context(), id, account.StudentUpdate{
		FullName:    req.FullName,
		City:        req.City,
		School:      req.School,
		PhoneNumber: req.PhoneNumber,
		Class:       req.Class,
		Gender:      req.Gender,
	})
	if err != nil {
		h.writeError(w, "update student", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{
		"message": "تم تحديث الملف الشخصي للطالب بنجاح",
		"data":    p,
	})
}

func (h *Handler) GetTeacher(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	p, err := h.Service.GetTeacher(r.Context(), id)
	if err != nil {
		h.writeError(w, "get teacher", err)
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}

type updateTeacherRequest struct {
	PhoneNumber            string `json:"phone_number" validate:"max=15"`
	AnotherPhoneNumber     string `json:"another_phone_number" validate:"max=15"`
	TeachingInSchool       string `json:"teaching_in_school" validate:"max=255"`
	TeachingInInstitutions string `json:"teaching_in_institutions" validate:"max=500"`
	Bio                    string `json:"bio" validate:"max=5000"`
	FacebookLink           string `json:"facebook_link" validate:"max=500"`
	InstagramLink          string `json:"instagram_link" validate:"max=500"`
	WhatsappLink           string `json:"whatsapp_link" validate:"max=500"`
	TelegramLink           string `json:"telegram_link" validate:"max=500"`
	StudyingSubjects       string `json:"studying_subjects" validate:"required"`
	City                   string `json:"city" validate:"max=50"`
	Class                  string `json:"Class" validate:"required,oneof=9 12 9_12"`
}

func (h *Handler) UpdateTeacher(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	var req updateTeacherRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}

	err := h.Service.UpdateTeacher(r.Context(), id, account.TeacherUpdate(req))
	if err != nil {
		h.writeError(w, "update teacher", err)
		return
	}
	httpjson.Message(w, http.StatusOK, "تم تحديث الملف الشخصي بنجاح")
}

func (h *Handler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pagination.FromRequest(r)
	filter := account.TeacherFilter{
		Class:   q.Get("Class"),
		Subject: q.Get("subject_name"),
		City:    q.Get("city"),
		Name:    q.Get("name"),
	}

	items, total, err := h.Service.ListTeachers(r.Context(), filter, page.Limit, page.Offset())
	if err != nil {
		h.internalError(w, "list teachers", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{
		"teacher_preview": items,
		"number":          total,
	})
}

type balanceCheckResponse struct {
	HasSufficientBalance bool   `json:"has_sufficient_balance"`
	BalanceDecreased     bool   `json:"balance_decreased"`
	PreviousBalance      *int64 `json:"previous_balance,omitempty"`
	NewBalance           *int64 `json:"new_balance,omitempty"`
	AmountDeducted       *int64 `json:"amount_deducted,omitempty"`
	CurrentBalance       *int64 `json:"current_balance,omitempty"`
	RequiredPrice        *int64 `json:"required_price,omitempty"`
	StudentID            int64  `json:"student_id"`
	StudentName          string `json:"student_name"`
}

func (h *Handler) CheckBalance(w http.ResponseWriter, r *http.Request) {
	rawID, rawPrice := r.URL.Query().Get("student_id"), r.URL.Query().Get("price")
	if rawID == "" || rawPrice == "" {
		httpjson.Error(w, http.StatusBadRequest, "البيانات المطلوبة مفقودة. يرجى توفير معرف الطالب والسعر")
		return
	}
	studentID, err1 := strconv.ParseInt(rawID, 10, 64)
	price, err2 := strconv.ParseInt(rawPrice, 10, 64)
	if err1 != nil || err2 != nil {
		httpjson.Error(w, http.StatusBadRequest, "تنسيق غير صحيح. يجب أن يكون معرف الطالب والسعر أرقام صحيحة")
		return
	}

	res, err := h.Service.CheckAndDebit(r.Context(), studentID, price)
	if err != nil {
		h.writeError(w, "check balance", err)
		return
	}

	resp := balanceCheckResponse{
		HasSufficientBalance: res.Debited,
		BalanceDecreased:     res.Debited,
		StudentID:            res.StudentID,
		StudentName:          res.StudentName,
	}
	if res.Debited {
		resp.PreviousBalance = &res.PreviousBalance
		resp.NewBalance = &res.Balance
		resp.AmountDeducted = &res.Price
	} else {
		resp.CurrentBalance = &res.Balance
		resp.RequiredPrice = &res.Price
	}
	httpjson.Write(w, http.StatusOK, resp)
}

type creditRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func (h *Handler) Credit(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	var req creditRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}

	balance, err := h.Service.Credit(r.Context(), id, req.Amount)
	if err != nil {
		h.writeError(w, "credit balance", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]interface{}{
		"message":     "تم شحن الرصيد بنجاح",
		"student_id":  id,
		"new_balance": balance,
	})
}

var counterMessages = map[account.TeacherCounter][2]string{
	account.TeacherExams: {"تم زيادة عدد اختبارات المعلم بنجاح", "تم تقليل عدد اختبارات المعلم بنجاح"},
	account.TeacherNotes: {"تم زيادة عدد ملاحظات المعلم بنجاح", "تم تقليل عدد ملاحظات المعلم بنجاح"},
}

func (h *Handler) teacherCounter(counter account.TeacherCounter, delta int) http.HandlerFunc {
	msg := counterMessages[counter][0]
	if delta < 0 {
		msg = counterMessages[counter][1]
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := httpjson.IDParam(r, "id")
		if !ok {
			httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
			return
		}
		value, err := h.Service.AddTeacherCounter(r.Context(), id, counter, delta)
		if err != nil {
			h.writeError(w, "teacher counter", err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]interface{}{
			"message":       msg,
			string(counter): value,
		})
	}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrTeacherNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNegativePrice),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidClass),
		errors.Is(err, service.ErrInvalidGender):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.internalError(w, op, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op, zap.Error(err))
	httpjson.Error(w, http.StatusInternalServerError, httpjson.MsgInternal)
}
