package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"edumarket/internal/premium"
	"edumarket/internal/premium/service"
	"edumarket/pkg/httpjson"
	"edumarket/pkg/middleware"
	"edumarket/pkg/pagination"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgPurchased     = "تم إنشاء المحتوى المميز بنجاح"
	msgInvalidPrice  = "تنسيق السعر غير صحيح. يجب أن يكون السعر رقماً"
	msgInvalidExpiry = "تنسيق تاريخ الانتهاء غير صحيح"
	msgMissingParams = "معاملات مطلوبة مفقودة. يرجى توفير student_id و content_type و content_id"
	msgInvalidIDs    = "تنسيق معرف غير صحيح. يجب أن تكون student_id و content_id أرقام صحيحة"
	msgExpired       = "انتهت صلاحية المحتوى المميز"
	msgExpiredPurged = "انتهت صلاحية المحتوى وتم حذفه"
	msgNoAccess      = "لم يتم العثور على محتوى مميز"
	msgNoPurchase    = "لم يتم العثور على سجل شراء لهذا المحتوى"
)

type Handler struct {
	Service *service.Service
	log     *zap.Logger
}

func NewHandler(svc *service.Service, log *zap.Logger) *Handler {
	return &Handler{Service: svc, log: log}
}

func (h *Handler) Routes(r chi.Router, write func(http.Handler) http.Handler) {
	r.Get("/premium", h.List)
	r.Get("/premium/check-access/{studentID}/{contentID}/{type}", h.CheckAccess)
	r.Get("/premium/check-purchase", h.CheckPurchase)
	r.Get("/premium/student/{studentID}", h.ListByStudent)
	r.Get("/premium/{id}", h.Get)

	r.Group(func(wr chi.Router) {
		wr.Use(write)
		wr.Post("/premium/purchase", h.Purchase)
		wr.Put("/premium/{id}", h.Update)
		wr.Delete("/premium/{id}", h.Delete)
	})
}

type purchaseRequest struct {
	StudentID     int64       `json:"student" validate:"required,gt=0"`
	Price         json.Number `json:"price" validate:"required"`
	Class         string      `json:"Class" validate:"required,max=25"`
	Type          string      `json:"type" validate:"required,oneof=exam note"`
	SubjectName   string      `json:"subject_name" validate:"required,max=25"`
	ContentID     int64       `json:"content_id" validate:"required"`
	ContentName   string      `json:"content_name" validate:"required,max=2000"`
	PublisherID   int64       `json:"publisher_id" validate:"required,gt=0"`
	PublisherName string      `json:"publisher_name" validate:"required,max=127"`
	DateOfExpiry  string      `json:"date_of_expiry" validate:"required"`
}

type purchaseResponse struct {
	Success                bool             `json:"success"`
	Message                string           `json:"message"`
	BalanceDeducted        bool             `json:"balance_deducted"`
	PreviousBalance        int64            `json:"previous_balance"`
	NewBalance             int64            `json:"new_balance"`
	AmountDeducted         int64            `json:"amount_deducted"`
	TeacherCommissionAdded *int64           `json:"teacher_commission_added"`
	PremiumContent         *premium.Content `json:"premium_content"`
}

type insufficientResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	CurrentBalance int64  `json:"current_balance"`
	RequiredPrice  int64  `json:"required_price"`
	StudentID      int64  `json:"student_id"`
	StudentName    string `json:"student_name"`
}

type rollbackResponse struct {
	Success          bool     `json:"success"`
	Error            string   `json:"error"`
	ValidationErrors []string `json:"validation_errors"`
	BalanceRefunded  bool     `json:"balance_refunded"`
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	price, err := strconv.ParseInt(req.Price.String(), 10, 64)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, msgInvalidPrice)
		return
	}
	expiry, err := time.Parse(premium.DateLayout, req.DateOfExpiry)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, msgInvalidExpiry)
		return
	}

	if actor, ok := middleware.UserIDFromContext(r.Context()); ok {
		h.log.Debug("purchase requested",
			zap.Int64("actor_id", actor),
			zap.Int64("student_id", req.StudentID),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
		)
	}

	receipt, err := h.Service.Purchase(r.Context(), premium.Purchase{
		StudentID:     req.StudentID,
		Price:         price,
		Class:         req.Class,
		Type:          premium.Type(req.Type),
		SubjectName:   req.SubjectName,
		ContentID:     req.ContentID,
		ContentName:   req.ContentName,
		PublisherID:   req.PublisherID,
		PublisherName: req.PublisherName,
		DateOfExpiry:  expiry,
	})

	var (
		insufficient *service.InsufficientBalanceError
		rollback     *service.RollbackError
	)
	switch {
	case err == nil:
		httpjson.Write(w, http.StatusCreated, purchaseResponse{
			Success:                true,
			Message:                msgPurchased,
			BalanceDeducted:        true,
			PreviousBalance:        receipt.PreviousBalance,
			NewBalance:             receipt.NewBalance,
			AmountDeducted:         receipt.AmountDeducted,
			TeacherCommissionAdded: receipt.Commission,
			PremiumContent:         receipt.Content,
		})
	case errors.As(err, &insufficient):
		httpjson.Write(w, http.StatusBadRequest, insufficientResponse{
			Error:          insufficient.Error(),
			CurrentBalance: insufficient.Balance,
			RequiredPrice:  insufficient.Price,
			StudentID:      insufficient.StudentID,
			StudentName:    insufficient.StudentName,
		})
	case errors.As(err, &rollback):
		httpjson.Write(w, http.StatusBadRequest, rollbackResponse{
			Error:            rollback.Error(),
			ValidationErrors: []string{rollback.Reason},
			BalanceRefunded:  true,
		})
	default:
		h.writeError(w, "purchase premium content", err)
	}
}

func (h *Handler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	studentID, ok := httpjson.IDParam(r, "studentID")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	contentID, ok := httpjson.IDParam(r, "contentID")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}

	c, expired, err := h.Service.CheckAccess(r.Context(), studentID, contentID, premium.Type(chi.URLParam(r, "type")))
	switch {
	case errors.Is(err, service.ErrContentNotFound):
		httpjson.Write(w, http.StatusOK, map[string]interface{}{
			"has_access": false,
			"reason":     msgNoAccess,
		})
	case err != nil:
		h.writeError(w, "check premium access", err)
	case expired:
		httpjson.Write(w, http.StatusOK, map[string]interface{}{
			"has_access":  false,
			"reason":      msgExpired,
			"expiry_date": c.DateOfExpiry.Format(premium.DateLayout),
		})
	default:
		httpjson.Write(w, http.StatusOK, map[string]interface{}{
			"has_access":      true,
			"premium_content": c,
		})
	}
}

type purchaseStatus struct {
	HasPurchased bool   `json:"has_purchased"`
	IsExpired    bool   `json:"is_expired"`
	Reason       string `json:"reason,omitempty"`
	PurchaseDate string `json:"purchase_date,omitempty"`
	ExpiryDate   string `json:"expiry_date,omitempty"`
	ContentName  string `json:"content_name,omitempty"`
	SubjectName  string `json:"subject_name,omitempty"`
}

func (h *Handler) CheckPurchase(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawStudent, contentType, rawContent := q.Get("student_id"), q.Get("content_type"), q.Get("content_id")
	if rawStudent == "" || contentType == "" || rawContent == "" {
		httpjson.Error(w, http.StatusBadRequest, msgMissingParams)
		return
	}
	if !premium.Type(contentType).Valid() {
		httpjson.Error(w, http.StatusBadRequest, service.ErrInvalidType.Error())
		return
	}
	studentID, err1 := strconv.ParseInt(rawStudent, 10, 64)
	contentID, err2 := strconv.ParseInt(rawContent, 10, 64)
	if err1 != nil || err2 != nil {
		httpjson.Error(w, http.StatusBadRequest, msgInvalidIDs)
		return
	}

	c, expired, err := h.Service.CheckPurchase(r.Context(), studentID, contentID, premium.Type(contentType))
	if errors.Is(err, service.ErrContentNotFound) {
		httpjson.Write(w, http.StatusOK, purchaseStatus{Reason: msgNoPurchase})
		return
	}
	if err != nil {
		h.writeError(w, "check premium purchase", err)
		return
	}

	status := purchaseStatus{
		HasPurchased: true,
		IsExpired:    expired,
		PurchaseDate: c.PurchaseDate.Format(premium.DateLayout),
		ExpiryDate:   c.DateOfExpiry.Format(premium.DateLayout),
		ContentName:  c.ContentName,
		SubjectName:  c.SubjectName,
	}
	if expired {
		status.Reason = msgExpiredPurged
	}
	httpjson.Write(w, http.StatusOK, status)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)
	items, total, err := h.Service.List(r.Context(), page.Limit, page.Offset())
	if err != nil {
		h.writeError(w, "list premium content", err)
		return
	}
	writeList(w, items, total)
}

func (h *Handler) ListByStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := httpjson.IDParam(r, "studentID")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	page := pagination.FromRequest(r)
	items, total, err := h.Service.ListByStudent(r.Context(), studentID, page.Limit, page.Offset())
	if err != nil {
		h.writeError(w, "list student premium content", err)
		return
	}
	writeList(w, items, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	c, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "get premium content", err)
		return
	}
	httpjson.Write(w, http.StatusOK, c)
}

type updateRequest struct {
	Class         *string `json:"Class" validate:"omitempty,max=25"`
	SubjectName   *string `json:"subject_name" validate:"omitempty,max=25"`
	ContentName   *string `json:"content_name" validate:"omitempty,max=2000"`
	PublisherName *string `json:"publisher_name" validate:"omitempty,max=127"`
	DateOfExpiry  *string `json:"date_of_expiry"`
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
	upd := premium.Update{
		Class:         req.Class,
		SubjectName:   req.SubjectName,
		ContentName:   req.ContentName,
		PublisherName: req.PublisherName,
	}
	if req.DateOfExpiry != nil {
		expiry, err := time.Parse(premium.DateLayout, *req.DateOfExpiry)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, msgInvalidExpiry)
			return
		}
		upd.DateOfExpiry = &expiry
	}

	c, err := h.Service.Update(r.Context(), id, upd)
	if err != nil {
		h.writeError(w, "update premium content", err)
		return
	}
	httpjson.Write(w, http.StatusOK, c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpjson.IDParam(r, "id")
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, httpjson.MsgInvalidID)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "delete premium content", err)
		return
	}
	httpjson.Message(w, http.StatusOK, "تم حذف المحتوى المميز بنجاح")
}

func writeList(w http.ResponseWriter, items []premium.Content, total int) {
	httpjson.Write(w, http.StatusOK, map[string]interface{}{
		"premium_content":           items,
		"number_of_premium_content": total,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrContentNotFound), errors.Is(err, service.ErrStudentNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNegativePrice), errors.Is(err, service.ErrInvalidType):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error(op, zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.MsgInternal)
	}
}
