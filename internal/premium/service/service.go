package service

import (
	"context"
	"time"

	"edumarket/internal/metrics"
	"edumarket/internal/premium"
	"edumarket/internal/premium/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrContentNotFound = errors.New("لم يتم العثور على المحتوى المميز")
	ErrStudentNotFound = errors.New("لم يتم العثور على الطالب")
	ErrNegativePrice   = errors.New("السعر يجب أن يكون رقما موجبا")
	ErrInvalidType     = errors.New("نوع محتوى غير صحيح. يجب أن يكون إما 'exam' أو 'note'")
)

const (
	msgDuplicate        = "هذا الطالب لديه بالفعل وصول مميز لهذا المحتوى."
	msgInvalidReference = "الناشر غير موجود"
)

// InsufficientBalanceError rejects a purchase the student cannot afford.
// Nothing was written.
type InsufficientBalanceError struct {
	StudentID   int64
	StudentName string
	Balance     int64
	Price       int64
}

func (e *InsufficientBalanceError) Error() string { return "رصيد غير كافي" }

// RollbackError reports a purchase whose record could not be created after the
// debit. The transaction was rolled back, so the balance is untouched.
type RollbackError struct {
	Reason string
}

func (e *RollbackError) Error() string { return "فشل في إنشاء المحتوى المميز" }

type Repository interface {
	InTx(ctx context.Context, fn func(tx repository.TxRepository) error) error
	Get(ctx context.Context, id int64) (*premium.Content, error)
	Find(ctx context.Context, studentID, contentID int64, t premium.Type) (*premium.Content, error)
	List(ctx context.Context, limit, offset int) ([]premium.Content, int, error)
	ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]premium.Content, int, error)
	Update(ctx context.Context, id int64, upd premium.Update) (*premium.Content, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo              Repository
	commissionPercent int64
	log               *zap.Logger
	now               func() time.Time
}

func NewService(repo Repository, commissionPercent int, log *zap.Logger) *Service {
	return &Service{
		repo:              repo,
		commissionPercent: int64(commissionPercent),
		log:               log.Named("premium"),
		now:               time.Now,
	}
}

// Commission is the publisher's share of price, rounded down.
func (s *Service) Commission(price int64) int64 {
	return price * s.commissionPercent / 100
}

// Purchase debits the student and records the purchase in one transaction.
// The student row stays locked until commit. The publisher commission is
// best effort: its failure is logged and the purchase still commits.
func (s *Service) Purchase(ctx context.Context, p premium.Purchase) (*premium.Receipt, error) {
	if p.Price < 0 {
		return nil, ErrNegativePrice
	}
	if !p.Type.Valid() {
		return nil, ErrInvalidType
	}

	var receipt *premium.Receipt
	err := s.repo.InTx(ctx, func(tx repository.TxRepository) error {
		student, err := tx.LockStudent(ctx, p.StudentID)
		if err != nil {
			return err
		}
		insufficient := &InsufficientBalanceError{
			StudentID:   student.ID,
			StudentName: student.FullName,
			Balance:     student.Balance,
			Price:       p.Price,
		}
		if student.Balance < p.Price {
			return insufficient
		}

		balance, err := tx.Debit(ctx, p.StudentID, p.Price)
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return insufficient
		}
		if err != nil {
			return err
		}

		c := &premium.Content{
			StudentID:     p.StudentID,
			StudentName:   student.FullName,
			Class:         p.Class,
			Type:          p.Type,
			SubjectName:   p.SubjectName,
			ContentID:     p.ContentID,
			ContentName:   p.ContentName,
			PublisherID:   p.PublisherID,
			PublisherName: p.PublisherName,
			Price:         p.Price,
			DateOfExpiry:  p.DateOfExpiry,
		}
		switch err := tx.Create(ctx, c); {
		case errors.Is(err, repository.ErrDuplicate):
			return &RollbackError{Reason: msgDuplicate}
		case errors.Is(err, repository.ErrInvalidReference):
			return &RollbackError{Reason: msgInvalidReference}
		case err != nil:
			return err
		}

		receipt = &premium.Receipt{
			PreviousBalance: student.Balance,
			NewBalance:      balance,
			AmountDeducted:  p.Price,
			Content:         c,
		}
		commission := s.Commission(p.Price)
		if err := tx.CreditTeacher(ctx, p.PublisherID, commission); err != nil {
			s.log.Warn("publisher commission not credited",
				zap.Int64("publisher_id", p.PublisherID),
				zap.Int64("commission", commission),
				zap.Error(err),
			)
			return nil
		}
		receipt.Commission = &commission
		return nil
	})

	var (
		insufficient *InsufficientBalanceError
		rollback     *RollbackError
	)
	switch {
	case err == nil:
		metrics.PremiumPurchasesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		if receipt.Commission != nil {
			metrics.PremiumCommissionUnits.Add(float64(*receipt.Commission))
		}
		s.log.Info("premium content purchased",
			zap.Int64("student_id", p.StudentID),
			zap.Int64("content_id", p.ContentID),
			zap.String("type", string(p.Type)),
			zap.Int64("price", p.Price),
		)
		return receipt, nil
	case errors.As(err, &insufficient):
		metrics.PremiumPurchasesTotal.WithLabelValues(metrics.ResultInsufficient).Inc()
		return nil, err
	case errors.As(err, &rollback):
		metrics.PremiumPurchasesTotal.WithLabelValues(metrics.ResultRolledBack).Inc()
		s.log.Info("premium purchase rolled back",
			zap.Int64("student_id", p.StudentID),
			zap.String("reason", rollback.Reason),
		)
		return nil, err
	case errors.Is(err, repository.ErrStudentNotFound):
		metrics.PremiumPurchasesTotal.WithLabelValues(metrics.ResultNotFound).Inc()
		return nil, ErrStudentNotFound
	default:
		metrics.PremiumPurchasesTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, err
	}
}

// CheckAccess looks up the student's purchase of a content item. expired is
// set when the purchase exists but its expiry date has passed.
func (s *Service) CheckAccess(ctx context.Context, studentID, contentID int64, t premium.Type) (c *premium.Content, expired bool, err error) {
	c, err = s.find(ctx, studentID, contentID, t)
	if err != nil {
		return nil, false, err
	}
	return c, c.ExpiredOn(s.now()), nil
}

// CheckPurchase behaves like CheckAccess but deletes an expired purchase.
func (s *Service) CheckPurchase(ctx context.Context, studentID, contentID int64, t premium.Type) (c *premium.Content, expired bool, err error) {
	if !t.Valid() {
		return nil, false, ErrInvalidType
	}
	c, expired, err = s.CheckAccess(ctx, studentID, contentID, t)
	if err != nil || !expired {
		return c, expired, err
	}
	if err := s.repo.Delete(ctx, c.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}
	s.log.Info("expired premium content removed",
		zap.Int64("id", c.ID),
		zap.Int64("student_id", studentID),
	)
	return c, true, nil
}

func (s *Service) find(ctx context.Context, studentID, contentID int64, t premium.Type) (*premium.Content, error) {
	c, err := s.repo.Find(ctx, studentID, contentID, t)
	return c, mapNotFound(err)
}

func (s *Service) Get(ctx context.Context, id int64) (*premium.Content, error) {
	c, err := s.repo.Get(ctx, id)
	return c, mapNotFound(err)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]premium.Content, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]premium.Content, int, error) {
	return s.repo.ListByStudent(ctx, studentID, limit, offset)
}

func (s *Service) Update(ctx context.Context, id int64, upd premium.Update) (*premium.Content, error) {
	c, err := s.repo.Update(ctx, id, upd)
	return c, mapNotFound(err)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return mapNotFound(s.repo.Delete(ctx, id))
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrContentNotFound
	}
	return err
}
