package service

import (
	"context"

	"edumarket/internal/metrics"
	"edumarket/internal/tracking"
	"edumarket/internal/tracking/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrInvalidKind     = errors.New(`خاصية الزيادة يجب أن تكون إما "note" أو "exam"`)
	ErrMissingFields   = errors.New("الطالب واسم المادة والفصل مطلوبة")
	ErrStudentNotFound = errors.New("لم يتم العثور على الطالب")
)

type Repository interface {
	Increment(ctx context.Context, t *tracking.SubjectTracking, kind tracking.Kind) (bool, error)
	ListByStudentClass(ctx context.Context, studentID int64, class string) ([]tracking.SubjectTracking, error)
}

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log.Named("tracking")}
}

// Track increments the note or exam counter of the student's subject row.
// An empty kind counts as a note.
func (s *Service) Track(ctx context.Context, t *tracking.SubjectTracking, kind tracking.Kind) (created bool, err error) {
	if kind == "" {
		kind = tracking.KindNote
	}
	if !kind.Valid() {
		return false, ErrInvalidKind
	}
	if t.StudentID <= 0 || t.SubjectName == "" || t.Class == "" {
		return false, ErrMissingFields
	}

	created, err = s.repo.Increment(ctx, t, kind)
	if errors.Is(err, repository.ErrStudentNotFound) {
		return false, ErrStudentNotFound
	}
	if err != nil {
		return false, err
	}
	metrics.ContentCounterUpdates.WithLabelValues("tracking", string(kind)).Inc()
	return created, nil
}

func (s *Service) ListByStudentClass(ctx context.Context, studentID int64, class string) ([]tracking.SubjectTracking, error) {
	return s.repo.ListByStudentClass(ctx, studentID, class)
}
