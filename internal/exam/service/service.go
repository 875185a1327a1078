package service

import (
	"context"

	"edumarket/internal/exam"
	"edumarket/internal/exam/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrStudentNotFound = errors.New("لم يتم العثور على الطالب")
	ErrInvalidTime     = errors.New("صيغة الوقت يجب أن تكون HH:MM:SS")
	ErrInvalidResult   = errors.New("النتيجة يجب أن تكون بين 0 و 100")
)

type Repository interface {
	Create(ctx context.Context, e *exam.DoneExam) error
	ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]exam.DoneExam, int, error)
	SolvedExamIDs(ctx context.Context, studentID int64, subject string) ([]string, error)
}

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log.Named("exam")}
}

func (s *Service) Record(ctx context.Context, e *exam.DoneExam) error {
	if e.TimeTaken == "" {
		e.TimeTaken = "00:00:00"
	}
	if _, err := exam.ParseDuration(e.TimeTaken); err != nil {
		return ErrInvalidTime
	}
	if e.Result < 0 || e.Result > 100 {
		return ErrInvalidResult
	}
	if err := s.repo.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	s.log.Info("exam attempt recorded",
		zap.Int64("student_id", e.StudentID),
		zap.String("exam_id", e.ExamID),
		zap.Float64("result", e.Result),
	)
	return nil
}

func (s *Service) ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]exam.DoneExam, int, error) {
	return s.repo.ListByStudent(ctx, studentID, limit, offset)
}

func (s *Service) SolvedExamIDs(ctx context.Context, studentID int64, subject string) ([]string, error) {
	return s.repo.SolvedExamIDs(ctx, studentID, subject)
}
