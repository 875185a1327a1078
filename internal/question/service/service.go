package service

import (
	"context"

	"edumarket/internal/question"
	"edumarket/internal/question/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrQuestionNotFound = errors.New("السؤال غير موجود")
	ErrPackageNotFound  = errors.New("حزمة الاختبار غير موجودة")
	ErrInvalidAnswer    = errors.New("الإجابة الصحيحة يجب أن تكون أحد الخيارات A أو B أو C أو D أو E")
)

type Repository interface {
	Create(ctx context.Context, q *question.Question) error
	ListByPackage(ctx context.Context, packageID int64) ([]question.Question, error)
	Update(ctx context.Context, q *question.Question) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log.Named("question")}
}

func (s *Service) Create(ctx context.Context, q *question.Question) error {
	if err := prepare(q); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, q); err != nil {
		if errors.Is(err, repository.ErrPackageNotFound) {
			return ErrPackageNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ListByPackage(ctx context.Context, packageID int64) ([]question.Question, error) {
	return s.repo.ListByPackage(ctx, packageID)
}

func (s *Service) Update(ctx context.Context, q *question.Question) error {
	if err := prepare(q); err != nil {
		return err
	}
	return mapNotFound(s.repo.Update(ctx, q))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return mapNotFound(s.repo.Delete(ctx, id))
}

func prepare(q *question.Question) error {
	if q.RightAnswer == "" {
		q.RightAnswer = "A"
	}
	if !question.ValidAnswer(q.RightAnswer) {
		return ErrInvalidAnswer
	}
	if q.Explanation == nil || *q.Explanation == "" {
		def := question.DefaultExplanation
		q.Explanation = &def
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrQuestionNotFound
	}
	return err
}
