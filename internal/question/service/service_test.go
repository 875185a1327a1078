package service

import (
	"context"
	"errors"
	"testing"

	"edumarket/internal/question"
	"edumarket/internal/question/repository"

	"go.uber.org/zap"
)

type stubRepo struct {
	created []*question.Question
	exists  map[int64]bool
}

func (s *stubRepo) Create(_ context.Context, q *question.Question) error {
	if !s.exists[q.PackageID] {
		return repository.ErrPackageNotFound
	}
	q.ID = int64(len(s.created) + 1)
	s.created = append(s.created, q)
	return nil
}

func (s *stubRepo) ListByPackage(context.Context, int64) ([]question.Question, error) {
	return nil, nil
}

func (s *stubRepo) Update(_ context.Context, q *question.Question) error {
	if q.ID > int64(len(s.created)) {
		return repository.ErrNotFound
	}
	return nil
}

func (s *stubRepo) Delete(context.Context, int64) error {
	return repository.ErrNotFound
}

func TestCreateFillsDefaults(t *testing.T) {
	repo := &stubRepo{exists: map[int64]bool{1: true}}
	svc := NewService(repo, zap.NewNop())

	q := &question.Question{PackageID: 1, TestContent: "2+2?"}
	if err := svc.Create(context.Background(), q); err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.RightAnswer != "A" {
		t.Fatalf("default answer: got %q", q.RightAnswer)
	}
	if q.Explanation == nil || *q.Explanation != question.DefaultExplanation {
		t.Fatalf("default explanation missing: %v", q.Explanation)
	}
}

func TestCreateValidation(t *testing.T) {
	repo := &stubRepo{exists: map[int64]bool{1: true}}
	svc := NewService(repo, zap.NewNop())

	err := svc.Create(context.Background(), &question.Question{PackageID: 1, RightAnswer: "F"})
	if !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}
	err = svc.Create(context.Background(), &question.Question{PackageID: 2, RightAnswer: "B"})
	if !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound, got %v", err)
	}
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	svc := NewService(&stubRepo{}, zap.NewNop())
	if err := svc.Update(context.Background(), &question.Question{ID: 5, RightAnswer: "C"}); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound on update, got %v", err)
	}
	if err := svc.Delete(context.Background(), 5); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound on delete, got %v", err)
	}
}
