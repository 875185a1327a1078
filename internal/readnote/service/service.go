package service

import (
	"context"

	"edumarket/internal/metrics"
	"edumarket/internal/readnote"
	"edumarket/internal/readnote/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrReadNoteNotFound  = errors.New("لم يتم العثور على سجل القراءة")
	ErrReferenceNotFound = errors.New("الطالب أو النوطة غير موجودة")
)

type Repository interface {
	Upsert(ctx context.Context, rn *readnote.ReadNote) (bool, error)
	Increment(ctx context.Context, id int64) (*readnote.ReadNote, error)
	ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]readnote.ReadNote, int, error)
}

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log.Named("readnote")}
}

// Record creates the read entry on first read and increments it afterwards.
func (s *Service) Record(ctx context.Context, rn *readnote.ReadNote) (created bool, err error) {
	created, err = s.repo.Upsert(ctx, rn)
	if errors.Is(err, repository.ErrReferenceNotFound) {
		return false, ErrReferenceNotFound
	}
	if err != nil {
		return false, err
	}
	metrics.ContentCounterUpdates.WithLabelValues("read_note", "number_of_reads").Inc()
	return created, nil
}

func (s *Service) Increment(ctx context.Context, id int64) (*readnote.ReadNote, error) {
	rn, err := s.repo.Increment(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReadNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	metrics.ContentCounterUpdates.WithLabelValues("read_note", "number_of_reads").Inc()
	return rn, nil
}

func (s *Service) ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]readnote.ReadNote, int, error) {
	return s.repo.ListByStudent(ctx, studentID, limit, offset)
}
