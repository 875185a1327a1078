package service

import (
	"context"

	"edumarket/internal/metrics"
	"edumarket/internal/note"
	"edumarket/internal/note/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrNoteNotFound  = errors.New("الملاحظة غير موجودة")
	ErrNegativePrice = errors.New("يجب أن يكون السعر رقم موجب")
)

type Repository interface {
	Create(ctx context.Context, n *note.Note) error
	Get(ctx context.Context, id int64) (*note.Note, error)
	List(ctx context.Context, limit, offset int) ([]note.Preview, int, error)
	ListBySubject(ctx context.Context, subject string, f note.Filter, limit, offset int) ([]note.Preview, int, error)
	ListByPublisher(ctx context.Context, publisherID int64, limit, offset int) ([]note.Preview, int, error)
	Update(ctx context.Context, id int64, upd note.Update) error
	Delete(ctx context.Context, id int64) error
	AddCounter(ctx context.Context, id int64, counter note.Counter, delta int) (int, error)
}

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log.Named("note")}
}

func (s *Service) Create(ctx context.Context, n *note.Note) error {
	if n.Price < 0 {
		return ErrNegativePrice
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.log.Info("note created", zap.Int64("note_id", n.ID), zap.Int64("publisher_id", n.PublisherID))
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*note.Note, error) {
	n, err := s.repo.Get(ctx, id)
	return n, mapNotFound(err)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]note.Preview, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListBySubject(ctx context.Context, subject string, f note.Filter, limit, offset int) ([]note.Preview, int, error) {
	return s.repo.ListBySubject(ctx, subject, f, limit, offset)
}

func (s *Service) ListByPublisher(ctx context.Context, publisherID int64, limit, offset int) ([]note.Preview, int, error) {
	return s.repo.ListByPublisher(ctx, publisherID, limit, offset)
}

func (s *Service) Update(ctx context.Context, id int64, upd note.Update) error {
	if upd.Price != nil && *upd.Price < 0 {
		return ErrNegativePrice
	}
	return mapNotFound(s.repo.Update(ctx, id, upd))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapNotFound(err)
	}
	s.log.Info("note deleted", zap.Int64("note_id", id))
	return nil
}

// Increment adds one to a note counter and returns the new value.
func (s *Service) Increment(ctx context.Context, id int64, counter note.Counter) (int, error) {
	v, err := s.repo.AddCounter(ctx, id, counter, 1)
	if err != nil {
		return 0, mapNotFound(err)
	}
	metrics.ContentCounterUpdates.WithLabelValues("note", string(counter)).Inc()
	return v, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNoteNotFound
	}
	return err
}
