package service

import (
	"context"

	"edumarket/internal/metrics"
	"edumarket/internal/testpackage"
	"edumarket/internal/testpackage/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrPackageNotFound = errors.New("حزمة الاختبار غير موجودة")
	ErrNegativePrice   = errors.New("يجب أن يكون السعر رقم موجب")
)

type Repository interface {
	Create(ctx context.Context, p *testpackage.Package) error
	Get(ctx context.Context, id int64) (*testpackage.Package, error)
	ListBySubject(ctx context.Context, subject string, f testpackage.Filter, limit, offset int) ([]testpackage.Package, int, error)
	ListByPublisher(ctx context.Context, publisherID int64, limit, offset int) ([]testpackage.Package, int, error)
	Update(ctx context.Context, id int64, upd testpackage.Update) (*testpackage.Package, error)
	Delete(ctx context.Context, id int64) (string, error)
	AddCounter(ctx context.Context, id int64, counter testpackage.Counter, delta int) (int, error)
}

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log.Named("testpackage")}
}

func (s *Service) Create(ctx context.Context, p *testpackage.Package) error {
	if p.Price < 0 {
		return ErrNegativePrice
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.log.Info("test package created", zap.Int64("package_id", p.ID), zap.Int64("publisher_id", p.PublisherID))
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*testpackage.Package, error) {
	p, err := s.repo.Get(ctx, id)
	return p, mapNotFound(err)
}

func (s *Service) ListBySubject(ctx context.Context, subject string, f testpackage.Filter, limit, offset int) ([]testpackage.Package, int, error) {
	return s.repo.ListBySubject(ctx, subject, f, limit, offset)
}

func (s *Service) ListByPublisher(ctx context.Context, publisherID int64, limit, offset int) ([]testpackage.Package, int, error) {
	return s.repo.ListByPublisher(ctx, publisherID, limit, offset)
}

func (s *Service) Update(ctx context.Context, id int64, upd testpackage.Update) (*testpackage.Package, error) {
	if upd.Price != nil && *upd.Price < 0 {
		return nil, ErrNegativePrice
	}
	p, err := s.repo.Update(ctx, id, upd)
	return p, mapNotFound(err)
}

func (s *Service) Delete(ctx context.Context, id int64) (string, error) {
	name, err := s.repo.Delete(ctx, id)
	if err != nil {
		return "", mapNotFound(err)
	}
	s.log.Info("test package deleted", zap.Int64("package_id", id))
	return name, nil
}

func (s *Service) Increment(ctx context.Context, id int64, counter testpackage.Counter) (int, error) {
	v, err := s.repo.AddCounter(ctx, id, counter, 1)
	if err != nil {
		return 0, mapNotFound(err)
	}
	metrics.ContentCounterUpdates.WithLabelValues("test_package", string(counter)).Inc()
	return v, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPackageNotFound
	}
	return err
}
