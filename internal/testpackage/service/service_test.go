package service

import (
	"context"
	"errors"
	"testing"

	"edumarket/internal/testpackage"
	"edumarket/internal/testpackage/repository"

	"go.uber.org/zap"
)

type stubRepo struct {
	Repository
	packages map[int64]*testpackage.Package
}

func newStubRepo() *stubRepo {
	return &stubRepo{packages: map[int64]*testpackage.Package{}}
}

func (s *stubRepo) Create(_ context.Context, p *testpackage.Package) error {
	p.ID = int64(len(s.packages) + 1)
	cp := *p
	s.packages[p.ID] = &cp
	return nil
}

func (s *stubRepo) Get(_ context.Context, id int64) (*testpackage.Package, error) {
	p, ok := s.packages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubRepo) AddCounter(_ context.Context, id int64, counter testpackage.Counter, delta int) (int, error) {
	p, ok := s.packages[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	switch counter {
	case testpackage.Applications:
		p.NumberOfApps += delta
		return p.NumberOfApps, nil
	default:
		p.NumberOfPurchases += delta
		return p.NumberOfPurchases, nil
	}
}

func (s *stubRepo) Delete(_ context.Context, id int64) (string, error) {
	p, ok := s.packages[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	delete(s.packages, id)
	return p.PackageName, nil
}

func TestIncrementApplications(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, zap.NewNop())
	ctx := context.Background()

	p := &testpackage.Package{PackageName: "Nervous system", Price: 200}
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	const n = 7
	for i := 0; i < n; i++ {
		if _, err := svc.Increment(ctx, p.ID, testpackage.Applications); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	got, _ := svc.Get(ctx, p.ID)
	if got.NumberOfApps != n || got.NumberOfPurchases != 0 {
		t.Fatalf("unexpected counters: apps=%d purchases=%d", got.NumberOfApps, got.NumberOfPurchases)
	}
}

func TestIncrementUnknownPackage(t *testing.T) {
	svc := NewService(newStubRepo(), zap.NewNop())
	if _, err := svc.Increment(context.Background(), 9, testpackage.Purchases); !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound, got %v", err)
	}
}

func TestDeleteReturnsName(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, zap.NewNop())
	p := &testpackage.Package{PackageName: "Hormones"}
	_ = svc.Create(context.Background(), p)

	name, err := svc.Delete(context.Background(), p.ID)
	if err != nil || name != "Hormones" {
		t.Fatalf("delete: name=%q err=%v", name, err)
	}
	if _, err := svc.Delete(context.Background(), p.ID); !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("second delete: expected ErrPackageNotFound, got %v", err)
	}
}

func TestNegativePriceRejected(t *testing.T) {
	svc := NewService(newStubRepo(), zap.NewNop())
	if err := svc.Create(context.Background(), &testpackage.Package{Price: -5}); !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("expected ErrNegativePrice, got %v", err)
	}
	price := int64(-1)
	if _, err := svc.Update(context.Background(), 1, testpackage.Update{Price: &price}); !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("expected ErrNegativePrice on update, got %v", err)
	}
}
