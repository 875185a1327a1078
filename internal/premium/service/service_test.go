package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"edumarket/internal/premium"
	"edumarket/internal/premium/repository"

	"go.uber.org/zap"
)

var today = time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository(func() time.Time { return today })
	repo.PutStudent(1, "Lina", 1000)
	repo.PutTeacher(9, 0)
	svc := NewService(repo, 70, zap.NewNop())
	svc.now = func() time.Time { return today }
	return svc, repo
}

func purchase(price int64, contentID int64) premium.Purchase {
	return premium.Purchase{
		StudentID:     1,
		Price:         price,
		Class:         "12",
		Type:          premium.TypeNote,
		SubjectName:   "math",
		ContentID:     contentID,
		ContentName:   "Limits",
		PublisherID:   9,
		PublisherName: "Omar",
		DateOfExpiry:  today.AddDate(0, 1, 0),
	}
}

func TestPurchaseDebitsAndCreditsCommission(t *testing.T) {
	svc, repo := newTestService(t)

	receipt, err := svc.Purchase(context.Background(), purchase(155, 1))
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if receipt.PreviousBalance != 1000 || receipt.NewBalance != 845 || receipt.AmountDeducted != 155 {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if receipt.Commission == nil || *receipt.Commission != 108 {
		t.Fatalf("expected commission 108, got %v", receipt.Commission)
	}
	if got := repo.Balance(1); got != 845 {
		t.Fatalf("student balance %d want 845", got)
	}
	if got := repo.TotalNet(9); got != 108 {
		t.Fatalf("teacher total net %d want 108", got)
	}
	if receipt.Content.StudentName != "Lina" || receipt.Content.ID == 0 {
		t.Fatalf("unexpected record: %+v", receipt.Content)
	}
}

func TestPurchaseInsufficientBalance(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Purchase(context.Background(), purchase(1001, 1))
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if insufficient.Balance != 1000 || insufficient.Price != 1001 || insufficient.StudentName != "Lina" {
		t.Fatalf("unexpected error payload: %+v", insufficient)
	}
	if got := repo.Balance(1); got != 1000 {
		t.Fatalf("balance changed to %d", got)
	}
}

func TestDuplicatePurchaseRestoresBalance(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Purchase(ctx, purchase(200, 1)); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	before := repo.Balance(1)
	netBefore := repo.TotalNet(9)

	_, err := svc.Purchase(ctx, purchase(200, 1))
	var rollback *RollbackError
	if !errors.As(err, &rollback) {
		t.Fatalf("expected RollbackError, got %v", err)
	}
	if got := repo.Balance(1); got != before {
		t.Fatalf("balance %d want %d after rollback", got, before)
	}
	if got := repo.TotalNet(9); got != netBefore {
		t.Fatalf("teacher credited on failed purchase: %d", got)
	}
}

func TestPurchaseUnknownPublisherRollsBack(t *testing.T) {
	svc, repo := newTestService(t)

	p := purchase(100, 1)
	p.PublisherID = 404
	_, err := svc.Purchase(context.Background(), p)
	var rollback *RollbackError
	if !errors.As(err, &rollback) {
		t.Fatalf("expected RollbackError, got %v", err)
	}
	if got := repo.Balance(1); got != 1000 {
		t.Fatalf("balance %d want 1000", got)
	}
}

func TestCommissionFailureKeepsPurchase(t *testing.T) {
	svc, repo := newTestService(t)
	repo.CreditErr = errors.New("connection reset")

	receipt, err := svc.Purchase(context.Background(), purchase(100, 1))
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if receipt.Commission != nil {
		t.Fatalf("expected nil commission, got %d", *receipt.Commission)
	}
	if got := repo.Balance(1); got != 900 {
		t.Fatalf("balance %d want 900", got)
	}
}

func TestPurchaseUnknownStudent(t *testing.T) {
	svc, _ := newTestService(t)
	p := purchase(10, 1)
	p.StudentID = 77
	if _, err := svc.Purchase(context.Background(), p); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestPurchaseRejectsNegativePrice(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Purchase(context.Background(), purchase(-1, 1)); !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("expected ErrNegativePrice, got %v", err)
	}
}

func TestConcurrentPurchasesNeverOverdraw(t *testing.T) {
	svc, repo := newTestService(t)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(contentID int64) {
			defer wg.Done()
			if _, err := svc.Purchase(context.Background(), purchase(300, contentID)); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(int64(i + 1))
	}
	wg.Wait()

	if ok != 3 {
		t.Fatalf("expected 3 successful purchases, got %d", ok)
	}
	if got := repo.Balance(1); got != 100 {
		t.Fatalf("balance %d want 100", got)
	}
}

func TestCommissionRoundsDown(t *testing.T) {
	svc := NewService(nil, 70, zap.NewNop())
	cases := map[int64]int64{0: 0, 1: 0, 10: 7, 99: 69, 155: 108}
	for price, want := range cases {
		if got := svc.Commission(price); got != want {
			t.Fatalf("commission(%d) = %d want %d", price, got, want)
		}
	}
}

func TestCheckAccessExpiry(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	repo.Insert(premium.Content{StudentID: 1, ContentID: 5, Type: premium.TypeExam, DateOfExpiry: premium.Day(today.AddDate(0, 0, -1))})
	repo.Insert(premium.Content{StudentID: 1, ContentID: 6, Type: premium.TypeExam, DateOfExpiry: premium.Day(today.AddDate(0, 0, 1))})
	repo.Insert(premium.Content{StudentID: 1, ContentID: 7, Type: premium.TypeExam, DateOfExpiry: premium.Day(today)})

	if _, expired, err := svc.CheckAccess(ctx, 1, 5, premium.TypeExam); err != nil || !expired {
		t.Fatalf("past expiry: expired=%v err=%v", expired, err)
	}
	if _, expired, err := svc.CheckAccess(ctx, 1, 6, premium.TypeExam); err != nil || expired {
		t.Fatalf("future expiry: expired=%v err=%v", expired, err)
	}
	if _, expired, err := svc.CheckAccess(ctx, 1, 7, premium.TypeExam); err != nil || expired {
		t.Fatalf("expiry today must still grant access: expired=%v err=%v", expired, err)
	}
	if _, _, err := svc.CheckAccess(ctx, 1, 5, premium.TypeNote); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("type must be part of the lookup, got %v", err)
	}
}

func TestCheckPurchaseDeletesExpired(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	id := repo.Insert(premium.Content{StudentID: 1, ContentID: 5, Type: premium.TypeNote, DateOfExpiry: premium.Day(today.AddDate(0, 0, -3))})

	c, expired, err := svc.CheckPurchase(ctx, 1, 5, premium.TypeNote)
	if err != nil || !expired || c.ID != id {
		t.Fatalf("check purchase: c=%v expired=%v err=%v", c, expired, err)
	}
	if _, err := svc.Get(ctx, id); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expired record should be deleted, got %v", err)
	}
	if _, _, err := svc.CheckPurchase(ctx, 1, 5, "video"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}
