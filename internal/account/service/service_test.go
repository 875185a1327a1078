package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"edumarket/internal/account"
	"edumarket/internal/account/repository"
	"edumarket/pkg/hash"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() (*Service, *repository.MemoryRepository) {
	hash.Cost = bcrypt.MinCost
	repo := repository.NewMemoryRepository()
	return NewService(repo, zap.NewNop()), repo
}

func TestRegisterStudentHashesPassword(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, account.Registration{
		Username: "sami",
		Email:    "sami@example.com",
		Password: "secret1",
		FullName: "Sami",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !hash.CheckPassword(u.Password, "secret1") {
		t.Fatal("stored password is not a bcrypt hash of the input")
	}

	p, err := repo.GetStudent(ctx, u.ID)
	if err != nil {
		t.Fatalf("student profile missing: %v", err)
	}
	if p.School != "-" || p.Class != "12" || p.Gender != "M" {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestRegisterTeacherBuildsBio(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, account.Registration{
		Username:         "huda",
		Email:            "huda@example.com",
		Password:         "secret1",
		IsTeacher:        true,
		FullName:         "Huda",
		Gender:           "F",
		StudyingSubjects: "physics",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	p, _ := repo.GetTeacher(ctx, u.ID)
	if p.Bio != "آنسة متخصصة في تدريس مادة فيزياء" {
		t.Fatalf("unexpected bio %q", p.Bio)
	}
}

func TestRegisterRejectsUnknownSubject(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), account.Registration{
		Username: "x1x", Email: "x@example.com", Password: "secret1",
		IsTeacher: true, StudyingSubjects: "astrology",
	})
	if !errors.Is(err, account.ErrUnknownSubject) {
		t.Fatalf("expected ErrUnknownSubject, got %v", err)
	}
}

func TestRegisterReportsEveryDuplicateField(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	reg := account.Registration{Username: "sami", Email: "sami@example.com", Password: "secret1"}
	if _, err := svc.Register(ctx, reg); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, reg)
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Fields["email"] == "" || dup.Fields["username"] == "" {
		t.Fatalf("expected both fields reported, got %v", dup.Fields)
	}
}

func TestCheckAndDebit(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.PutStudent(account.StudentProfile{UserID: 1, FullName: "Ali", Balance: 100})

	res, err := svc.CheckAndDebit(ctx, 1, 150)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if res.Debited || res.Balance != 100 {
		t.Fatalf("debit beyond balance must not change it: %+v", res)
	}

	res, err = svc.CheckAndDebit(ctx, 1, 60)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if !res.Debited || res.PreviousBalance != 100 || res.Balance != 40 {
		t.Fatalf("unexpected debit result: %+v", res)
	}

	if _, err := svc.CheckAndDebit(ctx, 1, -1); !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("expected ErrNegativePrice, got %v", err)
	}
	if _, err := svc.CheckAndDebit(ctx, 99, 1); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.PutStudent(account.StudentProfile{UserID: 1, Balance: 50})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		debited int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.CheckAndDebit(ctx, 1, 10)
			if err != nil {
				t.Errorf("debit: %v", err)
				return
			}
			if res.Debited {
				mu.Lock()
				debited++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	p, _ := repo.GetStudent(ctx, 1)
	if debited != 5 || p.Balance != 0 {
		t.Fatalf("got %d debits and balance %d, want 5 and 0", debited, p.Balance)
	}
}

func TestCreditRejectsNonPositive(t *testing.T) {
	svc, repo := newTestService()
	repo.PutStudent(account.StudentProfile{UserID: 1})

	if _, err := svc.Credit(context.Background(), 1, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	balance, err := svc.Credit(context.Background(), 1, 25)
	if err != nil || balance != 25 {
		t.Fatalf("credit: balance=%d err=%v", balance, err)
	}
}

func TestTeacherCounterAllowsNegative(t *testing.T) {
	svc, repo := newTestService()
	repo.PutTeacher(account.TeacherProfile{UserID: 3})

	v, err := svc.AddTeacherCounter(context.Background(), 3, account.TeacherNotes, -1)
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	if v != -1 {
		t.Fatalf("got %d want -1", v)
	}
	if _, err := svc.AddTeacherCounter(context.Background(), 4, account.TeacherNotes, 1); !errors.Is(err, ErrTeacherNotFound) {
		t.Fatalf("expected ErrTeacherNotFound, got %v", err)
	}
}

func TestUpdateStudentValidatesClass(t *testing.T) {
	svc, repo := newTestService()
	repo.PutStudent(account.StudentProfile{UserID: 1, Class: "12"})

	bad := "10"
	if _, err := svc.UpdateStudent(context.Background(), 1, account.StudentUpdate{Class: &bad}); !errors.Is(err, ErrInvalidClass) {
		t.Fatalf("expected ErrInvalidClass, got %v", err)
	}
	city := "Homs"
	p, err := svc.UpdateStudent(context.Background(), 1, account.StudentUpdate{City: &city})
	if err != nil || p.City != "Homs" || p.Class != "12" {
		t.Fatalf("partial update failed: %+v %v", p, err)
	}
}
