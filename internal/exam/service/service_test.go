package service

import (
	"context"
	"errors"
	"testing"

	"edumarket/internal/exam"
	"edumarket/internal/exam/repository"

	"go.uber.org/zap"
)

type stubRepo struct {
	Repository
	students map[int64]bool
	saved    []*exam.DoneExam
}

func (s *stubRepo) Create(_ context.Context, e *exam.DoneExam) error {
	if !s.students[e.StudentID] {
		return repository.ErrStudentNotFound
	}
	e.ID = int64(len(s.saved) + 1)
	s.saved = append(s.saved, e)
	return nil
}

func TestRecordDefaultsTime(t *testing.T) {
	repo := &stubRepo{students: map[int64]bool{1: true}}
	svc := NewService(repo, zap.NewNop())

	e := &exam.DoneExam{StudentID: 1, ExamID: "7", Result: 85.5}
	if err := svc.Record(context.Background(), e); err != nil {
		t.Fatalf("record: %v", err)
	}
	if e.TimeTaken != "00:00:00" || len(repo.saved) != 1 {
		t.Fatalf("unexpected state: time=%q saved=%d", e.TimeTaken, len(repo.saved))
	}
}

func TestRecordValidation(t *testing.T) {
	repo := &stubRepo{students: map[int64]bool{1: true}}
	svc := NewService(repo, zap.NewNop())
	ctx := context.Background()

	cases := []struct {
		name string
		in   exam.DoneExam
		want error
	}{
		{"bad time", exam.DoneExam{StudentID: 1, TimeTaken: "1h20m"}, ErrInvalidTime},
		{"result too high", exam.DoneExam{StudentID: 1, Result: 101}, ErrInvalidResult},
		{"unknown student", exam.DoneExam{StudentID: 2, TimeTaken: "00:10:00"}, ErrStudentNotFound},
	}
	for _, tc := range cases {
		e := tc.in
		if err := svc.Record(ctx, &e); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestParseDuration(t *testing.T) {
	d, err := exam.ParseDuration("01:02:03")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Seconds() != 3723 {
		t.Fatalf("got %v", d)
	}
}
