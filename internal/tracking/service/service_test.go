package service

import (
	"context"
	"errors"
	"testing"

	"edumarket/internal/tracking"

	"go.uber.org/zap"
)

type key struct {
	student int64
	subject string
	class   string
}

type memRepo struct {
	rows map[key]*tracking.SubjectTracking
}

func (m *memRepo) Increment(_ context.Context, t *tracking.SubjectTracking, kind tracking.Kind) (bool, error) {
	k := key{t.StudentID, t.SubjectName, t.Class}
	row, ok := m.rows[k]
	if !ok {
		row = &tracking.SubjectTracking{ID: int64(len(m.rows) + 1), StudentID: t.StudentID, SubjectName: t.SubjectName, Class: t.Class}
		m.rows[k] = row
	}
	if kind == tracking.KindExam {
		row.NumberOfExams++
	} else {
		row.NumberOfNotes++
	}
	*t = *row
	return !ok, nil
}

func (m *memRepo) ListByStudentClass(context.Context, int64, string) ([]tracking.SubjectTracking, error) {
	return nil, nil
}

func TestTrackDefaultsToNote(t *testing.T) {
	svc := NewService(&memRepo{rows: map[key]*tracking.SubjectTracking{}}, zap.NewNop())
	ctx := context.Background()

	row := &tracking.SubjectTracking{StudentID: 1, SubjectName: "math", Class: "12"}
	created, err := svc.Track(ctx, row, "")
	if err != nil || !created {
		t.Fatalf("first track: created=%v err=%v", created, err)
	}

	row = &tracking.SubjectTracking{StudentID: 1, SubjectName: "math", Class: "12"}
	created, err = svc.Track(ctx, row, tracking.KindExam)
	if err != nil || created {
		t.Fatalf("second track: created=%v err=%v", created, err)
	}
	if row.NumberOfNotes != 1 || row.NumberOfExams != 1 {
		t.Fatalf("unexpected counters: %+v", row)
	}
}

func TestTrackValidation(t *testing.T) {
	svc := NewService(&memRepo{rows: map[key]*tracking.SubjectTracking{}}, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Track(ctx, &tracking.SubjectTracking{StudentID: 1, SubjectName: "math", Class: "12"}, "video"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if _, err := svc.Track(ctx, &tracking.SubjectTracking{StudentID: 1, Class: "12"}, tracking.KindNote); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}
