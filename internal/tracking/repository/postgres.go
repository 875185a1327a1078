package repository

import (
	"context"

	"edumarket/internal/tracking"
	"edumarket/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var ErrStudentNotFound = errors.New("student not found")

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const trackingColumns = `id, student_id, class, subject_name, number_of_notes, number_of_exams`

// Increment creates the tracking row with the counter at one, or bumps the
// existing row.
func (r *PostgresRepository) Increment(ctx context.Context, t *tracking.SubjectTracking, kind tracking.Kind) (bool, error) {
	notes, exams := 0, 0
	if kind == tracking.KindExam {
		exams = 1
	} else {
		notes = 1
	}

	row := struct {
		tracking.SubjectTracking
		Inserted bool `db:"inserted"`
	}{}
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO student_subject_tracking (student_id, class, subject_name, number_of_notes, number_of_exams)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (student_id, subject_name, class) DO UPDATE
            SET number_of_notes = student_subject_tracking.number_of_notes + EXCLUDED.number_of_notes,
                number_of_exams = student_subject_tracking.number_of_exams + EXCLUDED.number_of_exams
        RETURNING `+trackingColumns+`, (xmax = 0) AS inserted`,
		t.StudentID, t.Class, t.SubjectName, notes, exams,
	).StructScan(&row)
	if db.IsForeignKeyViolation(err) {
		return false, ErrStudentNotFound
	}
	if err != nil {
		return false, errors.Wrap(err, "upsert subject tracking")
	}
	*t = row.SubjectTracking
	return row.Inserted, nil
}

func (r *PostgresRepository) ListByStudentClass(ctx context.Context, studentID int64, class string) ([]tracking.SubjectTracking, error) {
	out := []tracking.SubjectTracking{}
	err := r.db.SelectContext(ctx, &out, `
        SELECT `+trackingColumns+`
        FROM student_subject_tracking
        WHERE student_id = $1 AND class = $2
        ORDER BY subject_name`, studentID, class)
	return out, errors.Wrap(err, "list subject tracking")
}
