package repository

import (
	"context"

	"edumarket/internal/exam"
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

const doneExamColumns = `id, student_id, subject_name, exam_name, exam_id, publisher_id, publisher_name,
        date_of_application, result, price, to_char(time_taken, 'HH24:MI:SS') AS time_taken`

func (r *PostgresRepository) Create(ctx context.Context, e *exam.DoneExam) error {
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO done_exams (student_id, subject_name, exam_name, exam_id, publisher_id, publisher_name, result, price, time_taken)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::time)
        RETURNING id, date_of_application`,
		e.StudentID, e.SubjectName, e.ExamName, e.ExamID, e.PublisherID, e.PublisherName, e.Result, e.Price, e.TimeTaken,
	).Scan(&e.ID, &e.DateOfApplication)
	if db.IsForeignKeyViolation(err) {
		return ErrStudentNotFound
	}
	return errors.Wrap(err, "insert done exam")
}

func (r *PostgresRepository) ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]exam.DoneExam, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM done_exams WHERE student_id = $1`, studentID); err != nil {
		return nil, 0, errors.Wrap(err, "count done exams")
	}

	out := []exam.DoneExam{}
	err := r.db.SelectContext(ctx, &out, `
        SELECT `+doneExamColumns+`
        FROM done_exams WHERE student_id = $1
        ORDER BY date_of_application DESC, id DESC
        LIMIT $2 OFFSET $3`, studentID, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list done exams")
	}
	return out, total, nil
}

// SolvedExamIDs returns the distinct exam ids a student attempted in a subject.
func (r *PostgresRepository) SolvedExamIDs(ctx context.Context, studentID int64, subject string) ([]string, error) {
	out := []string{}
	err := r.db.SelectContext(ctx, &out, `
        SELECT DISTINCT exam_id FROM done_exams
        WHERE student_id = $1 AND subject_name = $2
        ORDER BY exam_id`, studentID, subject)
	return out, errors.Wrap(err, "list solved exams")
}
