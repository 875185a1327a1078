package repository

import (
	"context"
	"database/sql"

	"edumarket/internal/readnote"
	"edumarket/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("read note not found")
	ErrReferenceNotFound = errors.New("student or note not found")
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts the read record or bumps its counter when the student already
// read the note. inserted reports which branch ran.
func (r *PostgresRepository) Upsert(ctx context.Context, rn *readnote.ReadNote) (inserted bool, err error) {
	row := struct {
		readnote.ReadNote
		Inserted bool `db:"inserted"`
	}{}
	err = r.db.QueryRowxContext(ctx, `
        INSERT INTO student_read_notes (student_id, subject_name, note_name, note_id, publisher_id, publisher_name)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (student_id, note_id) DO UPDATE
            SET number_of_reads = student_read_notes.number_of_reads + 1,
                last_read_at = NOW()
        RETURNING id, student_id, subject_name, note_name, note_id, publisher_id, publisher_name,
                  number_of_reads, first_read_at, last_read_at, (xmax = 0) AS inserted`,
		rn.StudentID, rn.SubjectName, rn.NoteName, rn.NoteID, rn.PublisherID, rn.PublisherName,
	).StructScan(&row)
	if db.IsForeignKeyViolation(err) {
		return false, ErrReferenceNotFound
	}
	if err != nil {
		return false, errors.Wrap(err, "upsert read note")
	}
	*rn = row.ReadNote
	return row.Inserted, nil
}

func (r *PostgresRepository) Increment(ctx context.Context, id int64) (*readnote.ReadNote, error) {
	var rn readnote.ReadNote
	err := r.db.GetContext(ctx, &rn, `
        UPDATE student_read_notes
        SET number_of_reads = number_of_reads + 1, last_read_at = NOW()
        WHERE id = $1
        RETURNING id, student_id, subject_name, note_name, note_id, publisher_id, publisher_name,
                  number_of_reads, first_read_at, last_read_at`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "increment read note")
	}
	return &rn, nil
}

func (r *PostgresRepository) ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]readnote.ReadNote, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM student_read_notes WHERE student_id = $1`, studentID); err != nil {
		return nil, 0, errors.Wrap(err, "count read notes")
	}

	out := []readnote.ReadNote{}
	err := r.db.SelectContext(ctx, &out, `
        SELECT id, student_id, subject_name, note_name, note_id, publisher_id, publisher_name,
               number_of_reads, first_read_at, last_read_at
        FROM student_read_notes
        WHERE student_id = $1
        ORDER BY last_read_at DESC, id DESC
        LIMIT $2 OFFSET $3`, studentID, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list read notes")
	}
	return out, total, nil
}
