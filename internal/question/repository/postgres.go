package repository

import (
	"context"
	"database/sql"

	"edumarket/internal/question"
	"edumarket/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	ErrNotFound        = errors.New("question not found")
	ErrPackageNotFound = errors.New("test package not found")
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, q *question.Question) error {
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO questions (package_id, test_content, option_a, option_b, option_c, option_d, option_e, right_answer, explanation)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id`,
		q.PackageID, q.TestContent, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.OptionE, q.RightAnswer, q.Explanation,
	).Scan(&q.ID)
	if db.IsForeignKeyViolation(err) {
		return ErrPackageNotFound
	}
	return errors.Wrap(err, "insert question")
}

func (r *PostgresRepository) ListByPackage(ctx context.Context, packageID int64) ([]question.Question, error) {
	out := []question.Question{}
	err := r.db.SelectContext(ctx, &out, `
        SELECT id, package_id, test_content, option_a, option_b, option_c, option_d, option_e, right_answer, explanation
        FROM questions WHERE package_id = $1 ORDER BY id`, packageID)
	return out, errors.Wrap(err, "list questions")
}

func (r *PostgresRepository) Update(ctx context.Context, q *question.Question) error {
	res, err := r.db.NamedExecContext(ctx, `
        UPDATE questions SET
            test_content = :test_content,
            option_a = :option_a, option_b = :option_b, option_c = :option_c,
            option_d = :option_d, option_e = :option_e,
            right_answer = :right_answer, explanation = :explanation
        WHERE id = :id`, q)
	if err != nil {
		return errors.Wrap(err, "update question")
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete question")
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
