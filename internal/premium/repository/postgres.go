package repository

import (
	"context"
	"database/sql"

	"edumarket/internal/premium"
	"edumarket/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	ErrNotFound            = errors.New("premium content not found")
	ErrStudentNotFound     = errors.New("student not found")
	ErrTeacherNotFound     = errors.New("teacher not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicate           = errors.New("content already purchased")
	ErrInvalidReference    = errors.New("purchase references a missing row")
)

// TxRepository holds the purchase steps that must share one transaction.
type TxRepository interface {
	LockStudent(ctx context.Context, id int64) (*premium.Student, error)
	Debit(ctx context.Context, id, amount int64) (int64, error)
	Create(ctx context.Context, c *premium.Content) error
	CreditTeacher(ctx context.Context, id, amount int64) error
}

const contentColumns = `id, student_id, student_name, class, type, subject_name, content_id, content_name,
        publisher_id, publisher_name, purchase_date, price, date_of_expiry, is_expired`

// PostgresRepository serves reads and single-statement writes outside of a
// purchase transaction.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// InTx runs fn against a transaction-bound repository. Any error from fn rolls
// back every write fn made.
func (r *PostgresRepository) InTx(ctx context.Context, fn func(tx TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&postgresTx{tx: tx})
	})
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*premium.Content, error) {
	var c premium.Content
	err := r.db.GetContext(ctx, &c, `SELECT `+contentColumns+` FROM student_premium_content WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get premium content")
	}
	return &c, nil
}

func (r *PostgresRepository) Find(ctx context.Context, studentID, contentID int64, t premium.Type) (*premium.Content, error) {
	var c premium.Content
	err := r.db.GetContext(ctx, &c, `
        SELECT `+contentColumns+`
        FROM student_premium_content
        WHERE student_id = $1 AND content_id = $2 AND type = $3`, studentID, contentID, t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find premium content")
	}
	return &c, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]premium.Content, int, error) {
	return r.list(ctx, `TRUE`, nil, limit, offset)
}

func (r *PostgresRepository) ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]premium.Content, int, error) {
	return r.list(ctx, `student_id = ?`, []interface{}{studentID}, limit, offset)
}

func (r *PostgresRepository) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]premium.Content, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM student_premium_content WHERE `+where), args...); err != nil {
		return nil, 0, errors.Wrap(err, "count premium content")
	}

	out := []premium.Content{}
	query := r.db.Rebind(`SELECT ` + contentColumns + `
        FROM student_premium_content
        WHERE ` + where + `
        ORDER BY purchase_date DESC, id DESC
        LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &out, query, append(args, limit, offset)...); err != nil {
		return nil, 0, errors.Wrap(err, "list premium content")
	}
	return out, total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, upd premium.Update) (*premium.Content, error) {
	var expiry *string
	if upd.DateOfExpiry != nil {
		s := upd.DateOfExpiry.Format(premium.DateLayout)
		expiry = &s
	}

	var c premium.Content
	err := r.db.GetContext(ctx, &c, `
        UPDATE student_premium_content SET
            class          = COALESCE($2, class),
            subject_name   = COALESCE($3, subject_name),
            content_name   = COALESCE($4, content_name),
            publisher_name = COALESCE($5, publisher_name),
            date_of_expiry = COALESCE($6::date, date_of_expiry)
        WHERE id = $1
        RETURNING `+contentColumns,
		id, upd.Class, upd.SubjectName, upd.ContentName, upd.PublisherName, expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "update premium content")
	}
	return &c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM student_premium_content WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete premium content")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// postgresTx binds the purchase steps to one transaction.
type postgresTx struct {
	tx *sqlx.Tx
}

func (t *postgresTx) LockStudent(ctx context.Context, id int64) (*premium.Student, error) {
	var s premium.Student
	err := t.tx.GetContext(ctx, &s, `
        SELECT user_id, full_name, balance FROM student_profiles
        WHERE user_id = $1
        FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "lock student")
	}
	return &s, nil
}

func (t *postgresTx) Debit(ctx context.Context, id, amount int64) (int64, error) {
	var balance int64
	err := t.tx.GetContext(ctx, &balance, `
        UPDATE student_profiles SET balance = balance - $1
        WHERE user_id = $2 AND balance >= $1
        RETURNING balance`, amount, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInsufficientBalance
	}
	return balance, errors.Wrap(err, "debit student")
}

func (t *postgresTx) Create(ctx context.Context, c *premium.Content) error {
	err := t.tx.QueryRowxContext(ctx, `
        INSERT INTO student_premium_content
            (student_id, student_name, class, type, subject_name, content_id, content_name,
             publisher_id, publisher_name, price, date_of_expiry)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, purchase_date, is_expired`,
		c.StudentID, c.StudentName, c.Class, c.Type, c.SubjectName, c.ContentID, c.ContentName,
		c.PublisherID, c.PublisherName, c.Price, c.DateOfExpiry.Format(premium.DateLayout),
	).Scan(&c.ID, &c.PurchaseDate, &c.IsExpired)
	switch {
	case db.IsUniqueViolation(err):
		return ErrDuplicate
	case db.IsForeignKeyViolation(err):
		return ErrInvalidReference
	}
	return errors.Wrap(err, "insert premium content")
}

// CreditTeacher adds amount to the publisher's net earnings inside a savepoint,
// so a failure leaves the surrounding purchase intact.
func (t *postgresTx) CreditTeacher(ctx context.Context, id, amount int64) error {
	return db.Savepoint(ctx, t.tx, "teacher_commission", func() error {
		_, err := db.Counter{Table: "teacher_profiles", IDColumn: "user_id", Column: "total_net"}.
			Add(ctx, t.tx, id, int(amount))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTeacherNotFound
		}
		return errors.Wrap(err, "credit teacher")
	})
}
