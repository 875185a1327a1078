package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"edumarket/internal/note"
	"edumarket/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("note not found")

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const previewColumns = `id, title, subject_name, class, publisher_id, publisher_name, date_uploaded,
        price, number_of_reads, number_of_purchases`

func (r *PostgresRepository) Create(ctx context.Context, n *note.Note) error {
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO notes (title, subject_name, class, publisher_id, publisher_name, content, price)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, date_uploaded`,
		n.Title, n.SubjectName, n.Class, n.PublisherID, n.PublisherName, n.Content, n.Price,
	).Scan(&n.ID, &n.DateUploaded)
	return errors.Wrap(err, "insert note")
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*note.Note, error) {
	n := &note.Note{}
	err := r.db.GetContext(ctx, n, `
        SELECT id, title, subject_name, class, publisher_id, publisher_name, date_uploaded, content,
               price, number_of_reads, number_of_purchases, number_of_comments
        FROM notes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, errors.Wrap(err, "get note")
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]note.Preview, int, error) {
	return r.list(ctx, nil, nil, limit, offset)
}

func (r *PostgresRepository) ListBySubject(ctx context.Context, subject string, f note.Filter, limit, offset int) ([]note.Preview, int, error) {
	conds := []string{"subject_name = ?"}
	args := []interface{}{subject}
	if f.Class != "" {
		conds = append(conds, "class = ?")
		args = append(args, f.Class)
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.Title != "" {
		conds = append(conds, "title ILIKE ?")
		args = append(args, "%"+f.Title+"%")
	}
	if f.PublisherName != "" {
		conds = append(conds, "publisher_name ILIKE ?")
		args = append(args, "%"+f.PublisherName+"%")
	}
	return r.list(ctx, conds, args, limit, offset)
}

func (r *PostgresRepository) ListByPublisher(ctx context.Context, publisherID int64, limit, offset int) ([]note.Preview, int, error) {
	return r.list(ctx, []string{"publisher_id = ?"}, []interface{}{publisherID}, limit, offset)
}

func (r *PostgresRepository) list(ctx context.Context, conds []string, args []interface{}, limit, offset int) ([]note.Preview, int, error) {
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM notes`+where), args...); err != nil {
		return nil, 0, errors.Wrap(err, "count notes")
	}

	out := []note.Preview{}
	query := r.db.Rebind(`SELECT ` + previewColumns + ` FROM notes` + where +
		` ORDER BY date_uploaded DESC, id DESC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &out, query, append(args, limit, offset)...); err != nil {
		return nil, 0, errors.Wrap(err, "list notes")
	}
	return out, total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, upd note.Update) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE notes SET
            title        = COALESCE($2, title),
            subject_name = COALESCE($3, subject_name),
            class        = COALESCE($4, class),
            content      = COALESCE($5, content),
            price        = COALESCE($6, price)
        WHERE id = $1`,
		id, upd.Title, upd.SubjectName, upd.Class, upd.Content, upd.Price)
	if err != nil {
		return errors.Wrap(err, "update note")
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete note")
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) AddCounter(ctx context.Context, id int64, counter note.Counter, delta int) (int, error) {
	switch counter {
	case note.Reads, note.Purchases:
	default:
		return 0, fmt.Errorf("unknown note counter %q", counter)
	}
	c := db.Counter{Table: "notes", IDColumn: "id", Column: string(counter)}
	v, err := c.Add(ctx, r.db, id, delta)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return v, errors.Wrap(err, "update note counter")
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
