package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"edumarket/internal/testpackage"
	"edumarket/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("test package not found")

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const packageColumns = `id, package_name, publisher_id, publisher_name, units, class, subject_name, price,
        date_added, number_of_apps, number_of_purchases, number_of_questions`

func (r *PostgresRepository) Create(ctx context.Context, p *testpackage.Package) error {
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO test_packages (package_name, publisher_id, publisher_name, units, class, subject_name, price, number_of_questions)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, date_added`,
		p.PackageName, p.PublisherID, p.PublisherName, p.Units, p.Class, p.SubjectName, p.Price, p.NumberOfQuestions,
	).Scan(&p.ID, &p.DateAdded)
	return errors.Wrap(err, "insert test package")
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*testpackage.Package, error) {
	p := &testpackage.Package{}
	err := r.db.GetContext(ctx, p, `SELECT `+packageColumns+` FROM test_packages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, errors.Wrap(err, "get test package")
}

func (r *PostgresRepository) ListBySubject(ctx context.Context, subject string, f testpackage.Filter, limit, offset int) ([]testpackage.Package, int, error) {
	conds := []string{"subject_name = ?"}
	args := []interface{}{subject}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.MaxQuestions != nil {
		conds = append(conds, "number_of_questions <= ?")
		args = append(args, *f.MaxQuestions)
	}
	if f.Name != "" {
		conds = append(conds, "package_name ILIKE ?")
		args = append(args, "%"+f.Name+"%")
	}
	if f.PublisherName != "" {
		conds = append(conds, "publisher_name ILIKE ?")
		args = append(args, "%"+f.PublisherName+"%")
	}
	if f.Unit != "" && f.Unit != testpackage.AllUnits {
		conds = append(conds, "units ILIKE ?")
		args = append(args, "%"+f.Unit+"%")
	}
	return r.list(ctx, conds, args, limit, offset)
}

func (r *PostgresRepository) ListByPublisher(ctx context.Context, publisherID int64, limit, offset int) ([]testpackage.Package, int, error) {
	return r.list(ctx, []string{"publisher_id = ?"}, []interface{}{publisherID}, limit, offset)
}

func (r *PostgresRepository) list(ctx context.Context, conds []string, args []interface{}, limit, offset int) ([]testpackage.Package, int, error) {
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM test_packages`+where), args...); err != nil {
		return nil, 0, errors.Wrap(err, "count test packages")
	}

	out := []testpackage.Package{}
	query := r.db.Rebind(`SELECT ` + packageColumns + ` FROM test_packages` + where + ` ORDER BY id LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &out, query, append(args, limit, offset)...); err != nil {
		return nil, 0, errors.Wrap(err, "list test packages")
	}
	return out, total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, upd testpackage.Update) (*testpackage.Package, error) {
	p := &testpackage.Package{}
	err := r.db.GetContext(ctx, p, `
        UPDATE test_packages SET
            package_name        = COALESCE($2, package_name),
            units               = COALESCE($3, units),
            class               = COALESCE($4, class),
            subject_name        = COALESCE($5, subject_name),
            price               = COALESCE($6, price),
            number_of_questions = COALESCE($7, number_of_questions)
        WHERE id = $1
        RETURNING `+packageColumns,
		id, upd.PackageName, upd.Units, upd.Class, upd.SubjectName, upd.Price, upd.NumberOfQuestions)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, errors.Wrap(err, "update test package")
}

// Delete removes the package and returns its name.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (string, error) {
	var name string
	err := r.db.GetContext(ctx, &name, `DELETE FROM test_packages WHERE id = $1 RETURNING package_name`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return name, errors.Wrap(err, "delete test package")
}

func (r *PostgresRepository) AddCounter(ctx context.Context, id int64, counter testpackage.Counter, delta int) (int, error) {
	switch counter {
	case testpackage.Applications, testpackage.Purchases:
	default:
		return 0, fmt.Errorf("unknown package counter %q", counter)
	}
	c := db.Counter{Table: "test_packages", IDColumn: "id", Column: string(counter)}
	v, err := c.Add(ctx, r.db, id, delta)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return v, errors.Wrap(err, "update package counter")
}
