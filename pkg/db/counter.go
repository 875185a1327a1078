package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Counter addresses an integer column of a single row.
type Counter struct {
	Table    string
	IDColumn string
	Column   string
}

// Add shifts the counter of row id by delta in one statement and returns the
// new value. sql.ErrNoRows is returned when the row does not exist. Table and
// column names are interpolated, so callers must pass constants only.
func (c Counter) Add(ctx context.Context, q sqlx.QueryerContext, id int64, delta int) (int, error) {
	var value int
	if err := sqlx.GetContext(ctx, q, &value, counterQuery(c), delta, id); err != nil {
		return 0, err
	}
	return value, nil
}

func counterQuery(c Counter) string {
	return fmt.Sprintf(`UPDATE %[1]s SET %[3]s = %[3]s + $1 WHERE %[2]s = $2 RETURNING %[3]s`,
		c.Table, c.IDColumn, c.Column)
}
