package db

import (
	"context"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrate applies every pending goose migration found in migrations.
func Migrate(ctx context.Context, db *sqlx.DB, migrations fs.FS, log *zap.Logger) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}

	log.Info("applying database migrations")
	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return errors.Wrap(err, "apply migrations")
	}

	version, err := goose.GetDBVersionContext(ctx, db.DB)
	if err != nil {
		return errors.Wrap(err, "get migration version")
	}
	log.Info("migrations applied", zap.Int64("version", version))
	return nil
}
