package db

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrate applies all pending migrations from the embedded filesystem.
// Returns nil when the schema is already up to date.
func Migrate(dsn string, migrations fs.FS, dir string) error {
	source, err := iofs.New(migrations, dir)
	if err != nil {
		return fmt.Errorf("platform/db: migration source: %w", err)
	}

	// golang-migrate's pgx/v5 driver registers the pgx5 URL scheme.
	url := dsn
	if strings.HasPrefix(url, "postgres://") {
		url = "pgx5://" + strings.TrimPrefix(url, "postgres://")
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return fmt.Errorf("platform/db: migrate init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("platform/db: migrate up: %w", err)
	}
	return nil
}
