// Package db runs schema migrations at startup.
package db

import (
	"errors"
	"fmt"

	"github.com/lattice-kg/lattice/internal/util"

	"github.com/golang-migrate/migrate/v4"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies all pending migrations. A database that is already up
// to date is not an error.
func Migrate() error {
	sourceURL := util.GetEnvString("MIGRATIONS_URL", "file://migrations")
	databaseURL := util.GetEnv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
