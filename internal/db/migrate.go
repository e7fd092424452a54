package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/ecograph/backend/internal/util"
	"github.com/ecograph/backend/pkg/logger"
)

// Migrate applies any pending SQL migrations against the configured database.
// The migrations directory defaults to ./migrations and can be overridden
// with MIGRATIONS_PATH.
func Migrate() error {
	databaseURL := util.GetEnv("DATABASE_URL")
	if databaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	migrationsPath := util.GetEnvString("MIGRATIONS_PATH", "migrations")

	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("[DB] Schema is up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("[DB] Applied pending migrations")
	return nil
}
