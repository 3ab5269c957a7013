package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lettercounsel/lettercounsel/internal/config"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
)

// RunMigrations applies all pending migrations from the configured path.
func RunMigrations(client *Client, cfg *config.Configuration, log *logger.Logger) error {
	driver, err := postgres.WithInstance(client.DB(), &postgres.Config{})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create migration driver").
			Mark(ierr.ErrDatabase)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cfg.Postgres.MigrationsPath),
		cfg.Postgres.DBName,
		driver,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to initialize migrations").
			Mark(ierr.ErrDatabase)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return ierr.WithError(err).
			WithHint("Failed to apply migrations").
			Mark(ierr.ErrDatabase)
	}

	version, dirty, _ := m.Version()
	log.Infow("migrations applied", "version", version, "dirty", dirty)
	return nil
}
