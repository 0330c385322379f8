package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/cloo-solutions/shopmate/internal/logging"
)

// DefaultMigrationsSource is relative to the working directory of the daemon.
const DefaultMigrationsSource = "file://migrations"

// Direction selects which way Migrate moves the schema.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MigrationResult reports the schema version after a run.
type MigrationResult struct {
	Version uint
	Changed bool
}

// Migrate applies (Up) or rolls back one step (Down) of the migrations in source.
func Migrate(databaseURL, source string, dir Direction) (*MigrationResult, error) {
	if source == "" {
		source = DefaultMigrationsSource
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	switch dir {
	case Up:
		err = m.Up()
	case Down:
		err = m.Steps(-1)
	default:
		return nil, fmt.Errorf("unknown migration direction %q", dir)
	}
	changed := true
	if errors.Is(err, migrate.ErrNoChange) {
		changed = false
	} else if err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		logging.L().Info("migrations: database has no applied migrations")
		return &MigrationResult{Changed: changed}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return nil, fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}

	logging.L().Info("migrations: done",
		zap.String("direction", string(dir)),
		zap.Uint("version", version),
		zap.Bool("changed", changed),
	)
	return &MigrationResult{Version: version, Changed: changed}, nil
}
