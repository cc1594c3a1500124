package db

import (
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var dialects = map[string]string{
	"sqlite": "sqlite3",
	"pgx":    "postgres",
}

func setupGoose(driver string) error {
	dialect, ok := dialects[driver]
	if !ok {
		return fmt.Errorf("no migration dialect for driver %q", driver)
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	return nil
}

// RunMigrations applies every pending migration.
func RunMigrations(conn *sqlx.DB, log *zap.Logger) error {
	if err := setupGoose(conn.DriverName()); err != nil {
		return err
	}
	if err := goose.Up(conn.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	version, err := goose.GetDBVersion(conn.DB)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Info("migrations completed", zap.Int64("version", version))
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(conn *sqlx.DB, log *zap.Logger) error {
	if err := setupGoose(conn.DriverName()); err != nil {
		return err
	}
	if err := goose.Down(conn.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	log.Info("rolled back one migration")
	return nil
}
