package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"form-submissions/internal/common/config"
)

//go:embed schema_postgres.sql
var postgresSchema string

// SQLClient is the lifecycle surface shared by the Postgres and SQLite clients.
type SQLClient interface {
	Ping(ctx context.Context) error
	Close() error
	GetDB() *sql.DB
}

// Open builds the relational store selected by database.driver.
func Open(cfg config.DatabaseConfig) (SQLClient, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		return NewPostgres(cfg.Postgres)
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate creates the four submission tables when they are missing. SQLite
// stores are migrated by OpenSQLite already.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	schema := postgresSchema
	if driver == config.DriverSQLite {
		schema = sqliteSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply %s schema: %w", driver, err)
	}
	return nil
}
