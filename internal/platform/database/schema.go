// File: internal/platform/database/schema.go
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	_ "github.com/lib/pq" // registers the "postgres" driver for the schema CLI
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"travel_agent_backend/internal/config"
)

//go:embed migrations/*.sql
var schemaMigrations embed.FS

const schemaTable = "schema_migrations"

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

// OpenSchemaDB opens a plain database/sql handle for schema management.
func OpenSchemaDB(cfg *config.Config) (*sql.DB, error) {
	switch cfg.DocstoreBackend {
	case config.BackendPostgres:
		return sql.Open("postgres", cfg.DBSource)
	case config.BackendSQLite:
		return sql.Open("sqlite3", cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("backend %q has no SQL schema", cfg.DocstoreBackend)
	}
}

func gooseDialect(backend string) (string, error) {
	switch backend {
	case config.BackendPostgres:
		return "postgres", nil
	case config.BackendSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("backend %q has no SQL schema", backend)
	}
}

func prepareGoose(backend string, logger *zap.Logger) error {
	dialect, err := gooseDialect(backend)
	if err != nil {
		return err
	}
	goose.SetBaseFS(schemaMigrations)
	goose.SetTableName(schemaTable)
	if logger == nil {
		goose.SetLogger(goose.NopLogger())
	} else {
		goose.SetLogger(zap.NewStdLog(logger.Named("goose")))
	}
	return goose.SetDialect(dialect)
}

// MigrateSchema applies the embedded SQL migrations that create the documents table.
func MigrateSchema(ctx context.Context, db *sql.DB, backend string, logger *zap.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := prepareGoose(backend, logger); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// SchemaVersion returns the current goose schema version.
func SchemaVersion(ctx context.Context, db *sql.DB, backend string) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := prepareGoose(backend, nil); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
