package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/redmonkez12/go-auth-service/internal/config"
	"github.com/redmonkez12/go-auth-service/internal/database/migrations"
)

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies all pending embedded migrations for the given driver.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var dialect, dir string
	switch driver {
	case config.DriverPostgres:
		dialect, dir = "postgres", migrations.PostgresDir
	case config.DriverSQLite:
		dialect, dir = "sqlite3", migrations.SQLiteDir
	default:
		return fmt.Errorf("no migrations for driver: %s", driver)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
