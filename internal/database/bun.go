package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	"github.com/redmonkez12/go-auth-service/internal/config"
)

// sqlitePragmas are applied to every SQLite connection.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// Open connects to the configured SQL database, verifies the connection
// and wraps it in a Bun DB with the matching dialect.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*bun.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

		return ping(ctx, bun.NewDB(sqlDB, pgdialect.New()))

	case config.DriverSQLite:
		sqlDB, err := sql.Open("sqlite", SQLiteDSN(cfg.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY
		// and keeps ":memory:" databases shared.
		sqlDB.SetMaxOpenConns(1)

		return ping(ctx, bun.NewDB(sqlDB, sqlitedialect.New()))

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// SQLiteDSN appends the connection pragmas to a SQLite path.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + sqlitePragmas
	}
	return "file:" + path + "?" + sqlitePragmas
}

func ping(ctx context.Context, db *bun.DB) (*bun.DB, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
