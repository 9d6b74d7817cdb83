package di

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-appcatalog/internal/runtimeconfig"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// OpenDatabase opens a bun database for the configured driver. The caller
// owns the returned handle and passes it to the container via WithBunDB.
func OpenDatabase(cfg runtimeconfig.DatabaseConfig) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "sqlite":
		sqlDB, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		// Shared-cache in-memory databases misbehave with concurrent writers.
		db.SetMaxOpenConns(1)
		return db, nil
	case "postgres":
		sqlDB, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrDatabaseDriverUnknown, cfg.Driver)
	}
}
