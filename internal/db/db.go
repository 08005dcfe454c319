package db

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq" // Register postgres driver for the migration path
)

// NewPool opens a pgx connection pool for the application repositories.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

// openDB opens a database/sql connection without pinging. Used only by the
// migration runner, which needs a database/sql handle.
func openDB(dsn string) (*sql.DB, error) {
	return sql.Open("postgres", dsn)
}
