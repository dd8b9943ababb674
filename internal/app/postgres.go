package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/guttosm/tradenorm/config"

	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
)

// Pool sizing: ingestion fans out to at most 8 files, each holding one
// connection during its COPY.
const (
	maxOpenConns = 16
	connMaxIdle  = 5 * time.Minute
	pingTimeout  = 5 * time.Second
)

// sqlOpener is an indirection for unit testing; defaults to sql.Open
var sqlOpener = sql.Open

// InitPostgres opens a pool from cfg.Postgres and pings it, so a returned
// *sql.DB is known to be reachable.
func InitPostgres(cfg config.Config) (*sql.DB, error) {
	db, err := sqlOpener("postgres", cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns / 2)
	db.SetConnMaxIdleTime(connMaxIdle)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

// postgresOpener is an indirection used by InitializeApp; overridden in tests to avoid real connections.
var postgresOpener = InitPostgres
