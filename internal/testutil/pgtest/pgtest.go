//go:build integration

// Package pgtest runs a disposable PostgreSQL container with the tradenorm
// schema applied, for integration tests.
package pgtest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/guttosm/tradenorm/config"
)

const (
	image          = "postgres:15-alpine"
	startupTimeout = 60 * time.Second
)

// Instance is a running, migrated database. Config points at it so callers
// can hand it to config.AppConfig.
type Instance struct {
	DB     *sql.DB
	Config config.PostgresConfig
}

// Start launches the container, applies db/migrations and registers cleanup
// on t. Any failure stops the test.
func Start(t testing.TB) *Instance {
	t.Helper()
	ctx := context.Background()

	cfg := config.PostgresConfig{User: "postgres", Password: "postgres", DBName: "tradenorm", SSLMode: "disable"}
	req := tc.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       cfg.DBName,
			"POSTGRES_USER":     cfg.User,
			"POSTGRES_PASSWORD": cfg.Password,
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			c := cfg
			c.Host = host
			c.Port = port.Int()
			return c.DSN()
		}).WithStartupTimeout(startupTimeout),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("pgtest: start container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	if cfg.Host, err = container.Host(ctx); err != nil {
		t.Fatalf("pgtest: host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("pgtest: port: %v", err)
	}
	if cfg.Port, err = strconv.Atoi(mapped.Port()); err != nil {
		t.Fatalf("pgtest: port %q: %v", mapped.Port(), err)
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		t.Fatalf("pgtest: open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("pgtest: ping: %v", err)
	}
	if err := migrate(db); err != nil {
		t.Fatalf("pgtest: %v", err)
	}
	return &Instance{DB: db, Config: cfg}
}

func migrate(db *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, migrationsDir()); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// migrationsDir resolves db/migrations from this file so every package's
// tests find it regardless of their working directory.
func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "db", "migrations")
}
