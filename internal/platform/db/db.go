// Package db opens the PostgreSQL pool used when provisioning the
// production variant of the route schema. The serving path runs on SQLite;
// this connection only ever carries DDL and seed traffic.
package db

import (
	"database/sql"
	"fmt"
	"time"
)

const defaultMaxConns = 4

// Open connects via the pgx stdlib driver and verifies the connection.
// maxConns bounds both open and idle connections; zero or negative picks
// the default.
func Open(databaseURL string, maxConns int) (*sql.DB, error) {
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}

	pool, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pool.SetMaxOpenConns(maxConns)
	pool.SetMaxIdleConns(maxConns)
	pool.SetConnMaxLifetime(30 * time.Minute)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}
