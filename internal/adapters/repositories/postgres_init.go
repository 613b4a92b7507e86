package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the PostgreSQL variant of the schema. Same logical layout as
// the SQLite schema, including the partial unique index guarding active
// position uniqueness per route.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS places (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			osm_id BIGINT UNIQUE,
			wikipedia_id TEXT UNIQUE,
			address TEXT,
			city TEXT,
			country TEXT,
			lat DOUBLE PRECISION NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			data JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS routes (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			route_type TEXT NOT NULL,
			saved_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS route_points (
			id BIGSERIAL PRIMARY KEY,
			route_id BIGINT NOT NULL REFERENCES routes(id),
			place_id BIGINT NOT NULL REFERENCES places(id),
			source TEXT NOT NULL,
			position INTEGER NOT NULL,
			optimized_position INTEGER,
			is_removed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS place_descriptions (
			id BIGSERIAL PRIMARY KEY,
			route_point_id BIGINT NOT NULL UNIQUE REFERENCES route_points(id),
			language_code TEXT NOT NULL DEFAULT 'en',
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS ratings (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			rating_type TEXT NOT NULL,
			rating_value INTEGER NOT NULL,
			route_id BIGINT REFERENCES routes(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_route_points_active_position
		 ON route_points(route_id, position) WHERE NOT is_removed;`,
		`CREATE INDEX IF NOT EXISTS idx_routes_user_status_created
		 ON routes(user_id, status, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_route_points_route_removed
		 ON route_points(route_id, is_removed);`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}

	return nil
}
