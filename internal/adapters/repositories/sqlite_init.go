package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the SQLite database schema.
//
// The partial unique index on (route_id, position) enforces position
// uniqueness among active points only; removed points keep their position
// without blocking reuse of the slot value by the optimizer.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPlacesQuery := `
	CREATE TABLE IF NOT EXISTS places (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		osm_id INTEGER UNIQUE,
		wikipedia_id TEXT UNIQUE,
		address TEXT,
		city TEXT,
		country TEXT,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		data TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		route_type TEXT NOT NULL,
		saved_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`

	createRoutePointsQuery := `
	CREATE TABLE IF NOT EXISTS route_points (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		route_id INTEGER NOT NULL REFERENCES routes(id),
		place_id INTEGER NOT NULL REFERENCES places(id),
		source TEXT NOT NULL,
		position INTEGER NOT NULL,
		optimized_position INTEGER,
		is_removed INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`

	createDescriptionsQuery := `
	CREATE TABLE IF NOT EXISTS place_descriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		route_point_id INTEGER NOT NULL UNIQUE REFERENCES route_points(id),
		language_code TEXT NOT NULL DEFAULT 'en',
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`

	createRatingsQuery := `
	CREATE TABLE IF NOT EXISTS ratings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		rating_type TEXT NOT NULL,
		rating_value INTEGER NOT NULL,
		route_id INTEGER REFERENCES routes(id),
		created_at TIMESTAMP NOT NULL
	);
	`

	createActivePositionIndexQuery := `
	CREATE UNIQUE INDEX IF NOT EXISTS ux_route_points_active_position
	ON route_points(route_id, position) WHERE is_removed = 0;
	`

	createRouteIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_routes_user_status_created
	ON routes(user_id, status, created_at);
	`

	createPointRouteIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_points_route_removed
	ON route_points(route_id, is_removed);
	`

	statements := []string{
		createPlacesQuery,
		createRoutesQuery,
		createRoutePointsQuery,
		createDescriptionsQuery,
		createRatingsQuery,
		createActivePositionIndexQuery,
		createRouteIndexQuery,
		createPointRouteIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type PlaceSeed struct {
	Name        string  `json:"name"`
	OSMID       *int64  `json:"osm_id"`
	WikipediaID *string `json:"wikipedia_id"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Populate the places table from a JSON file for local runs. Existing rows
// (matched by osm_id) are replaced.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed places: parse json: %w", err)
	}

	for i, item := range data {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("seed places: item at index %d: name cannot be empty", i+1)
		}
		if item.Lat < -90 || item.Lat > 90 || item.Lon < -180 || item.Lon > 180 {
			return fmt.Errorf("seed places: item at index %d: coordinates out of range", i+1)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed places: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT OR REPLACE INTO places (
		name,
		osm_id,
		wikipedia_id,
		address,
		city,
		country,
		lat,
		lon,
		created_at,
		updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed places: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range data {
		if _, err := stmt.Exec(p.Name, p.OSMID, p.WikipediaID, p.Address, p.City, p.Country, p.Lat, p.Lon); err != nil {
			return fmt.Errorf("seed places: insert %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed places: commit tx: %w", err)
	}

	return nil
}
