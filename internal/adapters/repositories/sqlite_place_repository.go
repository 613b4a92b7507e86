package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"travel-route-service/internal/domain"
)

// SQLite-backed implementation of the PlaceRepository port.
type SqlitePlaceRepository struct{ DB *sql.DB }

func NewSqlitePlaceRepository(db *sql.DB) *SqlitePlaceRepository {
	return &SqlitePlaceRepository{DB: db}
}

const placeColumns = `id, name, osm_id, wikipedia_id, address, city, country, lat, lon, data`

func (s *SqlitePlaceRepository) FindByOSMID(ctx context.Context, osmID int64) (*domain.Place, error) {
	row := s.DB.QueryRowContext(ctx, `
	SELECT `+placeColumns+` FROM places WHERE osm_id = ?;
	`, osmID)
	return scanPlace(row)
}

func (s *SqlitePlaceRepository) FindByWikipediaID(ctx context.Context, wikipediaID string) (*domain.Place, error) {
	row := s.DB.QueryRowContext(ctx, `
	SELECT `+placeColumns+` FROM places WHERE wikipedia_id = ?;
	`, wikipediaID)
	return scanPlace(row)
}

func (s *SqlitePlaceRepository) CreatePlace(ctx context.Context, place *domain.Place) error {
	var data any
	if place.Data != nil {
		bytes, err := json.Marshal(place.Data)
		if err != nil {
			return domain.NewPersistenceError("create place: marshal data", err)
		}
		data = string(bytes)
	}

	now := time.Now().UTC()
	res, err := s.DB.ExecContext(ctx, `
	INSERT INTO places (name, osm_id, wikipedia_id, address, city, country, lat, lon, data, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, place.Name, nullInt64(place.OSMID), nullString(place.WikipediaID),
		nullString(place.Address), nullString(place.City), nullString(place.Country),
		place.Lat, place.Lon, data, now, now)
	if err != nil {
		return domain.NewPersistenceError("create place: insert", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.NewPersistenceError("create place: last insert id", err)
	}

	place.ID = id
	place.CreatedAt = now
	place.UpdatedAt = now
	return nil
}

func scanPlace(row *sql.Row) (*domain.Place, error) {
	var (
		place   domain.Place
		osmID   sql.NullInt64
		wikiID  sql.NullString
		address sql.NullString
		city    sql.NullString
		country sql.NullString
		data    sql.NullString
	)

	err := row.Scan(
		&place.ID, &place.Name, &osmID, &wikiID, &address, &city, &country,
		&place.Lat, &place.Lon, &data,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewPersistenceError("find place: scan", err)
	}

	if osmID.Valid {
		place.OSMID = &osmID.Int64
	}
	if wikiID.Valid {
		place.WikipediaID = &wikiID.String
	}
	if address.Valid {
		place.Address = &address.String
	}
	if city.Valid {
		place.City = &city.String
	}
	if country.Valid {
		place.Country = &country.String
	}
	if data.Valid && data.String != "" {
		if err := json.Unmarshal([]byte(data.String), &place.Data); err != nil {
			return nil, domain.NewPersistenceError("find place: unmarshal data", err)
		}
	}

	return &place, nil
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
