package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"travel-route-service/internal/domain"
)

// SQLite-backed implementation of the RouteRepository and PointRepository
// ports.
type SqliteRouteRepository struct{ DB *sql.DB }

func NewSqliteRouteRepository(db *sql.DB) *SqliteRouteRepository {
	return &SqliteRouteRepository{DB: db}
}

func (s *SqliteRouteRepository) CreateRoute(ctx context.Context, route *domain.Route) error {
	if s.DB == nil {
		return errors.New("sqlite route repository: DB is nil")
	}

	now := time.Now().UTC()
	res, err := s.DB.ExecContext(ctx, `
	INSERT INTO routes (user_id, name, status, route_type, saved_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`, route.UserID, route.Name, route.Status, route.RouteType, nullTime(route.SavedAt), now, now)
	if err != nil {
		return domain.NewPersistenceError("create route: insert", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.NewPersistenceError("create route: last insert id", err)
	}

	route.ID = id
	route.CreatedAt = now
	route.UpdatedAt = now
	return nil
}

func (s *SqliteRouteRepository) GetRoute(ctx context.Context, routeID, userID int64) (*domain.Route, error) {
	query := `
	SELECT id, user_id, name, status, route_type, saved_at, created_at, updated_at
	FROM routes
	WHERE id = ? AND user_id = ?;
	`

	var (
		route   domain.Route
		savedAt sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, query, routeID, userID).Scan(
		&route.ID, &route.UserID, &route.Name, &route.Status, &route.RouteType,
		&savedAt, &route.CreatedAt, &route.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("route not found")
	}
	if err != nil {
		return nil, domain.NewPersistenceError("get route: query", err)
	}

	if savedAt.Valid {
		route.SavedAt = &savedAt.Time
	}
	return &route, nil
}

func (s *SqliteRouteRepository) ListRoutes(ctx context.Context, userID int64, status string) ([]domain.RouteSummary, error) {
	query := `
	SELECT
		r.id,
		r.name,
		r.status,
		r.route_type,
		r.created_at,
		COUNT(p.id) AS points_count
	FROM routes r
	LEFT JOIN route_points p ON p.route_id = r.id AND p.is_removed = 0
	WHERE r.user_id = ? AND r.status = ?
	GROUP BY r.id
	ORDER BY r.created_at DESC;
	`

	rows, err := s.DB.QueryContext(ctx, query, userID, status)
	if err != nil {
		return nil, domain.NewPersistenceError("list routes: query", err)
	}
	defer rows.Close()

	summaries := make([]domain.RouteSummary, 0, 16)
	for rows.Next() {
		var sum domain.RouteSummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Status, &sum.RouteType, &sum.CreatedAt, &sum.PointsCount); err != nil {
			return nil, domain.NewPersistenceError("list routes: scan row", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("list routes: row iteration", err)
	}

	return summaries, nil
}

func (s *SqliteRouteRepository) UpdateRoute(ctx context.Context, route *domain.Route) error {
	now := time.Now().UTC()
	res, err := s.DB.ExecContext(ctx, `
	UPDATE routes
	SET name = ?, status = ?, saved_at = ?, updated_at = ?
	WHERE id = ?;
	`, route.Name, route.Status, nullTime(route.SavedAt), now, route.ID)
	if err != nil {
		return domain.NewPersistenceError("update route: exec", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewPersistenceError("update route: rows affected", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("route not found")
	}

	route.UpdatedAt = now
	return nil
}

// DeleteRoute removes the route and everything hanging off it in one
// transaction: descriptions, points and ratings. Place rows are shared and
// stay.
func (s *SqliteRouteRepository) DeleteRoute(ctx context.Context, routeID int64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewPersistenceError("delete route: begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`DELETE FROM place_descriptions
		 WHERE route_point_id IN (SELECT id FROM route_points WHERE route_id = ?);`,
		`DELETE FROM route_points WHERE route_id = ?;`,
		`DELETE FROM ratings WHERE route_id = ?;`,
		`DELETE FROM routes WHERE id = ?;`,
	}
	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, routeID); err != nil {
			return domain.NewPersistenceError(fmt.Sprintf("delete route: exec statement #%d", i+1), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.NewPersistenceError("delete route: commit tx", err)
	}

	return nil
}

const activePointColumns = `
	p.id, p.route_id, p.place_id, p.source, p.position, p.optimized_position, p.is_removed,
	pl.id, pl.name, pl.osm_id, pl.wikipedia_id, pl.address, pl.city, pl.country, pl.lat, pl.lon,
	d.id, d.language_code, d.content
`

const pointJoins = `
	FROM route_points p
	JOIN places pl ON pl.id = p.place_id
	LEFT JOIN place_descriptions d ON d.route_point_id = p.id
`

func (s *SqliteRouteRepository) ActivePoints(ctx context.Context, routeID int64) ([]*domain.RoutePoint, error) {
	query := `
	SELECT ` + activePointColumns + pointJoins + `
	WHERE p.route_id = ? AND p.is_removed = 0
	ORDER BY p.position;
	`

	rows, err := s.DB.QueryContext(ctx, query, routeID)
	if err != nil {
		return nil, domain.NewPersistenceError("active points: query", err)
	}
	defer rows.Close()

	points := make([]*domain.RoutePoint, 0, domain.MaxManualRoutePoints)
	for rows.Next() {
		point, err := scanPoint(rows)
		if err != nil {
			return nil, domain.NewPersistenceError("active points: scan row", err)
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("active points: row iteration", err)
	}

	return points, nil
}

func (s *SqliteRouteRepository) CountActivePoints(ctx context.Context, routeID int64) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM route_points WHERE route_id = ? AND is_removed = 0;
	`, routeID).Scan(&count)
	if err != nil {
		return 0, domain.NewPersistenceError("count active points: query", err)
	}
	return count, nil
}

func (s *SqliteRouteRepository) NextPosition(ctx context.Context, routeID int64) (int, error) {
	var max sql.NullInt64
	err := s.DB.QueryRowContext(ctx, `
	SELECT MAX(position) FROM route_points WHERE route_id = ? AND is_removed = 0;
	`, routeID).Scan(&max)
	if err != nil {
		return 0, domain.NewPersistenceError("next position: query", err)
	}

	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

func (s *SqliteRouteRepository) GetPoint(ctx context.Context, routeID, pointID int64) (*domain.RoutePoint, error) {
	query := `
	SELECT ` + activePointColumns + pointJoins + `
	WHERE p.id = ? AND p.route_id = ?;
	`

	row := s.DB.QueryRowContext(ctx, query, pointID, routeID)
	point, err := scanPoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("route point not found")
	}
	if err != nil {
		return nil, domain.NewPersistenceError("get point: query", err)
	}

	return point, nil
}

func (s *SqliteRouteRepository) CreatePoint(ctx context.Context, point *domain.RoutePoint) error {
	now := time.Now().UTC()
	res, err := s.DB.ExecContext(ctx, `
	INSERT INTO route_points (route_id, place_id, source, position, optimized_position, is_removed, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, 0, ?, ?);
	`, point.RouteID, point.PlaceID, point.Source, point.Position, nullInt(point.OptimizedPosition), now, now)
	if err != nil {
		return domain.NewPersistenceError("create point: insert", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.NewPersistenceError("create point: last insert id", err)
	}

	point.ID = id
	point.CreatedAt = now
	point.UpdatedAt = now
	return nil
}

// CreatePointAtNextPosition appends one point inside a single transaction:
// the cap check, the next-position read and the insert (place included when
// new) all see the same snapshot, so concurrent ingests serialize on the
// write lock instead of racing past the cap.
func (s *SqliteRouteRepository) CreatePointAtNextPosition(ctx context.Context, point *domain.RoutePoint, newPlace *domain.Place, maxActive int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewPersistenceError("create point at next position: begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	err = tx.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM route_points WHERE route_id = ? AND is_removed = 0;
	`, point.RouteID).Scan(&count)
	if err != nil {
		return domain.NewPersistenceError("create point at next position: count active", err)
	}
	if count >= maxActive {
		return domain.NewBusinessRuleError("max points limit reached")
	}

	var max sql.NullInt64
	err = tx.QueryRowContext(ctx, `
	SELECT MAX(position) FROM route_points WHERE route_id = ? AND is_removed = 0;
	`, point.RouteID).Scan(&max)
	if err != nil {
		return domain.NewPersistenceError("create point at next position: max position", err)
	}
	position := 0
	if max.Valid {
		position = int(max.Int64) + 1
	}

	now := time.Now().UTC()
	if newPlace != nil {
		res, err := tx.ExecContext(ctx, `
		INSERT INTO places (name, osm_id, wikipedia_id, address, city, country, lat, lon, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
		`, newPlace.Name, nullInt64(newPlace.OSMID), nullString(newPlace.WikipediaID),
			nullString(newPlace.Address), nullString(newPlace.City), nullString(newPlace.Country),
			newPlace.Lat, newPlace.Lon, now, now)
		if err != nil {
			return domain.NewPersistenceError("create point at next position: insert place", err)
		}
		placeID, err := res.LastInsertId()
		if err != nil {
			return domain.NewPersistenceError("create point at next position: place insert id", err)
		}
		newPlace.ID = placeID
		newPlace.CreatedAt = now
		newPlace.UpdatedAt = now
		point.PlaceID = placeID
	}

	res, err := tx.ExecContext(ctx, `
	INSERT INTO route_points (route_id, place_id, source, position, optimized_position, is_removed, created_at, updated_at)
	VALUES (?, ?, ?, ?, NULL, 0, ?, ?);
	`, point.RouteID, point.PlaceID, point.Source, position, now, now)
	if err != nil {
		return domain.NewPersistenceError("create point at next position: insert point", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.NewPersistenceError("create point at next position: point insert id", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.NewPersistenceError("create point at next position: commit tx", err)
	}

	point.ID = id
	point.Position = position
	point.CreatedAt = now
	point.UpdatedAt = now
	return nil
}

// CreatePoints inserts a batch of points atomically. Used by bulk
// population of generated routes; either every point lands or none do.
func (s *SqliteRouteRepository) CreatePoints(ctx context.Context, points []*domain.RoutePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewPersistenceError("create points: begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_points (route_id, place_id, source, position, optimized_position, is_removed, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, 0, ?, ?);
	`)
	if err != nil {
		return domain.NewPersistenceError("create points: prepare insert", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, point := range points {
		res, err := stmt.ExecContext(ctx, point.RouteID, point.PlaceID, point.Source, point.Position, nullInt(point.OptimizedPosition), now, now)
		if err != nil {
			return domain.NewPersistenceError(fmt.Sprintf("create points: insert position=%d", point.Position), err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return domain.NewPersistenceError("create points: last insert id", err)
		}
		point.ID = id
		point.CreatedAt = now
		point.UpdatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return domain.NewPersistenceError("create points: commit tx", err)
	}

	return nil
}

func (s *SqliteRouteRepository) SoftDeletePoint(ctx context.Context, pointID int64) error {
	_, err := s.DB.ExecContext(ctx, `
	UPDATE route_points SET is_removed = 1, updated_at = ? WHERE id = ?;
	`, time.Now().UTC(), pointID)
	if err != nil {
		return domain.NewPersistenceError("soft delete point: exec", err)
	}
	return nil
}

// CommitPositions rewrites positions in two phases inside one transaction.
//
// Final positions usually overlap with currently-occupied ones, which would
// trip the active-position unique index mid-update. Moving every point to a
// unique negative placeholder first clears the occupied range; the
// transaction boundary keeps the placeholder state invisible to other
// readers.
func (s *SqliteRouteRepository) CommitPositions(ctx context.Context, routeID int64, orderedPointIDs []int64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewPersistenceError("commit positions: begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	placeholderStmt, err := tx.PrepareContext(ctx, `
	UPDATE route_points SET position = ? WHERE id = ? AND route_id = ? AND is_removed = 0;
	`)
	if err != nil {
		return domain.NewPersistenceError("commit positions: prepare placeholder update", err)
	}
	defer placeholderStmt.Close()

	for i, id := range orderedPointIDs {
		res, err := placeholderStmt.ExecContext(ctx, -(i + 1), id, routeID)
		if err != nil {
			return domain.NewPersistenceError(fmt.Sprintf("commit positions: placeholder for point_id=%d", id), err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return domain.NewPersistenceError("commit positions: rows affected", err)
		}
		if affected != 1 {
			return domain.NewPersistenceError(
				fmt.Sprintf("commit positions: point_id=%d not found on route_id=%d", id, routeID),
				sql.ErrNoRows,
			)
		}
	}

	finalStmt, err := tx.PrepareContext(ctx, `
	UPDATE route_points SET position = ?, optimized_position = ?, updated_at = ? WHERE id = ? AND route_id = ?;
	`)
	if err != nil {
		return domain.NewPersistenceError("commit positions: prepare final update", err)
	}
	defer finalStmt.Close()

	now := time.Now().UTC()
	for i, id := range orderedPointIDs {
		if _, err := finalStmt.ExecContext(ctx, i, i, now, id, routeID); err != nil {
			return domain.NewPersistenceError(fmt.Sprintf("commit positions: final for point_id=%d", id), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.NewPersistenceError("commit positions: commit tx", err)
	}

	return nil
}

// scanPoint reads one joined point row from either *sql.Row or *sql.Rows.
func scanPoint(row interface{ Scan(dest ...any) error }) (*domain.RoutePoint, error) {
	var (
		point   domain.RoutePoint
		place   domain.Place
		optPos  sql.NullInt64
		osmID   sql.NullInt64
		wikiID  sql.NullString
		address sql.NullString
		city    sql.NullString
		country sql.NullString
		descID  sql.NullInt64
		lang    sql.NullString
		content sql.NullString
	)

	err := row.Scan(
		&point.ID, &point.RouteID, &point.PlaceID, &point.Source, &point.Position, &optPos, &point.IsRemoved,
		&place.ID, &place.Name, &osmID, &wikiID, &address, &city, &country, &place.Lat, &place.Lon,
		&descID, &lang, &content,
	)
	if err != nil {
		return nil, err
	}

	if optPos.Valid {
		v := int(optPos.Int64)
		point.OptimizedPosition = &v
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
	point.Place = &place

	if descID.Valid {
		point.Description = &domain.Description{
			ID:           descID.Int64,
			RoutePointID: point.ID,
			LanguageCode: lang.String,
			Content:      content.String,
		}
	}

	return &point, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
