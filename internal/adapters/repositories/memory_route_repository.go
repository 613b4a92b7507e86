package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"travel-route-service/internal/domain"
)

// In-memory implementation of the repository ports, used as the test double
// for the service layer. Mirrors the SQLite adapter's observable contract:
// uniform not-found errors, active-only position math, atomic position
// rewrites.
type MemoryRouteRepository struct {
	mu sync.Mutex

	routes map[int64]*domain.Route
	points map[int64]*domain.RoutePoint
	places map[int64]*domain.Place

	nextRouteID int64
	nextPointID int64
	nextPlaceID int64

	// When set, CommitPositions fails without applying anything.
	FailCommit error
}

func NewMemoryRouteRepository() *MemoryRouteRepository {
	return &MemoryRouteRepository{
		routes: map[int64]*domain.Route{},
		points: map[int64]*domain.RoutePoint{},
		places: map[int64]*domain.Place{},
	}
}

func (m *MemoryRouteRepository) CreateRoute(ctx context.Context, route *domain.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextRouteID++
	route.ID = m.nextRouteID
	route.CreatedAt = time.Now().UTC()
	route.UpdatedAt = route.CreatedAt

	cp := *route
	m.routes[route.ID] = &cp
	return nil
}

func (m *MemoryRouteRepository) GetRoute(ctx context.Context, routeID, userID int64) (*domain.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	route, ok := m.routes[routeID]
	if !ok || route.UserID != userID {
		return nil, domain.NewNotFoundError("route not found")
	}

	cp := *route
	return &cp, nil
}

func (m *MemoryRouteRepository) ListRoutes(ctx context.Context, userID int64, status string) ([]domain.RouteSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	summaries := make([]domain.RouteSummary, 0, len(m.routes))
	for _, route := range m.routes {
		if route.UserID != userID || route.Status != status {
			continue
		}

		count := 0
		for _, p := range m.points {
			if p.RouteID == route.ID && !p.IsRemoved {
				count++
			}
		}

		summaries = append(summaries, domain.RouteSummary{
			ID:          route.ID,
			Name:        route.Name,
			Status:      route.Status,
			RouteType:   route.RouteType,
			PointsCount: count,
			CreatedAt:   route.CreatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (m *MemoryRouteRepository) UpdateRoute(ctx context.Context, route *domain.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.routes[route.ID]; !ok {
		return domain.NewNotFoundError("route not found")
	}

	cp := *route
	cp.UpdatedAt = time.Now().UTC()
	m.routes[route.ID] = &cp
	return nil
}

func (m *MemoryRouteRepository) DeleteRoute(ctx context.Context, routeID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.routes, routeID)
	for id, p := range m.points {
		if p.RouteID == routeID {
			delete(m.points, id)
		}
	}
	return nil
}

func (m *MemoryRouteRepository) ActivePoints(ctx context.Context, routeID int64) ([]*domain.RoutePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.activePointsLocked(routeID), nil
}

func (m *MemoryRouteRepository) activePointsLocked(routeID int64) []*domain.RoutePoint {
	points := make([]*domain.RoutePoint, 0, domain.MaxManualRoutePoints)
	for _, p := range m.points {
		if p.RouteID == routeID && !p.IsRemoved {
			cp := *p
			if place, ok := m.places[p.PlaceID]; ok {
				pl := *place
				cp.Place = &pl
			}
			if p.Description != nil {
				d := *p.Description
				cp.Description = &d
			}
			points = append(points, &cp)
		}
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Position < points[j].Position })
	return points
}

func (m *MemoryRouteRepository) CountActivePoints(ctx context.Context, routeID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, p := range m.points {
		if p.RouteID == routeID && !p.IsRemoved {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRouteRepository) NextPosition(ctx context.Context, routeID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := 0
	for _, p := range m.points {
		if p.RouteID == routeID && !p.IsRemoved && p.Position+1 > next {
			next = p.Position + 1
		}
	}
	return next, nil
}

func (m *MemoryRouteRepository) GetPoint(ctx context.Context, routeID, pointID int64) (*domain.RoutePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	point, ok := m.points[pointID]
	if !ok || point.RouteID != routeID {
		return nil, domain.NewNotFoundError("route point not found")
	}

	cp := *point
	if place, ok := m.places[point.PlaceID]; ok {
		pl := *place
		cp.Place = &pl
	}
	return &cp, nil
}

func (m *MemoryRouteRepository) CreatePoint(ctx context.Context, point *domain.RoutePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.createPointLocked(point)
}

func (m *MemoryRouteRepository) createPointLocked(point *domain.RoutePoint) error {
	for _, p := range m.points {
		if p.RouteID == point.RouteID && !p.IsRemoved && p.Position == point.Position {
			return domain.NewPersistenceError(
				fmt.Sprintf("create point: active position %d already taken on route_id=%d", point.Position, point.RouteID),
				nil,
			)
		}
	}

	m.nextPointID++
	point.ID = m.nextPointID
	point.CreatedAt = time.Now().UTC()
	point.UpdatedAt = point.CreatedAt

	cp := *point
	cp.Place = nil
	if point.Description != nil {
		d := *point.Description
		cp.Description = &d
	}
	m.points[point.ID] = &cp
	return nil
}

func (m *MemoryRouteRepository) CreatePointAtNextPosition(ctx context.Context, point *domain.RoutePoint, newPlace *domain.Place, maxActive int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	next := 0
	for _, p := range m.points {
		if p.RouteID != point.RouteID || p.IsRemoved {
			continue
		}
		count++
		if p.Position+1 > next {
			next = p.Position + 1
		}
	}
	if count >= maxActive {
		return domain.NewBusinessRuleError("max points limit reached")
	}

	if newPlace != nil {
		m.createPlaceLocked(newPlace)
		point.PlaceID = newPlace.ID
	}

	point.Position = next
	return m.createPointLocked(point)
}

func (m *MemoryRouteRepository) CreatePoints(ctx context.Context, points []*domain.RoutePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, point := range points {
		if err := m.createPointLocked(point); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryRouteRepository) SoftDeletePoint(ctx context.Context, pointID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if point, ok := m.points[pointID]; ok {
		point.IsRemoved = true
		point.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MemoryRouteRepository) CommitPositions(ctx context.Context, routeID int64, orderedPointIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCommit != nil {
		return domain.NewPersistenceError("commit positions", m.FailCommit)
	}

	for _, id := range orderedPointIDs {
		point, ok := m.points[id]
		if !ok || point.RouteID != routeID || point.IsRemoved {
			return domain.NewPersistenceError(
				fmt.Sprintf("commit positions: point_id=%d not found on route_id=%d", id, routeID), nil,
			)
		}
	}

	now := time.Now().UTC()
	for i, id := range orderedPointIDs {
		pos := i
		point := m.points[id]
		point.Position = pos
		point.OptimizedPosition = &pos
		point.UpdatedAt = now
	}
	return nil
}

func (m *MemoryRouteRepository) FindByOSMID(ctx context.Context, osmID int64) (*domain.Place, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, place := range m.places {
		if place.OSMID != nil && *place.OSMID == osmID {
			cp := *place
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryRouteRepository) FindByWikipediaID(ctx context.Context, wikipediaID string) (*domain.Place, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, place := range m.places {
		if place.WikipediaID != nil && *place.WikipediaID == wikipediaID {
			cp := *place
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryRouteRepository) CreatePlace(ctx context.Context, place *domain.Place) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createPlaceLocked(place)
	return nil
}

func (m *MemoryRouteRepository) createPlaceLocked(place *domain.Place) {
	m.nextPlaceID++
	place.ID = m.nextPlaceID
	place.CreatedAt = time.Now().UTC()
	place.UpdatedAt = place.CreatedAt

	cp := *place
	m.places[place.ID] = &cp
}

// PlaceCount reports the number of stored places (dedup assertions in
// tests).
func (m *MemoryRouteRepository) PlaceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.places)
}

// PointCount reports the number of stored points, removed ones included.
func (m *MemoryRouteRepository) PointCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.points)
}
