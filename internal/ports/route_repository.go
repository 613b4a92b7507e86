package ports

import (
	"context"
	"travel-route-service/internal/domain"
)

// Port: route entity lifecycle against a data source. Lookups are scoped to
// the owning user; a route belonging to someone else is indistinguishable
// from a missing one.
type RouteRepository interface {
	// Persist a new route and fill in its generated ID and timestamps.
	CreateRoute(ctx context.Context, route *domain.Route) error
	// Fetch one route owned by userID. Returns a not-found domain error
	// when it does not exist or belongs to another user.
	GetRoute(ctx context.Context, routeID, userID int64) (*domain.Route, error)
	// List the user's routes with the given status, newest first, each with
	// its active-point count.
	ListRoutes(ctx context.Context, userID int64, status string) ([]domain.RouteSummary, error)
	// Persist name/status/saved_at changes.
	UpdateRoute(ctx context.Context, route *domain.Route) error
	// Hard-delete the route and cascade to its points, descriptions and
	// ratings. Referenced places are left untouched.
	DeleteRoute(ctx context.Context, routeID int64) error
}
