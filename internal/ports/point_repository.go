package ports

import (
	"context"
	"travel-route-service/internal/domain"
)

// Port: the authoritative ordered view of a route's points.
//
// Position uniqueness is only guaranteed among active points of one route;
// implementations must enforce it at the storage layer (a partial unique
// index over (route, position) for non-removed rows) so that concurrent
// reorderings cannot both commit.
type PointRepository interface {
	// Active (non-removed) points of the route, ordered by position
	// ascending, each with its place and optional description attached.
	ActivePoints(ctx context.Context, routeID int64) ([]*domain.RoutePoint, error)
	// Number of active points on the route.
	CountActivePoints(ctx context.Context, routeID int64) (int, error)
	// One more than the maximum position among active points, or 0 when the
	// route has none. Removed points' positions are neither reused nor
	// blocking; gaps are acceptable.
	NextPosition(ctx context.Context, routeID int64) (int, error)
	// Fetch one point of the route regardless of removed state. Returns a
	// not-found domain error when it does not exist on that route.
	GetPoint(ctx context.Context, routeID, pointID int64) (*domain.RoutePoint, error)
	// Persist a new point and fill in its generated ID.
	CreatePoint(ctx context.Context, point *domain.RoutePoint) error
	// Atomically append one point to the route: the active-point cap check,
	// the next-position read and the insert all run inside one transaction,
	// so two concurrent ingests can never both slip past the cap. When
	// newPlace is non-nil it is inserted in the same transaction and the
	// point references it; a failed insert leaves no place row behind.
	// Exceeding maxActive yields a business-rule domain error.
	CreatePointAtNextPosition(ctx context.Context, point *domain.RoutePoint, newPlace *domain.Place, maxActive int) error
	// Persist a batch of points in one transaction (bulk population of
	// generated routes).
	CreatePoints(ctx context.Context, points []*domain.RoutePoint) error
	// Mark the point removed. Idempotent; keeps position and description.
	SoftDeletePoint(ctx context.Context, pointID int64) error
	// Atomically rewrite positions so that orderedPointIDs[i] ends up at
	// position i, recording i as the optimized position as well. The write
	// must never expose a transient state violating active-position
	// uniqueness to other readers; on failure nothing changes.
	CommitPositions(ctx context.Context, routeID int64, orderedPointIDs []int64) error
}
