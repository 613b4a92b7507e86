package services

import (
	"context"
	"fmt"
	"log"

	"travel-route-service/internal/domain"
	"travel-route-service/internal/platform/obs"
	"travel-route-service/internal/ports"
)

const (
	StrategyNearestNeighbor = "nearest_neighbor"
	StrategyTSPApprox       = "tsp_approx"
)

// Optional optimizer configuration. An unrecognized strategy falls back to
// nearest-neighbor rather than erroring.
type OptimizeConfig struct {
	Strategy string
}

// OptimizeRoute reorders the active points of a manual route to shorten the
// walking path and persists the new positions.
//
// Precondition failures (wrong route type, fewer than two active points)
// are reported as business-rule errors before anything is written. The
// position rewrite itself is atomic: a failed commit leaves every point
// exactly as it was.
func OptimizeRoute(
	ctx context.Context,
	routes ports.RouteRepository,
	points ports.PointRepository,
	routeID, userID int64,
	cfg OptimizeConfig,
) (result []*domain.RoutePoint, err error) {
	defer obs.Time(ctx, "optimize_route")(&err)

	route, err := routes.GetRoute(ctx, routeID, userID)
	if err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}

	if !route.IsManual() {
		return nil, domain.NewBusinessRuleError("only manual routes may be optimized")
	}

	active, err := points.ActivePoints(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("optimize route: load active points: %w", err)
	}

	if len(active) < 2 {
		return nil, domain.NewBusinessRuleError("route must have at least 2 points to optimize")
	}

	strategy := cfg.Strategy
	if strategy == "" {
		strategy = StrategyNearestNeighbor
	}

	var ordered []*domain.RoutePoint
	switch strategy {
	case StrategyNearestNeighbor, StrategyTSPApprox:
		ordered = NearestNeighborOrder(active)
	default:
		log.Printf("optimize route: route_id=%d unknown strategy %q, using %s", routeID, strategy, StrategyNearestNeighbor)
		ordered = NearestNeighborOrder(active)
	}

	ids := make([]int64, len(ordered))
	for i, p := range ordered {
		ids[i] = p.ID
	}

	if err := points.CommitPositions(ctx, routeID, ids); err != nil {
		return nil, fmt.Errorf("optimize route: commit positions: %w", err)
	}

	// Reflect the committed state on the returned points.
	for i, p := range ordered {
		pos := i
		p.Position = pos
		p.OptimizedPosition = &pos
	}

	return ordered, nil
}
