package services

import (
	"context"
	"fmt"

	"travel-route-service/internal/ports"
)

// RemovePoint soft-deletes one point on the caller's route. Removing an
// already-removed point is a no-op that still succeeds; the point keeps its
// position and description.
func RemovePoint(
	ctx context.Context,
	routes ports.RouteRepository,
	points ports.PointRepository,
	routeID, pointID, userID int64,
) error {
	if _, err := routes.GetRoute(ctx, routeID, userID); err != nil {
		return fmt.Errorf("remove point: %w", err)
	}

	point, err := points.GetPoint(ctx, routeID, pointID)
	if err != nil {
		return fmt.Errorf("remove point: %w", err)
	}

	if point.IsRemoved {
		return nil
	}

	if err := points.SoftDeletePoint(ctx, point.ID); err != nil {
		return fmt.Errorf("remove point: soft delete: %w", err)
	}

	return nil
}
