package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"travel-route-service/internal/domain"
	"travel-route-service/internal/ports"
)

// CreateRoute persists a new route for the user. Routes start out
// temporary; the type is fixed at creation time.
func CreateRoute(
	ctx context.Context,
	routes ports.RouteRepository,
	userID int64,
	name, routeType string,
) (*domain.Route, error) {
	fields := map[string]string{}
	if strings.TrimSpace(name) == "" {
		fields["name"] = "name is required"
	}
	if !domain.ValidRouteType(routeType) {
		fields["route_type"] = fmt.Sprintf("invalid route type: %s", routeType)
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields)
	}

	route := &domain.Route{
		UserID:    userID,
		Name:      name,
		Status:    domain.StatusTemporary,
		RouteType: routeType,
	}
	if err := routes.CreateRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	return route, nil
}

// Partial update of a route; nil fields are left unchanged.
type RoutePatch struct {
	Name   *string
	Status *string
}

// UpdateRoute applies a partial update. The first transition into the saved
// status stamps SavedAt with now; later status changes never touch it
// again.
func UpdateRoute(
	ctx context.Context,
	routes ports.RouteRepository,
	routeID, userID int64,
	patch RoutePatch,
	now time.Time,
) (*domain.Route, error) {
	route, err := routes.GetRoute(ctx, routeID, userID)
	if err != nil {
		return nil, fmt.Errorf("update route: %w", err)
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, domain.NewValidationError(map[string]string{"name": "name must not be empty"})
		}
		route.Name = *patch.Name
	}

	if patch.Status != nil {
		if !domain.ValidStatus(*patch.Status) {
			return nil, domain.NewValidationError(map[string]string{"status": fmt.Sprintf("invalid status: %s", *patch.Status)})
		}
		if *patch.Status == domain.StatusSaved && route.Status != domain.StatusSaved && route.SavedAt == nil {
			route.SavedAt = &now
		}
		route.Status = *patch.Status
	}

	if err := routes.UpdateRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("update route: %w", err)
	}

	return route, nil
}

// DeleteRoute hard-deletes the route with all its points, descriptions and
// ratings. Places stay.
func DeleteRoute(
	ctx context.Context,
	routes ports.RouteRepository,
	routeID, userID int64,
) error {
	if _, err := routes.GetRoute(ctx, routeID, userID); err != nil {
		return fmt.Errorf("delete route: %w", err)
	}

	if err := routes.DeleteRoute(ctx, routeID); err != nil {
		return fmt.Errorf("delete route: %w", err)
	}

	return nil
}

// ListRoutes returns the user's routes with the given status (saved when
// unspecified or unknown), newest first.
func ListRoutes(
	ctx context.Context,
	routes ports.RouteRepository,
	userID int64,
	status string,
) ([]domain.RouteSummary, error) {
	if !domain.ValidStatus(status) {
		status = domain.StatusSaved
	}

	list, err := routes.ListRoutes(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}

	return list, nil
}

// GetRouteDetail returns the route with its active points in position
// order.
func GetRouteDetail(
	ctx context.Context,
	routes ports.RouteRepository,
	points ports.PointRepository,
	routeID, userID int64,
) (*domain.Route, []*domain.RoutePoint, error) {
	route, err := routes.GetRoute(ctx, routeID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get route detail: %w", err)
	}

	active, err := points.ActivePoints(ctx, routeID)
	if err != nil {
		return nil, nil, fmt.Errorf("get route detail: load active points: %w", err)
	}

	return route, active, nil
}
