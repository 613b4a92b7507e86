package dto

import "time"

type CreateRouteRequest struct {
	Name      string `json:"name"`
	RouteType string `json:"route_type"`
}

type UpdateRouteRequest struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

type RouteResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	RouteType string     `json:"route_type"`
	SavedAt   *time.Time `json:"saved_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type RouteSummaryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	RouteType   string    `json:"route_type"`
	PointsCount int       `json:"points_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListRoutesResponse struct {
	Routes []RouteSummaryResponse `json:"routes"`
}

type RouteDetailResponse struct {
	ID        int64                `json:"id"`
	Name      string               `json:"name"`
	Status    string               `json:"status"`
	RouteType string               `json:"route_type"`
	Points    []RoutePointResponse `json:"points"`
}
