package services

import (
	"travel-route-service/internal/domain"
	"travel-route-service/internal/geo"
)

// Reorder points using a greedy nearest-neighbor heuristic.
//
// The first point is kept as the fixed starting location; each step then
// walks to the closest unvisited point by great-circle distance. The
// algorithm minimizes the immediate hop at each step and makes no global
// optimality claim. The design prioritizes determinism and simplicity over
// optimality.
func NearestNeighborOrder(points []*domain.RoutePoint) []*domain.RoutePoint {
	if len(points) <= 1 {
		return points
	}

	ordered := make([]*domain.RoutePoint, 0, len(points))
	ordered = append(ordered, points[0])

	remaining := make([]*domain.RoutePoint, len(points)-1)
	copy(remaining, points[1:])

	for len(remaining) > 0 {
		current := ordered[len(ordered)-1].Place

		bestIdx := 0
		bestDist := geo.Distance(current.Lat, current.Lon, remaining[0].Place.Lat, remaining[0].Place.Lon)

		// Strict less keeps ties on the earliest candidate, so the result
		// is deterministic for a given input order.
		for i := 1; i < len(remaining); i++ {
			d := geo.Distance(current.Lat, current.Lon, remaining[i].Place.Lat, remaining[i].Place.Lon)
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}

		ordered = append(ordered, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return ordered
}
