package geo

import "github.com/golang/geo/s2"

// Earth's mean radius. The spherical approximation is fine for walking
// routes; we never need geodesic accuracy.
const EarthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between two
// coordinate pairs. Pure and symmetric; inputs are assumed to be already
// validated coordinates.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}
