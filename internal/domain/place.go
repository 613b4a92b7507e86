package domain

import "time"

// Geographic point of interest (sourced from OSM, Wikipedia, or user input).
// Places are shared across routes and are never deleted as a side effect of
// route or point deletion.
type Place struct {
	ID          int64
	Name        string
	OSMID       *int64
	WikipediaID *string
	Address     *string
	City        *string
	Country     *string
	Lat         float64
	Lon         float64
	Data        map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasValidCoordinates reports whether lat/lon fall inside the WGS84 ranges.
func (p *Place) HasValidCoordinates() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}
