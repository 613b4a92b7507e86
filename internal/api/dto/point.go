package dto

type PlaceInputRequest struct {
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	OSMID       *int64  `json:"osm_id"`
	WikipediaID *string `json:"wikipedia_id"`
	Address     *string `json:"address"`
}

type AddPointRequest struct {
	Place PlaceInputRequest `json:"place"`
}

type OptimizeRequest struct {
	Strategy string `json:"strategy"`
}

type PlaceResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address *string `json:"address,omitempty"`
}

type DescriptionResponse struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

type RoutePointResponse struct {
	PointID     int64                `json:"point_id"`
	Order       int                  `json:"order"`
	Place       PlaceResponse        `json:"place"`
	Description *DescriptionResponse `json:"description"`
}

// AddPointResponse is the creation view of a point: same shape as
// RoutePointResponse except the slot is named position, as it is the stored
// position rather than a computed visiting order.
type AddPointResponse struct {
	PointID     int64                `json:"point_id"`
	Position    int                  `json:"position"`
	Place       PlaceResponse        `json:"place"`
	Description *DescriptionResponse `json:"description"`
}

type OptimizeResponse struct {
	Points []RoutePointResponse `json:"points"`
}
