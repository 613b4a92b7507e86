package domain

import "time"

const (
	SourceManual      = "manual"
	SourceAIGenerated = "ai_generated"
)

// A single stop on a route: the join between Route and Place, carrying
// ordering state.
//
// Position is zero-based and unique only among the active (non-removed)
// points of a route. Soft-deleted points keep their position but are
// excluded from every ordering computation, so gaps are normal.
// OptimizedPosition records the last optimizer output and is never read
// back by any operation.
type RoutePoint struct {
	ID                int64
	RouteID           int64
	PlaceID           int64
	Source            string
	Position          int
	OptimizedPosition *int
	IsRemoved         bool
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Attached by active-point queries.
	Place       *Place
	Description *Description
}

func ValidSource(s string) bool {
	return s == SourceManual || s == SourceAIGenerated
}
