package domain

import "time"

const (
	StatusTemporary = "temporary"
	StatusSaved     = "saved"

	TypeManual      = "manual"
	TypeAIGenerated = "ai_generated"
)

// Maximum number of active points a manual route may hold. AI-generated
// routes are populated once, atomically, and are not subject to this cap.
const MaxManualRoutePoints = 10

// A user's travel route: an ordered collection of points, either built by
// hand or generated in one shot. RouteType is immutable after creation.
type Route struct {
	ID        int64
	UserID    int64
	Name      string
	Status    string
	RouteType string
	SavedAt   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsManual reports whether points may be added and reordered by the user.
func (r *Route) IsManual() bool { return r.RouteType == TypeManual }

func ValidStatus(s string) bool {
	return s == StatusTemporary || s == StatusSaved
}

func ValidRouteType(t string) bool {
	return t == TypeManual || t == TypeAIGenerated
}

// RouteSummary is the list-view projection of a route: no points, just an
// active-point count computed by the store.
type RouteSummary struct {
	ID          int64
	Name        string
	Status      string
	RouteType   string
	PointsCount int
	CreatedAt   time.Time
}
