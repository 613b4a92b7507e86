package ports

import (
	"context"
	"travel-route-service/internal/domain"
)

// Port: shared Place records. Places are created on first reference and
// deduplicated by external identifier; they are never deleted through this
// port.
type PlaceRepository interface {
	// Find a place by OSM identifier. Returns (nil, nil) when absent.
	FindByOSMID(ctx context.Context, osmID int64) (*domain.Place, error)
	// Find a place by Wikipedia identifier. Returns (nil, nil) when absent.
	FindByWikipediaID(ctx context.Context, wikipediaID string) (*domain.Place, error)
	// Persist a new place and fill in its generated ID.
	CreatePlace(ctx context.Context, place *domain.Place) error
}
