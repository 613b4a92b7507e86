package services

import (
	"context"
	"fmt"
	"strings"

	"travel-route-service/internal/domain"
	"travel-route-service/internal/ports"
)

// Place attributes supplied when attaching a point to a manual route.
type PlaceInput struct {
	Name        string
	Lat         float64
	Lon         float64
	OSMID       *int64
	WikipediaID *string
	Address     *string
}

func (in PlaceInput) validate() error {
	fields := map[string]string{}

	if strings.TrimSpace(in.Name) == "" {
		fields["place.name"] = "name is required"
	}
	if in.Lat < -90 || in.Lat > 90 {
		fields["place.lat"] = "latitude must be between -90 and 90"
	}
	if in.Lon < -180 || in.Lon > 180 {
		fields["place.lon"] = "longitude must be between -180 and 180"
	}

	if len(fields) > 0 {
		return domain.NewValidationError(fields)
	}
	return nil
}

// AddPoint attaches a new point to a manual route, resolving or creating
// the underlying place.
//
// Place resolution prefers an osm_id match over a wikipedia_id match; only
// when neither identifier resolves is a new place created from the supplied
// attributes. The cap check, the position read and the insert (place
// included when new) are a single atomic storage operation, so concurrent
// ingests on the same route cannot both slip past the cap, and a failed
// insert strands no place row.
func AddPoint(
	ctx context.Context,
	routes ports.RouteRepository,
	points ports.PointRepository,
	places ports.PlaceRepository,
	routeID, userID int64,
	input PlaceInput,
) (*domain.RoutePoint, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	route, err := routes.GetRoute(ctx, routeID, userID)
	if err != nil {
		return nil, fmt.Errorf("add point: %w", err)
	}

	if !route.IsManual() {
		return nil, domain.NewBusinessRuleError("cannot add points to an AI-generated route")
	}

	existing, err := findPlace(ctx, places, input)
	if err != nil {
		return nil, fmt.Errorf("add point: %w", err)
	}

	point := &domain.RoutePoint{
		RouteID: routeID,
		Source:  domain.SourceManual,
	}
	var newPlace *domain.Place
	if existing != nil {
		point.PlaceID = existing.ID
		point.Place = existing
	} else {
		newPlace = &domain.Place{
			Name:        input.Name,
			Lat:         input.Lat,
			Lon:         input.Lon,
			OSMID:       input.OSMID,
			WikipediaID: input.WikipediaID,
			Address:     input.Address,
		}
		point.Place = newPlace
	}

	if err := points.CreatePointAtNextPosition(ctx, point, newPlace, domain.MaxManualRoutePoints); err != nil {
		if domain.IsKind(err, domain.KindBusinessRule) {
			return nil, err
		}
		return nil, fmt.Errorf("add point: create point: %w", err)
	}

	return point, nil
}

// Look up an existing place by external identifier, osm_id taking
// precedence. Returns nil when neither identifier resolves.
func findPlace(ctx context.Context, places ports.PlaceRepository, input PlaceInput) (*domain.Place, error) {
	if input.OSMID != nil {
		place, err := places.FindByOSMID(ctx, *input.OSMID)
		if err != nil {
			return nil, fmt.Errorf("resolve place by osm_id: %w", err)
		}
		if place != nil {
			return place, nil
		}
	}

	if input.WikipediaID != nil && *input.WikipediaID != "" {
		place, err := places.FindByWikipediaID(ctx, *input.WikipediaID)
		if err != nil {
			return nil, fmt.Errorf("resolve place by wikipedia_id: %w", err)
		}
		if place != nil {
			return place, nil
		}
	}

	return nil, nil
}
