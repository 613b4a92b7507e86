package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"travel-route-service/internal/adapters/repositories"
	"travel-route-service/internal/domain"
)

const testUserID = int64(1)

func seedRoute(t *testing.T, repo *repositories.MemoryRouteRepository, routeType string) *domain.Route {
	t.Helper()

	route := &domain.Route{
		UserID:    testUserID,
		Name:      "Old Town walk",
		Status:    domain.StatusTemporary,
		RouteType: routeType,
	}
	require.NoError(t, repo.CreateRoute(context.Background(), route))
	return route
}

func seedPoint(t *testing.T, repo *repositories.MemoryRouteRepository, routeID int64, name string, lat, lon float64, position int) *domain.RoutePoint {
	t.Helper()

	place := &domain.Place{Name: name, Lat: lat, Lon: lon}
	require.NoError(t, repo.CreatePlace(context.Background(), place))

	pt := &domain.RoutePoint{
		RouteID:  routeID,
		PlaceID:  place.ID,
		Source:   domain.SourceManual,
		Position: position,
	}
	require.NoError(t, repo.CreatePoint(context.Background(), pt))
	return pt
}

func TestOptimizeRouteReordersByProximity(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)

	// Insertion order: Castle, Barbican, Market Square. The Barbican is the
	// farthest from the Castle, the Market Square sits between them.
	seedPoint(t, repo, route.ID, "Royal Castle", 52.2480, 21.0153, 0)
	seedPoint(t, repo, route.ID, "Barbican", 52.2509, 21.0089, 1)
	seedPoint(t, repo, route.ID, "Market Square", 52.2497, 21.0122, 2)

	ordered, err := OptimizeRoute(context.Background(), repo, repo, route.ID, testUserID, OptimizeConfig{})
	require.NoError(t, err)

	require.Len(t, ordered, 3)
	require.Equal(t, "Royal Castle", ordered[0].Place.Name)
	require.Equal(t, "Market Square", ordered[1].Place.Name)
	require.Equal(t, "Barbican", ordered[2].Place.Name)

	// Positions are the dense set 0..n-1 and were persisted.
	active, err := repo.ActivePoints(context.Background(), route.ID)
	require.NoError(t, err)
	for i, p := range active {
		require.Equal(t, i, p.Position)
		require.NotNil(t, p.OptimizedPosition)
		require.Equal(t, i, *p.OptimizedPosition)
	}
	require.Equal(t, "Market Square", active[1].Place.Name)
}

func TestOptimizeRouteKeepsFirstPointAsAnchor(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)

	anchor := seedPoint(t, repo, route.ID, "start", 0, 0, 0)
	seedPoint(t, repo, route.ID, "near", 50, 50, 1)
	seedPoint(t, repo, route.ID, "nearer", 50.001, 50.001, 2)

	ordered, err := OptimizeRoute(context.Background(), repo, repo, route.ID, testUserID, OptimizeConfig{})
	require.NoError(t, err)
	require.Equal(t, anchor.ID, ordered[0].ID)
	require.Equal(t, 0, ordered[0].Position)
}

func TestOptimizeRouteRejectsNonManual(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeAIGenerated)
	seedPoint(t, repo, route.ID, "a", 10, 10, 0)
	seedPoint(t, repo, route.ID, "b", 11, 11, 1)

	_, err := OptimizeRoute(context.Background(), repo, repo, route.ID, testUserID, OptimizeConfig{})
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindBusinessRule))
	require.Contains(t, err.Error(), "manual")

	// Nothing moved.
	active, err := repo.ActivePoints(context.Background(), route.ID)
	require.NoError(t, err)
	require.Equal(t, 0, active[0].Position)
	require.Equal(t, 1, active[1].Position)
}

func TestOptimizeRouteRequiresTwoActivePoints(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)
	only := seedPoint(t, repo, route.ID, "only", 10, 10, 0)

	_, err := OptimizeRoute(context.Background(), repo, repo, route.ID, testUserID, OptimizeConfig{})
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindBusinessRule))
	require.Contains(t, err.Error(), "2")

	got, err := repo.GetPoint(context.Background(), route.ID, only.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Position)
}

func TestOptimizeRouteIgnoresRemovedPoints(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)

	seedPoint(t, repo, route.ID, "Royal Castle", 52.2480, 21.0153, 0)
	removed := seedPoint(t, repo, route.ID, "Barbican", 52.2509, 21.0089, 1)
	seedPoint(t, repo, route.ID, "Market Square", 52.2497, 21.0122, 2)
	require.NoError(t, repo.SoftDeletePoint(context.Background(), removed.ID))

	ordered, err := OptimizeRoute(context.Background(), repo, repo, route.ID, testUserID, OptimizeConfig{})
	require.NoError(t, err)
	require.Len(t, ordered, 2)

	// The removed point kept its original position and removed state.
	got, err := repo.GetPoint(context.Background(), route.ID, removed.ID)
	require.NoError(t, err)
	require.True(t, got.IsRemoved)
	require.Equal(t, 1, got.Position)

	count, err := repo.CountActivePoints(context.Background(), route.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestOptimizeRouteUnknownStrategyFallsBack(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)
	seedPoint(t, repo, route.ID, "Royal Castle", 52.2480, 21.0153, 0)
	seedPoint(t, repo, route.ID, "Barbican", 52.2509, 21.0089, 1)
	seedPoint(t, repo, route.ID, "Market Square", 52.2497, 21.0122, 2)

	ordered, err := OptimizeRoute(context.Background(), repo, repo, route.ID, testUserID, OptimizeConfig{Strategy: "simulated_annealing"})
	require.NoError(t, err)
	require.Equal(t, "Market Square", ordered[1].Place.Name)
}

func TestOptimizeRouteTSPApproxAliasesNearestNeighbor(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)
	seedPoint(t, repo, route.ID, "Royal Castle", 52.2480, 21.0153, 0)
	seedPoint(t, repo, route.ID, "Barbican", 52.2509, 21.0089, 1)
	seedPoint(t, repo, route.ID, "Market Square", 52.2497, 21.0122, 2)

	ordered, err := OptimizeRoute(context.Background(), repo, repo, route.ID, testUserID, OptimizeConfig{Strategy: StrategyTSPApprox})
	require.NoError(t, err)
	require.Equal(t, "Market Square", ordered[1].Place.Name)
}

func TestOptimizeRouteCommitFailureLeavesStateUntouched(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)
	seedPoint(t, repo, route.ID, "Royal Castle", 52.2480, 21.0153, 0)
	seedPoint(t, repo, route.ID, "Barbican", 52.2509, 21.0089, 1)
	seedPoint(t, repo, route.ID, "Market Square", 52.2497, 21.0122, 2)

	repo.FailCommit = errors.New("constraint violation")

	_, err := OptimizeRoute(context.Background(), repo, repo, route.ID, testUserID, OptimizeConfig{})
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindPersistence))

	active, err := repo.ActivePoints(context.Background(), route.ID)
	require.NoError(t, err)
	require.Equal(t, "Royal Castle", active[0].Place.Name)
	require.Equal(t, "Barbican", active[1].Place.Name)
	require.Equal(t, "Market Square", active[2].Place.Name)
	for _, p := range active {
		require.Nil(t, p.OptimizedPosition)
	}
}

func TestOptimizeRouteUnknownRoute(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()

	_, err := OptimizeRoute(context.Background(), repo, repo, 42, testUserID, OptimizeConfig{})
	require.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestOptimizeRouteForeignRouteLooksMissing(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)
	seedPoint(t, repo, route.ID, "a", 10, 10, 0)
	seedPoint(t, repo, route.ID, "b", 11, 11, 1)

	_, err := OptimizeRoute(context.Background(), repo, repo, route.ID, testUserID+1, OptimizeConfig{})
	require.True(t, domain.IsKind(err, domain.KindNotFound))
}
