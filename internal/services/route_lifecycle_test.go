package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"travel-route-service/internal/adapters/repositories"
	"travel-route-service/internal/domain"
)

func TestCreateRouteStartsTemporary(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()

	route, err := CreateRoute(context.Background(), repo, testUserID, "Old Town walk", domain.TypeManual)
	require.NoError(t, err)
	require.Equal(t, domain.StatusTemporary, route.Status)
	require.Nil(t, route.SavedAt)
	require.NotZero(t, route.ID)
}

func TestCreateRouteValidation(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()

	_, err := CreateRoute(context.Background(), repo, testUserID, "  ", "scenic")
	require.Error(t, err)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	require.Equal(t, domain.KindValidation, de.Kind)
	require.Contains(t, de.Fields, "name")
	require.Contains(t, de.Fields, "route_type")
}

func TestUpdateRouteSetsSavedAtExactlyOnce(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)

	firstSave := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	saved := domain.StatusSaved
	updated, err := UpdateRoute(context.Background(), repo, route.ID, testUserID, RoutePatch{Status: &saved}, firstSave)
	require.NoError(t, err)
	require.NotNil(t, updated.SavedAt)
	require.True(t, updated.SavedAt.Equal(firstSave))

	// Back to temporary and saved again: the original timestamp survives.
	temporary := domain.StatusTemporary
	_, err = UpdateRoute(context.Background(), repo, route.ID, testUserID, RoutePatch{Status: &temporary}, firstSave.Add(time.Hour))
	require.NoError(t, err)

	updated, err = UpdateRoute(context.Background(), repo, route.ID, testUserID, RoutePatch{Status: &saved}, firstSave.Add(2*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, updated.SavedAt)
	require.True(t, updated.SavedAt.Equal(firstSave))
}

func TestUpdateRoutePartial(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)

	name := "Renamed walk"
	updated, err := UpdateRoute(context.Background(), repo, route.ID, testUserID, RoutePatch{Name: &name}, time.Now())
	require.NoError(t, err)
	require.Equal(t, "Renamed walk", updated.Name)
	require.Equal(t, domain.StatusTemporary, updated.Status)
	require.Nil(t, updated.SavedAt)

	// Empty patch changes nothing.
	updated, err = UpdateRoute(context.Background(), repo, route.ID, testUserID, RoutePatch{}, time.Now())
	require.NoError(t, err)
	require.Equal(t, "Renamed walk", updated.Name)
}

func TestUpdateRouteInvalidStatus(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)

	bad := "archived"
	_, err := UpdateRoute(context.Background(), repo, route.ID, testUserID, RoutePatch{Status: &bad}, time.Now())
	require.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestDeleteRouteCascadesToPointsButKeepsPlaces(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)
	point := seedPoint(t, repo, route.ID, "Market Square", 52.2497, 21.0122, 0)

	require.NoError(t, DeleteRoute(context.Background(), repo, route.ID, testUserID))

	_, err := repo.GetRoute(context.Background(), route.ID, testUserID)
	require.True(t, domain.IsKind(err, domain.KindNotFound))

	_, err = repo.GetPoint(context.Background(), route.ID, point.ID)
	require.True(t, domain.IsKind(err, domain.KindNotFound))

	// The shared place row is untouched.
	require.Equal(t, 1, repo.PlaceCount())
}

func TestDeleteRouteForeignRoute(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)

	err := DeleteRoute(context.Background(), repo, route.ID, testUserID+1)
	require.True(t, domain.IsKind(err, domain.KindNotFound))

	// Still there for the owner.
	_, err = repo.GetRoute(context.Background(), route.ID, testUserID)
	require.NoError(t, err)
}

func TestRemovePointIsIdempotent(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)
	point := seedPoint(t, repo, route.ID, "Barbican", 52.2509, 21.0089, 0)

	require.NoError(t, RemovePoint(context.Background(), repo, repo, route.ID, point.ID, testUserID))

	got, err := repo.GetPoint(context.Background(), route.ID, point.ID)
	require.NoError(t, err)
	require.True(t, got.IsRemoved)
	require.Equal(t, 0, got.Position)

	// Removing again succeeds and changes nothing.
	require.NoError(t, RemovePoint(context.Background(), repo, repo, route.ID, point.ID, testUserID))

	again, err := repo.GetPoint(context.Background(), route.ID, point.ID)
	require.NoError(t, err)
	require.True(t, again.IsRemoved)
	require.Equal(t, got.Position, again.Position)
}

func TestRemovePointUnknownPoint(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)

	err := RemovePoint(context.Background(), repo, repo, route.ID, 99, testUserID)
	require.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestListRoutesDefaultsToSaved(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()

	saved := seedRoute(t, repo, domain.TypeManual)
	status := domain.StatusSaved
	_, err := UpdateRoute(context.Background(), repo, saved.ID, testUserID, RoutePatch{Status: &status}, time.Now())
	require.NoError(t, err)

	seedRoute(t, repo, domain.TypeManual) // stays temporary

	list, err := ListRoutes(context.Background(), repo, testUserID, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, saved.ID, list[0].ID)

	list, err = ListRoutes(context.Background(), repo, testUserID, domain.StatusTemporary)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestListRoutesCountsOnlyActivePoints(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)

	seedPoint(t, repo, route.ID, "a", 10, 10, 0)
	removed := seedPoint(t, repo, route.ID, "b", 11, 11, 1)
	require.NoError(t, repo.SoftDeletePoint(context.Background(), removed.ID))

	list, err := ListRoutes(context.Background(), repo, testUserID, domain.StatusTemporary)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 1, list[0].PointsCount)
}

func TestGetRouteDetailReturnsOrderedActivePoints(t *testing.T) {
	repo := repositories.NewMemoryRouteRepository()
	route := seedRoute(t, repo, domain.TypeManual)

	seedPoint(t, repo, route.ID, "second", 11, 11, 1)
	seedPoint(t, repo, route.ID, "first", 10, 10, 0)

	got, points, err := GetRouteDetail(context.Background(), repo, repo, route.ID, testUserID)
	require.NoError(t, err)
	require.Equal(t, route.ID, got.ID)
	require.Len(t, points, 2)
	require.Equal(t, "first", points[0].Place.Name)
	require.Equal(t, "second", points[1].Place.Name)
}
