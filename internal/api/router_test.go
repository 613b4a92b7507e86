package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"travel-route-service/internal/adapters/cache"
	"travel-route-service/internal/adapters/repositories"
	"travel-route-service/internal/api/dto"
)

var testSecret = []byte("test-secret")

func newTestRouter(t *testing.T) (http.Handler, *repositories.MemoryRouteRepository) {
	t.Helper()

	repo := repositories.NewMemoryRouteRepository()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	handler, stop := NewRouter(RouterConfig{
		Routes:    repo,
		Points:    repo,
		Places:    repo,
		Cache:     cache.NewRedisRouteCache(client, time.Minute),
		JWTSecret: testSecret,
	})
	t.Cleanup(stop)
	return handler, repo
}

func signToken(t *testing.T, secret []byte, userID int64) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": fmt.Sprintf("%d", userID),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doJSON(t *testing.T, handler http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func addPointBody(name string, lat, lon float64, osmID int64) dto.AddPointRequest {
	return dto.AddPointRequest{Place: dto.PlaceInputRequest{
		Name:  name,
		Lat:   lat,
		Lon:   lon,
		OSMID: &osmID,
	}}
}

func TestHealthIsOpen(t *testing.T) {
	handler, _ := newTestRouter(t)

	w := doJSON(t, handler, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health without a token, got %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	handler, _ := newTestRouter(t)

	w := doJSON(t, handler, http.MethodGet, "/routes", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}

	w = doJSON(t, handler, http.MethodGet, "/routes", signToken(t, []byte("wrong-secret"), 1), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with a forged token, got %d", w.Code)
	}
}

func TestCreateAddOptimizeDetailFlow(t *testing.T) {
	handler, _ := newTestRouter(t)
	token := signToken(t, testSecret, 1)

	w := doJSON(t, handler, http.MethodPost, "/routes", token, dto.CreateRouteRequest{
		Name:      "Warsaw walk",
		RouteType: "manual",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create route: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	route := decodeBody[dto.RouteResponse](t, w)
	if route.Status != "temporary" {
		t.Fatalf("expected new route to be temporary, got %s", route.Status)
	}

	base := fmt.Sprintf("/routes/%d", route.ID)

	// Ingest in visiting-unfriendly order: Castle first, then the far-away
	// Lazienki park, then the Barbican right next to the Castle.
	for _, in := range []dto.AddPointRequest{
		addPointBody("Royal Castle", 52.2478, 21.0153, 336065),
		addPointBody("Lazienki Park", 52.2151, 21.0354, 336068),
		addPointBody("Barbican", 52.2509, 21.0089, 336067),
	} {
		w = doJSON(t, handler, http.MethodPost, base+"/points", token, in)
		if w.Code != http.StatusCreated {
			t.Fatalf("add point %s: expected 201, got %d (%s)", in.Place.Name, w.Code, w.Body.String())
		}
	}

	// Warm the cache before optimizing; the optimizer must invalidate it.
	w = doJSON(t, handler, http.MethodGet, base, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("detail: expected 200, got %d", w.Code)
	}

	w = doJSON(t, handler, http.MethodPost, base+"/optimize", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("optimize: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	optimized := decodeBody[dto.OptimizeResponse](t, w)
	if len(optimized.Points) != 3 {
		t.Fatalf("expected 3 optimized points, got %d", len(optimized.Points))
	}

	w = doJSON(t, handler, http.MethodGet, base, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("detail after optimize: expected 200, got %d", w.Code)
	}
	detail := decodeBody[dto.RouteDetailResponse](t, w)

	wantOrder := []string{"Royal Castle", "Barbican", "Lazienki Park"}
	if len(detail.Points) != len(wantOrder) {
		t.Fatalf("expected %d points, got %d", len(wantOrder), len(detail.Points))
	}
	for i, want := range wantOrder {
		if detail.Points[i].Place.Name != want {
			t.Fatalf("order %d: expected %s, got %s", i, want, detail.Points[i].Place.Name)
		}
		if detail.Points[i].Order != i {
			t.Fatalf("expected order %d, got %d", i, detail.Points[i].Order)
		}
	}
}

func TestOptimizeTooFewPointsIsConflict(t *testing.T) {
	handler, _ := newTestRouter(t)
	token := signToken(t, testSecret, 1)

	w := doJSON(t, handler, http.MethodPost, "/routes", token, dto.CreateRouteRequest{
		Name:      "short walk",
		RouteType: "manual",
	})
	route := decodeBody[dto.RouteResponse](t, w)

	w = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/routes/%d/optimize", route.ID), token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a route with too few points, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestCreateRouteValidationIsBadRequest(t *testing.T) {
	handler, _ := newTestRouter(t)
	token := signToken(t, testSecret, 1)

	w := doJSON(t, handler, http.MethodPost, "/routes", token, dto.CreateRouteRequest{
		Name:      "",
		RouteType: "manual",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty name, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestForeignRouteIsNotFound(t *testing.T) {
	handler, _ := newTestRouter(t)
	owner := signToken(t, testSecret, 1)
	stranger := signToken(t, testSecret, 2)

	w := doJSON(t, handler, http.MethodPost, "/routes", owner, dto.CreateRouteRequest{
		Name:      "private walk",
		RouteType: "manual",
	})
	route := decodeBody[dto.RouteResponse](t, w)

	w = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/routes/%d", route.ID), stranger, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a foreign route, got %d", w.Code)
	}

	w = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/routes/%d", route.ID), stranger, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting a foreign route, got %d", w.Code)
	}
}

func TestRemovePointReturnsNoContent(t *testing.T) {
	handler, _ := newTestRouter(t)
	token := signToken(t, testSecret, 1)

	w := doJSON(t, handler, http.MethodPost, "/routes", token, dto.CreateRouteRequest{
		Name:      "walk",
		RouteType: "manual",
	})
	route := decodeBody[dto.RouteResponse](t, w)

	w = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/routes/%d/points", route.ID), token,
		addPointBody("Barbican", 52.2509, 21.0089, 336067))
	if !bytes.Contains(w.Body.Bytes(), []byte(`"position"`)) {
		t.Fatalf("expected add-point response to carry a position field, got %s", w.Body.String())
	}
	point := decodeBody[dto.AddPointResponse](t, w)

	target := fmt.Sprintf("/routes/%d/points/%d", route.ID, point.PointID)
	w = doJSON(t, handler, http.MethodDelete, target, token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d (%s)", w.Code, w.Body.String())
	}

	// Idempotent: removing again still succeeds.
	w = doJSON(t, handler, http.MethodDelete, target, token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on repeat removal, got %d", w.Code)
	}
}

func TestAddPointToAIRouteIsConflict(t *testing.T) {
	handler, repo := newTestRouter(t)
	token := signToken(t, testSecret, 1)

	w := doJSON(t, handler, http.MethodPost, "/routes", token, dto.CreateRouteRequest{
		Name:      "generated",
		RouteType: "ai_generated",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create ai route: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	route := decodeBody[dto.RouteResponse](t, w)

	w = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/routes/%d/points", route.ID), token,
		addPointBody("Barbican", 52.2509, 21.0089, 336067))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 adding to an ai route, got %d (%s)", w.Code, w.Body.String())
	}
	if repo.PointCount() != 0 {
		t.Fatalf("expected no points stored, got %d", repo.PointCount())
	}
}
