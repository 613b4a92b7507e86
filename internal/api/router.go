package api

import (
	"net/http"
	"time"

	"travel-route-service/internal/adapters/cache"
	"travel-route-service/internal/api/handlers"
	"travel-route-service/internal/ports"
)

// Router configuration shared by server wiring and tests.
type RouterConfig struct {
	Routes     ports.RouteRepository
	Points     ports.PointRepository
	Places     ports.PlaceRepository
	Cache      *cache.RedisRouteCache
	JWTSecret  []byte
	RateLimit  int
	RateWindow time.Duration
}

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler plus a shutdown func releasing the rate limiter's cleanup
// goroutine. This is the API composition root (handlers stay unaware of
// concrete adapters).
func NewRouter(cfg RouterConfig) (http.Handler, func()) {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{
		Routes: cfg.Routes,
		Points: cfg.Points,
		Cache:  cfg.Cache,
	}
	pointHandler := &handlers.PointHandler{
		Routes: cfg.Routes,
		Points: cfg.Points,
		Places: cfg.Places,
		Cache:  cfg.Cache,
	}
	optimizeHandler := &handlers.OptimizeHandler{
		Routes: cfg.Routes,
		Points: cfg.Points,
		Cache:  cfg.Cache,
	}

	mux.HandleFunc("GET /health", handlers.Health)

	protected := http.NewServeMux()
	protected.HandleFunc("GET /routes", routeHandler.List)
	protected.HandleFunc("POST /routes", routeHandler.Create)
	protected.HandleFunc("GET /routes/{id}", routeHandler.Detail)
	protected.HandleFunc("PATCH /routes/{id}", routeHandler.Update)
	protected.HandleFunc("DELETE /routes/{id}", routeHandler.Delete)
	protected.HandleFunc("POST /routes/{id}/points", pointHandler.Add)
	protected.HandleFunc("DELETE /routes/{id}/points/{pointID}", pointHandler.Remove)
	protected.HandleFunc("POST /routes/{id}/optimize", optimizeHandler.Optimize)

	mux.Handle("/", authMiddleware(cfg.JWTSecret, protected))

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 100
	}
	window := cfg.RateWindow
	if window <= 0 {
		window = time.Minute
	}

	limiter := newRateLimiter(limit, window)
	return loggingMiddleware(rateLimitMiddleware(limiter, requestIDMiddleware(mux))), limiter.Stop
}
