package handlers

import (
	"io"
	"log"
	"net/http"

	"travel-route-service/internal/adapters/cache"
	"travel-route-service/internal/api/dto"
	"travel-route-service/internal/platform/obs"
	"travel-route-service/internal/ports"
	"travel-route-service/internal/services"
)

// OptimizeHandler triggers the route point reordering.
type OptimizeHandler struct {
	Routes ports.RouteRepository
	Points ports.PointRepository
	Cache  *cache.RedisRouteCache
}

func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(r)
	if !ok {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}

	// The body is optional; an empty body means default strategy.
	var req dto.OptimizeRequest
	if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
		if err := unmarshalStrict(body, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid json body")
			return
		}
	}
	defer r.Body.Close()

	points, err := services.OptimizeRoute(
		r.Context(), h.Routes, h.Points,
		id, obs.UserID(r.Context()),
		services.OptimizeConfig{Strategy: req.Strategy},
	)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Invalidate(r.Context(), id); err != nil {
			log.Printf("route cache invalidate failed: route_id=%d err=%v", id, err)
		}
	}

	writeJSON(w, r, http.StatusOK, dto.OptimizeResponse{Points: toPointResponses(points)})
}
