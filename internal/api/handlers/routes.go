package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"travel-route-service/internal/adapters/cache"
	"travel-route-service/internal/api/dto"
	"travel-route-service/internal/domain"
	"travel-route-service/internal/platform/obs"
	"travel-route-service/internal/ports"
	"travel-route-service/internal/services"
)

// RouteHandler exposes route lifecycle endpoints. Ownership is enforced by
// scoping every lookup to the authenticated user; foreign routes surface as
// 404.
type RouteHandler struct {
	Routes ports.RouteRepository
	Points ports.PointRepository
	Cache  *cache.RedisRouteCache
	Now    func() time.Time
}

func (h *RouteHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func routeID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := obs.UserID(r.Context())

	summaries, err := services.ListRoutes(r.Context(), h.Routes, userID, r.URL.Query().Get("status"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteSummaryResponse, 0, len(summaries))}
	for _, s := range summaries {
		res.Routes = append(res.Routes, dto.RouteSummaryResponse{
			ID:          s.ID,
			Name:        s.Name,
			Status:      s.Status,
			RouteType:   s.RouteType,
			PointsCount: s.PointsCount,
			CreatedAt:   s.CreatedAt,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRouteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	route, err := services.CreateRoute(r.Context(), h.Routes, obs.UserID(r.Context()), req.Name, req.RouteType)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toRouteResponse(route))
}

func (h *RouteHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(r)
	if !ok {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}
	userID := obs.UserID(r.Context())

	// Route ownership has to be checked even on a cache hit, so the cached
	// snapshot is only served once GetRoute succeeds.
	route, err := h.Routes.GetRoute(r.Context(), id, userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if h.Cache != nil {
		if payload, hit, err := h.Cache.Get(r.Context(), id); err != nil {
			log.Printf("route cache get failed: route_id=%d err=%v", id, err)
		} else if hit {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(payload)
			return
		}
	}

	active, err := h.Points.ActivePoints(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.RouteDetailResponse{
		ID:        route.ID,
		Name:      route.Name,
		Status:    route.Status,
		RouteType: route.RouteType,
		Points:    toPointResponses(active),
	}

	if h.Cache != nil {
		if payload, err := json.Marshal(res); err == nil {
			if err := h.Cache.Set(r.Context(), id, payload); err != nil {
				log.Printf("route cache set failed: route_id=%d err=%v", id, err)
			}
		}
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(r)
	if !ok {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}

	var req dto.UpdateRouteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	route, err := services.UpdateRoute(
		r.Context(), h.Routes, id, obs.UserID(r.Context()),
		services.RoutePatch{Name: req.Name, Status: req.Status},
		h.now(),
	)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.invalidate(r, id)
	writeJSON(w, r, http.StatusOK, toRouteResponse(route))
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(r)
	if !ok {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}

	if err := services.DeleteRoute(r.Context(), h.Routes, id, obs.UserID(r.Context())); err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.invalidate(r, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *RouteHandler) invalidate(r *http.Request, id int64) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(r.Context(), id); err != nil {
		log.Printf("route cache invalidate failed: route_id=%d err=%v", id, err)
	}
}

func toRouteResponse(route *domain.Route) dto.RouteResponse {
	return dto.RouteResponse{
		ID:        route.ID,
		Name:      route.Name,
		Status:    route.Status,
		RouteType: route.RouteType,
		SavedAt:   route.SavedAt,
		CreatedAt: route.CreatedAt,
	}
}
