package handlers

import (
	"log"
	"net/http"
	"strconv"

	"travel-route-service/internal/adapters/cache"
	"travel-route-service/internal/api/dto"
	"travel-route-service/internal/platform/obs"
	"travel-route-service/internal/ports"
	"travel-route-service/internal/services"
)

// PointHandler exposes point ingestion and soft deletion on manual routes.
type PointHandler struct {
	Routes ports.RouteRepository
	Points ports.PointRepository
	Places ports.PlaceRepository
	Cache  *cache.RedisRouteCache
}

func (h *PointHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(r)
	if !ok {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}

	var req dto.AddPointRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	point, err := services.AddPoint(
		r.Context(), h.Routes, h.Points, h.Places,
		id, obs.UserID(r.Context()),
		services.PlaceInput{
			Name:        req.Place.Name,
			Lat:         req.Place.Lat,
			Lon:         req.Place.Lon,
			OSMID:       req.Place.OSMID,
			WikipediaID: req.Place.WikipediaID,
			Address:     req.Place.Address,
		},
	)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.invalidate(r, id)
	writeJSON(w, r, http.StatusCreated, toAddPointResponse(point))
}

func (h *PointHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(r)
	if !ok {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}
	pointID, err := strconv.ParseInt(r.PathValue("pointID"), 10, 64)
	if err != nil || pointID <= 0 {
		writeError(w, r, http.StatusNotFound, "route point not found")
		return
	}

	if err := services.RemovePoint(r.Context(), h.Routes, h.Points, id, pointID, obs.UserID(r.Context())); err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.invalidate(r, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *PointHandler) invalidate(r *http.Request, id int64) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(r.Context(), id); err != nil {
		log.Printf("route cache invalidate failed: route_id=%d err=%v", id, err)
	}
}
