package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"travel-route-service/internal/api/dto"
	"travel-route-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeDomainError maps the closed error taxonomy onto HTTP statuses.
// Validation failures carry their field map; everything unrecognized is a
// generic 500 so storage details never leak.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		log.Printf("internal error: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	switch de.Kind {
	case domain.KindValidation:
		writeJSON(w, r, http.StatusBadRequest, map[string]any{"errors": de.Fields})
	case domain.KindBusinessRule:
		writeError(w, r, http.StatusConflict, de.Message)
	case domain.KindNotFound:
		writeError(w, r, http.StatusNotFound, de.Message)
	default:
		log.Printf("persistence error: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a single JSON object, rejecting unknown fields and
// trailing garbage.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

// unmarshalStrict decodes one JSON object from raw bytes with the same
// strictness as decodeJSON.
func unmarshalStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

func toPointResponse(p *domain.RoutePoint) dto.RoutePointResponse {
	res := dto.RoutePointResponse{
		PointID: p.ID,
		Order:   p.Position,
	}
	if p.Place != nil {
		res.Place = dto.PlaceResponse{
			ID:      p.Place.ID,
			Name:    p.Place.Name,
			Lat:     p.Place.Lat,
			Lon:     p.Place.Lon,
			Address: p.Place.Address,
		}
	}
	if p.Description != nil {
		res.Description = &dto.DescriptionResponse{
			ID:      p.Description.ID,
			Content: p.Description.Content,
		}
	}
	return res
}

func toAddPointResponse(p *domain.RoutePoint) dto.AddPointResponse {
	base := toPointResponse(p)
	return dto.AddPointResponse{
		PointID:     base.PointID,
		Position:    base.Order,
		Place:       base.Place,
		Description: base.Description,
	}
}

func toPointResponses(points []*domain.RoutePoint) []dto.RoutePointResponse {
	out := make([]dto.RoutePointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, toPointResponse(p))
	}
	return out
}
