package domain

import "time"

// Free-text description attached to exactly one RoutePoint. Soft-deleting
// the point leaves the description in place; only hard route deletion
// removes it.
type Description struct {
	ID           int64
	RoutePointID int64
	LanguageCode string
	Content      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
