// Package entity contains the core business objects of the project.
package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// LiveLocation is the single latest shared position of a user.
// There is at most one per user; it is never deleted, only toggled off.
type LiveLocation struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`      // Owner; unique across all live locations.
	Name        string      `json:"name"`         // Display name shown on the map.
	Latitude    float64     `json:"lat"`          // WGS84 degrees.
	Longitude   float64     `json:"lng"`          // WGS84 degrees.
	Accuracy    *float64    `json:"accuracy"`     // Meters.
	Heading     *float64    `json:"heading"`      // Degrees in [0, 360).
	Speed       *float64    `json:"speed"`        // Meters per second.
	IsSharing   bool        `json:"is_sharing"`   // False after stop; the row and last position are kept.
	ShareWith   []uuid.UUID `json:"share_with"`   // Recipients allowed to read this record.
	LastUpdated time.Time   `json:"last_updated"` // Set on every push or settings change.
	CreatedAt   time.Time   `json:"created_at"`
}

// IsSharedWith reports whether userID is one of the recipients.
func (l *LiveLocation) IsSharedWith(userID uuid.UUID) bool {
	return slices.Contains(l.ShareWith, userID)
}

// IsFresh reports whether the record was updated within window of now.
func (l *LiveLocation) IsFresh(now time.Time, window time.Duration) bool {
	return !l.LastUpdated.Before(now.Add(-window))
}

// VisibleTo applies the fan-out rule for a viewer: the record must be actively shared
// and fresh, and the viewer must be a recipient or, when includeOwn is set, the owner.
func (l *LiveLocation) VisibleTo(viewerID uuid.UUID, includeOwn bool, now time.Time, window time.Duration) bool {
	if !l.IsSharing || !l.IsFresh(now, window) {
		return false
	}
	if l.IsSharedWith(viewerID) {
		return true
	}

	return includeOwn && l.UserID == viewerID
}

// NormalizeRecipients drops duplicates and nil ids; order is irrelevant for recipients.
func NormalizeRecipients(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}

	return out
}
