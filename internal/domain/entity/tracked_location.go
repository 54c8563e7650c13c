package entity

import (
	"time"

	"github.com/google/uuid"
)

// TrackedLocationType distinguishes people from properties on the map.
type TrackedLocationType string

const (
	TrackedLocationPerson   TrackedLocationType = "person"
	TrackedLocationProperty TrackedLocationType = "property"
)

// Valid reports whether t is a known type.
func (t TrackedLocationType) Valid() bool {
	return t == TrackedLocationPerson || t == TrackedLocationProperty
}

// TrackedLocationStatus is the safety status of a tracked person or property.
type TrackedLocationStatus string

const (
	TrackedStatusSafe    TrackedLocationStatus = "safe"
	TrackedStatusAtRisk  TrackedLocationStatus = "at_risk"
	TrackedStatusUnknown TrackedLocationStatus = "unknown"
)

// Valid reports whether s is a known status.
func (s TrackedLocationStatus) Valid() bool {
	return s == TrackedStatusSafe || s == TrackedStatusAtRisk || s == TrackedStatusUnknown
}

// TrackedLocation is a person or property the owner watches on the map.
type TrackedLocation struct {
	ID          int64                 `json:"id"`
	UserID      uuid.UUID             `json:"user_id"`
	Name        string                `json:"name"`
	Latitude    float64               `json:"lat"`
	Longitude   float64               `json:"lng"`
	Type        TrackedLocationType   `json:"type"`
	Status      TrackedLocationStatus `json:"status"`
	Location    string                `json:"location"` // Human readable description of the place.
	CreatedAt   time.Time             `json:"created_at"`
	LastUpdated time.Time             `json:"last_updated"`
}
