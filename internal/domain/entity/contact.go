package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContactStatus is the safety status shown on a contact marker.
type ContactStatus string

const (
	ContactStatusSafe    ContactStatus = "safe"
	ContactStatusCaution ContactStatus = "caution"
	ContactStatusDanger  ContactStatus = "danger"
)

// Valid reports whether s is a known status.
func (s ContactStatus) Valid() bool {
	return s == ContactStatusSafe || s == ContactStatusCaution || s == ContactStatusDanger
}

// Contact is a person or place in the owner's contact book. Contacts are never shared.
type Contact struct {
	ID           uuid.UUID     `json:"id"`
	UserID       uuid.UUID     `json:"user_id"`
	Name         string        `json:"name"`
	Relationship string        `json:"relationship"`
	Phone        *string       `json:"phone,omitempty"`
	Email        *string       `json:"email,omitempty"`
	Address      string        `json:"address"`
	Latitude     float64       `json:"lat"`
	Longitude    float64       `json:"lng"`
	Status       ContactStatus `json:"status"`
	Description  *string       `json:"description,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}
