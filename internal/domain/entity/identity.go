package entity

import "github.com/google/uuid"

// Identity is the authenticated caller resolved from a session token.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
}
