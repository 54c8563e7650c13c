package usecase

import (
	"context"

	"safeguard/internal/domain/entity"

	"github.com/google/uuid"
)

// ContactInput creates or replaces a contact. When Latitude and Longitude are both nil
// the address is geocoded.
type ContactInput struct {
	Name         string
	Relationship string
	Phone        *string
	Email        *string
	Address      string
	Latitude     *float64
	Longitude    *float64
	// Status defaults to safe when empty.
	Status      entity.ContactStatus
	Description *string
}

// ContactUsecase defines the per-user contact book.
type ContactUsecase interface {
	ListContacts(ctx context.Context, userID uuid.UUID) ([]*entity.Contact, error)
	AddContact(ctx context.Context, userID uuid.UUID, input *ContactInput) (*entity.Contact, error)
	UpdateContact(ctx context.Context, userID, id uuid.UUID, input *ContactInput) (*entity.Contact, error)
	DeleteContact(ctx context.Context, userID, id uuid.UUID) error
}
