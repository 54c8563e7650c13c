package repository

import (
	"context"

	"safeguard/internal/domain/entity"
	"safeguard/internal/errors"

	"github.com/google/uuid"
)

// ErrContactNotFound is returned when no contact matches both id and owner.
var ErrContactNotFound = errors.New("contact not found")

// ContactRepository stores a user's private contact book.
type ContactRepository interface {
	// ListByOwner returns the owner's contacts newest first.
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]*entity.Contact, error)

	// FindByID returns ErrContactNotFound when the contact is absent or owned by someone else.
	FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.Contact, error)

	Create(ctx context.Context, contact *entity.Contact) error

	// Update replaces the mutable fields of the contact owned by contact.UserID.
	Update(ctx context.Context, contact *entity.Contact) error

	Delete(ctx context.Context, userID, id uuid.UUID) error
}
