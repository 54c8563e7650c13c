package repository

import (
	"context"

	"safeguard/internal/domain/entity"
	"safeguard/internal/errors"

	"github.com/google/uuid"
)

// ErrTrackedLocationNotFound is returned when no row matches both id and owner.
var ErrTrackedLocationNotFound = errors.New("tracked location not found")

// TrackedLocationFilter narrows a listing. Zero values match everything.
type TrackedLocationFilter struct {
	Type   entity.TrackedLocationType
	Status entity.TrackedLocationStatus
}

// TrackedLocationPatch is a partial update. Nil fields are left untouched.
type TrackedLocationPatch struct {
	Name      *string
	Latitude  *float64
	Longitude *float64
	Type      *entity.TrackedLocationType
	Status    *entity.TrackedLocationStatus
	Location  *string
}

// TrackedLocationRepository stores people and properties watched by a user.
type TrackedLocationRepository interface {
	// ListByOwner returns the owner's rows newest first.
	ListByOwner(ctx context.Context, userID uuid.UUID, filter TrackedLocationFilter) ([]*entity.TrackedLocation, error)

	Create(ctx context.Context, location *entity.TrackedLocation) error

	// Update applies patch to the row owned by userID and returns the stored row.
	Update(ctx context.Context, userID uuid.UUID, id int64, patch TrackedLocationPatch) (*entity.TrackedLocation, error)

	// Delete removes the row owned by userID.
	Delete(ctx context.Context, userID uuid.UUID, id int64) error
}
