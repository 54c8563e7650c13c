package usecase

import (
	"context"

	"safeguard/internal/domain/entity"
	"safeguard/internal/domain/repository"

	"github.com/google/uuid"
)

// AddTrackedLocationInput creates a watched person or property.
type AddTrackedLocationInput struct {
	Name      string
	Latitude  float64
	Longitude float64
	Type      entity.TrackedLocationType
	// Status defaults to unknown when empty.
	Status   entity.TrackedLocationStatus
	Location string
}

// TrackedLocationUsecase defines per-user CRUD over tracked locations.
type TrackedLocationUsecase interface {
	ListLocations(ctx context.Context, userID uuid.UUID, filter repository.TrackedLocationFilter) ([]*entity.TrackedLocation, error)
	AddLocation(ctx context.Context, userID uuid.UUID, input *AddTrackedLocationInput) (*entity.TrackedLocation, error)
	UpdateLocation(ctx context.Context, userID uuid.UUID, id int64, patch repository.TrackedLocationPatch) (*entity.TrackedLocation, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, id int64, status entity.TrackedLocationStatus) (*entity.TrackedLocation, error)
	DeleteLocation(ctx context.Context, userID uuid.UUID, id int64) error
}
