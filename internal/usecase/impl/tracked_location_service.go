package impl

import (
	"context"
	"strings"

	"safeguard/internal/domain/entity"
	domainerrors "safeguard/internal/domain/errors"
	"safeguard/internal/domain/repository"
	"safeguard/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type trackedLocationService struct {
	repo repository.TrackedLocationRepository
}

// NewTrackedLocationService creates a new tracked location service instance
func NewTrackedLocationService(repo repository.TrackedLocationRepository) usecase.TrackedLocationUsecase {
	return &trackedLocationService{repo: repo}
}

// ListLocations returns the owner's rows. Invalid filter values are ignored.
func (s *trackedLocationService) ListLocations(ctx context.Context, userID uuid.UUID, filter repository.TrackedLocationFilter) ([]*entity.TrackedLocation, error) {
	if !filter.Type.Valid() {
		filter.Type = ""
	}
	if !filter.Status.Valid() {
		filter.Status = ""
	}

	locations, err := s.repo.ListByOwner(ctx, userID, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tracked locations")
	}

	return locations, nil
}

// AddLocation creates a tracked location owned by userID.
func (s *trackedLocationService) AddLocation(ctx context.Context, userID uuid.UUID, input *usecase.AddTrackedLocationInput) (*entity.TrackedLocation, error) {
	status := input.Status
	if status == "" {
		status = entity.TrackedStatusUnknown
	}

	location := &entity.TrackedLocation{
		UserID:    userID,
		Name:      strings.TrimSpace(input.Name),
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Type:      input.Type,
		Status:    status,
		Location:  strings.TrimSpace(input.Location),
	}

	if err := s.repo.Create(ctx, location); err != nil {
		return nil, errors.Wrap(err, "failed to create tracked location")
	}

	return location, nil
}

// UpdateLocation applies a partial update to an owned row.
func (s *trackedLocationService) UpdateLocation(ctx context.Context, userID uuid.UUID, id int64, patch repository.TrackedLocationPatch) (*entity.TrackedLocation, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if patch.Location != nil {
		trimmed := strings.TrimSpace(*patch.Location)
		patch.Location = &trimmed
	}

	location, err := s.repo.Update(ctx, userID, id, patch)
	if err != nil {
		return nil, mapTrackedLocationError(err, "failed to update tracked location")
	}

	return location, nil
}

// UpdateStatus is the quick status change used by the map markers.
func (s *trackedLocationService) UpdateStatus(ctx context.Context, userID uuid.UUID, id int64, status entity.TrackedLocationStatus) (*entity.TrackedLocation, error) {
	location, err := s.repo.Update(ctx, userID, id, repository.TrackedLocationPatch{Status: &status})
	if err != nil {
		return nil, mapTrackedLocationError(err, "failed to update tracked location status")
	}

	return location, nil
}

// DeleteLocation hard deletes an owned row.
func (s *trackedLocationService) DeleteLocation(ctx context.Context, userID uuid.UUID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return mapTrackedLocationError(err, "failed to delete tracked location")
	}

	return nil
}

func mapTrackedLocationError(err error, message string) error {
	if errors.Is(err, repository.ErrTrackedLocationNotFound) {
		return errors.Wrap(domainerrors.ErrLocationNotFound, message)
	}

	return errors.Wrap(err, message)
}
