package impl

import (
	"context"
	"testing"

	"safeguard/internal/domain/entity"
	domainerrors "safeguard/internal/domain/errors"
	"safeguard/internal/domain/repository"
	"safeguard/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTrackedLocationService_ListIgnoresInvalidFilters(t *testing.T) {
	repo := &mockTrackedLocationRepository{}
	svc := NewTrackedLocationService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("ListByOwner", ctx, userID, repository.TrackedLocationFilter{Type: entity.TrackedLocationPerson}).
		Return([]*entity.TrackedLocation{}, nil)

	_, err := svc.ListLocations(ctx, userID, repository.TrackedLocationFilter{
		Type:   entity.TrackedLocationPerson,
		Status: "bogus",
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTrackedLocationService_AddDefaultsStatus(t *testing.T) {
	repo := &mockTrackedLocationRepository{}
	svc := NewTrackedLocationService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("Create", ctx, mock.MatchedBy(func(l *entity.TrackedLocation) bool {
		return l.Status == entity.TrackedStatusUnknown && l.Name == "Mom" && l.UserID == userID
	})).Return(nil)

	loc, err := svc.AddLocation(ctx, userID, &usecase.AddTrackedLocationInput{
		Name: "  Mom ", Latitude: 1, Longitude: 2, Type: entity.TrackedLocationPerson, Location: "Home",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TrackedStatusUnknown, loc.Status)
}

func TestTrackedLocationService_NotFoundMapsToDomainError(t *testing.T) {
	repo := &mockTrackedLocationRepository{}
	svc := NewTrackedLocationService(repo)
	ctx := context.Background()
	userID := uuid.New()
	status := entity.TrackedStatusSafe

	repo.On("Update", ctx, userID, int64(7), repository.TrackedLocationPatch{Status: &status}).
		Return(nil, repository.ErrTrackedLocationNotFound)
	repo.On("Delete", ctx, userID, int64(7)).Return(repository.ErrTrackedLocationNotFound)

	_, err := svc.UpdateStatus(ctx, userID, 7, status)
	assert.ErrorIs(t, err, domainerrors.ErrLocationNotFound)

	err = svc.DeleteLocation(ctx, userID, 7)
	assert.ErrorIs(t, err, domainerrors.ErrLocationNotFound)
}
