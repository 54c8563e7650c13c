package memory

import (
	"context"
	"testing"
	"time"

	"safeguard/internal/domain/entity"
	"safeguard/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveLocationRepository_UpsertIsIdempotentPerUser(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().LiveLocations()
	userID := uuid.New()
	now := time.Now().UTC()

	first := &entity.LiveLocation{UserID: userID, Latitude: 1, Longitude: 2, IsSharing: true, LastUpdated: now}
	created, err := repo.Upsert(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	second := &entity.LiveLocation{UserID: userID, Latitude: 3, Longitude: 4, IsSharing: true, LastUpdated: now.Add(time.Second)}
	created, err = repo.Upsert(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	got, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got.Latitude, 1e-9)
	assert.InDelta(t, 4.0, got.Longitude, 1e-9)
}

func TestLiveLocationRepository_FindVisible(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().LiveLocations()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()

	_, err := repo.Upsert(ctx, &entity.LiveLocation{UserID: a, IsSharing: true, ShareWith: []uuid.UUID{b}, LastUpdated: now.Add(-2 * time.Minute)})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, &entity.LiveLocation{UserID: c, IsSharing: true, ShareWith: []uuid.UUID{b}, LastUpdated: now.Add(-31 * time.Minute)})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, &entity.LiveLocation{UserID: b, IsSharing: true, LastUpdated: now})
	require.NoError(t, err)

	since := now.Add(-30 * time.Minute)

	visible, err := repo.FindVisible(ctx, repository.VisibleQuery{ViewerID: b, Since: since})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, a, visible[0].UserID)

	visible, err = repo.FindVisible(ctx, repository.VisibleQuery{ViewerID: b, Since: since, IncludeOwn: true})
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, b, visible[0].UserID, "newest first")

	visible, err = repo.FindVisible(ctx, repository.VisibleQuery{ViewerID: c, Since: since})
	require.NoError(t, err)
	assert.Empty(t, visible)

	require.NoError(t, repo.StopSharing(ctx, a, now))
	visible, err = repo.FindVisible(ctx, repository.VisibleQuery{ViewerID: b, Since: since})
	require.NoError(t, err)
	assert.Empty(t, visible)

	assert.ErrorIs(t, repo.StopSharing(ctx, uuid.New(), now), repository.ErrLiveLocationNotFound)
}

func TestTrackedLocationRepository_OwnerScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().TrackedLocations()
	owner, other := uuid.New(), uuid.New()

	loc := &entity.TrackedLocation{UserID: owner, Name: "Home", Type: entity.TrackedLocationProperty, Status: entity.TrackedStatusSafe}
	require.NoError(t, repo.Create(ctx, loc))
	require.NoError(t, repo.Create(ctx, &entity.TrackedLocation{UserID: owner, Name: "Mom", Type: entity.TrackedLocationPerson, Status: entity.TrackedStatusUnknown}))

	list, err := repo.ListByOwner(ctx, owner, repository.TrackedLocationFilter{Type: entity.TrackedLocationPerson})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mom", list[0].Name)

	all, err := repo.ListByOwner(ctx, owner, repository.TrackedLocationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Mom", all[0].Name, "newest first")

	status := entity.TrackedStatusAtRisk
	_, err = repo.Update(ctx, other, loc.ID, repository.TrackedLocationPatch{Status: &status})
	assert.ErrorIs(t, err, repository.ErrTrackedLocationNotFound)

	updated, err := repo.Update(ctx, owner, loc.ID, repository.TrackedLocationPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, entity.TrackedStatusAtRisk, updated.Status)
	assert.Equal(t, "Home", updated.Name)

	assert.ErrorIs(t, repo.Delete(ctx, other, loc.ID), repository.ErrTrackedLocationNotFound)
	require.NoError(t, repo.Delete(ctx, owner, loc.ID))
}

func TestContactRepository_OwnerScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Contacts()
	owner, other := uuid.New(), uuid.New()

	contact := &entity.Contact{UserID: owner, Name: "Ana", Status: entity.ContactStatusSafe}
	require.NoError(t, repo.Create(ctx, contact))

	list, err := repo.ListByOwner(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)

	hijack := *contact
	hijack.UserID = other
	assert.ErrorIs(t, repo.Update(ctx, &hijack), repository.ErrContactNotFound)

	contact.Status = entity.ContactStatusDanger
	require.NoError(t, repo.Update(ctx, contact))

	list, err = repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.ContactStatusDanger, list[0].Status)

	require.NoError(t, repo.Delete(ctx, owner, contact.ID))
	assert.ErrorIs(t, repo.Delete(ctx, owner, contact.ID), repository.ErrContactNotFound)
}
