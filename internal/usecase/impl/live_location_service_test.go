package impl

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"safeguard/config"
	domainerrors "safeguard/internal/domain/errors"
	"safeguard/internal/domain/service"
	"safeguard/internal/infra/persistence/memory"
	"safeguard/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type liveLocationFixture struct {
	svc       *liveLocationService
	publisher *mockEventPublisher
	notifier  *mockLocationNotifier
	clock     time.Time
}

func newLiveLocationFixture(t *testing.T) *liveLocationFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	store := memory.NewStore()

	f := &liveLocationFixture{
		publisher: &mockEventPublisher{},
		notifier:  &mockLocationNotifier{},
		clock:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.publisher.On("PublishLiveLocationEvent", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notifier.On("NotifyLiveLocation", mock.Anything, mock.Anything).Return().Maybe()

	svc := NewLiveLocationService(LiveLocationServiceParams{
		TxManager:   store.TransactionManager(),
		LiveLocRepo: store.LiveLocations(),
		Publisher:   f.publisher,
		Notifier:    f.notifier,
		Config:      cfg,
		Logger:      slog.Default(),
	}).(*liveLocationService)
	svc.now = func() time.Time { return f.clock }
	f.svc = svc

	return f
}

func TestLiveLocationService_ShareLocation_CreatesThenUpdates(t *testing.T) {
	f := newLiveLocationFixture(t)
	ctx := context.Background()
	owner, friend := uuid.New(), uuid.New()

	input := &usecase.ShareLocationInput{Latitude: 40, Longitude: -73, ShareWith: []uuid.UUID{friend, friend}}

	first, created, err := f.svc.ShareLocation(ctx, owner, input)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "My Location", first.Name)
	assert.True(t, first.IsSharing)
	assert.Equal(t, []uuid.UUID{friend}, first.ShareWith)

	f.clock = f.clock.Add(time.Minute)
	second, created, err := f.svc.ShareLocation(ctx, owner, input)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, f.clock, second.LastUpdated)

	f.publisher.AssertNumberOfCalls(t, "PublishLiveLocationEvent", 2)
	f.notifier.AssertNumberOfCalls(t, "NotifyLiveLocation", 2)
}

func TestLiveLocationService_FanOut(t *testing.T) {
	f := newLiveLocationFixture(t)
	ctx := context.Background()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	_, _, err := f.svc.ShareLocation(ctx, a, &usecase.ShareLocationInput{Latitude: 40.0, Longitude: -73.0, ShareWith: []uuid.UUID{b}})
	require.NoError(t, err)

	forB, err := f.svc.GetVisibleLocations(ctx, b, false)
	require.NoError(t, err)
	require.Len(t, forB, 1)
	assert.Equal(t, a, forB[0].UserID)
	assert.InDelta(t, 40.0, forB[0].Latitude, 1e-9)
	assert.InDelta(t, -73.0, forB[0].Longitude, 1e-9)

	forC, err := f.svc.GetVisibleLocations(ctx, c, false)
	require.NoError(t, err)
	assert.Empty(t, forC)

	own, err := f.svc.GetVisibleLocations(ctx, a, true)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	f.clock = f.clock.Add(31 * time.Minute)
	stale, err := f.svc.GetVisibleLocations(ctx, b, false)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestLiveLocationService_UpdateSharingSettings(t *testing.T) {
	f := newLiveLocationFixture(t)
	ctx := context.Background()
	owner, friend := uuid.New(), uuid.New()

	_, err := f.svc.UpdateSharingSettings(ctx, owner, &usecase.SharingSettingsInput{IsSharing: true})
	assert.ErrorIs(t, err, domainerrors.ErrLiveLocationNotFound)

	_, _, err = f.svc.ShareLocation(ctx, owner, &usecase.ShareLocationInput{Latitude: 1, Longitude: 2})
	require.NoError(t, err)

	updated, err := f.svc.UpdateSharingSettings(ctx, owner, &usecase.SharingSettingsInput{IsSharing: true, ShareWith: []uuid.UUID{friend}})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{friend}, updated.ShareWith)
	assert.InDelta(t, 1.0, updated.Latitude, 1e-9)

	visible, err := f.svc.GetVisibleLocations(ctx, friend, false)
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestLiveLocationService_StopSharing(t *testing.T) {
	f := newLiveLocationFixture(t)
	ctx := context.Background()
	owner, friend := uuid.New(), uuid.New()

	_, err := f.svc.StopSharing(ctx, owner)
	assert.ErrorIs(t, err, domainerrors.ErrLiveLocationNotFound)

	_, _, err = f.svc.ShareLocation(ctx, owner, &usecase.ShareLocationInput{Latitude: 1, Longitude: 2, ShareWith: []uuid.UUID{friend}})
	require.NoError(t, err)

	stopped, err := f.svc.StopSharing(ctx, owner)
	require.NoError(t, err)
	assert.False(t, stopped.IsSharing)
	assert.InDelta(t, 2.0, stopped.Longitude, 1e-9)

	visible, err := f.svc.GetVisibleLocations(ctx, friend, false)
	require.NoError(t, err)
	assert.Empty(t, visible)

	f.publisher.AssertCalled(t, "PublishLiveLocationEvent", mock.Anything, mock.MatchedBy(func(e *service.LiveLocationEvent) bool {
		return e.Type == service.LiveLocationStopped && !e.IsSharing
	}))
}

func TestLiveLocationService_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newLiveLocationFixture(t)
	f.publisher.ExpectedCalls = nil
	f.publisher.On("PublishLiveLocationEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	loc, _, err := f.svc.ShareLocation(context.Background(), uuid.New(), &usecase.ShareLocationInput{Latitude: 1, Longitude: 2})
	require.NoError(t, err)
	assert.NotNil(t, loc)
	f.notifier.AssertNumberOfCalls(t, "NotifyLiveLocation", 1)
}
