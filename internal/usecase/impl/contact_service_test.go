package impl

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"safeguard/internal/domain/entity"
	domainerrors "safeguard/internal/domain/errors"
	"safeguard/internal/domain/service"
	"safeguard/internal/infra/persistence/memory"
	"safeguard/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newContactService(geocoder *mockGeocoder) usecase.ContactUsecase {
	return NewContactService(ContactServiceParams{
		Repo:     memory.NewStore().Contacts(),
		Geocoder: geocoder,
		Logger:   slog.Default(),
	})
}

func TestContactService_AddWithCoordinatesSkipsGeocoder(t *testing.T) {
	geocoder := &mockGeocoder{}
	svc := newContactService(geocoder)
	lat, lng := 40.7, -74.0

	contact, err := svc.AddContact(context.Background(), uuid.New(), &usecase.ContactInput{
		Name: "Sam", Relationship: "Sibling", Address: "1 Main St", Latitude: &lat, Longitude: &lng,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ContactStatusSafe, contact.Status)
	assert.NotEqual(t, uuid.Nil, contact.ID)
	geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestContactService_AddGeocodesAddress(t *testing.T) {
	geocoder := &mockGeocoder{}
	geocoder.On("Geocode", mock.Anything, "1600 Pennsylvania Ave").
		Return(&service.GeocodeResult{Latitude: 38.8977, Longitude: -77.0365}, nil)
	svc := newContactService(geocoder)

	contact, err := svc.AddContact(context.Background(), uuid.New(), &usecase.ContactInput{
		Name: "Alex", Relationship: "Friend", Address: "1600 Pennsylvania Ave",
	})
	require.NoError(t, err)
	assert.InDelta(t, 38.8977, contact.Latitude, 1e-9)
	assert.InDelta(t, -77.0365, contact.Longitude, 1e-9)
}

func TestContactService_GeocodeFailure(t *testing.T) {
	geocoder := &mockGeocoder{}
	geocoder.On("Geocode", mock.Anything, mock.Anything).Return(nil, service.ErrNoGeocodeMatch)
	svc := newContactService(geocoder)

	_, err := svc.AddContact(context.Background(), uuid.New(), &usecase.ContactInput{
		Name: "Alex", Relationship: "Friend", Address: "nowhere at all",
	})
	assert.ErrorIs(t, err, domainerrors.ErrGeocodeFailed)
}

func TestContactService_OwnerScoping(t *testing.T) {
	svc := newContactService(&mockGeocoder{})
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	lat, lng := 1.0, 2.0

	contact, err := svc.AddContact(ctx, owner, &usecase.ContactInput{
		Name: "Sam", Relationship: "Sibling", Address: "1 Main St", Latitude: &lat, Longitude: &lng,
	})
	require.NoError(t, err)

	_, err = svc.UpdateContact(ctx, other, contact.ID, &usecase.ContactInput{
		Name: "Hijack", Relationship: "x", Address: "y", Latitude: &lat, Longitude: &lng,
	})
	assert.ErrorIs(t, err, domainerrors.ErrContactNotFound)
	assert.True(t, errors.Is(svc.DeleteContact(ctx, other, contact.ID), domainerrors.ErrContactNotFound))

	updated, err := svc.UpdateContact(ctx, owner, contact.ID, &usecase.ContactInput{
		Name: "Samantha", Relationship: "Sibling", Address: "1 Main St", Latitude: &lat, Longitude: &lng, Status: entity.ContactStatusCaution,
	})
	require.NoError(t, err)
	assert.Equal(t, "Samantha", updated.Name)
	assert.Equal(t, contact.CreatedAt, updated.CreatedAt)

	list, err := svc.ListContacts(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)
}
