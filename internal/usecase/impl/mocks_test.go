package impl

import (
	"context"

	"safeguard/internal/domain/entity"
	"safeguard/internal/domain/repository"
	"safeguard/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockEarthquakeFeed struct{ mock.Mock }

func (m *mockEarthquakeFeed) RecentEarthquakes(ctx context.Context) ([]entity.HazardAlert, error) {
	args := m.Called(ctx)
	alerts, _ := args.Get(0).([]entity.HazardAlert)

	return alerts, args.Error(1)
}

type mockWeatherProvider struct{ mock.Mock }

func (m *mockWeatherProvider) Report(ctx context.Context, lat, lng float64) (*entity.WeatherReport, error) {
	args := m.Called(ctx, lat, lng)
	report, _ := args.Get(0).(*entity.WeatherReport)

	return report, args.Error(1)
}

type mockGeocoder struct{ mock.Mock }

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (*service.GeocodeResult, error) {
	args := m.Called(ctx, address)
	result, _ := args.Get(0).(*service.GeocodeResult)

	return result, args.Error(1)
}

type mockEventPublisher struct{ mock.Mock }

func (m *mockEventPublisher) PublishLiveLocationEvent(ctx context.Context, event *service.LiveLocationEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventPublisher) Close() error {
	return m.Called().Error(0)
}

type mockLocationNotifier struct{ mock.Mock }

func (m *mockLocationNotifier) NotifyLiveLocation(ctx context.Context, event *service.LiveLocationEvent) {
	m.Called(ctx, event)
}

type mockTrackedLocationRepository struct{ mock.Mock }

func (m *mockTrackedLocationRepository) ListByOwner(ctx context.Context, userID uuid.UUID, filter repository.TrackedLocationFilter) ([]*entity.TrackedLocation, error) {
	args := m.Called(ctx, userID, filter)
	locations, _ := args.Get(0).([]*entity.TrackedLocation)

	return locations, args.Error(1)
}

func (m *mockTrackedLocationRepository) Create(ctx context.Context, location *entity.TrackedLocation) error {
	return m.Called(ctx, location).Error(0)
}

func (m *mockTrackedLocationRepository) Update(ctx context.Context, userID uuid.UUID, id int64, patch repository.TrackedLocationPatch) (*entity.TrackedLocation, error) {
	args := m.Called(ctx, userID, id, patch)
	location, _ := args.Get(0).(*entity.TrackedLocation)

	return location, args.Error(1)
}

func (m *mockTrackedLocationRepository) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}
