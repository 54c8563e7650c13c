package impl

import (
	"context"
	"log/slog"
	"time"

	"safeguard/config"
	deliverycontext "safeguard/internal/delivery/context"
	"safeguard/internal/domain/entity"
	domainerrors "safeguard/internal/domain/errors"
	"safeguard/internal/domain/repository"
	"safeguard/internal/domain/service"
	"safeguard/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type liveLocationService struct {
	txManager   repository.TransactionManager
	liveLocRepo repository.LiveLocationRepository
	publisher   service.EventPublisher
	notifier    service.LocationNotifier
	window      time.Duration
	defaultName string
	logger      *slog.Logger
	now         func() time.Time
}

// LiveLocationServiceParams holds dependencies for LiveLocationService, injected by Fx.
type LiveLocationServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	LiveLocRepo repository.LiveLocationRepository
	Publisher   service.EventPublisher
	Notifier    service.LocationNotifier
	Config      *config.Config
	Logger      *slog.Logger
}

// NewLiveLocationService creates a new live location service instance
func NewLiveLocationService(params LiveLocationServiceParams) usecase.LiveLocationUsecase {
	return &liveLocationService{
		txManager:   params.TxManager,
		liveLocRepo: params.LiveLocRepo,
		publisher:   params.Publisher,
		notifier:    params.Notifier,
		window:      params.Config.LiveLocation.FreshnessWindow,
		defaultName: params.Config.LiveLocation.DefaultName,
		logger:      params.Logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ShareLocation upserts the caller's single live location record.
func (s *liveLocationService) ShareLocation(ctx context.Context, userID uuid.UUID, input *usecase.ShareLocationInput) (*entity.LiveLocation, bool, error) {
	name := input.Name
	if name == "" {
		name = s.defaultName
	}
	isSharing := true
	if input.IsSharing != nil {
		isSharing = *input.IsSharing
	}

	location := &entity.LiveLocation{
		UserID:      userID,
		Name:        name,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Accuracy:    input.Accuracy,
		Heading:     input.Heading,
		Speed:       input.Speed,
		IsSharing:   isSharing,
		ShareWith:   entity.NormalizeRecipients(input.ShareWith),
		LastUpdated: s.now(),
	}

	created, err := s.liveLocRepo.Upsert(ctx, location)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to upsert live location")
	}

	s.announce(ctx, service.LiveLocationUpdated, location)

	return location, created, nil
}

// UpdateSharingSettings changes is_sharing and share_with, leaving the position untouched.
func (s *liveLocationService) UpdateSharingSettings(ctx context.Context, userID uuid.UUID, input *usecase.SharingSettingsInput) (*entity.LiveLocation, error) {
	var updated *entity.LiveLocation

	err := s.txManager.Execute(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		repo := txRepoFactory.NewLiveLocationRepository()

		location, err := repo.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrLiveLocationNotFound) {
				return errors.Wrap(domainerrors.ErrLiveLocationNotFound, "no location shared yet")
			}

			return errors.Wrap(err, "failed to find live location")
		}

		location.IsSharing = input.IsSharing
		location.ShareWith = entity.NormalizeRecipients(input.ShareWith)
		location.LastUpdated = s.now()

		if _, err := repo.Upsert(ctx, location); err != nil {
			return errors.Wrap(err, "failed to update sharing settings")
		}
		updated = location

		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := service.LiveLocationUpdated
	if !updated.IsSharing {
		eventType = service.LiveLocationStopped
	}
	s.announce(ctx, eventType, updated)

	return updated, nil
}

// StopSharing sets is_sharing to false. The row is kept.
func (s *liveLocationService) StopSharing(ctx context.Context, userID uuid.UUID) (*entity.LiveLocation, error) {
	var stopped *entity.LiveLocation

	err := s.txManager.Execute(ctx, func(txRepoFactory repository.RepositoryFactory) error {
		repo := txRepoFactory.NewLiveLocationRepository()

		if err := repo.StopSharing(ctx, userID, s.now()); err != nil {
			if errors.Is(err, repository.ErrLiveLocationNotFound) {
				return errors.Wrap(domainerrors.ErrLiveLocationNotFound, "nothing to stop")
			}

			return errors.Wrap(err, "failed to stop sharing")
		}

		location, err := repo.FindByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to reload live location")
		}
		stopped = location

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, service.LiveLocationStopped, stopped)

	return stopped, nil
}

// GetVisibleLocations returns the fan-out for viewerID within the freshness window.
func (s *liveLocationService) GetVisibleLocations(ctx context.Context, viewerID uuid.UUID, includeOwn bool) ([]*entity.LiveLocation, error) {
	locations, err := s.liveLocRepo.FindVisible(ctx, repository.VisibleQuery{
		ViewerID:   viewerID,
		Since:      s.now().Add(-s.window),
		IncludeOwn: includeOwn,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to find visible live locations")
	}

	return locations, nil
}

// announce publishes the change and pushes it to connected recipients.
// Failures are logged and never fail the request.
func (s *liveLocationService) announce(ctx context.Context, eventType service.LiveLocationEventType, location *entity.LiveLocation) {
	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger)

	recipients := make([]string, 0, len(location.ShareWith))
	for _, id := range location.ShareWith {
		recipients = append(recipients, id.String())
	}

	event := &service.LiveLocationEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		EventID:    uuid.New().String(),
		Type:       eventType,
		UserID:     location.UserID.String(),
		Name:       location.Name,
		Latitude:   location.Latitude,
		Longitude:  location.Longitude,
		IsSharing:  location.IsSharing,
		Recipients: recipients,
		OccurredAt: location.LastUpdated,
	}

	if err := s.publisher.PublishLiveLocationEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish live location event",
			slog.String("event_id", event.EventID),
			slog.String("user_id", event.UserID),
			slog.Any("error", err),
		)
	}

	s.notifier.NotifyLiveLocation(ctx, event)
}
