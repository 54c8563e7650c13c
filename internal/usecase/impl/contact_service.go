package impl

import (
	"context"
	"log/slog"
	"strings"

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

type contactService struct {
	repo     repository.ContactRepository
	geocoder service.Geocoder
	logger   *slog.Logger
}

// ContactServiceParams holds dependencies for ContactService, injected by Fx.
type ContactServiceParams struct {
	fx.In

	Repo     repository.ContactRepository
	Geocoder service.Geocoder
	Logger   *slog.Logger
}

// NewContactService creates a new contact service instance
func NewContactService(params ContactServiceParams) usecase.ContactUsecase {
	return &contactService{
		repo:     params.Repo,
		geocoder: params.Geocoder,
		logger:   params.Logger,
	}
}

func (s *contactService) ListContacts(ctx context.Context, userID uuid.UUID) ([]*entity.Contact, error) {
	contacts, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list contacts")
	}

	return contacts, nil
}

// AddContact stores a contact, geocoding the address when coordinates are missing.
func (s *contactService) AddContact(ctx context.Context, userID uuid.UUID, input *usecase.ContactInput) (*entity.Contact, error) {
	contact, err := s.buildContact(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, errors.Wrap(err, "failed to create contact")
	}

	return contact, nil
}

// UpdateContact replaces an owned contact and returns the stored row.
func (s *contactService) UpdateContact(ctx context.Context, userID, id uuid.UUID, input *usecase.ContactInput) (*entity.Contact, error) {
	contact, err := s.buildContact(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	contact.ID = id

	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, mapContactError(err, "failed to update contact")
	}

	stored, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, mapContactError(err, "failed to reload contact")
	}

	return stored, nil
}

func (s *contactService) DeleteContact(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return mapContactError(err, "failed to delete contact")
	}

	return nil
}

func (s *contactService) buildContact(ctx context.Context, userID uuid.UUID, input *usecase.ContactInput) (*entity.Contact, error) {
	status := input.Status
	if status == "" {
		status = entity.ContactStatusSafe
	}

	contact := &entity.Contact{
		UserID:       userID,
		Name:         strings.TrimSpace(input.Name),
		Relationship: strings.TrimSpace(input.Relationship),
		Phone:        input.Phone,
		Email:        input.Email,
		Address:      strings.TrimSpace(input.Address),
		Status:       status,
		Description:  input.Description,
	}

	if input.Latitude != nil && input.Longitude != nil {
		contact.Latitude = *input.Latitude
		contact.Longitude = *input.Longitude

		return contact, nil
	}

	match, err := s.geocoder.Geocode(ctx, contact.Address)
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, s.logger).Warn("Failed to geocode contact address",
			slog.String("address", contact.Address),
			slog.Any("error", err),
		)

		return nil, errors.Wrap(domainerrors.ErrGeocodeFailed, err.Error())
	}
	contact.Latitude = match.Latitude
	contact.Longitude = match.Longitude

	return contact, nil
}

func mapContactError(err error, message string) error {
	if errors.Is(err, repository.ErrContactNotFound) {
		return errors.Wrap(domainerrors.ErrContactNotFound, message)
	}

	return errors.Wrap(err, message)
}
