package usecase

import (
	"context"

	"safeguard/internal/domain/entity"

	"github.com/google/uuid"
)

// ShareLocationInput is a position push from the sharing client.
type ShareLocationInput struct {
	Name      string
	Latitude  float64
	Longitude float64
	Accuracy  *float64
	Heading   *float64
	Speed     *float64
	// IsSharing defaults to true when nil.
	IsSharing *bool
	ShareWith []uuid.UUID
}

// SharingSettingsInput changes who can see a location without moving it.
type SharingSettingsInput struct {
	IsSharing bool
	ShareWith []uuid.UUID
}

// LiveLocationUsecase defines live location sharing and fan-out.
type LiveLocationUsecase interface {
	// ShareLocation upserts the caller's record and reports whether it was created.
	ShareLocation(ctx context.Context, userID uuid.UUID, input *ShareLocationInput) (*entity.LiveLocation, bool, error)

	UpdateSharingSettings(ctx context.Context, userID uuid.UUID, input *SharingSettingsInput) (*entity.LiveLocation, error)

	// StopSharing turns sharing off and keeps the last position.
	StopSharing(ctx context.Context, userID uuid.UUID) (*entity.LiveLocation, error)

	// GetVisibleLocations returns fresh shared records the viewer may read, newest first.
	GetVisibleLocations(ctx context.Context, viewerID uuid.UUID, includeOwn bool) ([]*entity.LiveLocation, error)
}
