// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"time"

	"safeguard/internal/domain/entity"
	"safeguard/internal/errors"

	"github.com/google/uuid"
)

// ErrLiveLocationNotFound is returned when a user has never shared a location.
var ErrLiveLocationNotFound = errors.New("live location not found")

// VisibleQuery selects the live locations a viewer may read.
type VisibleQuery struct {
	ViewerID uuid.UUID
	// Since excludes records last updated before it.
	Since time.Time
	// IncludeOwn also returns the viewer's own record when it is actively shared.
	IncludeOwn bool
}

// LiveLocationRepository stores at most one live location per user.
type LiveLocationRepository interface {
	// FindByUserID returns ErrLiveLocationNotFound when the user has no record.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.LiveLocation, error)

	// Upsert creates or replaces the user's record keyed on UserID, and reports whether it was created.
	// The record passed in is updated with the stored ID and timestamps.
	Upsert(ctx context.Context, location *entity.LiveLocation) (created bool, err error)

	// StopSharing clears the sharing flag and keeps the last position.
	// Returns ErrLiveLocationNotFound when the user has no record.
	StopSharing(ctx context.Context, userID uuid.UUID, at time.Time) error

	// FindVisible returns matching records ordered by LastUpdated descending.
	FindVisible(ctx context.Context, query VisibleQuery) ([]*entity.LiveLocation, error)
}
