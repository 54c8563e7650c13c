package postgres

import (
	"context"
	"time"

	"safeguard/internal/domain/entity"
	domainerrors "safeguard/internal/domain/errors"
	"safeguard/internal/domain/repository"
	"safeguard/internal/errors"
	"safeguard/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type trackedLocationRepository struct {
	db *gorm.DB
}

// NewTrackedLocationRepository is the constructor for trackedLocationRepository.
func NewTrackedLocationRepository(db *gorm.DB) repository.TrackedLocationRepository {
	return &trackedLocationRepository{db: db}
}

// ListByOwner retrieves an owner's locations newest first.
func (repo *trackedLocationRepository) ListByOwner(ctx context.Context, userID uuid.UUID, filter repository.TrackedLocationFilter) ([]*entity.TrackedLocation, error) {
	db := repo.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Type != "" {
		db = db.Where("type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		db = db.Where("status = ?", string(filter.Status))
	}

	var models []model.TrackedLocationModel
	if err := db.Order("created_at DESC").Order("id DESC").Find(&models).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list locations")
	}

	locations := make([]*entity.TrackedLocation, 0, len(models))
	for i := range models {
		locations = append(locations, toTrackedLocationDomain(&models[i]))
	}

	return locations, nil
}

// Create persists a new tracked location and fills in generated fields.
func (repo *trackedLocationRepository) Create(ctx context.Context, location *entity.TrackedLocation) error {
	m := fromTrackedLocationDomain(location)

	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		if isCheckConstraintViolation(err) || isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid location fields")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create location")
	}

	location.ID = m.ID
	location.CreatedAt = m.CreatedAt
	location.LastUpdated = m.LastUpdated

	return nil
}

// Update applies a partial update scoped to the owner.
func (repo *trackedLocationRepository) Update(ctx context.Context, userID uuid.UUID, id int64, patch repository.TrackedLocationPatch) (*entity.TrackedLocation, error) {
	updates := map[string]any{"last_updated": time.Now().UTC()}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Latitude != nil {
		updates["latitude"] = *patch.Latitude
	}
	if patch.Longitude != nil {
		updates["longitude"] = *patch.Longitude
	}
	if patch.Type != nil {
		updates["type"] = string(*patch.Type)
	}
	if patch.Status != nil {
		updates["status"] = string(*patch.Status)
	}
	if patch.Location != nil {
		updates["location"] = *patch.Location
	}

	var m model.TrackedLocationModel
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.TrackedLocationModel{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrTrackedLocationNotFound
		}

		return tx.Where("id = ?", id).First(&m).Error
	})
	if err != nil {
		if errors.Is(err, repository.ErrTrackedLocationNotFound) {
			return nil, err
		}
		if isCheckConstraintViolation(err) {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("invalid location fields")
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to update location")
	}

	return toTrackedLocationDomain(&m), nil
}

// Delete removes a location scoped to the owner.
func (repo *trackedLocationRepository) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.TrackedLocationModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete location")
	}
	if result.RowsAffected == 0 {
		return repository.ErrTrackedLocationNotFound
	}

	return nil
}

func toTrackedLocationDomain(m *model.TrackedLocationModel) *entity.TrackedLocation {
	return &entity.TrackedLocation{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		Type:        entity.TrackedLocationType(m.Type),
		Status:      entity.TrackedLocationStatus(m.Status),
		Location:    m.Location,
		CreatedAt:   m.CreatedAt,
		LastUpdated: m.LastUpdated,
	}
}

func fromTrackedLocationDomain(l *entity.TrackedLocation) *model.TrackedLocationModel {
	return &model.TrackedLocationModel{
		ID:          l.ID,
		UserID:      l.UserID,
		Name:        l.Name,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
		Type:        string(l.Type),
		Status:      string(l.Status),
		Location:    l.Location,
		CreatedAt:   l.CreatedAt,
		LastUpdated: l.LastUpdated,
	}
}
