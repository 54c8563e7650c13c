// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
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
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertColumns are overwritten when a user pushes again; id and created_at survive.
var upsertColumns = []string{
	"name", "latitude", "longitude", "accuracy", "heading", "speed",
	"is_sharing", "share_with", "last_updated",
}

type liveLocationRepository struct {
	db *gorm.DB
}

// NewLiveLocationRepository is the constructor for liveLocationRepository.
func NewLiveLocationRepository(db *gorm.DB) repository.LiveLocationRepository {
	return &liveLocationRepository{db: db}
}

// FindByUserID retrieves the single live location of a user.
func (repo *liveLocationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.LiveLocation, error) {
	var m model.LiveLocationModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrLiveLocationNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find live location")
	}

	return toLiveLocationDomain(&m), nil
}

// Upsert inserts or overwrites the user's record with ON CONFLICT (user_id).
func (repo *liveLocationRepository) Upsert(ctx context.Context, location *entity.LiveLocation) (bool, error) {
	m := fromLiveLocationDomain(location)
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	var created bool
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.LiveLocationModel{}).
			Where("user_id = ?", m.UserID).
			Count(&count).Error; err != nil {
			return errors.Wrap(err, "count existing live location")
		}
		created = count == 0

		if err := upsertLiveLocation(tx, m).Error; err != nil {
			return errors.Wrap(err, "upsert live location")
		}

		return errors.Wrap(tx.Where("user_id = ?", m.UserID).First(m).Error, "reload live location")
	})
	if err != nil {
		if isNotNullConstraintViolation(err) {
			return false, domainerrors.ErrValidationFailed.WrapMessage("missing required live location fields")
		}

		return false, domainerrors.NewDatabaseExecuteError(err, "failed to save live location")
	}

	*location = *toLiveLocationDomain(m)

	return created, nil
}

// StopSharing flips is_sharing off for the user.
func (repo *liveLocationRepository) StopSharing(ctx context.Context, userID uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.LiveLocationModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"is_sharing":   false,
			"last_updated": at,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to stop sharing")
	}
	if result.RowsAffected == 0 {
		return repository.ErrLiveLocationNotFound
	}

	return nil
}

// FindVisible runs the fan-out query for a viewer.
func (repo *liveLocationRepository) FindVisible(ctx context.Context, query repository.VisibleQuery) ([]*entity.LiveLocation, error) {
	var models []model.LiveLocationModel
	if err := visibleLiveLocations(repo.db.WithContext(ctx), query).Find(&models).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to query live locations")
	}

	locations := make([]*entity.LiveLocation, 0, len(models))
	for i := range models {
		locations = append(locations, toLiveLocationDomain(&models[i]))
	}

	return locations, nil
}

// upsertLiveLocation writes m, overwriting the row that already holds m.UserID.
func upsertLiveLocation(tx *gorm.DB, m *model.LiveLocationModel) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(m)
}

// visibleLiveLocations scopes db to fresh, shared records the viewer is a recipient of.
func visibleLiveLocations(db *gorm.DB, query repository.VisibleQuery) *gorm.DB {
	db = db.Model(&model.LiveLocationModel{}).
		Where("is_sharing = ?", true).
		Where("last_updated >= ?", query.Since)

	viewer := query.ViewerID.String()
	if query.IncludeOwn {
		db = db.Where("(? = ANY(share_with) OR user_id = ?)", viewer, query.ViewerID)
	} else {
		db = db.Where("? = ANY(share_with)", viewer)
	}

	return db.Order("last_updated DESC")
}

func toLiveLocationDomain(m *model.LiveLocationModel) *entity.LiveLocation {
	shareWith := make([]uuid.UUID, 0, len(m.ShareWith))
	for _, raw := range m.ShareWith {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		shareWith = append(shareWith, id)
	}

	return &entity.LiveLocation{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		Accuracy:    m.Accuracy,
		Heading:     m.Heading,
		Speed:       m.Speed,
		IsSharing:   m.IsSharing,
		ShareWith:   shareWith,
		LastUpdated: m.LastUpdated,
		CreatedAt:   m.CreatedAt,
	}
}

func fromLiveLocationDomain(l *entity.LiveLocation) *model.LiveLocationModel {
	shareWith := make(pq.StringArray, 0, len(l.ShareWith))
	for _, id := range l.ShareWith {
		shareWith = append(shareWith, id.String())
	}

	return &model.LiveLocationModel{
		ID:          l.ID,
		UserID:      l.UserID,
		Name:        l.Name,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
		Accuracy:    l.Accuracy,
		Heading:     l.Heading,
		Speed:       l.Speed,
		IsSharing:   l.IsSharing,
		ShareWith:   shareWith,
		LastUpdated: l.LastUpdated,
		CreatedAt:   l.CreatedAt,
	}
}
