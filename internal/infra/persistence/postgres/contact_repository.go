package postgres

import (
	"context"

	"safeguard/internal/domain/entity"
	domainerrors "safeguard/internal/domain/errors"
	"safeguard/internal/domain/repository"
	"safeguard/internal/errors"
	"safeguard/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// contactMutableColumns are the columns a contact update may touch.
var contactMutableColumns = []string{
	"name", "relationship", "phone", "email", "address",
	"latitude", "longitude", "status", "description",
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository is the constructor for contactRepository.
func NewContactRepository(db *gorm.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

func (repo *contactRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]*entity.Contact, error) {
	var models []model.ContactModel
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list contacts")
	}

	contacts := make([]*entity.Contact, 0, len(models))
	for i := range models {
		contacts = append(contacts, toContactDomain(&models[i]))
	}

	return contacts, nil
}

func (repo *contactRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.Contact, error) {
	var m model.ContactModel
	if err := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrContactNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find contact")
	}

	return toContactDomain(&m), nil
}

func (repo *contactRepository) Create(ctx context.Context, contact *entity.Contact) error {
	m := fromContactDomain(contact)
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required contact fields")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create contact")
	}

	contact.ID = m.ID
	contact.CreatedAt = m.CreatedAt

	return nil
}

func (repo *contactRepository) Update(ctx context.Context, contact *entity.Contact) error {
	m := fromContactDomain(contact)

	result := repo.db.WithContext(ctx).
		Model(&model.ContactModel{}).
		Where("id = ? AND user_id = ?", contact.ID, contact.UserID).
		Select(contactMutableColumns).
		Updates(m)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update contact")
	}
	if result.RowsAffected == 0 {
		return repository.ErrContactNotFound
	}

	return nil
}

func (repo *contactRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.ContactModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete contact")
	}
	if result.RowsAffected == 0 {
		return repository.ErrContactNotFound
	}

	return nil
}

func toContactDomain(m *model.ContactModel) *entity.Contact {
	return &entity.Contact{
		ID:           m.ID,
		UserID:       m.UserID,
		Name:         m.Name,
		Relationship: m.Relationship,
		Phone:        m.Phone,
		Email:        m.Email,
		Address:      m.Address,
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
		Status:       entity.ContactStatus(m.Status),
		Description:  m.Description,
		CreatedAt:    m.CreatedAt,
	}
}

func fromContactDomain(c *entity.Contact) *model.ContactModel {
	return &model.ContactModel{
		ID:           c.ID,
		UserID:       c.UserID,
		Name:         c.Name,
		Relationship: c.Relationship,
		Phone:        c.Phone,
		Email:        c.Email,
		Address:      c.Address,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		Status:       string(c.Status),
		Description:  c.Description,
		CreatedAt:    c.CreatedAt,
	}
}
