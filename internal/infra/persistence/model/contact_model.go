package model

import (
	"time"

	"github.com/google/uuid"
)

// ContactModel is the GORM-specific struct for the 'contacts' table.
type ContactModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_contacts_user"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Relationship string    `gorm:"type:varchar(100);not null"`
	Phone        *string   `gorm:"type:varchar(50)"`
	Email        *string   `gorm:"type:varchar(255)"`
	Address      string    `gorm:"type:text;not null"`
	Latitude     float64   `gorm:"type:double precision;not null"`
	Longitude    float64   `gorm:"type:double precision;not null"`
	Status       string    `gorm:"type:varchar(20);not null;default:'safe'"`
	Description  *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"index:idx_contacts_user"`
}

// TableName explicitly sets the table name for GORM.
func (ContactModel) TableName() string {
	return "contacts"
}

// All lists every model for schema migration.
func All() []any {
	return []any{
		&LiveLocationModel{},
		&TrackedLocationModel{},
		&ContactModel{},
	}
}
