package model

import (
	"time"

	"github.com/google/uuid"
)

// TrackedLocationModel is the GORM-specific struct for the 'locations' table.
type TrackedLocationModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_locations_user"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Latitude    float64   `gorm:"type:double precision;not null"`
	Longitude   float64   `gorm:"type:double precision;not null"`
	Type        string    `gorm:"type:varchar(20);not null;check:type IN ('person','property')"`
	Status      string    `gorm:"type:varchar(20);not null;default:'unknown';check:status IN ('safe','at_risk','unknown')"`
	Location    string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"index:idx_locations_user"`
	LastUpdated time.Time
}

// TableName explicitly sets the table name for GORM.
func (TrackedLocationModel) TableName() string {
	return "locations"
}
