package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// LiveLocationModel is the GORM-specific struct for the 'live_locations' table.
// IsSharing has no column default; gorm would write the default in place of an explicit false.
type LiveLocationModel struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_live_locations_user"`
	Name        string         `gorm:"type:varchar(255);not null"`
	Latitude    float64        `gorm:"type:double precision;not null"`
	Longitude   float64        `gorm:"type:double precision;not null"`
	Accuracy    *float64       `gorm:"type:double precision"`
	Heading     *float64       `gorm:"type:double precision"`
	Speed       *float64       `gorm:"type:double precision"`
	IsSharing   bool           `gorm:"not null;index:idx_live_locations_visible,priority:1"`
	ShareWith   pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	LastUpdated time.Time      `gorm:"not null;index:idx_live_locations_visible,priority:2"`
	CreatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (LiveLocationModel) TableName() string {
	return "live_locations"
}
