package models

import (
	"time"

	"github.com/google/uuid"
)

// Season bounds memberships, registrations, and discount caps in time.
type Season struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	StartsOn  time.Time `gorm:"column:starts_on;not null"`
	EndsOn    time.Time `gorm:"column:ends_on;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
