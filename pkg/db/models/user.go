package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a member account. Authentication lives with the external
// identity provider; this row carries the profile the association needs.
type User struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email      string     `gorm:"type:text;not null;uniqueIndex"`
	ExternalID string     `gorm:"column:external_id;not null;uniqueIndex"`
	FirstName  string     `gorm:"column:first_name;not null"`
	LastName   string     `gorm:"column:last_name;not null"`
	Phone      *string    `gorm:"column:phone"`
	IsActive   bool       `gorm:"column:is_active;not null;default:true"`
	LastSeenAt *time.Time `gorm:"column:last_seen_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
