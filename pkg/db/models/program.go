package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Program is a priced registration target within a season: a team, a camp,
// a clinic, or a one-off event.
type Program struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SeasonID        uuid.UUID      `gorm:"column:season_id;type:uuid;not null;index"`
	Name            string         `gorm:"column:name;not null"`
	Description     *string        `gorm:"column:description"`
	PriceCents      int            `gorm:"column:price_cents;not null"`
	Capacity        *int           `gorm:"column:capacity"`
	WaitlistEnabled bool           `gorm:"column:waitlist_enabled;not null;default:true"`
	AccountingCode  string         `gorm:"column:accounting_code;not null"`
	Tags            pq.StringArray `gorm:"column:tags;type:text[];default:ARRAY[]::text[]"`
	OpensAt         *time.Time     `gorm:"column:opens_at"`
	ClosesAt        *time.Time     `gorm:"column:closes_at"`
	IsActive        bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`

	Season *Season `gorm:"foreignKey:SeasonID"`
}
