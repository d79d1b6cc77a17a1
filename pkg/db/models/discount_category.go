package models

import (
	"time"

	"github.com/google/uuid"
)

// DiscountCategory groups codes under one seasonal per-user spending cap.
// MaxDiscountPerUserPerSeasonCents nil means the category is uncapped.
// AccountingCode is passed through to bookkeeping exports untouched.
type DiscountCategory struct {
	ID                               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name                             string    `gorm:"column:name;not null;uniqueIndex"`
	MaxDiscountPerUserPerSeasonCents *int      `gorm:"column:max_discount_per_user_per_season_cents"`
	AccountingCode                   string    `gorm:"column:accounting_code;not null"`
	CreatedAt                        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
