package models

import (
	"time"

	"github.com/google/uuid"
)

// DiscountUsage is an append-only fact written once per confirmed charge
// that consumed a discount. Rows are never updated or deleted; the seasonal
// cap ledger is a SUM over this table.
type DiscountUsage struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_discount_usages_user_category_season"`
	DiscountCodeID   uuid.UUID `gorm:"column:discount_code_id;type:uuid;not null;index"`
	CategoryID       uuid.UUID `gorm:"column:category_id;type:uuid;not null;index:idx_discount_usages_user_category_season"`
	SeasonID         uuid.UUID `gorm:"column:season_id;type:uuid;not null;index:idx_discount_usages_user_category_season"`
	AmountSavedCents int       `gorm:"column:amount_saved_cents;not null"`
	RegistrationID   uuid.UUID `gorm:"column:registration_id;type:uuid;not null;uniqueIndex:ux_discount_usages_registration"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`

	Category *DiscountCategory `gorm:"foreignKey:CategoryID"`
}
