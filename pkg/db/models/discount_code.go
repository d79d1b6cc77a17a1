package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountCode is immutable once issued, except for administrative
// deactivation via IsActive. Percentage carries up to two fractional digits.
// UsageLimit nil means the code may be used any number of times per user.
type DiscountCode struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Code       string          `gorm:"column:code;not null;uniqueIndex"`
	Percentage decimal.Decimal `gorm:"column:percentage;type:numeric(5,2);not null"`
	UsageLimit *int            `gorm:"column:usage_limit"`
	CategoryID uuid.UUID       `gorm:"column:category_id;type:uuid;not null;index"`
	IsActive   bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Category *DiscountCategory `gorm:"foreignKey:CategoryID"`
}
