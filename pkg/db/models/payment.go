package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
)

// Payment records the amount owed for a registration after discounts.
// OriginalAmountCents and DiscountCents are kept for bookkeeping; the
// processor is only ever asked for AmountCents.
type Payment struct {
	ID                  uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RegistrationID      uuid.UUID           `gorm:"column:registration_id;type:uuid;not null;uniqueIndex"`
	UserID              uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	OriginalAmountCents int                 `gorm:"column:original_amount_cents;not null"`
	DiscountCents       int                 `gorm:"column:discount_cents;not null;default:0"`
	DiscountCodeID      *uuid.UUID          `gorm:"column:discount_code_id;type:uuid"`
	DiscountCategoryID  *uuid.UUID          `gorm:"column:discount_category_id;type:uuid"`
	AmountCents         int                 `gorm:"column:amount_cents;not null"`
	Currency            string              `gorm:"column:currency;not null;default:'cad'"`
	Status              enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'"`
	ProcessorChargeID   *string             `gorm:"column:processor_charge_id;uniqueIndex"`
	PaidAt              *time.Time          `gorm:"column:paid_at"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Installments []PaymentInstallment `gorm:"foreignKey:PaymentID"`
}
