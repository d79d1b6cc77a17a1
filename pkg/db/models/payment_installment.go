package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
)

// PaymentInstallment is one slot of a payment plan. InstallmentNumber is
// 1-indexed and strictly increasing within a payment. Only the first
// installment carries the originating payment-context marker; the rest are
// charged off-session on a cadence.
type PaymentInstallment struct {
	ID                uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentID         uuid.UUID               `gorm:"column:payment_id;type:uuid;not null;uniqueIndex:ux_payment_installments_number,priority:1"`
	InstallmentNumber int                     `gorm:"column:installment_number;not null;uniqueIndex:ux_payment_installments_number,priority:2"`
	AmountCents       int                     `gorm:"column:amount_cents;not null"`
	DueAt             time.Time               `gorm:"column:due_at;not null;index"`
	Status            enums.InstallmentStatus `gorm:"column:status;type:installment_status;not null;default:'scheduled'"`
	IsInitial         bool                    `gorm:"column:is_initial;not null;default:false"`
	ProcessorChargeID *string                 `gorm:"column:processor_charge_id"`
	ChargedAt         *time.Time              `gorm:"column:charged_at"`
	LastError         *string                 `gorm:"column:last_error"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
