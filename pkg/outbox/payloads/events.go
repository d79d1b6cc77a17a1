package payloads

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationCreatedEvent signals a new pending registration with its quoted
// charge.
type RegistrationCreatedEvent struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	UserID         uuid.UUID `json:"user_id"`
	ProgramID      uuid.UUID `json:"program_id"`
	SeasonID       uuid.UUID `json:"season_id"`
	AmountCents    int       `json:"amount_cents"`
	DiscountCents  int       `json:"discount_cents"`
	DiscountCode   string    `json:"discount_code,omitempty"`
}

// RegistrationConfirmedEvent is emitted once payment for a registration is
// confirmed.
type RegistrationConfirmedEvent struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	UserID         uuid.UUID `json:"user_id"`
	ProgramID      uuid.UUID `json:"program_id"`
	SeasonID       uuid.UUID `json:"season_id"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

// RegistrationCancelledEvent is emitted when a registration is withdrawn.
type RegistrationCancelledEvent struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	UserID         uuid.UUID `json:"user_id"`
	ProgramID      uuid.UUID `json:"program_id"`
	CancelledAt    time.Time `json:"cancelled_at"`
	Reason         string    `json:"reason,omitempty"`
}

// PaymentRecordedEvent carries the accounting codes downstream bookkeeping
// needs to post the charge against the right ledgers.
type PaymentRecordedEvent struct {
	PaymentID              uuid.UUID `json:"payment_id"`
	RegistrationID         uuid.UUID `json:"registration_id"`
	UserID                 uuid.UUID `json:"user_id"`
	OriginalAmountCents    int       `json:"original_amount_cents"`
	DiscountCents          int       `json:"discount_cents"`
	AmountCents            int       `json:"amount_cents"`
	ProgramAccountingCode  string    `json:"program_accounting_code"`
	DiscountAccountingCode string    `json:"discount_accounting_code,omitempty"`
	InstallmentCount       int       `json:"installment_count"`
}

// InstallmentChargedEvent reports one successful off-session charge.
type InstallmentChargedEvent struct {
	InstallmentID     uuid.UUID `json:"installment_id"`
	PaymentID         uuid.UUID `json:"payment_id"`
	InstallmentNumber int       `json:"installment_number"`
	AmountCents       int       `json:"amount_cents"`
	ChargedAt         time.Time `json:"charged_at"`
}

// InstallmentFailedEvent reports one failed off-session charge attempt.
type InstallmentFailedEvent struct {
	InstallmentID     uuid.UUID `json:"installment_id"`
	PaymentID         uuid.UUID `json:"payment_id"`
	InstallmentNumber int       `json:"installment_number"`
	AmountCents       int       `json:"amount_cents"`
	Reason            string    `json:"reason"`
}

// AccountingExportDueEvent asks the bookkeeping consumer to pull confirmed
// charges for a season into the external ledger.
type AccountingExportDueEvent struct {
	SeasonID    uuid.UUID `json:"season_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// WaitlistSelectedEvent tells downstream systems a spot opened and the member
// was offered it.
type WaitlistSelectedEvent struct {
	EntryID    uuid.UUID `json:"entry_id"`
	UserID     uuid.UUID `json:"user_id"`
	ProgramID  uuid.UUID `json:"program_id"`
	Position   int       `json:"position"`
	SelectedAt time.Time `json:"selected_at"`
}
