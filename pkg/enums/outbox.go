package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateRegistration  OutboxAggregateType = "registration"
	AggregatePayment       OutboxAggregateType = "payment"
	AggregateWaitlistEntry OutboxAggregateType = "waitlist_entry"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateRegistration,
	AggregatePayment,
	AggregateWaitlistEntry,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventRegistrationCreated   OutboxEventType = "registration_created"
	EventRegistrationConfirmed OutboxEventType = "registration_confirmed"
	EventRegistrationCancelled OutboxEventType = "registration_cancelled"
	EventPaymentRecorded       OutboxEventType = "payment_recorded"
	EventInstallmentCharged    OutboxEventType = "installment_charged"
	EventInstallmentFailed     OutboxEventType = "installment_failed"
	EventWaitlistSelected      OutboxEventType = "waitlist_selected"
	EventAccountingExportDue   OutboxEventType = "accounting_export_due"
)

var validOutboxEventTypes = []OutboxEventType{
	EventRegistrationCreated,
	EventRegistrationConfirmed,
	EventRegistrationCancelled,
	EventPaymentRecorded,
	EventInstallmentCharged,
	EventInstallmentFailed,
	EventWaitlistSelected,
	EventAccountingExportDue,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
