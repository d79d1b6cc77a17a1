package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/glacierhockey/rinkreg-backend/pkg/config"
	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
	"github.com/glacierhockey/rinkreg-backend/pkg/outbox"
	"github.com/glacierhockey/rinkreg-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

// NewEventRegistry builds the registry with the configured topic names.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.RegistrationTopic == "" {
		return nil, fmt.Errorf("registration topic is required")
	}
	if cfg.AccountingTopic == "" {
		return nil, fmt.Errorf("accounting topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	registrationTopic := cfg.RegistrationTopic
	accountingTopic := cfg.AccountingTopic

	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventRegistrationCreated,
			AggregateType:  enums.AggregateRegistration,
			Topic:          registrationTopic,
			PayloadFactory: func() interface{} { return &payloads.RegistrationCreatedEvent{} },
		},
		{
			EventType:      enums.EventRegistrationConfirmed,
			AggregateType:  enums.AggregateRegistration,
			Topic:          registrationTopic,
			PayloadFactory: func() interface{} { return &payloads.RegistrationConfirmedEvent{} },
		},
		{
			EventType:      enums.EventRegistrationCancelled,
			AggregateType:  enums.AggregateRegistration,
			Topic:          registrationTopic,
			PayloadFactory: func() interface{} { return &payloads.RegistrationCancelledEvent{} },
		},
		{
			EventType:      enums.EventWaitlistSelected,
			AggregateType:  enums.AggregateWaitlistEntry,
			Topic:          registrationTopic,
			PayloadFactory: func() interface{} { return &payloads.WaitlistSelectedEvent{} },
		},
	} {
		reg.register(desc)
	}
	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventPaymentRecorded,
			AggregateType:  enums.AggregatePayment,
			Topic:          accountingTopic,
			PayloadFactory: func() interface{} { return &payloads.PaymentRecordedEvent{} },
		},
		{
			EventType:      enums.EventInstallmentCharged,
			AggregateType:  enums.AggregatePayment,
			Topic:          accountingTopic,
			PayloadFactory: func() interface{} { return &payloads.InstallmentChargedEvent{} },
		},
		{
			EventType:      enums.EventInstallmentFailed,
			AggregateType:  enums.AggregatePayment,
			Topic:          accountingTopic,
			PayloadFactory: func() interface{} { return &payloads.InstallmentFailedEvent{} },
		},
		{
			EventType:      enums.EventAccountingExportDue,
			AggregateType:  enums.AggregatePayment,
			Topic:          accountingTopic,
			PayloadFactory: func() interface{} { return &payloads.AccountingExportDueEvent{} },
		},
	} {
		reg.register(desc)
	}

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if payload == nil {
		return nil, NewNonRetryableError(fmt.Errorf("payload factory not configured for %s", event.EventType))
	}
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}
