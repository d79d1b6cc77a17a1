package payments

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
	"github.com/glacierhockey/rinkreg-backend/pkg/logger"
	"github.com/glacierhockey/rinkreg-backend/pkg/outbox"
	"github.com/glacierhockey/rinkreg-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ChargeRequest is what the processor needs to attempt one off-session
// charge.
type ChargeRequest struct {
	PaymentID     string
	InstallmentID string
	AmountCents   int
	Currency      string
}

// Processor attempts a charge against the stored payment method. The
// concrete implementation lives behind this seam; the charger only cares
// about the resulting charge id.
type Processor interface {
	Charge(ctx context.Context, req ChargeRequest) (string, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Charger drains due installments in batches. One installment failing does
// not stop the batch; the row is marked failed and the sweep continues.
type Charger struct {
	tx        txRunner
	repo      Repository
	processor Processor
	outbox    outboxPublisher
	logg      *logger.Logger
	batchSize int
	now       func() time.Time
}

// NewCharger builds the installment charger.
func NewCharger(
	tx txRunner,
	repo Repository,
	processor Processor,
	publisher outboxPublisher,
	logg *logger.Logger,
	batchSize int,
) (*Charger, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if processor == nil {
		return nil, fmt.Errorf("payment processor required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if batchSize < 1 {
		batchSize = 100
	}
	return &Charger{
		tx:        tx,
		repo:      repo,
		processor: processor,
		outbox:    publisher,
		logg:      logg,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

// ChargeDue sweeps installments whose due date has passed and attempts each
// one. It returns how many charges succeeded and how many failed.
func (c *Charger) ChargeDue(ctx context.Context) (charged, failed int, err error) {
	due, err := c.repo.ListDueInstallments(ctx, c.now(), c.batchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("list due installments: %w", err)
	}

	for _, slot := range due {
		if err := ctx.Err(); err != nil {
			return charged, failed, err
		}
		if err := c.chargeOne(ctx, slot); err != nil {
			failed++
			slotCtx := c.logg.WithFields(ctx, map[string]any{
				"installment_id": slot.ID.String(),
				"payment_id":     slot.PaymentID.String(),
			})
			c.logg.Error(slotCtx, "installment charge failed", err)
			continue
		}
		charged++
	}
	return charged, failed, nil
}

func (c *Charger) chargeOne(ctx context.Context, slot models.PaymentInstallment) error {
	chargeID, err := c.processor.Charge(ctx, ChargeRequest{
		PaymentID:     slot.PaymentID.String(),
		InstallmentID: slot.ID.String(),
		AmountCents:   slot.AmountCents,
		Currency:      "cad",
	})
	if err != nil {
		return c.recordFailure(ctx, slot, err)
	}

	now := c.now()
	return c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := c.repo.WithTx(tx)
		if err := repo.MarkInstallmentCharged(ctx, slot.ID, chargeID, now); err != nil {
			return err
		}
		return c.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInstallmentCharged,
			AggregateType: enums.AggregatePayment,
			AggregateID:   slot.PaymentID,
			Data: payloads.InstallmentChargedEvent{
				InstallmentID:     slot.ID,
				PaymentID:         slot.PaymentID,
				InstallmentNumber: slot.InstallmentNumber,
				AmountCents:       slot.AmountCents,
				ChargedAt:         now,
			},
			Version: 1,
		})
	})
}

func (c *Charger) recordFailure(ctx context.Context, slot models.PaymentInstallment, cause error) error {
	err := c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := c.repo.WithTx(tx)
		if err := repo.MarkInstallmentFailed(ctx, slot.ID, cause.Error()); err != nil {
			return err
		}
		return c.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInstallmentFailed,
			AggregateType: enums.AggregatePayment,
			AggregateID:   slot.PaymentID,
			Data: payloads.InstallmentFailedEvent{
				InstallmentID:     slot.ID,
				PaymentID:         slot.PaymentID,
				InstallmentNumber: slot.InstallmentNumber,
				AmountCents:       slot.AmountCents,
				Reason:            cause.Error(),
			},
			Version: 1,
		})
	})
	if err != nil {
		return fmt.Errorf("record charge failure: %w", err)
	}
	return cause
}
