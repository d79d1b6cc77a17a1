package registrations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glacierhockey/rinkreg-backend/internal/discounts"
	"github.com/glacierhockey/rinkreg-backend/internal/installments"
	"github.com/glacierhockey/rinkreg-backend/internal/payments"
	"github.com/glacierhockey/rinkreg-backend/internal/pricing"
	dbpkg "github.com/glacierhockey/rinkreg-backend/pkg/db"
	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
	"github.com/glacierhockey/rinkreg-backend/pkg/outbox"
	"github.com/glacierhockey/rinkreg-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type programLoader interface {
	GetProgram(ctx context.Context, id uuid.UUID) (*models.Program, error)
	OpenForRegistration(program *models.Program, now time.Time) error
}

type quoter interface {
	Quote(ctx context.Context, input pricing.QuoteInput) (*pricing.Quote, error)
}

type usageRecorder interface {
	RecordUsage(ctx context.Context, tx *gorm.DB, input discounts.RecordUsageInput) (*models.DiscountUsage, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service executes the registration lifecycle: quote, register, confirm,
// cancel.
type Service interface {
	Quote(ctx context.Context, input QuoteRequest) (*pricing.Quote, error)
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	Confirm(ctx context.Context, input ConfirmInput) (*models.Registration, error)
	Cancel(ctx context.Context, registrationID uuid.UUID, reason string) error
	Get(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Registration, error)
}

// QuoteRequest prices a prospective registration without writing anything.
type QuoteRequest struct {
	UserID       uuid.UUID
	ProgramID    uuid.UUID
	DiscountCode string
}

// RegisterInput creates a pending registration with its payment and optional
// installment plan.
type RegisterInput struct {
	UserID           uuid.UUID
	ProgramID        uuid.UUID
	DiscountCode     string
	InstallmentCount int
}

// RegisterResult bundles the rows the controller returns to the caller.
type RegisterResult struct {
	Registration *models.Registration
	Payment      *models.Payment
	Quote        *pricing.Quote
}

// ConfirmInput marks a registration paid once the processor confirms the
// charge.
type ConfirmInput struct {
	RegistrationID    uuid.UUID
	ProcessorChargeID string
}

// Config carries the installment policy knobs.
type Config struct {
	MaxInstallments    int
	InstallmentCadence time.Duration
}

type service struct {
	tx       txRunner
	repo     Repository
	programs programLoader
	pricer   quoter
	discount usageRecorder
	payRepo  payments.Repository
	outbox   outboxPublisher
	cfg      Config
	now      func() time.Time
}

// NewService builds the registration service.
func NewService(
	tx txRunner,
	repo Repository,
	programs programLoader,
	pricer quoter,
	discount usageRecorder,
	payRepo payments.Repository,
	publisher outboxPublisher,
	cfg Config,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("registration repository required")
	}
	if programs == nil {
		return nil, fmt.Errorf("program loader required")
	}
	if pricer == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	if discount == nil {
		return nil, fmt.Errorf("discount service required")
	}
	if payRepo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if cfg.MaxInstallments < 1 {
		cfg.MaxInstallments = 1
	}
	if cfg.InstallmentCadence <= 0 {
		cfg.InstallmentCadence = 30 * 24 * time.Hour
	}
	return &service{
		tx:       tx,
		repo:     repo,
		programs: programs,
		pricer:   pricer,
		discount: discount,
		payRepo:  payRepo,
		outbox:   publisher,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

func (s *service) Quote(ctx context.Context, input QuoteRequest) (*pricing.Quote, error) {
	if input.ProgramID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "program id required")
	}
	program, err := s.programs.GetProgram(ctx, input.ProgramID)
	if err != nil {
		return nil, err
	}

	var userID *uuid.UUID
	if input.UserID != uuid.Nil {
		userID = &input.UserID
	}
	return s.pricer.Quote(ctx, pricing.QuoteInput{
		BasePriceCents: program.PriceCents,
		DiscountCode:   input.DiscountCode,
		SeasonID:       program.SeasonID,
		UserID:         userID,
	})
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.ProgramID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "program id required")
	}
	if input.InstallmentCount < 1 {
		input.InstallmentCount = 1
	}
	if input.InstallmentCount > s.cfg.MaxInstallments {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("installment count may not exceed %d", s.cfg.MaxInstallments))
	}

	program, err := s.programs.GetProgram(ctx, input.ProgramID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.programs.OpenForRegistration(program, now); err != nil {
		return nil, err
	}

	var result *RegisterResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payRepo := s.payRepo.WithTx(tx)

		if program.Capacity != nil {
			active, err := repo.CountActiveByProgram(ctx, program.ID)
			if err != nil {
				return err
			}
			if active >= *program.Capacity {
				msg := "program is full"
				if program.WaitlistEnabled {
					msg = "program is full; the waitlist is open"
				}
				return pkgerrors.New(pkgerrors.CodeStateConflict, msg)
			}
		}

		quote, err := s.pricer.Quote(ctx, pricing.QuoteInput{
			BasePriceCents: program.PriceCents,
			DiscountCode:   input.DiscountCode,
			SeasonID:       program.SeasonID,
			UserID:         &input.UserID,
		})
		if err != nil {
			return err
		}

		registration := &models.Registration{
			UserID:    input.UserID,
			ProgramID: program.ID,
			SeasonID:  program.SeasonID,
			Status:    enums.RegistrationStatusPending,
		}
		if err := repo.Create(ctx, registration); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_registrations_user_program") {
				return pkgerrors.New(pkgerrors.CodeConflict, "already registered for this program")
			}
			return err
		}

		payment := &models.Payment{
			RegistrationID:      registration.ID,
			UserID:              input.UserID,
			OriginalAmountCents: quote.OriginalAmountCents,
			DiscountCents:       quote.DiscountCents,
			AmountCents:         quote.FinalAmountCents,
			Status:              enums.PaymentStatusPending,
		}
		if quote.Code != nil && quote.DiscountCents > 0 {
			codeID := quote.Code.ID
			categoryID := quote.Code.CategoryID
			payment.DiscountCodeID = &codeID
			payment.DiscountCategoryID = &categoryID
		}
		if err := payRepo.Create(ctx, payment); err != nil {
			return err
		}

		plan, err := installments.BuildPlan(installments.PlanInput{
			PaymentID:  payment.ID,
			TotalCents: payment.AmountCents,
			Count:      input.InstallmentCount,
			FirstDueAt: now,
			Cadence:    s.cfg.InstallmentCadence,
		})
		if err != nil {
			return err
		}
		if err := payRepo.CreateInstallments(ctx, plan); err != nil {
			return err
		}
		payment.Installments = plan

		event := payloads.RegistrationCreatedEvent{
			RegistrationID: registration.ID,
			UserID:         input.UserID,
			ProgramID:      program.ID,
			SeasonID:       program.SeasonID,
			AmountCents:    payment.AmountCents,
			DiscountCents:  payment.DiscountCents,
		}
		if quote.Code != nil {
			event.DiscountCode = quote.Code.Code
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRegistrationCreated,
			AggregateType: enums.AggregateRegistration,
			AggregateID:   registration.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID},
			Data:          event,
			Version:       1,
		}); err != nil {
			return err
		}

		result = &RegisterResult{
			Registration: registration,
			Payment:      payment,
			Quote:        quote,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Registration.Program = program
	return result, nil
}

// Confirm marks the registration paid. Discount usage is written here, in
// the same transaction, and never at quote time: an abandoned checkout must
// not consume cap budget, and the recorder re-reads the seasonal ledger
// before writing so two pending registrations cannot both spend the same
// remaining cap.
func (s *service) Confirm(ctx context.Context, input ConfirmInput) (*models.Registration, error) {
	if input.RegistrationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "registration id required")
	}
	if input.ProcessorChargeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "processor charge id required")
	}

	registration, err := s.repo.FindByID(ctx, input.RegistrationID)
	if err != nil {
		return nil, err
	}
	if registration == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "registration not found")
	}
	if registration.Status == enums.RegistrationStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "registration was cancelled")
	}
	if registration.Status == enums.RegistrationStatusConfirmed {
		return registration, nil
	}

	payment, err := s.payRepo.FindByRegistration(ctx, registration.ID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "registration has no payment")
	}

	now := s.now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payRepo := s.payRepo.WithTx(tx)

		if err := payRepo.MarkPaid(ctx, payment.ID, input.ProcessorChargeID, now); err != nil {
			return err
		}
		if err := repo.MarkConfirmed(ctx, registration.ID, now); err != nil {
			return err
		}

		var discountAccountingCode string
		if payment.DiscountCodeID != nil && payment.DiscountCategoryID != nil && payment.DiscountCents > 0 {
			usage, err := s.discount.RecordUsage(ctx, tx, discounts.RecordUsageInput{
				UserID:           registration.UserID,
				DiscountCodeID:   *payment.DiscountCodeID,
				CategoryID:       *payment.DiscountCategoryID,
				SeasonID:         registration.SeasonID,
				AmountSavedCents: payment.DiscountCents,
				RegistrationID:   registration.ID,
			})
			if err != nil {
				return err
			}
			if usage != nil && usage.Category != nil {
				discountAccountingCode = usage.Category.AccountingCode
			}
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRegistrationConfirmed,
			AggregateType: enums.AggregateRegistration,
			AggregateID:   registration.ID,
			Actor:         &outbox.ActorRef{UserID: registration.UserID},
			Data: payloads.RegistrationConfirmedEvent{
				RegistrationID: registration.ID,
				UserID:         registration.UserID,
				ProgramID:      registration.ProgramID,
				SeasonID:       registration.SeasonID,
				ConfirmedAt:    now,
			},
			Version: 1,
		}); err != nil {
			return err
		}

		recorded := payloads.PaymentRecordedEvent{
			PaymentID:              payment.ID,
			RegistrationID:         registration.ID,
			UserID:                 registration.UserID,
			OriginalAmountCents:    payment.OriginalAmountCents,
			DiscountCents:          payment.DiscountCents,
			AmountCents:            payment.AmountCents,
			DiscountAccountingCode: discountAccountingCode,
			InstallmentCount:       len(payment.Installments),
		}
		if registration.Program != nil {
			recorded.ProgramAccountingCode = registration.Program.AccountingCode
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentRecorded,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Data:          recorded,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}

	registration.Status = enums.RegistrationStatusConfirmed
	registration.ConfirmedAt = &now
	return registration, nil
}

func (s *service) Cancel(ctx context.Context, registrationID uuid.UUID, reason string) error {
	if registrationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "registration id required")
	}
	registration, err := s.repo.FindByID(ctx, registrationID)
	if err != nil {
		return err
	}
	if registration == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "registration not found")
	}
	if registration.Status == enums.RegistrationStatusCancelled {
		return nil
	}

	now := s.now()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).MarkCancelled(ctx, registrationID, now); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRegistrationCancelled,
			AggregateType: enums.AggregateRegistration,
			AggregateID:   registrationID,
			Actor:         &outbox.ActorRef{UserID: registration.UserID},
			Data: payloads.RegistrationCancelledEvent{
				RegistrationID: registrationID,
				UserID:         registration.UserID,
				ProgramID:      registration.ProgramID,
				CancelledAt:    now,
				Reason:         reason,
			},
			Version: 1,
		})
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "registration id required")
	}
	registration, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if registration == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "registration not found")
	}
	return registration, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Registration, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListByUser(ctx, userID)
}
