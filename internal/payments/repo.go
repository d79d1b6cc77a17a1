package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
)

// Repository manages payments and their installment schedules.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByRegistration(ctx context.Context, registrationID uuid.UUID) (*models.Payment, error)
	MarkPaid(ctx context.Context, id uuid.UUID, processorChargeID string, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID) error

	CreateInstallments(ctx context.Context, installments []models.PaymentInstallment) error
	ListDueInstallments(ctx context.Context, before time.Time, limit int) ([]models.PaymentInstallment, error)
	MarkInstallmentCharged(ctx context.Context, id uuid.UUID, processorChargeID string, at time.Time) error
	MarkInstallmentFailed(ctx context.Context, id uuid.UUID, reason string) error
	CountOpenInstallments(ctx context.Context, paymentID uuid.UUID) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installment_number ASC")
		}).
		First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindByRegistration(ctx context.Context, registrationID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installment_number ASC")
		}).
		First(&payment, "registration_id = ?", registrationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkPaid transitions pending -> paid. The status guard makes retried
// confirmations a no-op instead of a double write.
func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, processorChargeID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, enums.PaymentStatusPending).
		Updates(map[string]any{
			"status":              enums.PaymentStatusPaid,
			"processor_charge_id": processorChargeID,
			"paid_at":             at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, enums.PaymentStatusPending).
		Update("status", enums.PaymentStatusFailed).Error
}

func (r *repository) CreateInstallments(ctx context.Context, installments []models.PaymentInstallment) error {
	if len(installments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&installments).Error
}

func (r *repository) ListDueInstallments(ctx context.Context, before time.Time, limit int) ([]models.PaymentInstallment, error) {
	var rows []models.PaymentInstallment
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_at <= ? AND is_initial = ?", enums.InstallmentStatusScheduled, before, false).
		Order("due_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) MarkInstallmentCharged(ctx context.Context, id uuid.UUID, processorChargeID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentInstallment{}).
		Where("id = ? AND status = ?", id, enums.InstallmentStatusScheduled).
		Updates(map[string]any{
			"status":              enums.InstallmentStatusCharged,
			"processor_charge_id": processorChargeID,
			"charged_at":          at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) MarkInstallmentFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentInstallment{}).
		Where("id = ? AND status = ?", id, enums.InstallmentStatusScheduled).
		Updates(map[string]any{
			"status":     enums.InstallmentStatusFailed,
			"last_error": reason,
		}).Error
}

func (r *repository) CountOpenInstallments(ctx context.Context, paymentID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentInstallment{}).
		Where("payment_id = ? AND status = ?", paymentID, enums.InstallmentStatusScheduled).
		Count(&count).Error
	return int(count), err
}
