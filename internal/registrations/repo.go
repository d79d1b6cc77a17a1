package registrations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
)

// Repository manages registration rows and the capacity counts derived from
// them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, registration *models.Registration) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	FindByUserAndProgram(ctx context.Context, userID, programID uuid.UUID) (*models.Registration, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Registration, error)

	// CountActiveByProgram counts pending and confirmed registrations; both
	// hold a roster spot.
	CountActiveByProgram(ctx context.Context, programID uuid.UUID) (int, error)

	MarkConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a registration repository bound to the provided
// database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, registration *models.Registration) error {
	return r.db.WithContext(ctx).Create(registration).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	var registration models.Registration
	err := r.db.WithContext(ctx).
		Preload("Program").
		First(&registration, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *repository) FindByUserAndProgram(ctx context.Context, userID, programID uuid.UUID) (*models.Registration, error) {
	var registration models.Registration
	err := r.db.WithContext(ctx).
		First(&registration, "user_id = ? AND program_id = ?", userID, programID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Registration, error) {
	var out []models.Registration
	if err := r.db.WithContext(ctx).
		Preload("Program").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) CountActiveByProgram(ctx context.Context, programID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("program_id = ? AND status IN ?", programID, []enums.RegistrationStatus{
			enums.RegistrationStatusPending,
			enums.RegistrationStatusConfirmed,
		}).
		Count(&count).Error
	return int(count), err
}

func (r *repository) MarkConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ? AND status = ?", id, enums.RegistrationStatusPending).
		Updates(map[string]any{
			"status":       enums.RegistrationStatusConfirmed,
			"confirmed_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ? AND status <> ?", id, enums.RegistrationStatusCancelled).
		Updates(map[string]any{
			"status":       enums.RegistrationStatusCancelled,
			"cancelled_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
