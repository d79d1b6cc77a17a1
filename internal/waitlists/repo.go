package waitlists

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
)

// Repository manages waitlist entries. Positions are assigned per program at
// join time and never reused.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, entry *models.WaitlistEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.WaitlistEntry, error)
	FindByUserAndProgram(ctx context.Context, userID, programID uuid.UUID) (*models.WaitlistEntry, error)
	ListByProgram(ctx context.Context, programID uuid.UUID) ([]models.WaitlistEntry, error)

	NextPosition(ctx context.Context, programID uuid.UUID) (int, error)
	FirstWaiting(ctx context.Context, programID uuid.UUID) (*models.WaitlistEntry, error)
	MarkSelected(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkRemoved(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a waitlist repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) FindByUserAndProgram(ctx context.Context, userID, programID uuid.UUID) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := r.db.WithContext(ctx).
		First(&entry, "user_id = ? AND program_id = ?", userID, programID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListByProgram(ctx context.Context, programID uuid.UUID) ([]models.WaitlistEntry, error) {
	var out []models.WaitlistEntry
	if err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) NextPosition(ctx context.Context, programID uuid.UUID) (int, error) {
	var max int64
	err := r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Select("COALESCE(MAX(position), 0)").
		Where("program_id = ?", programID).
		Scan(&max).Error
	return int(max) + 1, err
}

func (r *repository) FirstWaiting(ctx context.Context, programID uuid.UUID) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("program_id = ? AND status = ?", programID, enums.WaitlistStatusWaiting).
		Order("position ASC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) MarkSelected(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("id = ? AND status = ?", id, enums.WaitlistStatusWaiting).
		Updates(map[string]any{
			"status":      enums.WaitlistStatusSelected,
			"selected_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) MarkRemoved(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("id = ? AND status IN ?", id, []enums.WaitlistStatus{
			enums.WaitlistStatusWaiting,
			enums.WaitlistStatusSelected,
		}).
		Update("status", enums.WaitlistStatusRemoved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
