package programs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
)

// Repository manages seasons and the programs offered within them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateSeason(ctx context.Context, season *models.Season) error
	FindSeasonByID(ctx context.Context, id uuid.UUID) (*models.Season, error)
	FindActiveSeason(ctx context.Context) (*models.Season, error)
	ListSeasons(ctx context.Context) ([]models.Season, error)
	ActivateSeason(ctx context.Context, id uuid.UUID) error

	CreateProgram(ctx context.Context, program *models.Program) error
	FindProgramByID(ctx context.Context, id uuid.UUID) (*models.Program, error)
	ListProgramsBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.Program, error)
	UpdateProgram(ctx context.Context, program *models.Program) error
	DeactivateProgram(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a program repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSeason(ctx context.Context, season *models.Season) error {
	return r.db.WithContext(ctx).Create(season).Error
}

func (r *repository) FindSeasonByID(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	var season models.Season
	err := r.db.WithContext(ctx).First(&season, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &season, nil
}

func (r *repository) FindActiveSeason(ctx context.Context) (*models.Season, error) {
	var season models.Season
	err := r.db.WithContext(ctx).First(&season, "is_active = ?", true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &season, nil
}

func (r *repository) ListSeasons(ctx context.Context) ([]models.Season, error) {
	var seasons []models.Season
	if err := r.db.WithContext(ctx).Order("starts_on DESC").Find(&seasons).Error; err != nil {
		return nil, err
	}
	return seasons, nil
}

// ActivateSeason makes one season current. Only a single season is active at
// a time, so the previous active row is cleared in the same statement batch.
func (r *repository) ActivateSeason(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Season{}).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Season{}).
			Where("id = ?", id).
			Update("is_active", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *repository) CreateProgram(ctx context.Context, program *models.Program) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *repository) FindProgramByID(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	var program models.Program
	err := r.db.WithContext(ctx).
		Preload("Season").
		First(&program, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *repository) ListProgramsBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.Program, error) {
	var out []models.Program
	if err := r.db.WithContext(ctx).
		Where("season_id = ?", seasonID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) UpdateProgram(ctx context.Context, program *models.Program) error {
	return r.db.WithContext(ctx).Save(program).Error
}

func (r *repository) DeactivateProgram(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Program{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
