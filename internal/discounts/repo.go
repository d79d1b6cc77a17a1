package discounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
)

// Repository manages discount codes, categories, and the append-only usage
// ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCategory(ctx context.Context, category *models.DiscountCategory) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.DiscountCategory, error)
	ListCategories(ctx context.Context) ([]models.DiscountCategory, error)

	CreateCode(ctx context.Context, code *models.DiscountCode) error
	FindCodeByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	DeactivateCode(ctx context.Context, id uuid.UUID) error
	ListCodes(ctx context.Context) ([]models.DiscountCode, error)

	InsertUsage(ctx context.Context, usage *models.DiscountUsage) error
	CountCodeUses(ctx context.Context, userID, discountCodeID uuid.UUID) (int, error)
	TotalSaved(ctx context.Context, userID, categoryID, seasonID uuid.UUID) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a discount repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCategory(ctx context.Context, category *models.DiscountCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.DiscountCategory, error) {
	var category models.DiscountCategory
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]models.DiscountCategory, error) {
	var categories []models.DiscountCategory
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) CreateCode(ctx context.Context, code *models.DiscountCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *repository) FindCodeByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	var row models.DiscountCode
	err := r.db.WithContext(ctx).
		Preload("Category").
		First(&row, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) DeactivateCode(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.DiscountCode{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *repository) ListCodes(ctx context.Context) ([]models.DiscountCode, error) {
	var codes []models.DiscountCode
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Order("created_at ASC").
		Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *repository) InsertUsage(ctx context.Context, usage *models.DiscountUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

func (r *repository) CountCodeUses(ctx context.Context, userID, discountCodeID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DiscountUsage{}).
		Where("user_id = ? AND discount_code_id = ?", userID, discountCodeID).
		Count(&count).Error
	return int(count), err
}

func (r *repository) TotalSaved(ctx context.Context, userID, categoryID, seasonID uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.DiscountUsage{}).
		Select("COALESCE(SUM(amount_saved_cents), 0)").
		Where("user_id = ? AND category_id = ? AND season_id = ?", userID, categoryID, seasonID).
		Scan(&total).Error
	return int(total), err
}
