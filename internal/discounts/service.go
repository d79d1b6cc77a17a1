package discounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
)

// Service manages discount codes and categories, and exposes the seasonal
// usage ledger the pricing calculator reads.
type Service interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.DiscountCategory, error)
	ListCategories(ctx context.Context) ([]models.DiscountCategory, error)

	CreateCode(ctx context.Context, input CreateCodeInput) (*models.DiscountCode, error)
	DeactivateCode(ctx context.Context, id uuid.UUID) error
	ListCodes(ctx context.Context) ([]models.DiscountCode, error)

	FindByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	CountCodeUses(ctx context.Context, userID, discountCodeID uuid.UUID) (int, error)
	TotalSaved(ctx context.Context, userID, categoryID, seasonID uuid.UUID) (int, error)

	RecordUsage(ctx context.Context, tx *gorm.DB, input RecordUsageInput) (*models.DiscountUsage, error)
}

// CreateCategoryInput carries the fields an administrator sets on a category.
type CreateCategoryInput struct {
	Name                             string
	MaxDiscountPerUserPerSeasonCents *int
	AccountingCode                   string
}

// CreateCodeInput carries the fields an administrator sets on a code.
type CreateCodeInput struct {
	Code       string
	Percentage decimal.Decimal
	UsageLimit *int
	CategoryID uuid.UUID
}

// RecordUsageInput captures the immutable usage fact written after a
// discounted charge is confirmed.
type RecordUsageInput struct {
	UserID           uuid.UUID
	DiscountCodeID   uuid.UUID
	CategoryID       uuid.UUID
	SeasonID         uuid.UUID
	AmountSavedCents int
	RegistrationID   uuid.UUID
}

type service struct {
	repo Repository
}

// NewService wires a discount service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.DiscountCategory, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if input.MaxDiscountPerUserPerSeasonCents != nil && *input.MaxDiscountPerUserPerSeasonCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seasonal cap must not be negative")
	}
	if strings.TrimSpace(input.AccountingCode) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "accounting code is required")
	}

	category := &models.DiscountCategory{
		Name:                             name,
		MaxDiscountPerUserPerSeasonCents: input.MaxDiscountPerUserPerSeasonCents,
		AccountingCode:                   strings.TrimSpace(input.AccountingCode),
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.DiscountCategory, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) CreateCode(ctx context.Context, input CreateCodeInput) (*models.DiscountCode, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if input.Percentage.IsNegative() || input.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage must be between 0 and 100")
	}
	if input.Percentage.Exponent() < -2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage supports at most two decimal places")
	}
	if input.UsageLimit != nil && *input.UsageLimit < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage limit must be positive")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}

	category, err := s.repo.FindCategoryByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount category not found")
	}

	row := &models.DiscountCode{
		Code:       code,
		Percentage: input.Percentage,
		UsageLimit: input.UsageLimit,
		CategoryID: input.CategoryID,
		IsActive:   true,
	}
	if err := s.repo.CreateCode(ctx, row); err != nil {
		return nil, err
	}
	row.Category = category
	return row, nil
}

func (s *service) DeactivateCode(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "code id is required")
	}
	return s.repo.DeactivateCode(ctx, id)
}

func (s *service) ListCodes(ctx context.Context) ([]models.DiscountCode, error) {
	return s.repo.ListCodes(ctx)
}

func (s *service) FindByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	return s.repo.FindCodeByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

func (s *service) CountCodeUses(ctx context.Context, userID, discountCodeID uuid.UUID) (int, error) {
	return s.repo.CountCodeUses(ctx, userID, discountCodeID)
}

func (s *service) TotalSaved(ctx context.Context, userID, categoryID, seasonID uuid.UUID) (int, error) {
	return s.repo.TotalSaved(ctx, userID, categoryID, seasonID)
}

// RecordUsage appends one usage fact. It must run inside the same
// transaction that confirms the charge: the seasonal ledger is re-read here,
// so a quote granted while budget was free cannot be recorded once another
// confirmation has spent it. The unique registration constraint additionally
// blocks double-recording a single registration.
func (s *service) RecordUsage(ctx context.Context, tx *gorm.DB, input RecordUsageInput) (*models.DiscountUsage, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if input.UserID == uuid.Nil || input.DiscountCodeID == uuid.Nil || input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user, code, and category ids are required")
	}
	if input.SeasonID == uuid.Nil || input.RegistrationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "season and registration ids are required")
	}
	if input.AmountSavedCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount saved must not be negative")
	}

	txRepo := s.repo.WithTx(tx)
	category, err := txRepo.FindCategoryByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount category not found")
	}
	if category.MaxDiscountPerUserPerSeasonCents != nil {
		used, err := txRepo.TotalSaved(ctx, input.UserID, input.CategoryID, input.SeasonID)
		if err != nil {
			return nil, err
		}
		remaining := *category.MaxDiscountPerUserPerSeasonCents - used
		if remaining < 0 {
			remaining = 0
		}
		if input.AmountSavedCents > remaining {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "seasonal discount cap exhausted; requote before confirming")
		}
	}

	usage := &models.DiscountUsage{
		UserID:           input.UserID,
		DiscountCodeID:   input.DiscountCodeID,
		CategoryID:       input.CategoryID,
		SeasonID:         input.SeasonID,
		AmountSavedCents: input.AmountSavedCents,
		RegistrationID:   input.RegistrationID,
	}
	if err := txRepo.InsertUsage(ctx, usage); err != nil {
		return nil, err
	}
	usage.Category = category
	return usage, nil
}
