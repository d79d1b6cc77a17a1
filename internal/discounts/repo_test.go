package discounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
)

func setupDiscountsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:discounts_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	categories := `
CREATE TABLE IF NOT EXISTS discount_categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  max_discount_per_user_per_season_cents INTEGER,
  accounting_code TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	codes := `
CREATE TABLE IF NOT EXISTS discount_codes (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  percentage NUMERIC NOT NULL,
  usage_limit INTEGER,
  category_id TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	usages := `
CREATE TABLE IF NOT EXISTS discount_usages (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  discount_code_id TEXT NOT NULL,
  category_id TEXT NOT NULL,
  season_id TEXT NOT NULL,
  amount_saved_cents INTEGER NOT NULL,
  registration_id TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`
	for _, ddl := range []string{categories, codes, usages} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func newCategory(t *testing.T, db *gorm.DB, capCents *int) *models.DiscountCategory {
	t.Helper()

	category := &models.DiscountCategory{
		ID:                               uuid.New(),
		Name:                             "Family",
		MaxDiscountPerUserPerSeasonCents: capCents,
		AccountingCode:                   "4100-DISC",
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func newCode(t *testing.T, db *gorm.DB, categoryID uuid.UUID, code string, pct int64) *models.DiscountCode {
	t.Helper()

	row := &models.DiscountCode{
		ID:         uuid.New(),
		Code:       code,
		Percentage: decimal.NewFromInt(pct),
		CategoryID: categoryID,
		IsActive:   true,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestRepositoryFindCodeByCode(t *testing.T) {
	t.Parallel()

	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	capCents := 10000
	category := newCategory(t, db, &capCents)
	newCode(t, db, category.ID, "EARLYBIRD", 15)

	found, err := repo.FindCodeByCode(ctx, "EARLYBIRD")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.NotNil(t, found.Category)
	assert.Equal(t, category.ID, found.Category.ID)
	require.NotNil(t, found.Category.MaxDiscountPerUserPerSeasonCents)
	assert.Equal(t, capCents, *found.Category.MaxDiscountPerUserPerSeasonCents)

	missing, err := repo.FindCodeByCode(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositoryDeactivateCode(t *testing.T) {
	t.Parallel()

	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := newCategory(t, db, nil)
	code := newCode(t, db, category.ID, "ALUMNI", 20)

	require.NoError(t, repo.DeactivateCode(ctx, code.ID))

	found, err := repo.FindCodeByCode(ctx, "ALUMNI")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.IsActive)
}

func TestRepositoryUsageLedger(t *testing.T) {
	t.Parallel()

	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	capCents := 5000
	category := newCategory(t, db, &capCents)
	code := newCode(t, db, category.ID, "SIBLING", 25)

	userID := uuid.New()
	otherUser := uuid.New()
	seasonID := uuid.New()
	otherSeason := uuid.New()

	rows := []models.DiscountUsage{
		{ID: uuid.New(), UserID: userID, DiscountCodeID: code.ID, CategoryID: category.ID, SeasonID: seasonID, AmountSavedCents: 1500, RegistrationID: uuid.New()},
		{ID: uuid.New(), UserID: userID, DiscountCodeID: code.ID, CategoryID: category.ID, SeasonID: seasonID, AmountSavedCents: 2000, RegistrationID: uuid.New()},
		{ID: uuid.New(), UserID: userID, DiscountCodeID: code.ID, CategoryID: category.ID, SeasonID: otherSeason, AmountSavedCents: 900, RegistrationID: uuid.New()},
		{ID: uuid.New(), UserID: otherUser, DiscountCodeID: code.ID, CategoryID: category.ID, SeasonID: seasonID, AmountSavedCents: 400, RegistrationID: uuid.New()},
	}
	for i := range rows {
		require.NoError(t, repo.InsertUsage(ctx, &rows[i]))
	}

	uses, err := repo.CountCodeUses(ctx, userID, code.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, uses, "uses count across seasons")

	saved, err := repo.TotalSaved(ctx, userID, category.ID, seasonID)
	require.NoError(t, err)
	assert.Equal(t, 3500, saved, "saved this season only")

	saved, err = repo.TotalSaved(ctx, uuid.New(), category.ID, seasonID)
	require.NoError(t, err)
	assert.Zero(t, saved, "user with no usage")
}

func TestRepositoryInsertUsageRejectsDuplicateRegistration(t *testing.T) {
	t.Parallel()

	db := setupDiscountsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := newCategory(t, db, nil)
	code := newCode(t, db, category.ID, "ONCE", 10)

	registrationID := uuid.New()
	first := models.DiscountUsage{
		ID: uuid.New(), UserID: uuid.New(), DiscountCodeID: code.ID, CategoryID: category.ID,
		SeasonID: uuid.New(), AmountSavedCents: 100, RegistrationID: registrationID,
	}
	require.NoError(t, repo.InsertUsage(ctx, &first))

	dup := first
	dup.ID = uuid.New()
	assert.Error(t, repo.InsertUsage(ctx, &dup), "duplicate registration usage must violate the unique index")
}
