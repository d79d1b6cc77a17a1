package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/glacierhockey/rinkreg-backend/internal/discounts"
	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
)

type stubDiscountService struct {
	category      *models.DiscountCategory
	categories    []models.DiscountCategory
	code          *models.DiscountCode
	codes         []models.DiscountCode
	err           error
	deactivatedID uuid.UUID
}

func (s *stubDiscountService) CreateCategory(context.Context, discounts.CreateCategoryInput) (*models.DiscountCategory, error) {
	return s.category, s.err
}

func (s *stubDiscountService) ListCategories(context.Context) ([]models.DiscountCategory, error) {
	return s.categories, s.err
}

func (s *stubDiscountService) CreateCode(context.Context, discounts.CreateCodeInput) (*models.DiscountCode, error) {
	return s.code, s.err
}

func (s *stubDiscountService) DeactivateCode(_ context.Context, id uuid.UUID) error {
	s.deactivatedID = id
	return s.err
}

func (s *stubDiscountService) ListCodes(context.Context) ([]models.DiscountCode, error) {
	return s.codes, s.err
}

func (s *stubDiscountService) FindByCode(context.Context, string) (*models.DiscountCode, error) {
	return s.code, s.err
}

func (s *stubDiscountService) CountCodeUses(context.Context, uuid.UUID, uuid.UUID) (int, error) {
	return 0, s.err
}

func (s *stubDiscountService) TotalSaved(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (int, error) {
	return 0, s.err
}

func (s *stubDiscountService) RecordUsage(context.Context, *gorm.DB, discounts.RecordUsageInput) (*models.DiscountUsage, error) {
	return nil, s.err
}

func TestDiscountCodeCreateSuccess(t *testing.T) {
	categoryID := uuid.New()
	limit := 100
	svc := &stubDiscountService{code: &models.DiscountCode{
		ID:         uuid.New(),
		Code:       "EARLYBIRD",
		Percentage: decimal.NewFromFloat(12.5),
		UsageLimit: &limit,
		CategoryID: categoryID,
		IsActive:   true,
	}}
	handler := DiscountCodeCreate(svc, nil)

	body := []byte(`{"code":"EARLYBIRD","percentage":"12.5","usage_limit":100,"category_id":"` + categoryID.String() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/discount-codes", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data discountCodeResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Percentage != "12.5" {
		t.Fatalf("expected percentage 12.5 got %s", envelope.Data.Percentage)
	}
}

func TestDiscountCodeCreateRejectsBadPercentage(t *testing.T) {
	handler := DiscountCodeCreate(&stubDiscountService{}, nil)

	body := []byte(`{"code":"X","percentage":"twelve","category_id":"` + uuid.NewString() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/discount-codes", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestDiscountCodeDeactivate(t *testing.T) {
	codeID := uuid.New()
	svc := &stubDiscountService{}
	handler := DiscountCodeDeactivate(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/discount-codes/"+codeID.String()+"/deactivate", nil)
	req = withURLParam(req, "codeId", codeID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.deactivatedID != codeID {
		t.Fatalf("expected deactivation of %s got %s", codeID, svc.deactivatedID)
	}
}

func TestDiscountCategoryCreateDuplicateName(t *testing.T) {
	svc := &stubDiscountService{err: pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")}
	handler := DiscountCategoryCreate(svc, nil)

	body := []byte(`{"name":"Family","accounting_code":"FAM-01"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/discount-categories", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}
