package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glacierhockey/rinkreg-backend/api/responses"
	"github.com/glacierhockey/rinkreg-backend/api/validators"
	"github.com/glacierhockey/rinkreg-backend/internal/discounts"
	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
	"github.com/glacierhockey/rinkreg-backend/pkg/logger"
)

type discountCategoryCreateRequest struct {
	Name                             string `json:"name" validate:"required"`
	MaxDiscountPerUserPerSeasonCents *int   `json:"max_discount_per_user_per_season_cents,omitempty"`
	AccountingCode                   string `json:"accounting_code" validate:"required"`
}

type discountCategoryResponse struct {
	ID                               uuid.UUID `json:"id"`
	Name                             string    `json:"name"`
	MaxDiscountPerUserPerSeasonCents *int      `json:"max_discount_per_user_per_season_cents,omitempty"`
	AccountingCode                   string    `json:"accounting_code"`
	CreatedAt                        time.Time `json:"created_at"`
}

func discountCategoryResponseFromModel(m *models.DiscountCategory) discountCategoryResponse {
	return discountCategoryResponse{
		ID:                               m.ID,
		Name:                             m.Name,
		MaxDiscountPerUserPerSeasonCents: m.MaxDiscountPerUserPerSeasonCents,
		AccountingCode:                   m.AccountingCode,
		CreatedAt:                        m.CreatedAt,
	}
}

// DiscountCategoryCreate handles the administrative creation of a category.
func DiscountCategoryCreate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var payload discountCategoryCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), discounts.CreateCategoryInput{
			Name:                             strings.TrimSpace(payload.Name),
			MaxDiscountPerUserPerSeasonCents: payload.MaxDiscountPerUserPerSeasonCents,
			AccountingCode:                   strings.TrimSpace(payload.AccountingCode),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, discountCategoryResponseFromModel(category))
	}
}

func DiscountCategoryList(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		list, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]discountCategoryResponse, 0, len(list))
		for i := range list {
			out = append(out, discountCategoryResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type discountCodeCreateRequest struct {
	Code       string `json:"code" validate:"required"`
	Percentage string `json:"percentage" validate:"required"`
	UsageLimit *int   `json:"usage_limit,omitempty"`
	CategoryID string `json:"category_id" validate:"required,uuid4"`
}

func (r discountCodeCreateRequest) toInput() (discounts.CreateCodeInput, error) {
	percentage, err := decimal.NewFromString(strings.TrimSpace(r.Percentage))
	if err != nil {
		return discounts.CreateCodeInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid percentage")
	}

	categoryID, err := uuid.Parse(strings.TrimSpace(r.CategoryID))
	if err != nil {
		return discounts.CreateCodeInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category_id")
	}

	return discounts.CreateCodeInput{
		Code:       strings.TrimSpace(r.Code),
		Percentage: percentage,
		UsageLimit: r.UsageLimit,
		CategoryID: categoryID,
	}, nil
}

type discountCodeResponse struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Percentage string    `json:"percentage"`
	UsageLimit *int      `json:"usage_limit,omitempty"`
	CategoryID uuid.UUID `json:"category_id"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func discountCodeResponseFromModel(m *models.DiscountCode) discountCodeResponse {
	return discountCodeResponse{
		ID:         m.ID,
		Code:       m.Code,
		Percentage: m.Percentage.String(),
		UsageLimit: m.UsageLimit,
		CategoryID: m.CategoryID,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
	}
}

// DiscountCodeCreate handles the administrative issuance of a code.
func DiscountCodeCreate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var payload discountCodeCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code, err := svc.CreateCode(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, discountCodeResponseFromModel(code))
	}
}

func DiscountCodeList(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		list, err := svc.ListCodes(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]discountCodeResponse, 0, len(list))
		for i := range list {
			out = append(out, discountCodeResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// DiscountCodeDeactivate retires a code. Past usages stand.
func DiscountCodeDeactivate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "codeId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid code id"))
			return
		}

		if err := svc.DeactivateCode(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
