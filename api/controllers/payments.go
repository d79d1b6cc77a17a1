package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glacierhockey/rinkreg-backend/api/responses"
	"github.com/glacierhockey/rinkreg-backend/internal/payments"
	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
	"github.com/glacierhockey/rinkreg-backend/pkg/logger"
)

type paymentResponse struct {
	ID                  uuid.UUID             `json:"id"`
	RegistrationID      uuid.UUID             `json:"registration_id"`
	OriginalAmountCents int                   `json:"original_amount_cents"`
	DiscountCents       int                   `json:"discount_cents"`
	AmountCents         int                   `json:"amount_cents"`
	Currency            string                `json:"currency"`
	Status              string                `json:"status"`
	ProcessorChargeID   *string               `json:"processor_charge_id,omitempty"`
	PaidAt              *time.Time            `json:"paid_at,omitempty"`
	Installments        []installmentResponse `json:"installments,omitempty"`
}

type installmentResponse struct {
	ID                uuid.UUID  `json:"id"`
	InstallmentNumber int        `json:"installment_number"`
	AmountCents       int        `json:"amount_cents"`
	DueAt             time.Time  `json:"due_at"`
	Status            string     `json:"status"`
	IsInitial         bool       `json:"is_initial"`
	ProcessorChargeID *string    `json:"processor_charge_id,omitempty"`
	ChargedAt         *time.Time `json:"charged_at,omitempty"`
	LastError         *string    `json:"last_error,omitempty"`
}

func paymentResponseFromModel(m *models.Payment) paymentResponse {
	if m == nil {
		return paymentResponse{}
	}
	installments := make([]installmentResponse, 0, len(m.Installments))
	for _, slot := range m.Installments {
		installments = append(installments, installmentResponse{
			ID:                slot.ID,
			InstallmentNumber: slot.InstallmentNumber,
			AmountCents:       slot.AmountCents,
			DueAt:             slot.DueAt,
			Status:            string(slot.Status),
			IsInitial:         slot.IsInitial,
			ProcessorChargeID: slot.ProcessorChargeID,
			ChargedAt:         slot.ChargedAt,
			LastError:         slot.LastError,
		})
	}
	return paymentResponse{
		ID:                  m.ID,
		RegistrationID:      m.RegistrationID,
		OriginalAmountCents: m.OriginalAmountCents,
		DiscountCents:       m.DiscountCents,
		AmountCents:         m.AmountCents,
		Currency:            m.Currency,
		Status:              string(m.Status),
		ProcessorChargeID:   m.ProcessorChargeID,
		PaidAt:              m.PaidAt,
		Installments:        installments,
	}
}

// PaymentByRegistration returns a registration's payment with its installment
// plan, installments ordered by number.
func PaymentByRegistration(repo payments.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment repository unavailable"))
			return
		}

		registrationID, err := uuid.Parse(chi.URLParam(r, "registrationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid registration id"))
			return
		}

		payment, err := repo.FindByRegistration(r.Context(), registrationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payment == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found"))
			return
		}

		responses.WriteSuccess(w, paymentResponseFromModel(payment))
	}
}
