package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glacierhockey/rinkreg-backend/api/responses"
	"github.com/glacierhockey/rinkreg-backend/api/validators"
	"github.com/glacierhockey/rinkreg-backend/internal/pricing"
	"github.com/glacierhockey/rinkreg-backend/internal/registrations"
	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
	"github.com/glacierhockey/rinkreg-backend/pkg/logger"
)

type quoteRequest struct {
	UserID       string `json:"user_id" validate:"required,uuid4"`
	ProgramID    string `json:"program_id" validate:"required,uuid4"`
	DiscountCode string `json:"discount_code,omitempty"`
}

type quoteResponse struct {
	OriginalAmountCents int    `json:"original_amount_cents"`
	DiscountCents       int    `json:"discount_cents"`
	FinalAmountCents    int    `json:"final_amount_cents"`
	IsPartialDiscount   bool   `json:"is_partial_discount"`
	Message             string `json:"message,omitempty"`
}

func quoteResponseFromModel(q *pricing.Quote) quoteResponse {
	if q == nil {
		return quoteResponse{}
	}
	return quoteResponse{
		OriginalAmountCents: q.OriginalAmountCents,
		DiscountCents:       q.DiscountCents,
		FinalAmountCents:    q.FinalAmountCents,
		IsPartialDiscount:   q.IsPartialDiscount,
		Message:             q.Message,
	}
}

// RegistrationQuote prices a prospective registration without writing
// anything.
func RegistrationQuote(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registration service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, programID, err := parseUserProgram(payload.UserID, payload.ProgramID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), registrations.QuoteRequest{
			UserID:       userID,
			ProgramID:    programID,
			DiscountCode: strings.TrimSpace(payload.DiscountCode),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quoteResponseFromModel(quote))
	}
}

type registrationCreateRequest struct {
	UserID           string `json:"user_id" validate:"required,uuid4"`
	ProgramID        string `json:"program_id" validate:"required,uuid4"`
	DiscountCode     string `json:"discount_code,omitempty"`
	InstallmentCount int    `json:"installment_count,omitempty" validate:"omitempty,min=1"`
}

type registrationResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	ProgramID   uuid.UUID  `json:"program_id"`
	SeasonID    uuid.UUID  `json:"season_id"`
	Status      string     `json:"status"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func registrationResponseFromModel(m *models.Registration) registrationResponse {
	return registrationResponse{
		ID:          m.ID,
		UserID:      m.UserID,
		ProgramID:   m.ProgramID,
		SeasonID:    m.SeasonID,
		Status:      string(m.Status),
		ConfirmedAt: m.ConfirmedAt,
		CancelledAt: m.CancelledAt,
		CreatedAt:   m.CreatedAt,
	}
}

type registrationCreateResponse struct {
	Registration registrationResponse `json:"registration"`
	Payment      paymentResponse      `json:"payment"`
	Quote        quoteResponse        `json:"quote"`
}

// RegistrationCreate opens a pending registration with its payment and
// optional installment plan.
func RegistrationCreate(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registration service unavailable"))
			return
		}

		var payload registrationCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, programID, err := parseUserProgram(payload.UserID, payload.ProgramID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), registrations.RegisterInput{
			UserID:           userID,
			ProgramID:        programID,
			DiscountCode:     strings.TrimSpace(payload.DiscountCode),
			InstallmentCount: payload.InstallmentCount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, registrationCreateResponse{
			Registration: registrationResponseFromModel(result.Registration),
			Payment:      paymentResponseFromModel(result.Payment),
			Quote:        quoteResponseFromModel(result.Quote),
		})
	}
}

func RegistrationGet(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registration service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "registrationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid registration id"))
			return
		}

		registration, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, registrationResponseFromModel(registration))
	}
}

// RegistrationList returns a user's registrations, newest first.
func RegistrationList(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registration service unavailable"))
			return
		}

		userID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("user_id")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id"))
			return
		}

		list, err := svc.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]registrationResponse, 0, len(list))
		for i := range list {
			out = append(out, registrationResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type registrationConfirmRequest struct {
	ProcessorChargeID string `json:"processor_charge_id" validate:"required"`
}

// RegistrationConfirm marks a registration paid after the processor confirms
// the charge.
func RegistrationConfirm(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registration service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "registrationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid registration id"))
			return
		}

		var payload registrationConfirmRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		registration, err := svc.Confirm(r.Context(), registrations.ConfirmInput{
			RegistrationID:    id,
			ProcessorChargeID: strings.TrimSpace(payload.ProcessorChargeID),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, registrationResponseFromModel(registration))
	}
}

type registrationCancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

func RegistrationCancel(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registration service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "registrationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid registration id"))
			return
		}

		// Reason is optional; an empty body cancels without one.
		var payload registrationCancelRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if err := svc.Cancel(r.Context(), id, strings.TrimSpace(payload.Reason)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

func parseUserProgram(rawUser, rawProgram string) (uuid.UUID, uuid.UUID, error) {
	userID, err := uuid.Parse(strings.TrimSpace(rawUser))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id")
	}
	programID, err := uuid.Parse(strings.TrimSpace(rawProgram))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid program_id")
	}
	return userID, programID, nil
}
