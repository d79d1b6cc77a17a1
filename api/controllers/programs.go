package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glacierhockey/rinkreg-backend/api/responses"
	"github.com/glacierhockey/rinkreg-backend/api/validators"
	"github.com/glacierhockey/rinkreg-backend/internal/programs"
	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
	"github.com/glacierhockey/rinkreg-backend/pkg/logger"
)

type programCreateRequest struct {
	SeasonID        string     `json:"season_id" validate:"required,uuid4"`
	Name            string     `json:"name" validate:"required"`
	Description     *string    `json:"description,omitempty"`
	PriceCents      int        `json:"price_cents" validate:"min=0"`
	Capacity        *int       `json:"capacity,omitempty"`
	WaitlistEnabled *bool      `json:"waitlist_enabled,omitempty"`
	AccountingCode  string     `json:"accounting_code" validate:"required"`
	Tags            []string   `json:"tags,omitempty"`
	OpensAt         *time.Time `json:"opens_at,omitempty"`
	ClosesAt        *time.Time `json:"closes_at,omitempty"`
}

func (r programCreateRequest) toInput() (programs.CreateProgramInput, error) {
	seasonID, err := uuid.Parse(strings.TrimSpace(r.SeasonID))
	if err != nil {
		return programs.CreateProgramInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid season_id")
	}

	waitlist := true
	if r.WaitlistEnabled != nil {
		waitlist = *r.WaitlistEnabled
	}

	return programs.CreateProgramInput{
		SeasonID:        seasonID,
		Name:            strings.TrimSpace(r.Name),
		Description:     r.Description,
		PriceCents:      r.PriceCents,
		Capacity:        r.Capacity,
		WaitlistEnabled: waitlist,
		AccountingCode:  strings.TrimSpace(r.AccountingCode),
		Tags:            r.Tags,
		OpensAt:         r.OpensAt,
		ClosesAt:        r.ClosesAt,
	}, nil
}

type programResponse struct {
	ID              uuid.UUID  `json:"id"`
	SeasonID        uuid.UUID  `json:"season_id"`
	Name            string     `json:"name"`
	Description     *string    `json:"description,omitempty"`
	PriceCents      int        `json:"price_cents"`
	Capacity        *int       `json:"capacity,omitempty"`
	WaitlistEnabled bool       `json:"waitlist_enabled"`
	AccountingCode  string     `json:"accounting_code"`
	Tags            []string   `json:"tags"`
	OpensAt         *time.Time `json:"opens_at,omitempty"`
	ClosesAt        *time.Time `json:"closes_at,omitempty"`
	IsActive        bool       `json:"is_active"`
}

func programResponseFromModel(m *models.Program) programResponse {
	return programResponse{
		ID:              m.ID,
		SeasonID:        m.SeasonID,
		Name:            m.Name,
		Description:     m.Description,
		PriceCents:      m.PriceCents,
		Capacity:        m.Capacity,
		WaitlistEnabled: m.WaitlistEnabled,
		AccountingCode:  m.AccountingCode,
		Tags:            []string(m.Tags),
		OpensAt:         m.OpensAt,
		ClosesAt:        m.ClosesAt,
		IsActive:        m.IsActive,
	}
}

// ProgramCreate handles the administrative creation of a program.
func ProgramCreate(svc programs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "program service unavailable"))
			return
		}

		var payload programCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		program, err := svc.CreateProgram(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, programResponseFromModel(program))
	}
}

func ProgramGet(svc programs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "program service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "programId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid program id"))
			return
		}

		program, err := svc.GetProgram(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, programResponseFromModel(program))
	}
}

// ProgramList returns the programs of a season, newest first.
func ProgramList(svc programs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "program service unavailable"))
			return
		}

		seasonID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("season_id")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid season_id"))
			return
		}

		list, err := svc.ListPrograms(r.Context(), seasonID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]programResponse, 0, len(list))
		for i := range list {
			out = append(out, programResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// ProgramDeactivate closes a program to further registration.
func ProgramDeactivate(svc programs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "program service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "programId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid program id"))
			return
		}

		if err := svc.DeactivateProgram(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
