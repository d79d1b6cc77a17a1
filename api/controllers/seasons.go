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

type seasonCreateRequest struct {
	Name     string    `json:"name" validate:"required"`
	StartsOn time.Time `json:"starts_on" validate:"required"`
	EndsOn   time.Time `json:"ends_on" validate:"required"`
}

type seasonResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	StartsOn time.Time `json:"starts_on"`
	EndsOn   time.Time `json:"ends_on"`
	IsActive bool      `json:"is_active"`
}

func seasonResponseFromModel(m *models.Season) seasonResponse {
	return seasonResponse{
		ID:       m.ID,
		Name:     m.Name,
		StartsOn: m.StartsOn,
		EndsOn:   m.EndsOn,
		IsActive: m.IsActive,
	}
}

// SeasonCreate handles the administrative creation of a season.
func SeasonCreate(svc programs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "program service unavailable"))
			return
		}

		var payload seasonCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		season, err := svc.CreateSeason(r.Context(), programs.CreateSeasonInput{
			Name:     strings.TrimSpace(payload.Name),
			StartsOn: payload.StartsOn,
			EndsOn:   payload.EndsOn,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, seasonResponseFromModel(season))
	}
}

func SeasonList(svc programs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "program service unavailable"))
			return
		}

		seasons, err := svc.ListSeasons(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]seasonResponse, 0, len(seasons))
		for i := range seasons {
			out = append(out, seasonResponseFromModel(&seasons[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// SeasonActivate marks one season active and deactivates the rest.
func SeasonActivate(svc programs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "program service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "seasonId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid season id"))
			return
		}

		if err := svc.ActivateSeason(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "activated"})
	}
}
