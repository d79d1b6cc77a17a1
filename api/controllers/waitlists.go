package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glacierhockey/rinkreg-backend/api/responses"
	"github.com/glacierhockey/rinkreg-backend/api/validators"
	"github.com/glacierhockey/rinkreg-backend/internal/waitlists"
	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
	"github.com/glacierhockey/rinkreg-backend/pkg/logger"
)

type waitlistJoinRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

type waitlistEntryResponse struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	ProgramID  uuid.UUID  `json:"program_id"`
	Position   int        `json:"position"`
	Status     string     `json:"status"`
	SelectedAt *time.Time `json:"selected_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func waitlistEntryResponseFromModel(m *models.WaitlistEntry) waitlistEntryResponse {
	return waitlistEntryResponse{
		ID:         m.ID,
		UserID:     m.UserID,
		ProgramID:  m.ProgramID,
		Position:   m.Position,
		Status:     string(m.Status),
		SelectedAt: m.SelectedAt,
		CreatedAt:  m.CreatedAt,
	}
}

// WaitlistJoin queues a user for a full program.
func WaitlistJoin(svc waitlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waitlist service unavailable"))
			return
		}

		programID, err := uuid.Parse(chi.URLParam(r, "programId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid program id"))
			return
		}

		var payload waitlistJoinRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := uuid.Parse(strings.TrimSpace(payload.UserID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id"))
			return
		}

		entry, err := svc.Join(r.Context(), userID, programID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, waitlistEntryResponseFromModel(entry))
	}
}

// WaitlistSelectNext promotes the lowest waiting position once a seat opens.
func WaitlistSelectNext(svc waitlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waitlist service unavailable"))
			return
		}

		programID, err := uuid.Parse(chi.URLParam(r, "programId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid program id"))
			return
		}

		entry, err := svc.SelectNext(r.Context(), programID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, waitlistEntryResponseFromModel(entry))
	}
}

func WaitlistRemove(svc waitlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waitlist service unavailable"))
			return
		}

		entryID, err := uuid.Parse(chi.URLParam(r, "entryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entry id"))
			return
		}

		if err := svc.Remove(r.Context(), entryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// WaitlistList returns a program's queue in position order.
func WaitlistList(svc waitlists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waitlist service unavailable"))
			return
		}

		programID, err := uuid.Parse(chi.URLParam(r, "programId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid program id"))
			return
		}

		entries, err := svc.ListByProgram(r.Context(), programID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]waitlistEntryResponse, 0, len(entries))
		for i := range entries {
			out = append(out, waitlistEntryResponseFromModel(&entries[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
