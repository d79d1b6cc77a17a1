package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/glacierhockey/rinkreg-backend/api/responses"
	"github.com/glacierhockey/rinkreg-backend/api/validators"
	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
	"github.com/glacierhockey/rinkreg-backend/pkg/logger"
	"github.com/glacierhockey/rinkreg-backend/pkg/pagination"
)

// DLQLister is the read surface the admin endpoint needs from the outbox
// dead-letter repository.
type DLQLister interface {
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.OutboxDLQ, error)
}

type dlqEntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	Payload       json.RawMessage `json:"payload"`
	ErrorReason   string          `json:"error_reason"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	AttemptCount  int             `json:"attempt_count"`
	FailedAt      time.Time       `json:"failed_at"`
}

type dlqListResponse struct {
	Entries    []dlqEntryResponse `json:"entries"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// OutboxDLQList pages terminal publish failures for operator review.
func OutboxDLQList(repo DLQLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dlq repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}

		rows, err := repo.List(r.Context(), cursor, pagination.LimitWithBuffer(limit))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next := ""
		if len(rows) > limit {
			rows = rows[:limit]
			last := rows[len(rows)-1]
			next = pagination.EncodeCursor(pagination.Cursor{Timestamp: last.FailedAt, ID: last.ID})
		}

		entries := make([]dlqEntryResponse, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, dlqEntryResponse{
				ID:            row.ID,
				EventID:       row.EventID,
				EventType:     string(row.EventType),
				AggregateType: string(row.AggregateType),
				AggregateID:   row.AggregateID,
				Payload:       row.Payload,
				ErrorReason:   string(row.ErrorReason),
				ErrorMessage:  row.ErrorMessage,
				AttemptCount:  row.AttemptCount,
				FailedAt:      row.FailedAt,
			})
		}

		responses.WriteSuccess(w, dlqListResponse{Entries: entries, NextCursor: next})
	}
}
