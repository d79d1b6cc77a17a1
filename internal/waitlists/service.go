package waitlists

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/glacierhockey/rinkreg-backend/pkg/db"
	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
	"github.com/glacierhockey/rinkreg-backend/pkg/outbox"
	"github.com/glacierhockey/rinkreg-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type programLoader interface {
	GetProgram(ctx context.Context, id uuid.UUID) (*models.Program, error)
}

type rosterCounter interface {
	CountActiveByProgram(ctx context.Context, programID uuid.UUID) (int, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service manages waitlists for full programs.
type Service interface {
	Join(ctx context.Context, userID, programID uuid.UUID) (*models.WaitlistEntry, error)
	SelectNext(ctx context.Context, programID uuid.UUID) (*models.WaitlistEntry, error)
	Remove(ctx context.Context, entryID uuid.UUID) error
	ListByProgram(ctx context.Context, programID uuid.UUID) ([]models.WaitlistEntry, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	programs programLoader
	roster   rosterCounter
	outbox   outboxPublisher
	now      func() time.Time
}

// NewService builds the waitlist service.
func NewService(
	tx txRunner,
	repo Repository,
	programs programLoader,
	roster rosterCounter,
	publisher outboxPublisher,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("waitlist repository required")
	}
	if programs == nil {
		return nil, fmt.Errorf("program loader required")
	}
	if roster == nil {
		return nil, fmt.Errorf("roster counter required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		programs: programs,
		roster:   roster,
		outbox:   publisher,
		now:      time.Now,
	}, nil
}

// Join queues the user behind everyone already waiting. Joining is only
// allowed once the program is actually full; an open spot should go through
// registration instead.
func (s *service) Join(ctx context.Context, userID, programID uuid.UUID) (*models.WaitlistEntry, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if programID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "program id required")
	}

	program, err := s.programs.GetProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	if !program.WaitlistEnabled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "program has no waitlist")
	}
	if program.Capacity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "program has open capacity")
	}
	active, err := s.roster.CountActiveByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	if active < *program.Capacity {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "program has open spots; register instead")
	}

	var entry *models.WaitlistEntry
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		position, err := repo.NextPosition(ctx, programID)
		if err != nil {
			return err
		}
		entry = &models.WaitlistEntry{
			UserID:    userID,
			ProgramID: programID,
			Position:  position,
			Status:    enums.WaitlistStatusWaiting,
		}
		if err := repo.Create(ctx, entry); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_waitlist_entries_user_program") {
				return pkgerrors.New(pkgerrors.CodeConflict, "already on this waitlist")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// SelectNext offers the open spot to the longest-waiting member and emits
// the notification event. The entry stays selected, not registered; the
// member still goes through the normal registration flow.
func (s *service) SelectNext(ctx context.Context, programID uuid.UUID) (*models.WaitlistEntry, error) {
	if programID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "program id required")
	}

	var selected *models.WaitlistEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entry, err := repo.FirstWaiting(ctx, programID)
		if err != nil {
			return err
		}
		if entry == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "waitlist is empty")
		}

		now := s.now()
		if err := repo.MarkSelected(ctx, entry.ID, now); err != nil {
			return err
		}
		entry.Status = enums.WaitlistStatusSelected
		entry.SelectedAt = &now
		selected = entry

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWaitlistSelected,
			AggregateType: enums.AggregateWaitlistEntry,
			AggregateID:   entry.ID,
			Data: payloads.WaitlistSelectedEvent{
				EntryID:    entry.ID,
				UserID:     entry.UserID,
				ProgramID:  entry.ProgramID,
				Position:   entry.Position,
				SelectedAt: now,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return selected, nil
}

func (s *service) Remove(ctx context.Context, entryID uuid.UUID) error {
	if entryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "entry id required")
	}
	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "waitlist entry not found")
	}
	return s.repo.MarkRemoved(ctx, entryID)
}

func (s *service) ListByProgram(ctx context.Context, programID uuid.UUID) ([]models.WaitlistEntry, error) {
	if programID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "program id required")
	}
	return s.repo.ListByProgram(ctx, programID)
}
