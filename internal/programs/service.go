package programs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
)

// Service manages the program catalog administrators publish for
// registration.
type Service interface {
	CreateSeason(ctx context.Context, input CreateSeasonInput) (*models.Season, error)
	ListSeasons(ctx context.Context) ([]models.Season, error)
	ActiveSeason(ctx context.Context) (*models.Season, error)
	ActivateSeason(ctx context.Context, id uuid.UUID) error

	CreateProgram(ctx context.Context, input CreateProgramInput) (*models.Program, error)
	GetProgram(ctx context.Context, id uuid.UUID) (*models.Program, error)
	ListPrograms(ctx context.Context, seasonID uuid.UUID) ([]models.Program, error)
	DeactivateProgram(ctx context.Context, id uuid.UUID) error

	// OpenForRegistration reports whether the program currently accepts new
	// registrations, ignoring capacity.
	OpenForRegistration(program *models.Program, now time.Time) error
}

// CreateSeasonInput carries the fields an administrator sets on a season.
type CreateSeasonInput struct {
	Name     string
	StartsOn time.Time
	EndsOn   time.Time
}

// CreateProgramInput carries the fields an administrator sets on a program.
type CreateProgramInput struct {
	SeasonID        uuid.UUID
	Name            string
	Description     *string
	PriceCents      int
	Capacity        *int
	WaitlistEnabled bool
	AccountingCode  string
	Tags            []string
	OpensAt         *time.Time
	ClosesAt        *time.Time
}

type service struct {
	repo Repository
}

// NewService wires a program service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("program repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateSeason(ctx context.Context, input CreateSeasonInput) (*models.Season, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "season name is required")
	}
	if input.StartsOn.IsZero() || input.EndsOn.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "season start and end dates are required")
	}
	if !input.EndsOn.After(input.StartsOn) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "season must end after it starts")
	}

	season := &models.Season{
		Name:     name,
		StartsOn: input.StartsOn,
		EndsOn:   input.EndsOn,
	}
	if err := s.repo.CreateSeason(ctx, season); err != nil {
		return nil, err
	}
	return season, nil
}

func (s *service) ListSeasons(ctx context.Context) ([]models.Season, error) {
	return s.repo.ListSeasons(ctx)
}

func (s *service) ActiveSeason(ctx context.Context) (*models.Season, error) {
	season, err := s.repo.FindActiveSeason(ctx)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active season")
	}
	return season, nil
}

func (s *service) ActivateSeason(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "season id is required")
	}
	season, err := s.repo.FindSeasonByID(ctx, id)
	if err != nil {
		return err
	}
	if season == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "season not found")
	}
	return s.repo.ActivateSeason(ctx, id)
}

func (s *service) CreateProgram(ctx context.Context, input CreateProgramInput) (*models.Program, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "program name is required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Capacity != nil && *input.Capacity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity must be positive when set")
	}
	if strings.TrimSpace(input.AccountingCode) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "accounting code is required")
	}
	if input.OpensAt != nil && input.ClosesAt != nil && !input.ClosesAt.After(*input.OpensAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "registration window must close after it opens")
	}

	season, err := s.repo.FindSeasonByID(ctx, input.SeasonID)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "season not found")
	}

	program := &models.Program{
		SeasonID:        input.SeasonID,
		Name:            name,
		Description:     input.Description,
		PriceCents:      input.PriceCents,
		Capacity:        input.Capacity,
		WaitlistEnabled: input.WaitlistEnabled,
		AccountingCode:  strings.TrimSpace(input.AccountingCode),
		Tags:            pq.StringArray(input.Tags),
		OpensAt:         input.OpensAt,
		ClosesAt:        input.ClosesAt,
		IsActive:        true,
	}
	if err := s.repo.CreateProgram(ctx, program); err != nil {
		return nil, err
	}
	program.Season = season
	return program, nil
}

func (s *service) GetProgram(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "program id is required")
	}
	program, err := s.repo.FindProgramByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if program == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "program not found")
	}
	return program, nil
}

func (s *service) ListPrograms(ctx context.Context, seasonID uuid.UUID) ([]models.Program, error) {
	if seasonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "season id is required")
	}
	return s.repo.ListProgramsBySeason(ctx, seasonID)
}

func (s *service) DeactivateProgram(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "program id is required")
	}
	return s.repo.DeactivateProgram(ctx, id)
}

func (s *service) OpenForRegistration(program *models.Program, now time.Time) error {
	if program == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "program not found")
	}
	if !program.IsActive {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "program is not accepting registrations")
	}
	if program.OpensAt != nil && now.Before(*program.OpensAt) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "registration has not opened yet")
	}
	if program.ClosesAt != nil && now.After(*program.ClosesAt) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "registration has closed")
	}
	return nil
}
