package programs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
)

type fakeRepo struct {
	seasons  map[uuid.UUID]*models.Season
	programs map[uuid.UUID]*models.Program

	createSeasonCalls  int
	createProgramCalls int
	activateCalls      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		seasons:  map[uuid.UUID]*models.Season{},
		programs: map[uuid.UUID]*models.Program{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateSeason(ctx context.Context, season *models.Season) error {
	f.createSeasonCalls++
	season.ID = uuid.New()
	f.seasons[season.ID] = season
	return nil
}

func (f *fakeRepo) FindSeasonByID(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	return f.seasons[id], nil
}

func (f *fakeRepo) FindActiveSeason(ctx context.Context) (*models.Season, error) {
	for _, s := range f.seasons {
		if s.IsActive {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListSeasons(ctx context.Context) ([]models.Season, error) { return nil, nil }

func (f *fakeRepo) ActivateSeason(ctx context.Context, id uuid.UUID) error {
	f.activateCalls++
	for _, s := range f.seasons {
		s.IsActive = s.ID == id
	}
	return nil
}

func (f *fakeRepo) CreateProgram(ctx context.Context, program *models.Program) error {
	f.createProgramCalls++
	program.ID = uuid.New()
	f.programs[program.ID] = program
	return nil
}

func (f *fakeRepo) FindProgramByID(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	return f.programs[id], nil
}

func (f *fakeRepo) ListProgramsBySeason(ctx context.Context, seasonID uuid.UUID) ([]models.Program, error) {
	var out []models.Program
	for _, p := range f.programs {
		if p.SeasonID == seasonID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateProgram(ctx context.Context, program *models.Program) error { return nil }

func (f *fakeRepo) DeactivateProgram(ctx context.Context, id uuid.UUID) error {
	if p, ok := f.programs[id]; ok {
		p.IsActive = false
	}
	return nil
}

func seedSeason(f *fakeRepo) *models.Season {
	season := &models.Season{
		ID:       uuid.New(),
		Name:     "2026-27 Winter",
		StartsOn: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndsOn:   time.Date(2027, 4, 30, 0, 0, 0, 0, time.UTC),
	}
	f.seasons[season.ID] = season
	return season
}

func TestCreateSeasonValidation(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		input CreateSeasonInput
	}{
		{"missing name", CreateSeasonInput{StartsOn: start, EndsOn: start.AddDate(0, 8, 0)}},
		{"missing dates", CreateSeasonInput{Name: "Winter"}},
		{"end before start", CreateSeasonInput{Name: "Winter", StartsOn: start, EndsOn: start.AddDate(0, -1, 0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateSeason(ctx, tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if repo.createSeasonCalls != 0 {
		t.Fatalf("expected no repo writes, got %d", repo.createSeasonCalls)
	}
}

func TestCreateProgramValidation(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc, _ := NewService(repo)
	ctx := context.Background()
	season := seedSeason(repo)

	zero := 0
	opens := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	closesBefore := opens.AddDate(0, 0, -7)

	cases := []struct {
		name  string
		input CreateProgramInput
	}{
		{"missing name", CreateProgramInput{SeasonID: season.ID, PriceCents: 100, AccountingCode: "4000"}},
		{"negative price", CreateProgramInput{SeasonID: season.ID, Name: "U12", PriceCents: -1, AccountingCode: "4000"}},
		{"zero capacity", CreateProgramInput{SeasonID: season.ID, Name: "U12", PriceCents: 100, Capacity: &zero, AccountingCode: "4000"}},
		{"missing accounting code", CreateProgramInput{SeasonID: season.ID, Name: "U12", PriceCents: 100}},
		{"window closes before opening", CreateProgramInput{SeasonID: season.ID, Name: "U12", PriceCents: 100, AccountingCode: "4000", OpensAt: &opens, ClosesAt: &closesBefore}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProgram(ctx, tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if repo.createProgramCalls != 0 {
		t.Fatalf("expected no repo writes, got %d", repo.createProgramCalls)
	}
}

func TestCreateProgramUnknownSeason(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc, _ := NewService(repo)

	_, err := svc.CreateProgram(context.Background(), CreateProgramInput{
		SeasonID:       uuid.New(),
		Name:           "U14 Travel",
		PriceCents:     45000,
		AccountingCode: "4000-REG",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateProgramDefaultsActive(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc, _ := NewService(repo)
	season := seedSeason(repo)

	program, err := svc.CreateProgram(context.Background(), CreateProgramInput{
		SeasonID:       season.ID,
		Name:           "Learn to Skate",
		PriceCents:     12000,
		AccountingCode: "4000-LTS",
		Tags:           []string{"membership"},
	})
	if err != nil {
		t.Fatalf("create program: %v", err)
	}
	if !program.IsActive {
		t.Fatal("expected new program to be active")
	}
	if program.Season == nil || program.Season.ID != season.ID {
		t.Fatal("expected season attached to result")
	}
}

func TestOpenForRegistration(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	svc, _ := NewService(repo)

	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	opens := now.AddDate(0, 0, 7)
	closed := now.AddDate(0, 0, -1)

	cases := []struct {
		name    string
		program *models.Program
		wantErr bool
	}{
		{"open no window", &models.Program{IsActive: true}, false},
		{"inactive", &models.Program{IsActive: false}, true},
		{"not yet open", &models.Program{IsActive: true, OpensAt: &opens}, true},
		{"already closed", &models.Program{IsActive: true, ClosesAt: &closed}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.OpenForRegistration(tc.program, now)
			if tc.wantErr {
				if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
					t.Fatalf("expected state conflict, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected open, got %v", err)
			}
		})
	}
}
