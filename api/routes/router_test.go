package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/glacierhockey/rinkreg-backend/internal/discounts"
	"github.com/glacierhockey/rinkreg-backend/internal/payments"
	"github.com/glacierhockey/rinkreg-backend/internal/pricing"
	"github.com/glacierhockey/rinkreg-backend/internal/programs"
	"github.com/glacierhockey/rinkreg-backend/internal/registrations"
	"github.com/glacierhockey/rinkreg-backend/pkg/config"
	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
	"github.com/glacierhockey/rinkreg-backend/pkg/logger"
	"github.com/glacierhockey/rinkreg-backend/pkg/pagination"
	goredis "github.com/redis/go-redis/v9"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeIdempotencyStore struct {
	data map[string]string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{data: map[string]string{}}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", goredis.Nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("idem:%s:%s", scope, id)
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

type fakeProgramService struct {
	program *models.Program
}

func (f *fakeProgramService) CreateSeason(context.Context, programs.CreateSeasonInput) (*models.Season, error) {
	return &models.Season{ID: uuid.New(), Name: "2026-2027"}, nil
}

func (f *fakeProgramService) ListSeasons(context.Context) ([]models.Season, error) {
	return nil, nil
}

func (f *fakeProgramService) ActiveSeason(context.Context) (*models.Season, error) {
	return nil, nil
}

func (f *fakeProgramService) ActivateSeason(context.Context, uuid.UUID) error { return nil }

func (f *fakeProgramService) CreateProgram(context.Context, programs.CreateProgramInput) (*models.Program, error) {
	return f.program, nil
}

func (f *fakeProgramService) GetProgram(context.Context, uuid.UUID) (*models.Program, error) {
	return f.program, nil
}

func (f *fakeProgramService) ListPrograms(context.Context, uuid.UUID) ([]models.Program, error) {
	return nil, nil
}

func (f *fakeProgramService) DeactivateProgram(context.Context, uuid.UUID) error { return nil }

func (f *fakeProgramService) OpenForRegistration(*models.Program, time.Time) error { return nil }

type fakeDiscountService struct{}

func (fakeDiscountService) CreateCategory(context.Context, discounts.CreateCategoryInput) (*models.DiscountCategory, error) {
	return &models.DiscountCategory{ID: uuid.New()}, nil
}

func (fakeDiscountService) ListCategories(context.Context) ([]models.DiscountCategory, error) {
	return nil, nil
}

func (fakeDiscountService) CreateCode(context.Context, discounts.CreateCodeInput) (*models.DiscountCode, error) {
	return &models.DiscountCode{ID: uuid.New()}, nil
}

func (fakeDiscountService) DeactivateCode(context.Context, uuid.UUID) error { return nil }

func (fakeDiscountService) ListCodes(context.Context) ([]models.DiscountCode, error) {
	return nil, nil
}

func (fakeDiscountService) FindByCode(context.Context, string) (*models.DiscountCode, error) {
	return nil, nil
}

func (fakeDiscountService) CountCodeUses(context.Context, uuid.UUID, uuid.UUID) (int, error) {
	return 0, nil
}

func (fakeDiscountService) TotalSaved(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (int, error) {
	return 0, nil
}

func (fakeDiscountService) RecordUsage(context.Context, *gorm.DB, discounts.RecordUsageInput) (*models.DiscountUsage, error) {
	return nil, nil
}

type fakeRegistrationService struct {
	registered int
}

func (f *fakeRegistrationService) Quote(context.Context, registrations.QuoteRequest) (*pricing.Quote, error) {
	return &pricing.Quote{OriginalAmountCents: 10000, FinalAmountCents: 10000}, nil
}

func (f *fakeRegistrationService) Register(context.Context, registrations.RegisterInput) (*registrations.RegisterResult, error) {
	f.registered++
	regID := uuid.New()
	return &registrations.RegisterResult{
		Registration: &models.Registration{ID: regID, Status: enums.RegistrationStatusPending},
		Payment:      &models.Payment{ID: uuid.New(), RegistrationID: regID, AmountCents: 10000, Currency: "cad"},
		Quote:        &pricing.Quote{OriginalAmountCents: 10000, FinalAmountCents: 10000},
	}, nil
}

func (f *fakeRegistrationService) Confirm(context.Context, registrations.ConfirmInput) (*models.Registration, error) {
	return &models.Registration{ID: uuid.New(), Status: enums.RegistrationStatusConfirmed}, nil
}

func (f *fakeRegistrationService) Cancel(context.Context, uuid.UUID, string) error { return nil }

func (f *fakeRegistrationService) Get(context.Context, uuid.UUID) (*models.Registration, error) {
	return &models.Registration{ID: uuid.New()}, nil
}

func (f *fakeRegistrationService) ListByUser(context.Context, uuid.UUID) ([]models.Registration, error) {
	return nil, nil
}

type fakeWaitlistService struct{}

func (fakeWaitlistService) Join(context.Context, uuid.UUID, uuid.UUID) (*models.WaitlistEntry, error) {
	return &models.WaitlistEntry{ID: uuid.New(), Position: 1, Status: enums.WaitlistStatusWaiting}, nil
}

func (fakeWaitlistService) SelectNext(context.Context, uuid.UUID) (*models.WaitlistEntry, error) {
	return &models.WaitlistEntry{ID: uuid.New(), Status: enums.WaitlistStatusSelected}, nil
}

func (fakeWaitlistService) Remove(context.Context, uuid.UUID) error { return nil }

func (fakeWaitlistService) ListByProgram(context.Context, uuid.UUID) ([]models.WaitlistEntry, error) {
	return nil, nil
}

type fakePaymentRepo struct{}

func (f fakePaymentRepo) WithTx(*gorm.DB) payments.Repository { return f }

func (fakePaymentRepo) Create(context.Context, *models.Payment) error { return nil }

func (fakePaymentRepo) FindByID(context.Context, uuid.UUID) (*models.Payment, error) {
	return nil, nil
}

func (fakePaymentRepo) FindByRegistration(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	return &models.Payment{ID: uuid.New(), RegistrationID: id, AmountCents: 2500, Currency: "cad"}, nil
}

func (fakePaymentRepo) MarkPaid(context.Context, uuid.UUID, string, time.Time) error { return nil }

func (fakePaymentRepo) MarkFailed(context.Context, uuid.UUID) error { return nil }

func (fakePaymentRepo) CreateInstallments(context.Context, []models.PaymentInstallment) error {
	return nil
}

func (fakePaymentRepo) ListDueInstallments(context.Context, time.Time, int) ([]models.PaymentInstallment, error) {
	return nil, nil
}

func (fakePaymentRepo) MarkInstallmentCharged(context.Context, uuid.UUID, string, time.Time) error {
	return nil
}

func (fakePaymentRepo) MarkInstallmentFailed(context.Context, uuid.UUID, string) error { return nil }

func (fakePaymentRepo) CountOpenInstallments(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}

type fakeDLQ struct{}

func (fakeDLQ) List(context.Context, *pagination.Cursor, int) ([]models.OutboxDLQ, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (http.Handler, *fakeRegistrationService) {
	t.Helper()
	logg := logger.New(logger.Options{
		ServiceName: "test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})

	regSvc := &fakeRegistrationService{}
	handler := NewRouter(Deps{
		Config:        &config.Config{App: config.AppConfig{Env: "test"}},
		Logger:        logg,
		DB:            fakePinger{},
		Redis:         fakePinger{},
		Idempotency:   newFakeIdempotencyStore(),
		Programs:      &fakeProgramService{program: &models.Program{ID: uuid.New(), Name: "U11 House"}},
		Discounts:     fakeDiscountService{},
		Registrations: regSvc,
		Waitlists:     fakeWaitlistService{},
		Payments:      fakePaymentRepo{},
		DLQ:           fakeDLQ{},
	})
	return handler, regSvc
}

func TestRouterHealthEndpoints(t *testing.T) {
	handler, _ := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d: %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestRouterRegistrationCreateRequiresIdempotencyKey(t *testing.T) {
	handler, regSvc := newTestRouter(t)

	body := []byte(`{"user_id":"` + uuid.NewString() + `","program_id":"` + uuid.NewString() + `"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/registrations", bytes.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key, got %d", rec.Code)
	}
	if regSvc.registered != 0 {
		t.Fatal("handler should not have run")
	}
}

func TestRouterRegistrationCreateReplaysWithSameKey(t *testing.T) {
	handler, regSvc := newTestRouter(t)

	body := []byte(`{"user_id":"` + uuid.NewString() + `","program_id":"` + uuid.NewString() + `"}`)
	first := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", bytes.NewReader(body))
	first.Header.Set("Idempotency-Key", "reg-1")
	firstRec := httptest.NewRecorder()
	handler.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", firstRec.Code, firstRec.Body.String())
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", bytes.NewReader(body))
	second.Header.Set("Idempotency-Key", "reg-1")
	secondRec := httptest.NewRecorder()
	handler.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201 got %d", secondRec.Code)
	}

	if regSvc.registered != 1 {
		t.Fatalf("expected a single registration, got %d", regSvc.registered)
	}
	if firstRec.Body.String() != secondRec.Body.String() {
		t.Fatal("replay should return the stored response body")
	}
}

func TestRouterQuoteDoesNotRequireIdempotencyKey(t *testing.T) {
	handler, _ := newTestRouter(t)

	body := []byte(`{"user_id":"` + uuid.NewString() + `","program_id":"` + uuid.NewString() + `"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/registrations/quote", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			FinalAmountCents int `json:"final_amount_cents"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.FinalAmountCents != 10000 {
		t.Fatalf("expected quote passthrough, got %d", envelope.Data.FinalAmountCents)
	}
}

func TestRouterPaymentByRegistration(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/registrations/"+uuid.NewString()+"/payment", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
