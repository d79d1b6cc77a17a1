package payments

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
	"github.com/glacierhockey/rinkreg-backend/pkg/logger"
	"github.com/glacierhockey/rinkreg-backend/pkg/outbox"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubChargerRepo struct {
	due []models.PaymentInstallment

	chargedIDs []uuid.UUID
	failedIDs  []uuid.UUID
	reasons    []string
}

func (s *stubChargerRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubChargerRepo) Create(ctx context.Context, payment *models.Payment) error { return nil }

func (s *stubChargerRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return nil, nil
}

func (s *stubChargerRepo) FindByRegistration(ctx context.Context, registrationID uuid.UUID) (*models.Payment, error) {
	return nil, nil
}

func (s *stubChargerRepo) MarkPaid(ctx context.Context, id uuid.UUID, processorChargeID string, at time.Time) error {
	return nil
}

func (s *stubChargerRepo) MarkFailed(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubChargerRepo) CreateInstallments(ctx context.Context, rows []models.PaymentInstallment) error {
	return nil
}

func (s *stubChargerRepo) ListDueInstallments(ctx context.Context, before time.Time, limit int) ([]models.PaymentInstallment, error) {
	if len(s.due) > limit {
		return s.due[:limit], nil
	}
	return s.due, nil
}

func (s *stubChargerRepo) MarkInstallmentCharged(ctx context.Context, id uuid.UUID, processorChargeID string, at time.Time) error {
	s.chargedIDs = append(s.chargedIDs, id)
	return nil
}

func (s *stubChargerRepo) MarkInstallmentFailed(ctx context.Context, id uuid.UUID, reason string) error {
	s.failedIDs = append(s.failedIDs, id)
	s.reasons = append(s.reasons, reason)
	return nil
}

func (s *stubChargerRepo) CountOpenInstallments(ctx context.Context, paymentID uuid.UUID) (int, error) {
	return 0, nil
}

type stubProcessor struct {
	failFor map[uuid.UUID]error
	calls   int
}

func (s *stubProcessor) Charge(ctx context.Context, req ChargeRequest) (string, error) {
	s.calls++
	id := uuid.MustParse(req.InstallmentID)
	if err, ok := s.failFor[id]; ok {
		return "", err
	}
	return "ch_" + req.InstallmentID[:8], nil
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func dueSlot(number, amount int) models.PaymentInstallment {
	return models.PaymentInstallment{
		ID:                uuid.New(),
		PaymentID:         uuid.New(),
		InstallmentNumber: number,
		AmountCents:       amount,
		DueAt:             time.Now().Add(-time.Hour),
		Status:            enums.InstallmentStatusScheduled,
	}
}

func newCharger(t *testing.T, repo *stubChargerRepo, processor *stubProcessor, ob *stubOutbox) *Charger {
	t.Helper()
	logg := logger.New(logger.Options{Level: zerolog.Disabled, Output: io.Discard})
	charger, err := NewCharger(stubTxRunner{}, repo, processor, ob, logg, 50)
	if err != nil {
		t.Fatalf("new charger: %v", err)
	}
	return charger
}

func TestChargeDueMarksCharged(t *testing.T) {
	t.Parallel()

	repo := &stubChargerRepo{due: []models.PaymentInstallment{dueSlot(2, 2500), dueSlot(3, 2500)}}
	processor := &stubProcessor{}
	ob := &stubOutbox{}
	charger := newCharger(t, repo, processor, ob)

	charged, failed, err := charger.ChargeDue(context.Background())
	if err != nil {
		t.Fatalf("charge due: %v", err)
	}
	if charged != 2 || failed != 0 {
		t.Fatalf("charged=%d failed=%d; want 2, 0", charged, failed)
	}
	if len(repo.chargedIDs) != 2 {
		t.Fatalf("expected 2 rows marked charged, got %d", len(repo.chargedIDs))
	}
	for _, event := range ob.events {
		if event.EventType != enums.EventInstallmentCharged {
			t.Fatalf("unexpected event %s", event.EventType)
		}
	}
}

func TestChargeDueContinuesPastFailures(t *testing.T) {
	t.Parallel()

	bad := dueSlot(2, 2500)
	good := dueSlot(2, 1800)
	repo := &stubChargerRepo{due: []models.PaymentInstallment{bad, good}}
	processor := &stubProcessor{failFor: map[uuid.UUID]error{bad.ID: errors.New("card declined")}}
	ob := &stubOutbox{}
	charger := newCharger(t, repo, processor, ob)

	charged, failed, err := charger.ChargeDue(context.Background())
	if err != nil {
		t.Fatalf("charge due: %v", err)
	}
	if charged != 1 || failed != 1 {
		t.Fatalf("charged=%d failed=%d; want 1, 1", charged, failed)
	}
	if len(repo.failedIDs) != 1 || repo.failedIDs[0] != bad.ID {
		t.Fatalf("expected bad slot marked failed, got %v", repo.failedIDs)
	}
	if len(repo.reasons) != 1 || repo.reasons[0] != "card declined" {
		t.Fatalf("expected decline reason captured, got %v", repo.reasons)
	}

	var sawFailed, sawCharged bool
	for _, event := range ob.events {
		switch event.EventType {
		case enums.EventInstallmentFailed:
			sawFailed = true
		case enums.EventInstallmentCharged:
			sawCharged = true
		}
	}
	if !sawFailed || !sawCharged {
		t.Fatalf("expected both event kinds, got %+v", ob.events)
	}
}

func TestChargeDueEmptyBatch(t *testing.T) {
	t.Parallel()

	repo := &stubChargerRepo{}
	processor := &stubProcessor{}
	charger := newCharger(t, repo, processor, &stubOutbox{})

	charged, failed, err := charger.ChargeDue(context.Background())
	if err != nil {
		t.Fatalf("charge due: %v", err)
	}
	if charged != 0 || failed != 0 || processor.calls != 0 {
		t.Fatalf("expected nothing to happen, got charged=%d failed=%d calls=%d", charged, failed, processor.calls)
	}
}
