package installments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	"github.com/glacierhockey/rinkreg-backend/pkg/enums"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
)

// Split partitions totalCents into count non-negative integer amounts that
// sum exactly to totalCents. Every slot except the last receives
// round-half-up(total/count); the last slot absorbs the remainder, which
// keeps the output deterministic for a given (totalCents, count) pair.
func Split(totalCents, count int) ([]int, error) {
	if totalCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total amount must not be negative")
	}
	if count < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "installment count must be at least 1")
	}

	base := int(decimal.NewFromInt(int64(totalCents)).
		Div(decimal.NewFromInt(int64(count))).
		Round(0).
		IntPart())
	// For small totals rounding up can overshoot and push the last slot
	// negative; shrink the base allocation so it never does.
	if count > 1 && base*(count-1) > totalCents {
		base = totalCents / (count - 1)
	}

	amounts := make([]int, count)
	for i := 0; i < count-1; i++ {
		amounts[i] = base
	}
	amounts[count-1] = totalCents - base*(count-1)
	return amounts, nil
}

// PlanInput describes the payment plan to build.
type PlanInput struct {
	PaymentID   uuid.UUID
	TotalCents  int
	Count       int
	FirstDueAt  time.Time
	Cadence     time.Duration
}

// BuildPlan splits the total and wraps each amount into a scheduled
// installment row. Installment numbers are 1-indexed; the first installment
// is marked as the one tied to the originating payment context.
func BuildPlan(input PlanInput) ([]models.PaymentInstallment, error) {
	if input.PaymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	amounts, err := Split(input.TotalCents, input.Count)
	if err != nil {
		return nil, err
	}

	firstDue := input.FirstDueAt
	if firstDue.IsZero() {
		firstDue = time.Now()
	}

	rows := make([]models.PaymentInstallment, len(amounts))
	for i, amount := range amounts {
		rows[i] = models.PaymentInstallment{
			PaymentID:         input.PaymentID,
			InstallmentNumber: i + 1,
			AmountCents:       amount,
			DueAt:             firstDue.Add(time.Duration(i) * input.Cadence),
			Status:            enums.InstallmentStatusScheduled,
			IsInitial:         i == 0,
		}
	}
	return rows, nil
}
