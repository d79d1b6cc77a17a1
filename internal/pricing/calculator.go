package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glacierhockey/rinkreg-backend/pkg/db/models"
	pkgerrors "github.com/glacierhockey/rinkreg-backend/pkg/errors"
)

// CodeFinder resolves a discount code string to its row (with category
// preloaded). A nil result with nil error means the code does not exist.
type CodeFinder interface {
	FindByCode(ctx context.Context, code string) (*models.DiscountCode, error)
}

// SeasonalUsageLedger reads the append-only discount usage facts. Both
// methods are aggregate queries; the calculator never writes through it.
type SeasonalUsageLedger interface {
	CountCodeUses(ctx context.Context, userID, discountCodeID uuid.UUID) (int, error)
	TotalSaved(ctx context.Context, userID, categoryID, seasonID uuid.UUID) (int, error)
}

// QuoteInput describes one charge to price. UserID nil means the caller has
// no eligible payer yet and the discount path is skipped entirely.
type QuoteInput struct {
	BasePriceCents int
	DiscountCode   string
	SeasonID       uuid.UUID
	UserID         *uuid.UUID
}

// SeasonalUsage is a snapshot of the cap ledger at quote time.
// MaxAllowedCents nil means the category is uncapped and RemainingCents is
// meaningless.
type SeasonalUsage struct {
	TotalUsedCents  int
	RemainingCents  int
	MaxAllowedCents *int
}

// Quote is the priced outcome. FinalAmountCents is what the processor is
// asked for; DiscountCents is what a confirmed charge must later record as
// usage. Code is non-nil whenever the submitted code resolved, including the
// exhausted-limit branch, so callers can show which code was attempted.
type Quote struct {
	OriginalAmountCents int
	FinalAmountCents    int
	DiscountCents       int
	IsPartialDiscount   bool
	Message             string
	Code                *models.DiscountCode
	SeasonalUsage       *SeasonalUsage
}

// Calculator prices a charge. It is stateless and read-only; recording the
// resulting usage is the caller's job, after the charge is confirmed.
type Calculator struct {
	codes  CodeFinder
	ledger SeasonalUsageLedger
}

// NewCalculator wires a calculator with its collaborators.
func NewCalculator(codes CodeFinder, ledger SeasonalUsageLedger) (*Calculator, error) {
	if codes == nil {
		return nil, fmt.Errorf("code finder required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("seasonal usage ledger required")
	}
	return &Calculator{codes: codes, ledger: ledger}, nil
}

// Quote runs the pricing pipeline in its fixed order: code resolution, then
// the per-code usage limit, then the seasonal category cap. The per-code
// check is authoritative; when it fails the ledger is not consulted.
func (c *Calculator) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	if input.BasePriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must not be negative")
	}

	if input.DiscountCode == "" || input.UserID == nil {
		return &Quote{
			OriginalAmountCents: input.BasePriceCents,
			FinalAmountCents:    input.BasePriceCents,
		}, nil
	}
	userID := *input.UserID

	code, err := c.codes.FindByCode(ctx, input.DiscountCode)
	if err != nil {
		return nil, err
	}
	if code == nil || !code.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidDiscount, fmt.Sprintf("discount code %q is not valid", input.DiscountCode))
	}

	nominal := nominalDiscount(input.BasePriceCents, code.Percentage)

	if code.UsageLimit != nil {
		uses, err := c.ledger.CountCodeUses(ctx, userID, code.ID)
		if err != nil {
			return nil, err
		}
		if uses >= *code.UsageLimit {
			return &Quote{
				OriginalAmountCents: input.BasePriceCents,
				FinalAmountCents:    input.BasePriceCents,
				Message:             fmt.Sprintf("discount code %s has already been used the maximum number of times", code.Code),
				Code:                code,
			}, nil
		}
	}

	totalUsed, err := c.ledger.TotalSaved(ctx, userID, code.CategoryID, input.SeasonID)
	if err != nil {
		return nil, err
	}

	applied := nominal
	usage := &SeasonalUsage{TotalUsedCents: totalUsed}
	var maxAllowed *int
	if code.Category != nil {
		maxAllowed = code.Category.MaxDiscountPerUserPerSeasonCents
	}
	if maxAllowed != nil {
		remaining := *maxAllowed - totalUsed
		if remaining < 0 {
			remaining = 0
		}
		if applied > remaining {
			applied = remaining
		}
		usage.RemainingCents = remaining
		usage.MaxAllowedCents = maxAllowed
	}

	quote := &Quote{
		OriginalAmountCents: input.BasePriceCents,
		DiscountCents:       applied,
		Code:                code,
		SeasonalUsage:       usage,
	}
	switch {
	case applied == 0 && nominal > 0:
		quote.Message = "you have reached your discount limit for this season"
	case applied < nominal:
		quote.IsPartialDiscount = true
		quote.Message = fmt.Sprintf("a partial discount of $%s was applied because of your seasonal limit", centsToDollars(applied))
	}

	quote.FinalAmountCents = input.BasePriceCents - applied
	if quote.FinalAmountCents < 0 {
		quote.FinalAmountCents = 0
	}
	return quote, nil
}

// nominalDiscount computes round-half-up(base * pct / 100) in integer cents.
func nominalDiscount(basePriceCents int, percentage decimal.Decimal) int {
	return int(decimal.NewFromInt(int64(basePriceCents)).
		Mul(percentage).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart())
}

func centsToDollars(cents int) string {
	return decimal.NewFromInt(int64(cents)).Shift(-2).StringFixed(2)
}
