package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SandboxProcessor approves every charge and mints a synthetic charge id.
// It stands in for a real processor integration in dev and test
// environments; production deployments swap in a concrete Processor.
type SandboxProcessor struct{}

func NewSandboxProcessor() *SandboxProcessor {
	return &SandboxProcessor{}
}

func (p *SandboxProcessor) Charge(_ context.Context, req ChargeRequest) (string, error) {
	if req.AmountCents < 0 {
		return "", fmt.Errorf("amount must not be negative")
	}
	return "sandbox_" + uuid.NewString(), nil
}
