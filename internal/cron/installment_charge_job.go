package cron

import (
	"context"
	"fmt"

	"github.com/glacierhockey/rinkreg-backend/pkg/logger"
)

type installmentCharger interface {
	ChargeDue(ctx context.Context) (charged, failed int, err error)
}

// InstallmentChargeJobParams configure the installment sweep.
type InstallmentChargeJobParams struct {
	Logger  *logger.Logger
	Charger installmentCharger
}

// NewInstallmentChargeJob builds the job that charges due payment plan
// slots.
func NewInstallmentChargeJob(params InstallmentChargeJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Charger == nil {
		return nil, fmt.Errorf("charger required")
	}
	return &installmentChargeJob{
		logg:    params.Logger,
		charger: params.Charger,
	}, nil
}

type installmentChargeJob struct {
	logg    *logger.Logger
	charger installmentCharger
}

func (j *installmentChargeJob) Name() string { return "installment-charger" }

func (j *installmentChargeJob) Run(ctx context.Context) error {
	charged, failed, err := j.charger.ChargeDue(ctx)
	if err != nil {
		return fmt.Errorf("charge due installments: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"charged": charged,
		"failed":  failed,
	})
	j.logg.Info(logCtx, "installment sweep complete")
	return nil
}
