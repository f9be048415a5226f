package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
)

// Reconciler is one named derived-counter recomputation.
type Reconciler struct {
	Name string
	Run  func(ctx context.Context) error
}

type CounterReconcileJobParams struct {
	Logger      *logger.Logger
	Reconcilers []Reconciler
}

// NewCounterReconcileJob recomputes category, tag and media counters. Every
// reconciler runs even when an earlier one fails; failures are combined.
func NewCounterReconcileJob(params CounterReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(params.Reconcilers) == 0 {
		return nil, fmt.Errorf("at least one reconciler required")
	}
	for _, r := range params.Reconcilers {
		if r.Name == "" || r.Run == nil {
			return nil, fmt.Errorf("reconciler name and func required")
		}
	}
	return &counterReconcileJob{logg: params.Logger, reconcilers: params.Reconcilers}, nil
}

type counterReconcileJob struct {
	logg        *logger.Logger
	reconcilers []Reconciler
}

func (j *counterReconcileJob) Name() string { return "catalog-counter-reconcile" }

func (j *counterReconcileJob) Run(ctx context.Context) error {
	var errs error
	failed := 0
	for _, r := range j.reconcilers {
		if err := r.Run(ctx); err != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", r.Name, err))
		}
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"reconcilers": len(j.reconcilers),
		"failed":      failed,
	}), "counter reconciliation complete")
	return errs
}
