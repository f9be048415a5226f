package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
)

const (
	outboxRetentionDays = 30
	viewsRetentionDays  = 90
)

type OutboxRetentionJobParams struct {
	Logger     *logger.Logger
	Repository outboxRetentionRepo
	Views      viewsPruner
	Retention  int
	ViewsDays  int
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type viewsPruner interface {
	PruneDaily(ctx context.Context, retention time.Duration) (int64, error)
}

// NewOutboxRetentionJob deletes published outbox rows past retention and,
// when a views pruner is supplied, old daily view counters.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = outboxRetentionDays
	}
	viewsDays := params.ViewsDays
	if viewsDays <= 0 {
		viewsDays = viewsRetentionDays
	}
	return &outboxRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		views:     params.Views,
		retention: retention,
		viewsDays: viewsDays,
		now:       time.Now,
	}, nil
}

type outboxRetentionJob struct {
	logg      *logger.Logger
	repo      outboxRetentionRepo
	views     viewsPruner
	retention int
	viewsDays int
	now       func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeletePublishedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("outbox retention: %w", err)
	}
	var pruned int64
	if j.views != nil {
		pruned, err = j.views.PruneDaily(ctx, time.Duration(j.viewsDays)*24*time.Hour)
		if err != nil {
			return fmt.Errorf("views retention: %w", err)
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":               cutoff,
		"retention_days":       j.retention,
		"rows_deleted":         deleted,
		"views_retention_days": j.viewsDays,
		"view_rows_deleted":    pruned,
	})
	j.logg.Info(logCtx, "outbox retention cleanup complete")
	return nil
}
