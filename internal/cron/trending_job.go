package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
)

type trendingRecomputer interface {
	RecomputeTrending(ctx context.Context) (int, error)
}

type TrendingJobParams struct {
	Logger *logger.Logger
	Views  trendingRecomputer
}

func NewTrendingJob(params TrendingJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Views == nil {
		return nil, fmt.Errorf("views service required")
	}
	return &trendingJob{logg: params.Logger, views: params.Views}, nil
}

type trendingJob struct {
	logg  *logger.Logger
	views trendingRecomputer
}

func (j *trendingJob) Name() string { return "trending-score" }

func (j *trendingJob) Run(ctx context.Context) error {
	changed, err := j.views.RecomputeTrending(ctx)
	if err != nil {
		return err
	}
	j.logg.Info(j.logg.WithField(ctx, "products_updated", changed), "trending scores refreshed")
	return nil
}
