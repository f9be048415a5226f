package tag

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-admin-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/catalog-admin-backend/pkg/errors"
	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
)

// TagDTO is a tag with its reconciled usage count.
type TagDTO struct {
	Name       string `json:"name"`
	UsageCount int64  `json:"usageCount"`
}

type Service interface {
	List(ctx context.Context, limit int) ([]TagDTO, error)
	ReconcileCounts(ctx context.Context) error
}

type service struct {
	repo *Repository
	tx   db.TxRunner
	logg *logger.Logger
}

func NewService(repo *Repository, tx db.TxRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tag repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) List(ctx context.Context, limit int) ([]TagDTO, error) {
	rows, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tags")
	}
	out := make([]TagDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, TagDTO{Name: row.Name, UsageCount: row.UsageCount})
	}
	return out, nil
}

// ReconcileCounts recomputes usage_count from product and blog post tag links
// in one transaction. Tags that are no longer used stay registered at zero.
func (s *service) ReconcileCounts(ctx context.Context) error {
	var tracked int
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		counts, err := repo.CountUsage(ctx)
		if err != nil {
			return err
		}
		if err := repo.UpsertCounts(ctx, counts); err != nil {
			return err
		}
		keep := make([]string, 0, len(counts))
		for name := range counts {
			keep = append(keep, name)
		}
		tracked = len(keep)
		return repo.ZeroExcept(ctx, keep)
	})
	if err != nil {
		return fmt.Errorf("reconcile tag counts: %w", err)
	}
	s.logg.Debug(s.logg.WithField(ctx, "tags", tracked), "tag counts reconciled")
	return nil
}
