package views

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-admin-backend/pkg/bigquery"
	"github.com/angelmondragon/catalog-admin-backend/pkg/catalog"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/catalog-admin-backend/pkg/errors"
	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
	"github.com/angelmondragon/catalog-admin-backend/pkg/metrics"
)

type dedupStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	ViewKey(productID, visitor string, at time.Time) string
}

type viewSink interface {
	InsertViews(ctx context.Context, rows ...bigquery.ViewRow) error
}

// Service records storefront views and maintains trending counters.
type Service interface {
	Record(ctx context.Context, slug string, input ViewInput) (*RecordResult, error)
	RecomputeTrending(ctx context.Context) (int, error)
	PruneDaily(ctx context.Context, retention time.Duration) (int64, error)
}

// ViewInput identifies the viewer. Visitor is hashed before it is stored
// or used as a key.
type ViewInput struct {
	Visitor  string
	Referrer string
}

type RecordResult struct {
	Counted bool `json:"counted"`
}

type ServiceParams struct {
	Repo        *Repository
	Tx          db.TxRunner
	Dedup       dedupStore
	DedupWindow time.Duration
	Sink        viewSink
	Metrics     *metrics.CatalogMetrics
	Logger      *logger.Logger
	Now         func() time.Time
}

type service struct {
	repo    *Repository
	tx      db.TxRunner
	dedup   dedupStore
	window  time.Duration
	sink    viewSink
	metrics *metrics.CatalogMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("views repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.DedupWindow <= 0 {
		params.DedupWindow = time.Hour
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		dedup:   params.Dedup,
		window:  params.DedupWindow,
		sink:    params.Sink,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     params.Now,
	}, nil
}

// Record counts one view of a published product. Repeat views from the same
// visitor inside the de-duplication window are acknowledged but not counted.
func (s *service) Record(ctx context.Context, slug string, input ViewInput) (*RecordResult, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	productID, err := s.repo.PublishedProductID(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product")
	}

	now := s.now().UTC()
	visitor := hashVisitor(input.Visitor)
	if s.dedup != nil && visitor != "" {
		fresh, err := s.dedup.SetNX(ctx, s.dedup.ViewKey(productID.String(), visitor, now), 1, s.window)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "view de-dup unavailable")
		} else if !fresh {
			s.metrics.IncView(false)
			return &RecordResult{Counted: false}, nil
		}
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := s.repo.IncrementDaily(ctx, productID, day); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increment daily views")
	}
	s.metrics.IncView(true)

	if s.sink != nil {
		row := bigquery.ViewRow{
			ProductID:   productID.String(),
			Slug:        slug,
			VisitorHash: visitor,
			Referrer:    strings.TrimSpace(input.Referrer),
			ViewedAt:    now,
		}
		if err := s.sink.InsertViews(ctx, row); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "stream view to bigquery failed")
		}
	}
	return &RecordResult{Counted: true}, nil
}

// RecomputeTrending refreshes views_7d, views_30d and trending_score for
// every product and returns how many rows changed.
func (s *service) RecomputeTrending(ctx context.Context) (int, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since7 := today.AddDate(0, 0, -6)
	since30 := today.AddDate(0, 0, -29)

	changed := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		counts, err := repo.WindowCounts(ctx, since7, since30)
		if err != nil {
			return err
		}
		products, err := repo.ProductCounters(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			c := counts[p.ID]
			next := productCounters{
				ID:            p.ID,
				Views7d:       c.Views7d,
				Views30d:      c.Views30d,
				TrendingScore: catalog.TrendingScore(c.Views7d, c.Views30d),
			}
			if next == p {
				continue
			}
			if err := repo.UpdateCounters(ctx, next); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("recompute trending: %w", err)
	}
	return changed, nil
}

// PruneDaily drops daily counters older than retention.
func (s *service) PruneDaily(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().Add(-retention)
	return s.repo.PruneBefore(ctx, cutoff)
}

func hashVisitor(visitor string) string {
	visitor = strings.TrimSpace(visitor)
	if visitor == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(visitor))
	return hex.EncodeToString(sum[:16])
}
