package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-admin-backend/pkg/config"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/logger"
	"github.com/angelmondragon/catalog-admin-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-admin-backend/pkg/outbox/registry"
)

const publishTimeout = 15 * time.Second

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	CatalogPublisher() *gcppubsub.Publisher
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	PublisherFactory publisherFactory
	Metrics          *metrics.CatalogMetrics
}

// Service relays committed outbox rows to Pub/Sub. Each batch runs inside one
// transaction so row locks are held until every row is settled.
type Service struct {
	logg             *logger.Logger
	db               dbClient
	repo             outboxRepository
	pubsub           pubSubClient
	registry         registryResolver
	metrics          *metrics.CatalogMetrics
	publisherFactory publisherFactory
	tuning           relayTuning
}

type relayTuning struct {
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func tuningFrom(cfg config.OutboxConfig) relayTuning {
	t := relayTuning{batchSize: 50, maxAttempts: 10, pollInterval: 500 * time.Millisecond}
	if cfg.BatchSize > 0 {
		t.batchSize = cfg.BatchSize
	}
	if cfg.MaxAttempts > 0 {
		t.maxAttempts = cfg.MaxAttempts
	}
	if cfg.PollIntervalMS > 0 {
		t.pollInterval = time.Duration(cfg.PollIntervalMS) * time.Millisecond
	}
	return t
}

func NewService(p ServiceParams) (*Service, error) {
	var err error
	for _, dep := range []struct {
		missing bool
		name    string
	}{
		{p.Config == nil, "config"},
		{p.Logger == nil, "logger"},
		{p.DB == nil, "database client"},
		{p.PubSub == nil, "pubsub client"},
		{p.Repository == nil, "outbox repository"},
		{p.Registry == nil, "event registry"},
	} {
		if dep.missing {
			err = multierr.Append(err, fmt.Errorf("%s is required", dep.name))
		}
	}
	if err != nil {
		return nil, err
	}

	factory := p.PublisherFactory
	if factory == nil {
		factory = pubSubPublisherFactory(p.PubSub)
	}

	return &Service{
		logg:             p.Logger,
		db:               p.DB,
		repo:             p.Repository,
		pubsub:           p.PubSub,
		registry:         p.Registry,
		metrics:          p.Metrics,
		publisherFactory: factory,
		tuning:           tuningFrom(p.Config.Outbox),
	}, nil
}

// Run polls until ctx is done. A full batch is followed immediately by the
// next one; an empty batch waits one poll interval; a failed batch backs off.
func (s *Service) Run(ctx context.Context) error {
	for _, dep := range []struct {
		name string
		ping func(context.Context) error
	}{{"database", s.db.Ping}, {"pubsub", s.pubsub.Ping}} {
		if err := dep.ping(ctx); err != nil {
			s.logg.Error(ctx, dep.name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", dep.name, err)
		}
	}

	pace := newPacer(s.tuning.pollInterval)
	for ctx.Err() == nil {
		processed, err := s.processBatch(ctx)
		var wait time.Duration
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox batch failed", err)
			wait = pace.failed()
		case processed:
			pace.reset()
			continue
		default:
			pace.reset()
			wait = pace.idle()
		}
		if err := sleepCtx(ctx, wait); err != nil {
			break
		}
	}
	s.logg.Info(ctx, "outbox relay stopping")
	return ctx.Err()
}

// disposition is what happened to one row during a batch.
type disposition int

const (
	published disposition = iota
	retryLater
	parked
)

func (d disposition) String() string {
	switch d {
	case published:
		return "published"
	case retryLater:
		return "failed"
	default:
		return "terminal"
	}
}

func (s *Service) processBatch(ctx context.Context) (bool, error) {
	var count int
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.FetchUnpublishedForPublish(tx, s.tuning.batchSize, s.tuning.maxAttempts)
		if err != nil {
			return err
		}
		count = len(rows)
		for _, row := range rows {
			d, fields, cause := s.deliver(ctx, row)
			if err := s.settle(ctx, tx, row, d, cause, fields); err != nil {
				return err
			}
		}
		return nil
	})
	return count > 0, err
}

// deliver resolves and publishes one row and decides its disposition.
func (s *Service) deliver(ctx context.Context, row models.OutboxEvent) (disposition, map[string]any, error) {
	fields := map[string]any{
		"outbox_id":      row.ID.String(),
		"event_type":     row.EventType,
		"aggregate_type": row.AggregateType,
		"aggregate_id":   row.AggregateID.String(),
		"attempt_count":  row.AttemptCount,
	}

	resolved, err := s.registry.Resolve(row)
	if err != nil {
		fields["terminal_reason"] = "non_retryable"
		return parked, fields, err
	}
	fields["topic"] = resolved.Descriptor.Topic
	fields["event_id"] = resolved.Envelope.EventID

	err = s.publish(ctx, row, resolved)
	var nonRetryable registry.NonRetryableError
	switch {
	case err == nil:
		return published, fields, nil
	case errors.As(err, &nonRetryable):
		fields["terminal_reason"] = "non_retryable"
		return parked, fields, err
	case row.AttemptCount+1 >= s.tuning.maxAttempts:
		fields["terminal_reason"] = "max_attempts"
		fields["attempt_count"] = row.AttemptCount + 1
		return parked, fields, fmt.Errorf("max publish attempts reached: %w", err)
	default:
		fields["attempt_count"] = row.AttemptCount + 1
		return retryLater, fields, err
	}
}

// settle records the disposition on the row. Parked rows are pinned at
// maxAttempts and stay unpublished for inspection.
func (s *Service) settle(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, d disposition, cause error, fields map[string]any) error {
	logCtx := s.logg.WithFields(ctx, fields)
	var err error
	switch d {
	case published:
		err = s.repo.MarkPublishedTx(tx, row.ID)
		s.logg.Info(logCtx, "outbox event published")
	case retryLater:
		s.logg.Warn(s.logg.WithField(logCtx, "error", cause.Error()), "outbox publish failed")
		err = s.repo.MarkFailedTx(tx, row.ID, cause)
	case parked:
		s.logg.Warn(s.logg.WithField(logCtx, "error", cause.Error()), "outbox event will not be retried")
		err = s.repo.MarkTerminalTx(tx, row.ID, cause, s.tuning.maxAttempts)
	}
	if err != nil {
		return fmt.Errorf("mark %s %s: %w", d, row.ID, err)
	}
	s.metrics.IncOutbox(row.EventType.String(), d.String())
	return nil
}

func (s *Service) publish(ctx context.Context, row models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisherFactory(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	result := pub.Publish(ctx, &gcppubsub.Message{
		Data:       row.Payload,
		Attributes: messageAttributes(row, resolved),
	})
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	_, err := result.Get(ctx)
	return err
}

func messageAttributes(row models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]string {
	return map[string]string{
		"event_id":       resolved.Envelope.EventID,
		"source":         resolved.Envelope.Source,
		"event_type":     string(row.EventType),
		"aggregate_type": string(row.AggregateType),
		"aggregate_id":   row.AggregateID.String(),
		"created_at":     row.CreatedAt.Format(time.RFC3339Nano),
	}
}
