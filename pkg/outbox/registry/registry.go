package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-admin-backend/pkg/config"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	"github.com/angelmondragon/catalog-admin-backend/pkg/outbox"
	"github.com/angelmondragon/catalog-admin-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate, topic and payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() any
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    any
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the relay should stop retrying a row.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.Err
}

func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

// NewEventRegistry routes every catalog event to the catalog topic.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.CatalogTopic == "" {
		return nil, fmt.Errorf("catalog topic is required")
	}
	topic := cfg.CatalogTopic
	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}

	product := func() any { return &payloads.ProductEvent{} }
	category := func() any { return &payloads.CategoryEvent{} }
	media := func() any { return &payloads.MediaAssetEvent{} }

	for _, desc := range []EventDescriptor{
		{EventType: enums.EventProductCreated, AggregateType: enums.AggregateProduct, PayloadFactory: product},
		{EventType: enums.EventProductUpdated, AggregateType: enums.AggregateProduct, PayloadFactory: product},
		{EventType: enums.EventProductDeleted, AggregateType: enums.AggregateProduct, PayloadFactory: func() any { return &payloads.ProductDeletedEvent{} }},
		{EventType: enums.EventCategoryCreated, AggregateType: enums.AggregateCategory, PayloadFactory: category},
		{EventType: enums.EventCategoryUpdated, AggregateType: enums.AggregateCategory, PayloadFactory: category},
		{EventType: enums.EventCategoryDeleted, AggregateType: enums.AggregateCategory, PayloadFactory: category},
		{EventType: enums.EventBlogPostPublished, AggregateType: enums.AggregateBlogPost, PayloadFactory: func() any { return &payloads.BlogPostPublishedEvent{} }},
		{EventType: enums.EventBlogPostDeleted, AggregateType: enums.AggregateBlogPost, PayloadFactory: func() any { return &payloads.BlogPostDeletedEvent{} }},
		{EventType: enums.EventMediaAssetUploaded, AggregateType: enums.AggregateMediaAsset, PayloadFactory: media},
		{EventType: enums.EventMediaAssetDeleted, AggregateType: enums.AggregateMediaAsset, PayloadFactory: media},
	} {
		desc.Topic = topic
		reg.entries[desc.EventType] = desc
	}
	return reg, nil
}

// Resolve validates an outbox row against its descriptor and decodes the payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}
	if envelope.Version > outbox.CurrentVersion {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported envelope version %d", envelope.Version))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{Descriptor: desc, Envelope: envelope, Payload: payload}, nil
}
