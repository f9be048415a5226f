package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

// ProductEvent is emitted when a product is created or updated.
type ProductEvent struct {
	ProductID  uuid.UUID               `json:"product_id"`
	Slug       string                  `json:"slug"`
	Title      string                  `json:"title"`
	CategoryID *uuid.UUID              `json:"category_id,omitempty"`
	Visibility enums.ProductVisibility `json:"visibility"`
	Status     enums.ProductStatus     `json:"status"`
	Tags       []string                `json:"tags,omitempty"`
	Fields     []string                `json:"fields,omitempty"`
}

// ProductDeletedEvent carries enough to purge downstream caches.
type ProductDeletedEvent struct {
	ProductID uuid.UUID `json:"product_id"`
	Slug      string    `json:"slug"`
}

type CategoryEvent struct {
	CategoryID uuid.UUID `json:"category_id"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
}

type BlogPostPublishedEvent struct {
	PostID      uuid.UUID `json:"post_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
}

type BlogPostDeletedEvent struct {
	PostID uuid.UUID `json:"post_id"`
	Slug   string    `json:"slug"`
}

type MediaAssetEvent struct {
	AssetID  uuid.UUID       `json:"asset_id"`
	Kind     enums.MediaKind `json:"kind"`
	GCSKey   string          `json:"gcs_key"`
	URL      string          `json:"url,omitempty"`
	MimeType string          `json:"mime_type,omitempty"`
}
