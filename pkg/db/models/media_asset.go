package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

// MediaAsset is an uploaded file in the media library.
type MediaAsset struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Kind       enums.MediaKind `gorm:"column:kind;not null"`
	FileName   string          `gorm:"column:file_name;not null"`
	MimeType   string          `gorm:"column:mime_type;not null"`
	SizeBytes  int64           `gorm:"column:size_bytes;not null"`
	GCSKey     string          `gorm:"column:gcs_key;not null;uniqueIndex:media_assets_gcs_key_key"`
	URL        string          `gorm:"column:url;not null"`
	Alt        string          `gorm:"column:alt"`
	UsageCount int64           `gorm:"column:usage_count;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (m *MediaAsset) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
