package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

// FeaturedImage is the canonical featured image shape. Legacy rows stored a
// bare URL; the blog sanitizer converts those on write.
type FeaturedImage struct {
	URL       string              `json:"url"`
	Alt       string              `json:"alt,omitempty"`
	Size      enums.ImageSize     `json:"size"`
	Alignment enums.TextAlignment `json:"alignment"`
}

type BlogPost struct {
	ID                 uuid.UUID                         `gorm:"column:id;type:uuid;primaryKey"`
	Title              string                            `gorm:"column:title;not null"`
	Slug               string                            `gorm:"column:slug;not null;uniqueIndex:blog_posts_slug_key"`
	Excerpt            string                            `gorm:"column:excerpt"`
	ContentHTML        string                            `gorm:"column:content_html;not null"`
	AuthorName         string                            `gorm:"column:author_name"`
	FeaturedImage      datatypes.JSONType[FeaturedImage] `gorm:"column:featured_image;type:jsonb"`
	Status             enums.PostStatus                  `gorm:"column:status;not null"`
	PublishedAt        *time.Time                        `gorm:"column:published_at"`
	ReadingTimeMinutes int                               `gorm:"column:reading_time_minutes;not null"`
	Tags               []BlogPostTag                     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time                         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                         `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *BlogPost) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

type BlogPostTag struct {
	PostID uuid.UUID `gorm:"column:post_id;type:uuid;primaryKey"`
	Tag    string    `gorm:"column:tag;primaryKey"`
}
