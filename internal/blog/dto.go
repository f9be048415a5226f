package blog

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

type PostDTO struct {
	ID                 uuid.UUID             `json:"id"`
	Title              string                `json:"title"`
	Slug               string                `json:"slug"`
	Excerpt            string                `json:"excerpt"`
	ContentHTML        string                `json:"contentHtml"`
	AuthorName         string                `json:"authorName,omitempty"`
	FeaturedImage      *models.FeaturedImage `json:"featuredImage,omitempty"`
	Tags               []string              `json:"tags"`
	Status             enums.PostStatus      `json:"status"`
	PublishedAt        *time.Time            `json:"publishedAt,omitempty"`
	ReadingTimeMinutes int                   `json:"readingTimeMinutes"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}

type PostListResult struct {
	Posts      []PostDTO `json:"posts"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

func NewPostDTO(p *models.BlogPost) *PostDTO {
	dto := &PostDTO{
		ID:                 p.ID,
		Title:              p.Title,
		Slug:               p.Slug,
		Excerpt:            p.Excerpt,
		ContentHTML:        p.ContentHTML,
		AuthorName:         p.AuthorName,
		Tags:               make([]string, 0, len(p.Tags)),
		Status:             p.Status,
		PublishedAt:        p.PublishedAt,
		ReadingTimeMinutes: p.ReadingTimeMinutes,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	if image := p.FeaturedImage.Data(); image.URL != "" {
		dto.FeaturedImage = &image
	}
	for _, t := range p.Tags {
		dto.Tags = append(dto.Tags, t.Tag)
	}
	return dto
}
