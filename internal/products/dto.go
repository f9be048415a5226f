package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-admin-backend/pkg/catalog"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

// ProductDTO is the product payload returned to admin and storefront clients.
type ProductDTO struct {
	ID                 uuid.UUID               `json:"id"`
	Title              string                  `json:"title"`
	Slug               string                  `json:"slug"`
	Brand              string                  `json:"brand"`
	Category           *CategorySummaryDTO     `json:"category,omitempty"`
	DescriptionHTML    string                  `json:"descriptionHtml"`
	Highlights         []string                `json:"highlights"`
	Specs              []catalog.Spec          `json:"specs"`
	Media              []MediaDTO              `json:"media"`
	VideoURLs          []string                `json:"videoUrls"`
	Price              catalog.Price           `json:"price"`
	Inventory          catalog.Inventory       `json:"inventory"`
	QuantityDiscounts  []catalog.DiscountTier  `json:"quantityDiscounts"`
	Shipping           catalog.Shipping        `json:"shipping"`
	SEO                catalog.SEO             `json:"seo"`
	Tags               []string                `json:"tags"`
	Visibility         enums.ProductVisibility `json:"visibility"`
	Status             enums.ProductStatus     `json:"status"`
	IsFeatured         bool                    `json:"isFeatured"`
	DiscountPercentage int                     `json:"discountPercentage"`
	StockStatus        enums.StockStatus       `json:"stockStatus"`
	Views7d            int64                   `json:"views7d"`
	Views30d           int64                   `json:"views30d"`
	TrendingScore      float64                 `json:"trendingScore"`
	CreatedAt          time.Time               `json:"createdAt"`
	UpdatedAt          time.Time               `json:"updatedAt"`
}

// MediaDTO is a gallery item. EmbedURL is the iframe source for embedded
// videos.
type MediaDTO struct {
	catalog.MediaItem
	EmbedURL string `json:"embedUrl,omitempty"`
}

func newMediaDTOs(items []catalog.MediaItem) []MediaDTO {
	out := make([]MediaDTO, 0, len(items))
	for _, item := range items {
		dto := MediaDTO{MediaItem: item}
		if item.Type == enums.MediaTypeEmbed {
			dto.EmbedURL, _ = catalog.EmbedSourceURL(item.URL)
		}
		out = append(out, dto)
	}
	return out
}

// CategorySummaryDTO is the category reference embedded in products.
type CategorySummaryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ProductListResult is one page of products.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

// ValidationResult is the dry-run output: the canonical product plus the
// field error map. Valid is true when Errors is empty.
type ValidationResult struct {
	Valid   bool                `json:"valid"`
	Product catalog.Product     `json:"product"`
	Errors  catalog.FieldErrors `json:"errors"`
}

// QuoteDTO is a B2B quantity quote for a storefront product.
type QuoteDTO struct {
	ProductID uuid.UUID `json:"productId"`
	Slug      string    `json:"slug"`
	catalog.Quote
}

// NewProductDTO builds a DTO from the persisted model. Derived fields are
// computed here so every read path reports them the same way.
func NewProductDTO(row *models.Product) *ProductDTO {
	p := toCanonical(row)
	dto := &ProductDTO{
		ID:                 row.ID,
		Title:              p.Title,
		Slug:               p.Slug,
		Brand:              p.Brand,
		DescriptionHTML:    p.DescriptionHTML,
		Highlights:         p.Highlights,
		Specs:              p.Specs,
		Media:              newMediaDTOs(p.Media),
		VideoURLs:          p.VideoURLs,
		Price:              p.Price,
		Inventory:          p.Inventory,
		QuantityDiscounts:  p.QuantityDiscounts,
		Shipping:           p.Shipping,
		SEO:                p.SEO,
		Tags:               p.Tags,
		Visibility:         p.Visibility,
		Status:             p.Status,
		IsFeatured:         p.IsFeatured,
		DiscountPercentage: catalog.DiscountPercentage(p.Price.MRP, p.Price.Sale),
		StockStatus:        catalog.StockStatus(p.Inventory),
		Views7d:            row.Views7d,
		Views30d:           row.Views30d,
		TrendingScore:      row.TrendingScore,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if row.Category != nil {
		dto.Category = &CategorySummaryDTO{
			ID:   row.Category.ID,
			Name: row.Category.Name,
			Slug: row.Category.Slug,
		}
	}
	return dto
}
