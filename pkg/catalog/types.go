// Package catalog holds the product canonicalisation and validation rules
// shared by the admin API, the storefront and catalogctl. Everything here is
// pure: no I/O, no shared state, safe for concurrent use.
package catalog

import (
	"strings"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

// Mode selects create or partial-update validation semantics.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

// ParseMode defaults to create for anything other than "update".
func ParseMode(value string) Mode {
	if strings.EqualFold(strings.TrimSpace(value), string(ModeUpdate)) {
		return ModeUpdate
	}
	return ModeCreate
}

// Product is the canonical product produced by Sanitize.
type Product struct {
	Title             string                  `json:"title"`
	Slug              string                  `json:"slug"`
	Brand             string                  `json:"brand"`
	Category          string                  `json:"category,omitempty"`
	DescriptionHTML   string                  `json:"descriptionHtml"`
	Highlights        []string                `json:"highlights"`
	Specs             []Spec                  `json:"specs"`
	Media             []MediaItem             `json:"media"`
	VideoURLs         []string                `json:"videoUrls"`
	Price             Price                   `json:"price"`
	Inventory         Inventory               `json:"inventory"`
	QuantityDiscounts []DiscountTier          `json:"quantityDiscounts"`
	Shipping          Shipping                `json:"shipping"`
	SEO               SEO                     `json:"seo"`
	Tags              []string                `json:"tags"`
	Visibility        enums.ProductVisibility `json:"visibility"`
	Status            enums.ProductStatus     `json:"status"`
	IsFeatured        bool                    `json:"isFeatured"`

	// provided records which field paths were present in the raw input.
	// nil means the product was built in code and every field counts.
	provided map[string]bool
}

// Has reports whether path ("price", "price.sale", "tags", ...) was supplied
// in the raw input that produced p.
func (p Product) Has(path string) bool {
	if p.provided == nil {
		return true
	}
	return p.provided[path]
}

// Provided lists the supplied field paths.
func (p Product) Provided() []string {
	out := make([]string, 0, len(p.provided))
	for k := range p.provided {
		out = append(out, k)
	}
	return out
}

func (p *Product) markPath(path string) {
	if p.provided == nil {
		p.provided = map[string]bool{}
	}
	p.provided[path] = true
	if idx := strings.IndexByte(path, '.'); idx > 0 {
		p.provided[path[:idx]] = true
	}
}

type Spec struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type MediaItem struct {
	URL       string          `json:"url"`
	Type      enums.MediaType `json:"type"`
	Alt       string          `json:"alt,omitempty"`
	IsPrimary bool            `json:"isPrimary"`
	SortOrder int             `json:"sortOrder"`
	EmbedType string          `json:"embedType,omitempty"`
}

type Price struct {
	MRP      *float64 `json:"mrp,omitempty"`
	Sale     *float64 `json:"sale,omitempty"`
	Currency string   `json:"currency"`
}

type Inventory struct {
	Track             bool    `json:"track"`
	Qty               float64 `json:"qty"`
	LowStockThreshold float64 `json:"lowStockThreshold"`
}

type DiscountTier struct {
	MinQty        *float64           `json:"minQty,omitempty"`
	MaxQty        *float64           `json:"maxQty,omitempty"`
	DiscountType  enums.DiscountType `json:"discountType"`
	DiscountValue *float64           `json:"discountValue,omitempty"`
	Note          string             `json:"note,omitempty"`
}

type Dimensions struct {
	Length *float64 `json:"length,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

type Shipping struct {
	Weight        *float64   `json:"weight,omitempty"`
	Dimensions    Dimensions `json:"dimensions"`
	OriginCountry string     `json:"originCountry,omitempty"`
	LeadTimeDays  *float64   `json:"leadTimeDays,omitempty"`
	FreeShipping  bool       `json:"freeShipping"`
}

type SEO struct {
	MetaTitle       string `json:"metaTitle,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
	CanonicalURL    string `json:"canonicalUrl,omitempty"`
	OGImage         string `json:"ogImage,omitempty"`
}

// Float returns a pointer to v. Convenience for building products in code.
func Float(v float64) *float64 {
	return &v
}
