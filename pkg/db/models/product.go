package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-admin-backend/pkg/catalog"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

// Product is the persisted canonical product.
type Product struct {
	ID                uuid.UUID                            `gorm:"column:id;type:uuid;primaryKey"`
	Title             string                               `gorm:"column:title;not null"`
	Slug              string                               `gorm:"column:slug;not null;uniqueIndex:products_slug_key"`
	Brand             string                               `gorm:"column:brand;not null"`
	CategoryID        *uuid.UUID                           `gorm:"column:category_id;type:uuid"`
	DescriptionHTML   string                               `gorm:"column:description_html;not null"`
	Highlights        pq.StringArray                       `gorm:"column:highlights;type:text[]"`
	Specs             datatypes.JSONSlice[catalog.Spec]    `gorm:"column:specs;type:jsonb"`
	VideoURLs         pq.StringArray                       `gorm:"column:video_urls;type:text[]"`
	PriceMRP          decimal.Decimal                      `gorm:"column:price_mrp;type:numeric(12,2);not null"`
	PriceSale         decimal.NullDecimal                  `gorm:"column:price_sale;type:numeric(12,2)"`
	Currency          string                               `gorm:"column:currency;not null"`
	TrackInventory    bool                                 `gorm:"column:track_inventory;not null"`
	StockQty          float64                              `gorm:"column:stock_qty;not null"`
	LowStockThreshold float64                              `gorm:"column:low_stock_threshold;not null"`
	Shipping          datatypes.JSONType[catalog.Shipping] `gorm:"column:shipping;type:jsonb"`
	SEO               datatypes.JSONType[catalog.SEO]      `gorm:"column:seo;type:jsonb"`
	Visibility        enums.ProductVisibility              `gorm:"column:visibility;not null"`
	Status            enums.ProductStatus                  `gorm:"column:status;not null"`
	IsFeatured        bool                                 `gorm:"column:is_featured;not null"`
	Views7d           int64                                `gorm:"column:views_7d;not null"`
	Views30d          int64                                `gorm:"column:views_30d;not null"`
	TrendingScore     float64                              `gorm:"column:trending_score;not null"`
	Category          *Category                            `gorm:"foreignKey:CategoryID"`
	Media             []ProductMedia                       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	QuantityDiscounts []ProductDiscountTier                `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Tags              []ProductTag                         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time                            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                            `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// ProductMedia stores ordered media entries for a product.
type ProductMedia struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	MediaAssetID *uuid.UUID      `gorm:"column:media_asset_id;type:uuid"`
	URL          string          `gorm:"column:url;not null"`
	Type         enums.MediaType `gorm:"column:type;not null"`
	EmbedType    *string         `gorm:"column:embed_type"`
	Alt          string          `gorm:"column:alt"`
	IsPrimary    bool            `gorm:"column:is_primary;not null"`
	SortOrder    int             `gorm:"column:sort_order;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (ProductMedia) TableName() string { return "product_media" }

func (m *ProductMedia) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// ProductDiscountTier is one rung of a product's volume pricing ladder.
type ProductDiscountTier struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID          `gorm:"column:product_id;type:uuid;not null"`
	Position      int                `gorm:"column:position;not null"`
	MinQty        float64            `gorm:"column:min_qty;not null"`
	MaxQty        *float64           `gorm:"column:max_qty"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;not null"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	Note          string             `gorm:"column:note"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (ProductDiscountTier) TableName() string { return "product_discount_tiers" }

func (d *ProductDiscountTier) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

// ProductTag links a product to a tag name. Tag counts are reconciled from
// this table.
type ProductTag struct {
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	Tag       string    `gorm:"column:tag;primaryKey"`
}

// ProductViewDaily is the per-day view counter behind trending scores.
type ProductViewDaily struct {
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	Day       time.Time `gorm:"column:day;type:date;primaryKey"`
	Views     int64     `gorm:"column:views;not null"`
}

func (ProductViewDaily) TableName() string { return "product_views_daily" }
