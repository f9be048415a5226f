package product

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/angelmondragon/catalog-admin-backend/pkg/catalog"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

// toCanonical rebuilds the catalog form of a stored product. Child rows must
// be preloaded.
func toCanonical(row *models.Product) catalog.Product {
	p := catalog.Product{
		Title:           row.Title,
		Slug:            row.Slug,
		Brand:           row.Brand,
		DescriptionHTML: row.DescriptionHTML,
		Highlights:      append([]string{}, row.Highlights...),
		Specs:           append([]catalog.Spec{}, row.Specs...),
		VideoURLs:       append([]string{}, row.VideoURLs...),
		Price: catalog.Price{
			MRP:      decimalPtr(row.PriceMRP),
			Currency: row.Currency,
		},
		Inventory: catalog.Inventory{
			Track:             row.TrackInventory,
			Qty:               row.StockQty,
			LowStockThreshold: row.LowStockThreshold,
		},
		Shipping:   row.Shipping.Data(),
		SEO:        row.SEO.Data(),
		Visibility: row.Visibility,
		Status:     row.Status,
		IsFeatured: row.IsFeatured,
	}
	if row.CategoryID != nil {
		p.Category = row.CategoryID.String()
	}
	if row.PriceSale.Valid {
		p.Price.Sale = decimalPtr(row.PriceSale.Decimal)
	}
	p.Media = make([]catalog.MediaItem, 0, len(row.Media))
	for _, m := range row.Media {
		item := catalog.MediaItem{
			URL:       m.URL,
			Type:      m.Type,
			Alt:       m.Alt,
			IsPrimary: m.IsPrimary,
			SortOrder: m.SortOrder,
		}
		if m.EmbedType != nil {
			item.EmbedType = *m.EmbedType
		}
		p.Media = append(p.Media, item)
	}
	p.QuantityDiscounts = make([]catalog.DiscountTier, 0, len(row.QuantityDiscounts))
	for _, t := range row.QuantityDiscounts {
		p.QuantityDiscounts = append(p.QuantityDiscounts, catalog.DiscountTier{
			MinQty:        catalog.Float(t.MinQty),
			MaxQty:        t.MaxQty,
			DiscountType:  t.DiscountType,
			DiscountValue: decimalPtr(t.DiscountValue),
			Note:          t.Note,
		})
	}
	p.Tags = make([]string, 0, len(row.Tags))
	for _, t := range row.Tags {
		p.Tags = append(p.Tags, t.Tag)
	}
	return p
}

// applyCanonical copies the fields of p onto row. In update mode only the
// fields present in the input are copied; in create mode everything is.
func applyCanonical(row *models.Product, p catalog.Product, mode catalog.Mode, categoryID *uuid.UUID) {
	set := func(path string) bool {
		return mode != catalog.ModeUpdate || p.Has(path)
	}

	if set("title") {
		row.Title = p.Title
	}
	if set("slug") {
		row.Slug = p.Slug
	}
	if set("brand") {
		row.Brand = p.Brand
	}
	if set("category") {
		row.CategoryID = categoryID
	}
	if set("descriptionHtml") {
		row.DescriptionHTML = p.DescriptionHTML
	}
	if set("highlights") {
		row.Highlights = pq.StringArray(append([]string{}, p.Highlights...))
	}
	if set("specs") {
		row.Specs = datatypes.NewJSONSlice(append([]catalog.Spec{}, p.Specs...))
	}
	if set("videoUrls") {
		row.VideoURLs = pq.StringArray(append([]string{}, p.VideoURLs...))
	}
	if set("price.mrp") && p.Price.MRP != nil {
		row.PriceMRP = decimal.NewFromFloat(*p.Price.MRP)
	}
	if set("price.sale") {
		row.PriceSale = decimal.NullDecimal{}
		if p.Price.Sale != nil {
			row.PriceSale = decimal.NewNullDecimal(decimal.NewFromFloat(*p.Price.Sale))
		}
	}
	if set("price.currency") || row.Currency == "" {
		row.Currency = p.Price.Currency
	}
	if set("inventory.track") {
		row.TrackInventory = p.Inventory.Track
	}
	if set("inventory.qty") {
		row.StockQty = p.Inventory.Qty
	}
	if set("inventory.lowStockThreshold") {
		row.LowStockThreshold = p.Inventory.LowStockThreshold
	}
	if set("shipping") {
		row.Shipping = datatypes.NewJSONType(p.Shipping)
	}
	if set("seo") {
		row.SEO = datatypes.NewJSONType(p.SEO)
	}
	if set("visibility") {
		row.Visibility = p.Visibility
	}
	if set("status") {
		row.Status = p.Status
	}
	if set("isFeatured") {
		row.IsFeatured = p.IsFeatured
	}
}

func mediaRows(items []catalog.MediaItem, assets map[string]uuid.UUID) []models.ProductMedia {
	rows := make([]models.ProductMedia, 0, len(items))
	for _, item := range items {
		row := models.ProductMedia{
			URL:       item.URL,
			Type:      item.Type,
			Alt:       item.Alt,
			IsPrimary: item.IsPrimary,
			SortOrder: item.SortOrder,
		}
		if embed := strings.TrimSpace(item.EmbedType); embed != "" {
			row.EmbedType = &embed
		}
		if id, ok := assets[item.URL]; ok {
			assetID := id
			row.MediaAssetID = &assetID
		}
		rows = append(rows, row)
	}
	return rows
}

func discountRows(tiers []catalog.DiscountTier) []models.ProductDiscountTier {
	rows := make([]models.ProductDiscountTier, 0, len(tiers))
	for i, tier := range tiers {
		row := models.ProductDiscountTier{
			Position:     i,
			MaxQty:       tier.MaxQty,
			DiscountType: enums.NormalizeDiscountType(string(tier.DiscountType)),
			Note:         tier.Note,
		}
		if tier.MinQty != nil {
			row.MinQty = *tier.MinQty
		}
		if tier.DiscountValue != nil {
			row.DiscountValue = decimal.NewFromFloat(*tier.DiscountValue)
		}
		rows = append(rows, row)
	}
	return rows
}

func decimalPtr(d decimal.Decimal) *float64 {
	f, _ := d.Float64()
	return &f
}
