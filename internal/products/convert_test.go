package product

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-admin-backend/pkg/catalog"
	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

func TestApplyCanonicalUpdateKeepsAbsentFields(t *testing.T) {
	row := &models.Product{
		Title:     "Old title",
		Brand:     "Acme",
		PriceMRP:  decimal.NewFromInt(100),
		PriceSale: decimal.NewNullDecimal(decimal.NewFromInt(80)),
		Currency:  "EUR",
	}

	p := catalog.Sanitize(map[string]any{"title": " New title ", "salePrice": nil})
	applyCanonical(row, p, catalog.ModeUpdate, nil)

	if row.Title != "New title" {
		t.Fatalf("expected trimmed title, got %q", row.Title)
	}
	if row.Brand != "Acme" {
		t.Fatalf("expected brand to be kept, got %q", row.Brand)
	}
	if row.Currency != "EUR" {
		t.Fatalf("expected currency to be kept, got %q", row.Currency)
	}
	if row.PriceSale.Valid {
		t.Fatal("expected explicit null sale price to clear the column")
	}
	if !row.PriceMRP.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected mrp to be kept, got %s", row.PriceMRP)
	}
}

func TestDiscountRowsNormalizeAlias(t *testing.T) {
	rows := discountRows([]catalog.DiscountTier{
		{MinQty: catalog.Float(5), DiscountType: "amount", DiscountValue: catalog.Float(2.5)},
	})
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	if rows[0].DiscountType != "flat" {
		t.Fatalf("expected amount alias to normalise to flat, got %s", rows[0].DiscountType)
	}
	if !rows[0].DiscountValue.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected discount value %s", rows[0].DiscountValue)
	}
}

func TestMediaRowsKeepExplicitSortOrder(t *testing.T) {
	rows := mediaRows([]catalog.MediaItem{
		{URL: "https://cdn.example.com/a.jpg", Type: enums.MediaTypeImage, SortOrder: 1},
		{URL: "https://cdn.example.com/b.jpg", Type: enums.MediaTypeImage, SortOrder: 0, IsPrimary: true},
	}, nil)
	if rows[0].SortOrder != 1 || rows[1].SortOrder != 0 {
		t.Fatalf("expected sort orders 1,0 got %d,%d", rows[0].SortOrder, rows[1].SortOrder)
	}
}

func TestProductDTOEmbedSource(t *testing.T) {
	embed := string(enums.EmbedProviderYouTube)
	row := &models.Product{
		Title:    "Desk lamp",
		PriceMRP: decimal.NewFromInt(10),
		Media: []models.ProductMedia{
			{URL: "https://cdn.example.com/a.jpg", Type: enums.MediaTypeImage, IsPrimary: true},
			{URL: "https://youtu.be/abc123", Type: enums.MediaTypeEmbed, EmbedType: &embed, SortOrder: 1},
		},
	}
	dto := NewProductDTO(row)
	if len(dto.Media) != 2 {
		t.Fatalf("expected 2 media items, got %d", len(dto.Media))
	}
	if dto.Media[0].EmbedURL != "" {
		t.Fatalf("images carry no embed url, got %q", dto.Media[0].EmbedURL)
	}
	if dto.Media[1].EmbedURL != "https://www.youtube.com/embed/abc123" {
		t.Fatalf("unexpected embed url %q", dto.Media[1].EmbedURL)
	}
}
