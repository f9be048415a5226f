package catalog

import (
	"encoding/json"
	"testing"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

func TestSanitizeDefaults(t *testing.T) {
	p := Sanitize(nil)

	if p.Price.Currency != "USD" {
		t.Fatalf("expected default currency USD, got %q", p.Price.Currency)
	}
	if p.Visibility != enums.ProductVisibilityDraft || p.Status != enums.ProductStatusActive {
		t.Fatalf("unexpected defaults visibility=%q status=%q", p.Visibility, p.Status)
	}
	if !p.Inventory.Track || p.Inventory.Qty != 0 || p.Inventory.LowStockThreshold != 5 {
		t.Fatalf("unexpected inventory defaults %+v", p.Inventory)
	}
	if p.Highlights == nil || p.Specs == nil || p.Media == nil || p.Tags == nil || p.QuantityDiscounts == nil {
		t.Fatalf("expected empty, non-nil collections")
	}
}

func TestSanitizeTrimsAndLowercases(t *testing.T) {
	p := Sanitize(map[string]any{
		"title":      "  Desk Lamp  ",
		"slug":       " Desk-Lamp ",
		"brand":      "\tAcme\n",
		"visibility": "PUBLISHED",
		"status":     "nonsense",
	})
	if p.Title != "Desk Lamp" || p.Slug != "desk-lamp" || p.Brand != "Acme" {
		t.Fatalf("unexpected strings %q %q %q", p.Title, p.Slug, p.Brand)
	}
	if p.Visibility != enums.ProductVisibilityPublished {
		t.Fatalf("expected published visibility, got %q", p.Visibility)
	}
	if p.Status != enums.ProductStatusActive {
		t.Fatalf("expected unknown status to default, got %q", p.Status)
	}
}

func TestSanitizeLegacyAliases(t *testing.T) {
	p := Sanitize(map[string]any{
		"price":          "19.99",
		"salePrice":      "9.5",
		"stock":          "12",
		"features":       []any{"Bright", "", nil, 3, "Dimmable"},
		"specifications": map[string]any{"Color": "Red", "Size": "", "Material": "Steel"},
		"description":    "  <p>hello</p> ",
		"currency":       "eur",
	})

	if p.Price.MRP == nil || *p.Price.MRP != 19.99 {
		t.Fatalf("expected mrp 19.99, got %v", p.Price.MRP)
	}
	if p.Price.Sale == nil || *p.Price.Sale != 9.5 {
		t.Fatalf("expected sale 9.5, got %v", p.Price.Sale)
	}
	if p.Price.Currency != "EUR" {
		t.Fatalf("expected EUR, got %q", p.Price.Currency)
	}
	if p.Inventory.Qty != 12 {
		t.Fatalf("expected qty 12, got %v", p.Inventory.Qty)
	}
	if len(p.Highlights) != 2 || p.Highlights[0] != "Bright" || p.Highlights[1] != "Dimmable" {
		t.Fatalf("unexpected highlights %v", p.Highlights)
	}
	if len(p.Specs) != 2 || p.Specs[0].Key != "Color" || p.Specs[1].Key != "Material" {
		t.Fatalf("unexpected specs %+v", p.Specs)
	}
	if p.DescriptionHTML != "<p>hello</p>" {
		t.Fatalf("unexpected description %q", p.DescriptionHTML)
	}
	for _, path := range []string{"price", "price.mrp", "price.sale", "price.currency", "inventory.qty", "highlights", "specs", "descriptionHtml"} {
		if !p.Has(path) {
			t.Fatalf("expected %s to be marked as provided", path)
		}
	}
	if p.Has("title") || p.Has("media") {
		t.Fatalf("absent fields must not be marked as provided")
	}
}

func TestSanitizeNonNumericValues(t *testing.T) {
	p := Sanitize(map[string]any{
		"price": map[string]any{"mrp": "abc", "sale": ""},
		"stock": "lots",
	})
	if p.Price.MRP != nil || p.Price.Sale != nil {
		t.Fatalf("expected non-numeric prices to be dropped, got %v %v", p.Price.MRP, p.Price.Sale)
	}
	if p.Inventory.Qty != 0 {
		t.Fatalf("expected non-numeric stock to default to 0, got %v", p.Inventory.Qty)
	}
}

func TestSanitizeMedia(t *testing.T) {
	p := Sanitize(map[string]any{
		"media": []any{
			"https://www.youtube.com/watch?v=abc123",
			map[string]any{"url": "  "},
			map[string]any{"url": "https://cdn.example.com/lamp.png", "isPrimary": true, "alt": " Lamp "},
			map[string]any{"url": "https://cdn.example.com/side.png", "isPrimary": "true", "sortOrder": "7"},
			42,
		},
	})

	if len(p.Media) != 3 {
		t.Fatalf("expected 3 media items, got %d", len(p.Media))
	}
	embed := p.Media[0]
	if embed.Type != enums.MediaTypeEmbed || embed.EmbedType != "youtube" || embed.SortOrder != 0 {
		t.Fatalf("unexpected embed item %+v", embed)
	}
	if embed.IsPrimary {
		t.Fatal("explicit primary elsewhere must win over first item")
	}
	if !p.Media[1].IsPrimary || p.Media[1].Type != enums.MediaTypeImage || p.Media[1].Alt != "Lamp" {
		t.Fatalf("unexpected image item %+v", p.Media[1])
	}
	if p.Media[2].IsPrimary {
		t.Fatal("only one media item may stay primary")
	}
	if p.Media[2].SortOrder != 7 {
		t.Fatalf("expected explicit sort order 7, got %d", p.Media[2].SortOrder)
	}
}

func TestSanitizeMediaFirstBecomesPrimary(t *testing.T) {
	p := Sanitize(map[string]any{"media": []any{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"}})
	if !p.Media[0].IsPrimary || p.Media[1].IsPrimary {
		t.Fatalf("expected first item to become primary, got %+v", p.Media)
	}
}

func TestSanitizeDiscounts(t *testing.T) {
	p := Sanitize(map[string]any{
		"quantityDiscounts": []any{
			map[string]any{"minQty": "10", "maxQty": 49, "discountValue": "5"},
			map[string]any{"minQty": 50, "discountValue": 2, "discountType": "amount", "note": " pallet "},
			map[string]any{"minQty": 5},
			map[string]any{"discountValue": 5},
			"junk",
		},
	})

	if len(p.QuantityDiscounts) != 2 {
		t.Fatalf("expected incomplete tiers to be dropped, got %d", len(p.QuantityDiscounts))
	}
	if p.QuantityDiscounts[0].DiscountType != enums.DiscountTypePercent {
		t.Fatalf("expected default percent, got %q", p.QuantityDiscounts[0].DiscountType)
	}
	second := p.QuantityDiscounts[1]
	if second.DiscountType != enums.DiscountTypeFlat || second.Note != "pallet" || second.MaxQty != nil {
		t.Fatalf("unexpected second tier %+v", second)
	}
}

func TestSanitizeTags(t *testing.T) {
	p := Sanitize(map[string]any{"tags": "Eco, eco , New,,"})
	if len(p.Tags) != 2 || p.Tags[0] != "eco" || p.Tags[1] != "new" {
		t.Fatalf("unexpected tags %v", p.Tags)
	}

	p = Sanitize(map[string]any{"tags": []any{" Outdoor", "OUTDOOR", 7, "garden"}})
	if len(p.Tags) != 2 || p.Tags[0] != "outdoor" || p.Tags[1] != "garden" {
		t.Fatalf("unexpected tags %v", p.Tags)
	}
}

func TestSanitizeCategoryReference(t *testing.T) {
	if got := Sanitize(map[string]any{"category": map[string]any{"_id": " cat-1 "}}).Category; got != "cat-1" {
		t.Fatalf("expected object reference id, got %q", got)
	}
	if got := Sanitize(map[string]any{"categoryId": "cat-2"}).Category; got != "cat-2" {
		t.Fatalf("expected string reference, got %q", got)
	}
}

func TestSanitizeNeverPanicsOnMalformedInput(t *testing.T) {
	inputs := []map[string]any{
		{"title": 5, "media": 7, "price": []any{1}, "inventory": "x"},
		{"quantityDiscounts": "nope", "shipping": 3, "seo": nil, "tags": 9},
		{"specs": []any{nil, map[string]any{"key": 1}}, "highlights": map[string]any{"a": 1}},
		{"inventory": map[string]any{"qty": []any{}, "track": "maybe"}, "isFeatured": "yes"},
		{"shipping": map[string]any{"dimensions": "big", "weight": "heavy"}},
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Sanitize panicked on %v: %v", in, r)
				}
			}()
			_ = Sanitize(in)
		}()
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []map[string]any{
		validRaw(),
		{
			"title":             " Legacy ",
			"price":             "25",
			"salePrice":         "20",
			"stock":             3,
			"features":          []any{"x"},
			"specifications":    map[string]any{"b": "2", "a": "1"},
			"media":             []any{"https://vimeo.com/12345", "https://cdn.example.com/a.png"},
			"quantityDiscounts": []any{map[string]any{"minQty": 10, "discountValue": 3, "discountType": "amount"}},
			"tags":              "B, a, b",
			"shipping":          map[string]any{"weight": "1.5", "dimensions": map[string]any{"l": 1, "w": 2, "h": 3}, "originCountry": "us"},
		},
		{"media": []any{map[string]any{"url": "https://cdn.example.com/a.png", "type": "GIF"}}},
	}

	for i, in := range inputs {
		once := Sanitize(in)
		first, err := json.Marshal(once)
		if err != nil {
			t.Fatalf("marshal first: %v", err)
		}
		twice, err := SanitizeJSON(first)
		if err != nil {
			t.Fatalf("SanitizeJSON: %v", err)
		}
		second, err := json.Marshal(twice)
		if err != nil {
			t.Fatalf("marshal second: %v", err)
		}
		if string(first) != string(second) {
			t.Fatalf("input %d not idempotent:\nfirst:  %s\nsecond: %s", i, first, second)
		}
	}
}

func TestSanitizeJSONRejectsNonObject(t *testing.T) {
	if _, err := SanitizeJSON([]byte(`[1,2]`)); err == nil {
		t.Fatal("expected array payload to fail")
	}
}
