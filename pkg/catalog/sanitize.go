package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

const (
	DefaultCurrency          = "USD"
	DefaultLowStockThreshold = 5
	DefaultVisibility        = enums.ProductVisibilityDraft
	DefaultStatus            = enums.ProductStatusActive
	DefaultDiscountType      = enums.DiscountTypePercent
)

// fieldPaths maps raw input keys, including legacy spellings, to the
// canonical field path they populate.
var fieldPaths = map[string]string{
	"title":             "title",
	"slug":              "slug",
	"brand":             "brand",
	"category":          "category",
	"categoryId":        "category",
	"descriptionHtml":   "descriptionHtml",
	"description":       "descriptionHtml",
	"highlights":        "highlights",
	"features":          "highlights",
	"specs":             "specs",
	"specifications":    "specs",
	"media":             "media",
	"videoUrls":         "videoUrls",
	"salePrice":         "price.sale",
	"currency":          "price.currency",
	"stock":             "inventory.qty",
	"trackInventory":    "inventory.track",
	"lowStockThreshold": "inventory.lowStockThreshold",
	"quantityDiscounts": "quantityDiscounts",
	"shipping":          "shipping",
	"seo":               "seo",
	"tags":              "tags",
	"visibility":        "visibility",
	"status":            "status",
	"isFeatured":        "isFeatured",
}

// SanitizeJSON decodes a JSON object and sanitizes it. Only a payload that is
// not a JSON object is an error.
func SanitizeJSON(data []byte) (Product, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Product{}, fmt.Errorf("decode product payload: %w", err)
	}
	return Sanitize(raw), nil
}

// Sanitize normalises untrusted input into a canonical Product. It never
// fails: malformed values are dropped or defaulted and left for Validate to
// report.
func Sanitize(raw map[string]any) Product {
	p := Product{provided: map[string]bool{}}
	markProvided(&p, raw)

	p.Title = toString(raw["title"])
	p.Slug = strings.ToLower(toString(raw["slug"]))
	p.Brand = toString(raw["brand"])
	p.Category = sanitizeCategory(raw)

	if v, _, ok := lookup(raw, "descriptionHtml", "description"); ok {
		p.DescriptionHTML = toString(v)
	}

	highlights, _, _ := lookup(raw, "highlights", "features")
	p.Highlights = sanitizeStrings(highlights)

	specs, _, _ := lookup(raw, "specs", "specifications")
	p.Specs = sanitizeSpecs(specs)

	p.Media = sanitizeMedia(raw["media"])
	p.VideoURLs = sanitizeStrings(raw["videoUrls"])
	p.Price = sanitizePrice(raw)
	p.Inventory = sanitizeInventory(raw)
	p.QuantityDiscounts = sanitizeDiscounts(raw["quantityDiscounts"])
	p.Shipping = sanitizeShipping(raw["shipping"])
	p.SEO = sanitizeSEO(raw["seo"])
	p.Tags = sanitizeTags(raw["tags"])

	p.Visibility = DefaultVisibility
	if v, err := enums.ParseProductVisibility(strings.ToLower(toString(raw["visibility"]))); err == nil {
		p.Visibility = v
	}
	p.Status = DefaultStatus
	if s, err := enums.ParseProductStatus(strings.ToLower(toString(raw["status"]))); err == nil {
		p.Status = s
	}
	p.IsFeatured = toBool(raw["isFeatured"], false)

	return p
}

func markProvided(p *Product, raw map[string]any) {
	for key, value := range raw {
		if path, ok := fieldPaths[key]; ok {
			p.markPath(path)
			continue
		}
		switch key {
		case "price":
			markNested(p, "price", value, map[string]string{"mrp": "mrp", "sale": "sale", "currency": "currency"})
			if _, isObject := toMap(value); !isObject && value != nil {
				p.markPath("price.mrp")
			}
		case "inventory":
			markNested(p, "inventory", value, map[string]string{
				"track": "track", "qty": "qty", "quantity": "qty", "lowStockThreshold": "lowStockThreshold",
			})
		}
	}
}

func markNested(p *Product, group string, value any, keys map[string]string) {
	p.markPath(group)
	m, ok := toMap(value)
	if !ok {
		return
	}
	for key := range m {
		if leaf, ok := keys[key]; ok {
			p.markPath(group + "." + leaf)
		}
	}
}

func sanitizeCategory(raw map[string]any) string {
	v, _, ok := lookup(raw, "category", "categoryId")
	if !ok {
		return ""
	}
	if m, isObject := toMap(v); isObject {
		ref, _, _ := lookup(m, "id", "_id", "slug")
		return toString(ref)
	}
	return toString(v)
}

// sanitizeStrings keeps non-empty trimmed string entries.
func sanitizeStrings(v any) []string {
	out := []string{}
	for _, entry := range toSlice(v) {
		s, ok := entry.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func sanitizeSpecs(v any) []Spec {
	out := []Spec{}
	if m, ok := toMap(v); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			spec := Spec{Key: strings.TrimSpace(k), Value: toString(m[k])}
			if spec.Key != "" && spec.Value != "" {
				out = append(out, spec)
			}
		}
		return out
	}
	for _, entry := range toSlice(v) {
		m, ok := toMap(entry)
		if !ok {
			continue
		}
		spec := Spec{Key: toString(m["key"]), Value: toString(m["value"])}
		if spec.Key == "" || spec.Value == "" {
			continue
		}
		out = append(out, spec)
	}
	return out
}

func sanitizeMedia(v any) []MediaItem {
	out := []MediaItem{}
	for _, entry := range toSlice(v) {
		var (
			item      MediaItem
			sortOrder *float64
		)
		switch e := entry.(type) {
		case string:
			item.URL = strings.TrimSpace(e)
		case map[string]any:
			item.URL = toString(e["url"])
			item.Type = enums.MediaType(strings.ToLower(toString(e["type"])))
			item.Alt = toString(e["alt"])
			item.IsPrimary = toBool(e["isPrimary"], false)
			item.EmbedType = strings.ToLower(toString(e["embedType"]))
			sortOrder = optionalNumber(e["sortOrder"])
		default:
			continue
		}
		if item.URL == "" {
			continue
		}

		item.SortOrder = len(out)
		if sortOrder != nil {
			item.SortOrder = int(math.Round(*sortOrder))
		}

		provider, isEmbed := DetectEmbed(item.URL)
		if item.Type == "" {
			item.Type = enums.MediaTypeImage
			if isEmbed {
				item.Type = enums.MediaTypeEmbed
			}
		}
		if item.Type == enums.MediaTypeEmbed && item.EmbedType == "" && isEmbed {
			item.EmbedType = provider.String()
		}
		out = append(out, item)
	}

	primary := -1
	for i := range out {
		if out[i].IsPrimary {
			if primary >= 0 {
				out[i].IsPrimary = false
				continue
			}
			primary = i
		}
	}
	if primary < 0 && len(out) > 0 {
		out[0].IsPrimary = true
	}
	return out
}

func sanitizePrice(raw map[string]any) Price {
	var price Price
	switch v := raw["price"].(type) {
	case map[string]any:
		price.MRP = optionalNumber(v["mrp"])
		price.Sale = optionalNumber(v["sale"])
		price.Currency = toString(v["currency"])
	default:
		price.MRP = optionalNumber(v)
	}
	if price.Sale == nil {
		price.Sale = optionalNumber(raw["salePrice"])
	}
	if price.Currency == "" {
		price.Currency = toString(raw["currency"])
	}
	price.Currency = strings.ToUpper(price.Currency)
	if price.Currency == "" {
		price.Currency = DefaultCurrency
	}
	return price
}

func sanitizeInventory(raw map[string]any) Inventory {
	inv := Inventory{
		Track:             toBool(raw["trackInventory"], true),
		Qty:               numberOr(raw["stock"], 0),
		LowStockThreshold: numberOr(raw["lowStockThreshold"], DefaultLowStockThreshold),
	}
	m, ok := toMap(raw["inventory"])
	if !ok {
		return inv
	}
	if v, exists := m["track"]; exists {
		inv.Track = toBool(v, inv.Track)
	}
	if v, _, exists := lookup(m, "qty", "quantity"); exists {
		inv.Qty = numberOr(v, inv.Qty)
	}
	if v, exists := m["lowStockThreshold"]; exists {
		inv.LowStockThreshold = numberOr(v, inv.LowStockThreshold)
	}
	return inv
}

func sanitizeDiscounts(v any) []DiscountTier {
	out := []DiscountTier{}
	for _, entry := range toSlice(v) {
		m, ok := toMap(entry)
		if !ok {
			continue
		}
		minQty, _, _ := lookup(m, "minQty", "min")
		maxQty, _, _ := lookup(m, "maxQty", "max")
		value, _, _ := lookup(m, "discountValue", "value")
		kind, _, _ := lookup(m, "discountType", "type")

		tier := DiscountTier{
			MinQty:        optionalNumber(minQty),
			MaxQty:        optionalNumber(maxQty),
			DiscountValue: optionalNumber(value),
			DiscountType:  enums.NormalizeDiscountType(toString(kind)),
			Note:          toString(m["note"]),
		}
		if tier.MinQty == nil || tier.DiscountValue == nil {
			continue
		}
		if tier.DiscountType == "" {
			tier.DiscountType = DefaultDiscountType
		}
		out = append(out, tier)
	}
	return out
}

func sanitizeShipping(v any) Shipping {
	m, ok := toMap(v)
	if !ok {
		return Shipping{}
	}
	ship := Shipping{
		Weight:        optionalNumber(m["weight"]),
		OriginCountry: strings.ToUpper(toString(m["originCountry"])),
		LeadTimeDays:  optionalNumber(m["leadTimeDays"]),
		FreeShipping:  toBool(m["freeShipping"], false),
	}
	if dims, ok := toMap(m["dimensions"]); ok {
		length, _, _ := lookup(dims, "length", "l")
		width, _, _ := lookup(dims, "width", "w")
		height, _, _ := lookup(dims, "height", "h")
		ship.Dimensions = Dimensions{
			Length: optionalNumber(length),
			Width:  optionalNumber(width),
			Height: optionalNumber(height),
		}
	}
	return ship
}

func sanitizeSEO(v any) SEO {
	m, ok := toMap(v)
	if !ok {
		return SEO{}
	}
	return SEO{
		MetaTitle:       toString(m["metaTitle"]),
		MetaDescription: toString(m["metaDescription"]),
		CanonicalURL:    toString(m["canonicalUrl"]),
		OGImage:         toString(m["ogImage"]),
	}
}

// sanitizeTags accepts a list or a comma separated string. Tags are
// lower-cased and de-duplicated in first-seen order.
func sanitizeTags(v any) []string {
	var candidates []string
	if s, ok := v.(string); ok {
		candidates = strings.Split(s, ",")
	} else {
		candidates = sanitizeStrings(v)
	}

	out := []string{}
	seen := make(map[string]struct{}, len(candidates))
	for _, tag := range candidates {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
