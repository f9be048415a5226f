package catalog

import "strings"

// validRaw is a product payload that passes create validation.
func validRaw() map[string]any {
	return map[string]any{
		"title":           "Desk Lamps",
		"slug":            "valid-slug-1",
		"brand":           "Lumen",
		"descriptionHtml": strings.Repeat("d", 60),
		"highlights":      []any{"Adjustable arm"},
		"specs":           []any{map[string]any{"key": "Material", "value": "Steel"}},
		"media":           []any{map[string]any{"url": "https://cdn.example.com/lamp.jpg", "type": "image"}},
		"price":           map[string]any{"mrp": 100, "sale": 80},
	}
}
