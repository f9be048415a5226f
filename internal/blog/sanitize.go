package blog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelmondragon/catalog-admin-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

// PostInput is a sanitized post payload. provided records which top-level
// keys the caller sent so updates touch only those columns.
type PostInput struct {
	Title         string
	Slug          string
	Excerpt       string
	ContentHTML   string
	AuthorName    string
	FeaturedImage *models.FeaturedImage
	Tags          []string
	Status        enums.PostStatus

	provided map[string]bool
}

// Has reports whether field was present in the raw payload.
func (p PostInput) Has(field string) bool {
	if p.provided == nil {
		return true
	}
	return p.provided[field]
}

// markProvided records a value filled in by the service as if the caller sent it.
func (p *PostInput) markProvided(field string) {
	if p.provided != nil {
		p.provided[field] = true
	}
}

var postAliases = map[string][]string{
	"title":         {"title"},
	"slug":          {"slug"},
	"excerpt":       {"excerpt", "summary"},
	"contentHtml":   {"contentHtml", "content"},
	"authorName":    {"authorName", "author"},
	"featuredImage": {"featuredImage"},
	"tags":          {"tags"},
	"status":        {"status"},
}

// SanitizePost coerces a loose JSON object into a PostInput. A legacy
// featuredImage given as a bare URL string becomes a medium, centred image.
func SanitizePost(raw map[string]any) PostInput {
	in := PostInput{provided: map[string]bool{}}
	if raw == nil {
		return in
	}
	get := func(field string) (any, bool) {
		for _, key := range postAliases[field] {
			if v, ok := raw[key]; ok {
				in.provided[field] = true
				return v, true
			}
		}
		return nil, false
	}

	if v, ok := get("title"); ok {
		in.Title = str(v)
	}
	if v, ok := get("slug"); ok {
		in.Slug = strings.ToLower(str(v))
	}
	if v, ok := get("excerpt"); ok {
		in.Excerpt = str(v)
	}
	if v, ok := get("contentHtml"); ok {
		in.ContentHTML = str(v)
	}
	if v, ok := get("authorName"); ok {
		in.AuthorName = str(v)
	}
	if v, ok := get("featuredImage"); ok {
		in.FeaturedImage = sanitizeFeaturedImage(v)
	}
	if v, ok := get("tags"); ok {
		in.Tags = sanitizeTags(v)
	}
	if v, ok := get("status"); ok {
		in.Status = enums.PostStatus(strings.ToLower(str(v)))
	}
	return in
}

// SanitizePostJSON decodes a JSON object and sanitizes it.
func SanitizePostJSON(data []byte) (PostInput, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return PostInput{}, fmt.Errorf("decode post: %w", err)
	}
	return SanitizePost(raw), nil
}

func sanitizeFeaturedImage(v any) *models.FeaturedImage {
	image := models.FeaturedImage{Size: enums.ImageSizeMedium, Alignment: enums.TextAlignmentCenter}
	switch t := v.(type) {
	case string:
		image.URL = strings.TrimSpace(t)
	case map[string]any:
		image.URL = str(t["url"])
		image.Alt = str(t["alt"])
		if size := strings.ToLower(str(t["size"])); size != "" {
			image.Size = enums.ImageSize(size)
		}
		if align := strings.ToLower(str(t["alignment"])); align != "" {
			image.Alignment = enums.TextAlignment(align)
		}
	default:
		return nil
	}
	if image.URL == "" {
		return nil
	}
	return &image
}

func sanitizeTags(v any) []string {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			items = append(items, s)
		}
	}
	seen := map[string]bool{}
	out := []string{}
	for _, item := range items {
		tag := strings.ToLower(str(item))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
