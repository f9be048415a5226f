package blog

import (
	"math"
	"regexp"
	"strings"

	"github.com/angelmondragon/catalog-admin-backend/pkg/catalog"
)

const (
	wordsPerMinute   = 200
	maxExcerptLength = 500
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// ValidatePost checks a sanitized post. In update mode only supplied fields
// are checked.
func ValidatePost(in PostInput, mode catalog.Mode) catalog.FieldErrors {
	errs := catalog.FieldErrors{}
	check := func(field string) bool {
		return mode != catalog.ModeUpdate || in.Has(field)
	}

	if check("title") {
		if v := catalog.ValidateTitle(in.Title); v != nil {
			errs["title"] = v.Message
		}
	}
	if check("slug") {
		if v := catalog.ValidateSlug(in.Slug); v != nil {
			errs["slug"] = v.Message
		}
	}
	if check("contentHtml") && strings.TrimSpace(stripTags(in.ContentHTML)) == "" {
		errs["contentHtml"] = "Content is required"
	}
	if check("excerpt") && len([]rune(in.Excerpt)) > maxExcerptLength {
		errs["excerpt"] = "Excerpt must not exceed 500 characters"
	}
	if in.Has("featuredImage") && in.FeaturedImage != nil {
		if v := catalog.ValidateURL(in.FeaturedImage.URL, "Featured image URL"); v != nil {
			errs["featuredImage.url"] = v.Message
		}
		if !in.FeaturedImage.Size.IsValid() {
			errs["featuredImage.size"] = "Invalid image size"
		}
		if !in.FeaturedImage.Alignment.IsValid() {
			errs["featuredImage.alignment"] = "Invalid image alignment"
		}
	}
	if in.Has("tags") {
		if len(in.Tags) > catalog.MaxTags {
			errs["tags"] = "A post can have at most 20 tags"
		}
	}
	if in.Has("status") && in.Status != "" && !in.Status.IsValid() {
		errs["status"] = "Status must be draft or published"
	}
	return errs
}

// ReadingTime estimates minutes to read html at 200 words per minute, never
// less than one.
func ReadingTime(html string) int {
	words := len(strings.Fields(stripTags(html)))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

func stripTags(html string) string {
	return tagPattern.ReplaceAllString(html, " ")
}
