package blog

import (
	"strings"
	"testing"

	"github.com/angelmondragon/catalog-admin-backend/pkg/catalog"
	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

func TestSanitizePostLegacyFeaturedImage(t *testing.T) {
	in := SanitizePost(map[string]any{
		"title":         "  Choosing Task Lighting ",
		"content":       "<p>Body</p>",
		"featuredImage": " https://cdn.example.com/lamp.jpg ",
		"tags":          []any{"Lighting", "lighting", " Office "},
	})
	if in.Title != "Choosing Task Lighting" {
		t.Fatalf("title = %q", in.Title)
	}
	if in.ContentHTML != "<p>Body</p>" {
		t.Fatalf("content alias not applied: %q", in.ContentHTML)
	}
	if in.FeaturedImage == nil {
		t.Fatal("expected featured image")
	}
	if in.FeaturedImage.URL != "https://cdn.example.com/lamp.jpg" ||
		in.FeaturedImage.Size != enums.ImageSizeMedium ||
		in.FeaturedImage.Alignment != enums.TextAlignmentCenter {
		t.Fatalf("unexpected featured image %+v", *in.FeaturedImage)
	}
	if strings.Join(in.Tags, ",") != "lighting,office" {
		t.Fatalf("tags = %v", in.Tags)
	}
	if in.Has("slug") || !in.Has("contentHtml") {
		t.Fatalf("unexpected provided set %+v", in.provided)
	}
}

func TestSanitizePostStructuredImageKeepsChoices(t *testing.T) {
	in := SanitizePost(map[string]any{
		"featuredImage": map[string]any{"url": "https://cdn.example.com/a.png", "alt": "Desk", "size": "LARGE", "alignment": "left"},
	})
	if in.FeaturedImage == nil || in.FeaturedImage.Size != enums.ImageSizeLarge || in.FeaturedImage.Alignment != enums.TextAlignmentLeft || in.FeaturedImage.Alt != "Desk" {
		t.Fatalf("unexpected image %+v", in.FeaturedImage)
	}
	if SanitizePost(map[string]any{"featuredImage": 42}).FeaturedImage != nil {
		t.Fatal("expected non-string image to be dropped")
	}
}

func TestValidatePost(t *testing.T) {
	in := SanitizePost(map[string]any{
		"title":         "Hi",
		"slug":          "Bad Slug!",
		"contentHtml":   "<p> </p>",
		"featuredImage": map[string]any{"url": "not a url", "size": "huge"},
		"status":        "archived",
	})
	errs := ValidatePost(in, catalog.ModeCreate)
	for _, field := range []string{"title", "slug", "contentHtml", "featuredImage.url", "featuredImage.size", "status"} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected error for %s, got %v", field, errs)
		}
	}

	partial := SanitizePost(map[string]any{"excerpt": "short"})
	if errs := ValidatePost(partial, catalog.ModeUpdate); errs.HasErrors() {
		t.Fatalf("update with only excerpt should pass, got %v", errs)
	}
}

func TestReadingTime(t *testing.T) {
	cases := []struct {
		words int
		want  int
	}{
		{0, 1},
		{150, 1},
		{200, 1},
		{201, 2},
		{1000, 5},
	}
	for _, tc := range cases {
		html := "<p>" + strings.Repeat("word ", tc.words) + "</p>"
		if got := ReadingTime(html); got != tc.want {
			t.Fatalf("ReadingTime(%d words) = %d, want %d", tc.words, got, tc.want)
		}
	}
	if got := ReadingTime("<p>one</p><p>two</p>"); got != 1 {
		t.Fatalf("tags should split words, got %d", got)
	}
}
