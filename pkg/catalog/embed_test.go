package catalog

import (
	"testing"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

func TestDetectEmbed(t *testing.T) {
	cases := map[string]enums.EmbedProvider{
		"https://www.youtube.com/watch?v=abc": enums.EmbedProviderYouTube,
		"https://youtu.be/abc":                enums.EmbedProviderYouTube,
		"https://vimeo.com/12345":             enums.EmbedProviderVimeo,
		"https://www.loom.com/share/xyz":      enums.EmbedProviderLoom,
	}
	for in, want := range cases {
		got, ok := DetectEmbed(in)
		if !ok || got != want {
			t.Fatalf("DetectEmbed(%q) = %q,%v want %q", in, got, ok, want)
		}
	}
	for _, in := range []string{"https://cdn.example.com/video.mp4", "not a url", ""} {
		if _, ok := DetectEmbed(in); ok {
			t.Fatalf("expected %q not to be an embed", in)
		}
	}
}

func TestEmbedSourceURL(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=abc": "https://www.youtube.com/embed/abc",
		"https://youtu.be/abc":                "https://www.youtube.com/embed/abc",
		"https://www.youtube.com/shorts/abc":  "https://www.youtube.com/embed/abc",
		"https://vimeo.com/12345":             "https://player.vimeo.com/video/12345",
		"https://www.loom.com/share/xyz":      "https://www.loom.com/embed/xyz",
	}
	for in, want := range cases {
		got, ok := EmbedSourceURL(in)
		if !ok || got != want {
			t.Fatalf("EmbedSourceURL(%q) = %q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := EmbedSourceURL("https://www.youtube.com/"); ok {
		t.Fatal("expected youtube url without id to fail")
	}
}
