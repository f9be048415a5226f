package catalog

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":        "hello-world",
		"Café Crème Brûlée":    "cafe-creme-brulee",
		"  --a--b--  ":         "a-b",
		"LED Lamp (v2) 40W":    "led-lamp-v2-40w",
		"":                     "",
		"!!!":                  "",
		"already-a-valid-slug": "already-a-valid-slug",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlugifyProducesValidSlugs(t *testing.T) {
	long := strings.Repeat("word ", 40)
	got := Slugify(long)
	if len(got) > MaxSlugLength || strings.HasSuffix(got, "-") {
		t.Fatalf("unexpected long slug %q", got)
	}
	if v := ValidateSlug(got); v != nil {
		t.Fatalf("slugified text must validate, got %v", v)
	}
}
