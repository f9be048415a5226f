package settings

import "github.com/angelmondragon/catalog-admin-backend/pkg/enums"

// Palette is a named set of brand colours as hex strings.
type Palette struct {
	Name       string `json:"name"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
	Muted      string `json:"muted"`
}

type FontStack struct {
	Name      string `json:"name"`
	Heading   string `json:"heading"`
	Body      string `json:"body"`
	Monospace string `json:"monospace"`
}

// Layout holds storefront grid and media constants.
type Layout struct {
	ProductGridColumns  int                     `json:"productGridColumns"`
	ProductsPerPage     int                     `json:"productsPerPage"`
	BlogPostsPerPage    int                     `json:"blogPostsPerPage"`
	ContainerMaxWidthPx int                     `json:"containerMaxWidthPx"`
	ImageWidthsPx       map[enums.ImageSize]int `json:"imageWidthsPx"`
	DefaultImageSize    enums.ImageSize         `json:"defaultImageSize"`
	DefaultAlignment    enums.TextAlignment     `json:"defaultAlignment"`
}

type ThemeConfig struct {
	DefaultPalette string      `json:"defaultPalette"`
	Palettes       []Palette   `json:"palettes"`
	Fonts          []FontStack `json:"fonts"`
	Layout         Layout      `json:"layout"`
}

var palettes = []Palette{
	{Name: "daylight", Primary: "#1f6feb", Secondary: "#0f172a", Accent: "#f59e0b", Background: "#ffffff", Surface: "#f8fafc", Text: "#0f172a", Muted: "#64748b"},
	{Name: "graphite", Primary: "#38bdf8", Secondary: "#e2e8f0", Accent: "#facc15", Background: "#0b1120", Surface: "#1e293b", Text: "#f1f5f9", Muted: "#94a3b8"},
	{Name: "workshop", Primary: "#b45309", Secondary: "#292524", Accent: "#15803d", Background: "#fffbeb", Surface: "#fef3c7", Text: "#1c1917", Muted: "#78716c"},
}

var fonts = []FontStack{
	{
		Name:      "system",
		Heading:   `-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif`,
		Body:      `-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif`,
		Monospace: `ui-monospace, SFMono-Regular, Menlo, monospace`,
	},
	{
		Name:      "editorial",
		Heading:   `Georgia, "Times New Roman", serif`,
		Body:      `"Helvetica Neue", Arial, sans-serif`,
		Monospace: `ui-monospace, SFMono-Regular, Menlo, monospace`,
	},
}

// Theme returns the storefront theme tables. The result is a fresh copy.
func Theme() ThemeConfig {
	theme := ThemeConfig{
		DefaultPalette: palettes[0].Name,
		Palettes:       append([]Palette(nil), palettes...),
		Fonts:          append([]FontStack(nil), fonts...),
		Layout: Layout{
			ProductGridColumns:  4,
			ProductsPerPage:     24,
			BlogPostsPerPage:    12,
			ContainerMaxWidthPx: 1280,
			ImageWidthsPx: map[enums.ImageSize]int{
				enums.ImageSizeSmall:  320,
				enums.ImageSizeMedium: 640,
				enums.ImageSizeLarge:  960,
				enums.ImageSizeFull:   1280,
			},
			DefaultImageSize: enums.ImageSizeMedium,
			DefaultAlignment: enums.TextAlignmentCenter,
		},
	}
	return theme
}
