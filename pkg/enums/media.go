package enums

// MediaType is the presentation type of a product media item.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeEmbed MediaType = "embed"
)

var validMediaTypes = []MediaType{
	MediaTypeImage,
	MediaTypeVideo,
	MediaTypeEmbed,
}

func (m MediaType) String() string { return string(m) }

func (m MediaType) IsValid() bool { return contains(validMediaTypes, m) }

func ParseMediaType(value string) (MediaType, error) {
	return parse(validMediaTypes, value, "media type")
}

// EmbedProvider identifies a recognised video embed host.
type EmbedProvider string

const (
	EmbedProviderYouTube EmbedProvider = "youtube"
	EmbedProviderVimeo   EmbedProvider = "vimeo"
	EmbedProviderLoom    EmbedProvider = "loom"
)

var validEmbedProviders = []EmbedProvider{
	EmbedProviderYouTube,
	EmbedProviderVimeo,
	EmbedProviderLoom,
}

func (e EmbedProvider) String() string { return string(e) }

func (e EmbedProvider) IsValid() bool { return contains(validEmbedProviders, e) }

func ParseEmbedProvider(value string) (EmbedProvider, error) {
	return parse(validEmbedProviders, value, "embed provider")
}

// MediaKind classifies an uploaded media library asset.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

var validMediaKinds = []MediaKind{
	MediaKindImage,
	MediaKindVideo,
}

// String returns the literal string for the kind.
func (m MediaKind) String() string { return string(m) }

// IsValid reports whether the kind is known.
func (m MediaKind) IsValid() bool { return contains(validMediaKinds, m) }

// ParseMediaKind converts raw input into a MediaKind.
func ParseMediaKind(value string) (MediaKind, error) {
	return parse(validMediaKinds, value, "media kind")
}
