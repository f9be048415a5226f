package catalog

import (
	"net/url"
	"strings"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

var embedHosts = map[string]enums.EmbedProvider{
	"youtube.com":          enums.EmbedProviderYouTube,
	"m.youtube.com":        enums.EmbedProviderYouTube,
	"youtu.be":             enums.EmbedProviderYouTube,
	"youtube-nocookie.com": enums.EmbedProviderYouTube,
	"vimeo.com":            enums.EmbedProviderVimeo,
	"player.vimeo.com":     enums.EmbedProviderVimeo,
	"loom.com":             enums.EmbedProviderLoom,
}

// DetectEmbed reports the video host behind rawURL when it is one we can
// embed.
func DetectEmbed(rawURL string) (enums.EmbedProvider, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	provider, ok := embedHosts[host]
	return provider, ok
}

// EmbedSourceURL converts a share or watch URL into the iframe source URL for
// its provider. Unknown or unparseable URLs return false.
func EmbedSourceURL(rawURL string) (string, bool) {
	provider, ok := DetectEmbed(rawURL)
	if !ok {
		return "", false
	}
	u, _ := url.Parse(strings.TrimSpace(rawURL))
	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })

	switch provider {
	case enums.EmbedProviderYouTube:
		id := u.Query().Get("v")
		switch {
		case id != "":
		case strings.HasSuffix(strings.ToLower(u.Hostname()), "youtu.be") && len(segments) > 0:
			id = segments[0]
		case len(segments) >= 2 && (segments[0] == "embed" || segments[0] == "shorts"):
			id = segments[1]
		}
		if id == "" {
			return "", false
		}
		return "https://www.youtube.com/embed/" + id, true
	case enums.EmbedProviderVimeo:
		if len(segments) == 0 {
			return "", false
		}
		return "https://player.vimeo.com/video/" + segments[len(segments)-1], true
	case enums.EmbedProviderLoom:
		if len(segments) < 2 {
			return "", false
		}
		return "https://www.loom.com/embed/" + segments[len(segments)-1], true
	}
	return "", false
}
