package catalog

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

// ValidateMedia returns the first failing item in input order.
func ValidateMedia(items []MediaItem) *Violation {
	if len(items) == 0 {
		return violation(KindMissingField, "At least one media item is required")
	}
	for i, item := range items {
		n := i + 1
		if strings.TrimSpace(item.URL) == "" {
			return violation(KindMissingField, fmt.Sprintf("Media item %d: URL is required", n))
		}
		if v := ValidateURL(item.URL, fmt.Sprintf("Media item %d: URL", n)); v != nil {
			return v
		}
		if !item.Type.IsValid() {
			return violation(KindEnumMismatch, fmt.Sprintf("Media item %d: Type must be one of image, video, embed", n))
		}
		if item.Type == enums.MediaTypeEmbed && strings.TrimSpace(item.EmbedType) == "" {
			return violation(KindMissingField, fmt.Sprintf("Media item %d: Embed type is required for embedded media", n))
		}
	}
	return nil
}
