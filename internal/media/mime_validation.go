package media

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

type mimeGroup string

const (
	mimeGroupImages mimeGroup = "images"
	mimeGroupVideos mimeGroup = "videos"
)

var mimeGroupTypes = map[mimeGroup][]string{
	mimeGroupImages: {"image/png", "image/jpeg", "image/webp", "image/gif", "image/avif"},
	mimeGroupVideos: {"video/mp4", "video/webm", "video/quicktime"},
}

var kindByGroup = map[mimeGroup]enums.MediaKind{
	mimeGroupImages: enums.MediaKindImage,
	mimeGroupVideos: enums.MediaKindVideo,
}

// sniffLen is how much of the upload mimetype inspects.
const sniffLen = 3072

// detectMime classifies the file by its content, ignoring whatever the
// client declared.
func detectMime(head []byte, groups []mimeGroup) (string, enums.MediaKind, error) {
	detected := mimetype.Detect(head)
	for _, group := range groups {
		for _, candidate := range mimeGroupTypes[group] {
			if detected.Is(candidate) {
				return candidate, kindByGroup[group], nil
			}
		}
	}
	return detected.String(), "", fmt.Errorf("file type %s not allowed; upload %s", detected.String(), describeGroups(groups))
}

func allowedGroups(allowVideos bool) []mimeGroup {
	if allowVideos {
		return []mimeGroup{mimeGroupImages, mimeGroupVideos}
	}
	return []mimeGroup{mimeGroupImages}
}

func describeGroups(groups []mimeGroup) string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, string(g))
	}
	return humanReadableList(names)
}

func humanReadableList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return fmt.Sprintf("%s or %s", items[0], items[1])
	default:
		return fmt.Sprintf("%s, or %s", strings.Join(items[:len(items)-1], ", "), items[len(items)-1])
	}
}
