package settings

import (
	"testing"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

func TestThemeDefaults(t *testing.T) {
	theme := Theme()
	if len(theme.Palettes) == 0 || theme.Palettes[0].Name != theme.DefaultPalette {
		t.Fatalf("default palette %q not first in %v", theme.DefaultPalette, theme.Palettes)
	}
	if theme.Layout.DefaultImageSize != enums.ImageSizeMedium || theme.Layout.DefaultAlignment != enums.TextAlignmentCenter {
		t.Fatalf("unexpected layout defaults %+v", theme.Layout)
	}
	for _, size := range []enums.ImageSize{enums.ImageSizeSmall, enums.ImageSizeMedium, enums.ImageSizeLarge, enums.ImageSizeFull} {
		if theme.Layout.ImageWidthsPx[size] == 0 {
			t.Fatalf("missing width for %s", size)
		}
	}
}

func TestThemeReturnsCopy(t *testing.T) {
	first := Theme()
	first.Palettes[0].Primary = "#000000"
	first.Layout.ImageWidthsPx[enums.ImageSizeSmall] = 1
	second := Theme()
	if second.Palettes[0].Primary == "#000000" || second.Layout.ImageWidthsPx[enums.ImageSizeSmall] == 1 {
		t.Fatal("Theme leaked shared state")
	}
}
