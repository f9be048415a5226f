package enums

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

var validPostStatuses = []PostStatus{PostStatusDraft, PostStatusPublished}

func (s PostStatus) String() string { return string(s) }

func (s PostStatus) IsValid() bool { return contains(validPostStatuses, s) }

func ParsePostStatus(value string) (PostStatus, error) {
	return parse(validPostStatuses, value, "post status")
}

// ImageSize is the rendered width class of a featured image.
type ImageSize string

const (
	ImageSizeSmall  ImageSize = "small"
	ImageSizeMedium ImageSize = "medium"
	ImageSizeLarge  ImageSize = "large"
	ImageSizeFull   ImageSize = "full"
)

var validImageSizes = []ImageSize{ImageSizeSmall, ImageSizeMedium, ImageSizeLarge, ImageSizeFull}

func (s ImageSize) String() string { return string(s) }

func (s ImageSize) IsValid() bool { return contains(validImageSizes, s) }

func ParseImageSize(value string) (ImageSize, error) {
	return parse(validImageSizes, value, "image size")
}

type TextAlignment string

const (
	TextAlignmentLeft   TextAlignment = "left"
	TextAlignmentCenter TextAlignment = "center"
	TextAlignmentRight  TextAlignment = "right"
)

var validTextAlignments = []TextAlignment{TextAlignmentLeft, TextAlignmentCenter, TextAlignmentRight}

func (a TextAlignment) String() string { return string(a) }

func (a TextAlignment) IsValid() bool { return contains(validTextAlignments, a) }

func ParseTextAlignment(value string) (TextAlignment, error) {
	return parse(validTextAlignments, value, "text alignment")
}
