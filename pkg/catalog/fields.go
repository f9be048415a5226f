package catalog

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MinTitleLength       = 3
	MaxTitleLength       = 200
	MinBrandLength       = 2
	MinDescriptionLength = 50
	MaxDescriptionLength = 10000
	MaxHighlightLength   = 200
	MaxSpecKeyLength     = 100
	MaxSpecValueLength   = 500
	MaxMetaTitle         = 60
	MaxMetaDescription   = 160
	MaxTags              = 20
	MaxTagLength         = 50
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9-]+$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	countryPattern  = regexp.MustCompile(`^[A-Z]{2}$`)
	validate        = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func ValidateTitle(title string) *Violation {
	n := runeLen(strings.TrimSpace(title))
	switch {
	case n < MinTitleLength:
		return violation(KindTooShort, fmt.Sprintf("Title must be at least %d characters long", MinTitleLength))
	case n > MaxTitleLength:
		return violation(KindTooLong, fmt.Sprintf("Title must not exceed %d characters", MaxTitleLength))
	}
	return nil
}

func ValidateSlug(slug string) *Violation {
	switch {
	case slug == "":
		return violation(KindMissingField, "Slug is required")
	case validate.Var(slug, "slug") != nil:
		return violation(KindInvalidFormat, "Slug must contain only lowercase letters, numbers, and hyphens")
	case len(slug) > MaxSlugLength:
		return violation(KindTooLong, fmt.Sprintf("Slug must not exceed %d characters", MaxSlugLength))
	}
	return nil
}

func ValidateBrand(brand string) *Violation {
	if runeLen(strings.TrimSpace(brand)) < MinBrandLength {
		return violation(KindTooShort, fmt.Sprintf("Brand must be at least %d characters long", MinBrandLength))
	}
	return nil
}

func ValidateDescription(html string) *Violation {
	n := runeLen(strings.TrimSpace(html))
	switch {
	case n < MinDescriptionLength:
		return violation(KindTooShort, fmt.Sprintf("Description must be at least %d characters long", MinDescriptionLength))
	case n > MaxDescriptionLength:
		return violation(KindTooLong, fmt.Sprintf("Description must not exceed %d characters", MaxDescriptionLength))
	}
	return nil
}

func ValidateHighlights(highlights []string) *Violation {
	if len(highlights) == 0 {
		return violation(KindMissingField, "At least one highlight is required")
	}
	for i, h := range highlights {
		if runeLen(h) > MaxHighlightLength {
			return violation(KindTooLong, fmt.Sprintf("Highlight %d must not exceed %d characters", i+1, MaxHighlightLength))
		}
	}
	return nil
}

func ValidateSpecs(specs []Spec) *Violation {
	if len(specs) == 0 {
		return violation(KindMissingField, "At least one specification is required")
	}
	for i, s := range specs {
		switch {
		case strings.TrimSpace(s.Key) == "" || strings.TrimSpace(s.Value) == "":
			return violation(KindMissingField, fmt.Sprintf("Specification %d: Key and value are required", i+1))
		case runeLen(s.Key) > MaxSpecKeyLength:
			return violation(KindTooLong, fmt.Sprintf("Specification %d: Key must not exceed %d characters", i+1, MaxSpecKeyLength))
		case runeLen(s.Value) > MaxSpecValueLength:
			return violation(KindTooLong, fmt.Sprintf("Specification %d: Value must not exceed %d characters", i+1, MaxSpecValueLength))
		}
	}
	return nil
}

func ValidateMRP(mrp *float64) *Violation {
	if mrp == nil {
		return violation(KindMissingField, "Regular price must be greater than 0")
	}
	if *mrp <= 0 || math.IsNaN(*mrp) {
		return violation(KindOutOfRange, "Regular price must be greater than 0")
	}
	return nil
}

// ValidateSalePrice passes when sale is absent. The ordering check only runs
// when mrp is known.
func ValidateSalePrice(sale, mrp *float64) *Violation {
	if sale == nil {
		return nil
	}
	if *sale <= 0 || math.IsNaN(*sale) {
		return violation(KindOutOfRange, "Sale price must be greater than 0")
	}
	if mrp != nil && *sale >= *mrp {
		return violation(KindOrderingViolation, "Sale price must be less than regular price")
	}
	return nil
}

func ValidateCurrency(currency string) *Violation {
	if currency != "" && !currencyPattern.MatchString(currency) {
		return violation(KindInvalidFormat, "Currency must be a 3-letter ISO code")
	}
	return nil
}

func ValidateStockQty(inv Inventory) *Violation {
	if inv.Track && (inv.Qty < 0 || math.IsNaN(inv.Qty)) {
		return violation(KindOutOfRange, "Stock quantity must be a non-negative number")
	}
	return nil
}

func ValidateLowStockThreshold(threshold float64) *Violation {
	if threshold < 0 || math.IsNaN(threshold) {
		return violation(KindOutOfRange, "Low stock threshold must be a non-negative number")
	}
	return nil
}

// ValidateURL reports InvalidFormat when raw is not a well-formed absolute URL.
func ValidateURL(raw, label string) *Violation {
	if validate.Var(raw, "required,url") != nil {
		return violation(KindInvalidFormat, label+" is not valid")
	}
	return nil
}

func ValidateVideoURLs(urls []string) *Violation {
	for i, u := range urls {
		if v := ValidateURL(u, fmt.Sprintf("Video URL %d", i+1)); v != nil {
			return v
		}
	}
	return nil
}

func ValidateTags(tags []string) *Violation {
	if len(tags) > MaxTags {
		return violation(KindOutOfRange, fmt.Sprintf("A product can have at most %d tags", MaxTags))
	}
	for i, tag := range tags {
		if runeLen(tag) > MaxTagLength {
			return violation(KindTooLong, fmt.Sprintf("Tag %d must not exceed %d characters", i+1, MaxTagLength))
		}
	}
	return nil
}

// ValidateSEO returns failures keyed by the seo.* leaf.
func ValidateSEO(seo SEO) map[string]*Violation {
	out := map[string]*Violation{}
	if runeLen(seo.MetaTitle) > MaxMetaTitle {
		out["metaTitle"] = violation(KindTooLong, fmt.Sprintf("Meta title must not exceed %d characters", MaxMetaTitle))
	}
	if runeLen(seo.MetaDescription) > MaxMetaDescription {
		out["metaDescription"] = violation(KindTooLong, fmt.Sprintf("Meta description must not exceed %d characters", MaxMetaDescription))
	}
	if seo.CanonicalURL != "" {
		if v := ValidateURL(seo.CanonicalURL, "Canonical URL"); v != nil {
			out["canonicalUrl"] = v
		}
	}
	if seo.OGImage != "" {
		if v := ValidateURL(seo.OGImage, "Open Graph image URL"); v != nil {
			out["ogImage"] = v
		}
	}
	return out
}

// ValidateShipping returns failures keyed by the shipping.* leaf.
func ValidateShipping(ship Shipping) map[string]*Violation {
	out := map[string]*Violation{}
	if negative(ship.Weight) {
		out["weight"] = violation(KindOutOfRange, "Weight must be a non-negative number")
	}
	if negative(ship.Dimensions.Length) || negative(ship.Dimensions.Width) || negative(ship.Dimensions.Height) {
		out["dimensions"] = violation(KindOutOfRange, "Dimensions must be non-negative numbers")
	}
	if negative(ship.LeadTimeDays) {
		out["leadTimeDays"] = violation(KindOutOfRange, "Lead time must be a non-negative number")
	}
	if ship.OriginCountry != "" && !countryPattern.MatchString(ship.OriginCountry) {
		out["originCountry"] = violation(KindInvalidFormat, "Origin country must be a 2-letter ISO code")
	}
	return out
}

func negative(v *float64) bool {
	return v != nil && (*v < 0 || math.IsNaN(*v))
}
