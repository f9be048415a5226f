package enums

import "strings"

// DiscountType describes how a quantity tier reduces the unit price.
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFlat    DiscountType = "flat"

	// discountTypeAmountAlias is the legacy spelling of DiscountTypeFlat.
	discountTypeAmountAlias = "amount"
)

var validDiscountTypes = []DiscountType{
	DiscountTypePercent,
	DiscountTypeFlat,
}

func (d DiscountType) String() string { return string(d) }

// IsValid reports whether the value is a canonical DiscountType.
func (d DiscountType) IsValid() bool { return contains(validDiscountTypes, d) }

// NormalizeDiscountType lower-cases and trims value and folds the legacy
// "amount" alias into "flat". Unknown values are returned as-is so validation
// can report them.
func NormalizeDiscountType(value string) DiscountType {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == discountTypeAmountAlias {
		return DiscountTypeFlat
	}
	return DiscountType(normalized)
}

// ParseDiscountType accepts canonical values and the "amount" alias.
func ParseDiscountType(value string) (DiscountType, error) {
	return parse(validDiscountTypes, string(NormalizeDiscountType(value)), "discount type")
}
