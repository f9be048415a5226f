package catalog

import (
	"fmt"
	"sort"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
)

// sortTiers returns a copy of tiers ordered by minQty. Ties keep their input
// order; a missing minQty sorts as 0.
func sortTiers(tiers []DiscountTier) []DiscountTier {
	sorted := make([]DiscountTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return valueOr(sorted[i].MinQty, 0) < valueOr(sorted[j].MinQty, 0)
	})
	return sorted
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// ValidateDiscounts checks a volume pricing ladder and returns the first
// failure. Tier numbers in messages refer to positions after sorting by
// minQty.
func ValidateDiscounts(tiers []DiscountTier) *Violation {
	sorted := sortTiers(tiers)
	for i, tier := range sorted {
		n := i + 1
		switch {
		case tier.MinQty == nil:
			return violation(KindMissingField, fmt.Sprintf("Discount tier %d: Minimum quantity must be greater than 0", n))
		case *tier.MinQty <= 0:
			return violation(KindOutOfRange, fmt.Sprintf("Discount tier %d: Minimum quantity must be greater than 0", n))
		case tier.MaxQty != nil && *tier.MaxQty < *tier.MinQty:
			return violation(KindOrderingViolation, fmt.Sprintf("Discount tier %d: Maximum quantity must be greater than or equal to minimum quantity", n))
		case tier.DiscountValue == nil || *tier.DiscountValue <= 0:
			return violation(KindOutOfRange, fmt.Sprintf("Discount tier %d: Discount value must be greater than 0", n))
		}

		kind := enums.NormalizeDiscountType(string(tier.DiscountType))
		if kind == enums.DiscountTypePercent && *tier.DiscountValue > 100 {
			return violation(KindOutOfRange, fmt.Sprintf("Discount tier %d: percentage discount cannot exceed 100%%", n))
		}
		if !kind.IsValid() {
			return violation(KindEnumMismatch, fmt.Sprintf("Discount tier %d: Discount type must be either percent or flat", n))
		}

		if i > 0 {
			prev := sorted[i-1]
			if prev.MaxQty != nil && *tier.MinQty <= *prev.MaxQty {
				return violation(KindOrderingViolation, fmt.Sprintf("Discount tier %d: Quantity range overlaps with tier %d", n, i))
			}
		}
	}
	return nil
}
