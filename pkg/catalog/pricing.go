package catalog

import (
	"math"

	"github.com/angelmondragon/catalog-admin-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	weight7d      = decimal.RequireFromString("0.7")
	weight30d     = decimal.RequireFromString("0.3")
	priceDecimals = int32(2)
)

// DiscountPercentage is the whole-number saving of sale over mrp, or 0 when
// there is no valid sale price.
func DiscountPercentage(mrp, sale *float64) int {
	if mrp == nil || sale == nil || *mrp <= 0 || *sale >= *mrp {
		return 0
	}
	m := decimalOf(*mrp)
	s := decimalOf(*sale)
	return int(m.Sub(s).Mul(hundred).Div(m).Round(0).IntPart())
}

func StockStatus(inv Inventory) enums.StockStatus {
	switch {
	case !inv.Track:
		return enums.StockStatusInStock
	case inv.Qty <= 0:
		return enums.StockStatusOutOfStock
	case inv.Qty <= inv.LowStockThreshold:
		return enums.StockStatusLowStock
	default:
		return enums.StockStatusInStock
	}
}

// TrendingScore weights the last week of views over the last month.
func TrendingScore(views7d, views30d int64) float64 {
	score := weight7d.Mul(decimal.NewFromInt(views7d)).Add(weight30d.Mul(decimal.NewFromInt(views30d)))
	f, _ := score.Float64()
	return f
}

// EffectivePrice is the sale price when it undercuts mrp, else mrp. Zero when
// mrp is unknown.
func EffectivePrice(price Price) decimal.Decimal {
	if price.MRP == nil {
		return decimal.Zero
	}
	if price.Sale != nil && *price.Sale > 0 && *price.Sale < *price.MRP {
		return decimalOf(*price.Sale)
	}
	return decimalOf(*price.MRP)
}

// finite reports whether f can be represented as a decimal.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func decimalOf(f float64) decimal.Decimal {
	if !finite(f) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// TierFor returns the tier covering qty. An open-ended tier runs until the
// next tier's minimum. Tiers without a minimum never match. Returns nil when
// no tier applies.
func TierFor(tiers []DiscountTier, qty float64) *DiscountTier {
	if !finite(qty) {
		return nil
	}
	sorted := sortTiers(tiers)
	var match *DiscountTier
	for i := range sorted {
		tier := sorted[i]
		if tier.MinQty == nil {
			continue
		}
		if qty < *tier.MinQty {
			break
		}
		if tier.MaxQty != nil && qty > *tier.MaxQty {
			continue
		}
		match = &sorted[i]
	}
	return match
}

// Quote is a B2B price for an order quantity.
type Quote struct {
	Quantity    float64         `json:"quantity"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Savings     decimal.Decimal `json:"savings"`
	Currency    string          `json:"currency"`
	AppliedTier *DiscountTier   `json:"appliedTier,omitempty"`
}

// QuoteFor prices qty units using the effective price and the matching
// quantity tier. Flat discounts never push the unit price below zero. A
// non-finite qty is quoted as zero units.
func QuoteFor(price Price, tiers []DiscountTier, qty float64) Quote {
	if !finite(qty) {
		qty = 0
	}
	base := EffectivePrice(price)
	unit := base
	tier := TierFor(tiers, qty)
	if tier != nil && tier.DiscountValue != nil {
		value := decimalOf(*tier.DiscountValue)
		switch enums.NormalizeDiscountType(string(tier.DiscountType)) {
		case enums.DiscountTypePercent:
			unit = base.Mul(hundred.Sub(value)).Div(hundred)
		case enums.DiscountTypeFlat:
			unit = base.Sub(value)
		}
		if unit.IsNegative() {
			unit = decimal.Zero
		}
	}
	unit = unit.Round(priceDecimals)
	quantity := decimalOf(qty)
	subtotal := unit.Mul(quantity).Round(priceDecimals)

	return Quote{
		Quantity:    qty,
		BasePrice:   base.Round(priceDecimals),
		UnitPrice:   unit,
		Subtotal:    subtotal,
		Savings:     base.Mul(quantity).Round(priceDecimals).Sub(subtotal),
		Currency:    price.Currency,
		AppliedTier: tier,
	}
}
