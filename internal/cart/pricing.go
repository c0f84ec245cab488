package cart

import "github.com/shopspring/decimal"

// Pricing policy constants. The band edges and the surcharge amount are
// fixed; changing them changes quoted totals for every open cart.
var (
	// EngravingSurcharge is added to the unit price whenever a line carries
	// an engraving.
	EngravingSurcharge = decimal.NewFromInt(25)

	// DefaultTaxRate is the estimated tax rate applied when the caller does
	// not supply one.
	DefaultTaxRate = decimal.NewFromFloat(0.08)

	freeShippingFrom = decimal.NewFromInt(500)
	midShippingFrom  = decimal.NewFromInt(250)
	lowShippingFrom  = decimal.NewFromInt(100)

	shippingLow  = decimal.NewFromInt(15) // below 100
	shippingMid  = decimal.NewFromInt(10) // [100, 250)
	shippingHigh = decimal.NewFromInt(5)  // [250, 500)
)

// EffectivePrice returns the sale price when one is set and strictly below
// the list price, else the list price.
func EffectivePrice(p Snapshot) decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.LessThan(p.Price) {
		return *p.SalePrice
	}
	return p.Price
}

// UnitPrice is the effective catalog price plus the variant adjustment and
// the engraving surcharge when present.
func UnitPrice(l Line) decimal.Decimal {
	price := EffectivePrice(l.Product)
	if l.Variant != nil {
		price = price.Add(l.Variant.PriceAdjustment)
	}
	if l.Engraving != nil {
		price = price.Add(EngravingSurcharge)
	}
	return price
}

// LineTotal is the unit price times the line quantity.
func LineTotal(l Line) decimal.Decimal {
	return UnitPrice(l).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Subtotal sums LineTotal over all lines.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for i := range lines {
		total = total.Add(LineTotal(lines[i]))
	}
	return total
}

// EstimatedTax is subtotal * rate.
func EstimatedTax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate)
}

// EstimatedShipping applies the tiered free-shipping schedule: free at or
// above 500, 5 in [250,500), 10 in [100,250), 15 below 100.
func EstimatedShipping(subtotal decimal.Decimal) decimal.Decimal {
	switch {
	case subtotal.GreaterThanOrEqual(freeShippingFrom):
		return decimal.Zero
	case subtotal.GreaterThanOrEqual(midShippingFrom):
		return shippingHigh
	case subtotal.GreaterThanOrEqual(lowShippingFrom):
		return shippingMid
	default:
		return shippingLow
	}
}

// Totals is the money breakdown for a cart.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"estimated_tax"`
	Shipping decimal.Decimal `json:"estimated_shipping"`
	Total    decimal.Decimal `json:"total"`
}

// CartTotals computes the full breakdown for the given lines and tax rate.
func CartTotals(lines []Line, rate decimal.Decimal) Totals {
	subtotal := Subtotal(lines)
	tax := EstimatedTax(subtotal, rate)
	shipping := EstimatedShipping(subtotal)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

// DiscountPercentage reports the rounded percentage saved by a sale price,
// or 0 when the sale price is not actually lower.
func DiscountPercentage(original, sale decimal.Decimal) int {
	if !sale.LessThan(original) || original.IsZero() {
		return 0
	}
	pct := original.Sub(sale).
		Div(original).
		Mul(decimal.NewFromInt(100)).
		Round(0)
	return int(pct.IntPart())
}
