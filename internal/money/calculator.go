// Package money holds the pure arithmetic of a dealer sale: discount,
// Quebec cascading sales taxes (TPS then TVQ) and the grand total.
// Nothing here performs I/O.
package money

import "github.com/shopspring/decimal"

var (
	// TPSRate is the federal GST applied to the discounted amount.
	TPSRate = decimal.RequireFromString("0.05")
	// TVQRate is the Quebec QST, levied on the amount inclusive of TPS.
	TVQRate = decimal.RequireFromString("0.09975")

	hundred = decimal.NewFromInt(100)
)

// Taxes holds both tax amounts, already rounded to cents.
type Taxes struct {
	TPS decimal.Decimal `json:"tps"`
	TVQ decimal.Decimal `json:"tvq"`
}

// Breakdown is every derived figure of a sale for display and invoicing.
type Breakdown struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Discount        decimal.Decimal `json:"discount"`
	AfterDiscount   decimal.Decimal `json:"after_discount"`
	TPS             decimal.Decimal `json:"tps"`
	TVQ             decimal.Decimal `json:"tvq"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
}

// Round2 rounds half away from zero to two decimals. Amounts in this package
// are never negative, so this is the usual half-up rounding.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ClampPercent forces p into [0,100] at the two-decimal scale of the
// discount_percent column, so a reloaded percent reprices to the same total.
func ClampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p.Round(2)
}

// ComputeDiscount returns subtotal*percent/100 rounded to cents and clamped
// to [0, subtotal].
func ComputeDiscount(subtotal, percent decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	d := Round2(subtotal.Mul(ClampPercent(percent)).Div(hundred))
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}

// ComputeTaxes applies TPS and then TVQ on (amount + TPS). Each stage is
// rounded before the next one reads it.
func ComputeTaxes(afterDiscount decimal.Decimal) Taxes {
	tps := Round2(afterDiscount.Mul(TPSRate))
	tvq := Round2(afterDiscount.Add(tps).Mul(TVQRate))
	return Taxes{TPS: tps, TVQ: tvq}
}

// ComputeTotal is the tax-inclusive grand total.
func ComputeTotal(afterDiscount, tps, tvq decimal.Decimal) decimal.Decimal {
	return Round2(afterDiscount.Add(tps).Add(tvq))
}

// EffectiveDiscountPercent picks the discount that applies to a sale. A
// nonzero dealer default wins outright and the manual value is ignored;
// otherwise the manual value (clamped, nil meaning 0) is used. The two are
// never combined.
func EffectiveDiscountPercent(dealerDefault decimal.Decimal, manual *decimal.Decimal) decimal.Decimal {
	if !dealerDefault.IsZero() {
		return ClampPercent(dealerDefault)
	}
	if manual == nil {
		return decimal.Zero
	}
	return ClampPercent(*manual)
}

// ValidPercent reports whether p is inside [0,100] with at most two decimals.
func ValidPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && !p.GreaterThan(hundred) && p.Equal(p.Round(2))
}

// PercentRule is the message for a percent ValidPercent refuses.
const PercentRule = "discount percent must be between 0 and 100 with at most two decimals"

// Compute builds the full breakdown for a subtotal and discount percent.
func Compute(subtotal, percent decimal.Decimal) Breakdown {
	discount := ComputeDiscount(subtotal, percent)
	return FromDiscount(subtotal, discount, ClampPercent(percent))
}

// FromDiscount builds the breakdown from an already stored discount amount,
// which is how stored sales are displayed.
func FromDiscount(subtotal, discount, percent decimal.Decimal) Breakdown {
	after := subtotal.Sub(discount)
	if after.IsNegative() {
		after = decimal.Zero
	}
	taxes := ComputeTaxes(after)
	return Breakdown{
		Subtotal:        subtotal,
		DiscountPercent: percent,
		Discount:        discount,
		AfterDiscount:   after,
		TPS:             taxes.TPS,
		TVQ:             taxes.TVQ,
		GrandTotal:      ComputeTotal(after, taxes.TPS, taxes.TVQ),
	}
}

// LineTotal is quantity × unit price.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
