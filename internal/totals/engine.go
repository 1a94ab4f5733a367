// Package totals computes line and document totals. Every figure is derived
// from the line items; totals supplied by a model are never trusted.
//
// Rounding policy: per-line values and the three aggregate sums are rounded
// to two decimals (banker's rounding), the grand total to the nearest whole
// rupee, and the difference is carried in round_off so that
//
//	subtotal - discount_total + tax_total + shipping + round_off == grand_total
package totals

import (
	"github.com/shopspring/decimal"

	"draftly/internal/domain"
	"draftly/internal/numeric"
)

var hundred = decimal.NewFromInt(100)

type line struct {
	gross    decimal.Decimal
	discount decimal.Decimal
	net      decimal.Decimal
	tax      decimal.Decimal
}

func computeLine(item domain.Item) line {
	gross := decimal.NewFromFloat(item.Qty).Mul(decimal.NewFromFloat(item.UnitPrice))
	discount := decimal.Max(decimal.NewFromFloat(item.Discount), decimal.Zero)
	if discount.GreaterThan(gross) {
		discount = decimal.Max(gross, decimal.Zero)
	}
	net := decimal.Max(gross.Sub(discount), decimal.Zero)
	rate := decimal.Max(decimal.NewFromFloat(item.TaxRate), decimal.Zero)
	return line{
		gross:    gross,
		discount: discount,
		net:      net,
		tax:      net.Mul(rate).Div(hundred),
	}
}

// ComputeLineTotals returns the net line value (gross less capped discount,
// never negative) and its tax, both rounded to two decimals.
func ComputeLineTotals(item domain.Item) (lineTotal, lineTax float64) {
	l := computeLine(item)
	return toFloat(l.net.RoundBank(2)), toFloat(l.tax.RoundBank(2))
}

func aggregate(items []domain.Item) (subtotal, discountTotal, taxTotal decimal.Decimal) {
	for _, item := range items {
		l := computeLine(item)
		subtotal = subtotal.Add(l.gross)
		discountTotal = discountTotal.Add(l.discount)
		taxTotal = taxTotal.Add(l.tax)
	}
	return subtotal.RoundBank(2), discountTotal.RoundBank(2), taxTotal.RoundBank(2)
}

// AggregateTotals sums gross value, discount and tax across items. Each sum is
// accumulated unrounded and rounded to two decimals once.
func AggregateTotals(items []domain.Item) (subtotal, discountTotal, taxTotal float64) {
	s, d, t := aggregate(items)
	return toFloat(s), toFloat(d), toFloat(t)
}

// ComputeTotals derives the full totals block for items plus shipping.
func ComputeTotals(items []domain.Item, shipping float64) domain.Totals {
	subtotal, discountTotal, taxTotal := aggregate(items)
	ship := decimal.NewFromFloat(shipping).RoundBank(2)

	pretotal := subtotal.Sub(discountTotal).Add(taxTotal).Add(ship)
	grand := pretotal.RoundBank(0)
	roundOff := grand.Sub(pretotal)
	grandTotal := toFloat(grand)

	return domain.Totals{
		Subtotal:      toFloat(subtotal),
		DiscountTotal: toFloat(discountTotal),
		TaxTotal:      toFloat(taxTotal),
		Shipping:      toFloat(ship),
		RoundOff:      toFloat(roundOff),
		GrandTotal:    grandTotal,
		AmountInWords: numeric.NumberToWordsIndian(grandTotal),
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	if f == 0 {
		// normalise -0
		return 0
	}
	return f
}
