package totals

import (
	"draftly/internal/domain"
	"draftly/internal/loose"
	"draftly/internal/numeric"
)

// ItemFromMap reads the numeric fields of a loosely-typed line item. Missing
// or unparseable values read as zero; values beyond numeric.MaxAmount are
// clamped.
func ItemFromMap(m map[string]any) domain.Item {
	return domain.Item{
		Description: numeric.CoerceString(m["description"]),
		Qty:         numeric.CoerceAmount(m["qty"], 0),
		UnitPrice:   numeric.CoerceAmount(m["unit_price"], 0),
		Unit:        numeric.CoerceString(m["unit"]),
		Discount:    numeric.CoerceAmount(m["discount"], 0),
		TaxRate:     numeric.CoerceAmount(m["tax_rate"], 0),
	}
}

// RecomputeDraft returns a copy of draft whose items carry sno, line_total and
// line_tax and whose totals block is rebuilt from those items. Shipping and
// currency already present on the draft are kept. The input is not modified.
func RecomputeDraft(draft map[string]any) map[string]any {
	out := loose.CloneMap(draft)

	rawItems := loose.Maps(out["items"])
	items := make([]domain.Item, 0, len(rawItems))
	written := make([]any, 0, len(rawItems))
	for i, m := range rawItems {
		item := ItemFromMap(m)
		lineTotal, lineTax := ComputeLineTotals(item)
		m["sno"] = i + 1
		m["line_total"] = lineTotal
		m["line_tax"] = lineTax
		items = append(items, item)
		written = append(written, m)
	}
	out["items"] = written

	prev := loose.Map(out["totals"])
	shipping := numeric.CoerceAmount(prev["shipping"], 0)
	t := ComputeTotals(items, shipping)

	currency := numeric.CoerceString(prev["currency"])
	if currency == "" {
		currency = numeric.CoerceString(out["currency"])
	}
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	out["totals"] = map[string]any{
		"subtotal":        t.Subtotal,
		"discount_total":  t.DiscountTotal,
		"tax_total":       t.TaxTotal,
		"shipping":        t.Shipping,
		"round_off":       t.RoundOff,
		"grand_total":     t.GrandTotal,
		"amount_in_words": t.AmountInWords,
		"currency":        currency,
	}
	return out
}
