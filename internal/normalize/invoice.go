package normalize

import (
	"strings"
	"time"

	"draftly/internal/domain"
	"draftly/internal/loose"
	"draftly/internal/numeric"
)

const invoiceTerm = 7 * 24 * time.Hour

// Invoice builds a complete tax invoice from raw model output. raw may be nil.
// The invoice always carries a document number and, when the seller has tax
// preferences or the model produced a GST block, a breakup derived from the
// final tax total.
func (n *Normalizer) Invoice(raw map[string]any, req *domain.GenerationRequest) *domain.TaxInvoiceOutput {
	data := loose.CloneMap(raw)
	dates := loose.Map(data["dates"])
	hd := hintDates(req)

	issue := resolveDate(dates["issue_date"], hd.IssueDate, n.today)
	due := resolveDate(dates["due_date"], hd.DueDate, func() time.Time { return issue.Add(invoiceTerm) })

	items := ensureItems(data["items"], req)
	t := computeTotals(data, items)

	meta := ensureDocMeta(data["doc_meta"], req)
	if meta.DocNo == "" {
		meta.DocNo = "INV-" + n.today().Format("20060102")
	}

	out := &domain.TaxInvoiceOutput{
		DocType:  string(domain.DocTypeTaxInvoice),
		Currency: currencyOf(data, req),
		Locale:   localeOf(data, req),
		Seller:   sellerParty(data["seller"], req),
		Buyer:    buyerParty(data["buyer"], req),
		DocMeta:  meta,
		Dates:    domain.InvoiceDates{IssueDate: formatDate(issue), DueDate: formatDate(due)},
		Items:    items,
		Totals:   t,
		Terms:    ensureTerms(data["terms"], req),
		Notes:    notesOf(data, req),
		Payment:  ensurePayment(data["payment"], req),
		GST:      ensureGST(data["gst"], req, t.TaxTotal),
	}
	attachDeeplink(out.Payment, req, t, meta.DocNo)
	return out
}

// ensureGST splits taxTotal by supply mode. Any cgst/sgst/igst figures in raw
// are ignored. The mode comes from raw when valid, else from comparing the
// seller's place of supply with the buyer's (falling back to the buyer's
// billing state), else defaults to intra-state.
func ensureGST(raw any, req *domain.GenerationRequest, taxTotal float64) *domain.GSTBreakup {
	src := loose.Map(raw)
	var prefs *domain.TaxPreferences
	if req != nil {
		prefs = req.From.TaxPrefs
	}
	if src == nil && prefs == nil {
		return nil
	}

	place := numeric.CoerceString(src["place_of_supply"])
	if place == "" && prefs != nil {
		place = prefs.PlaceOfSupply
	}

	mode := domain.GSTMode(strings.ToUpper(numeric.CoerceString(src["mode"])))
	if mode != domain.GSTModeIntra && mode != domain.GSTModeInter {
		mode = deriveGSTMode(place, buyerPlace(req))
	}
	return GSTSplit(mode, place, taxTotal)
}

// GSTSplit applies the supply mode to a tax total: intra-state halves it into
// CGST and SGST, inter-state carries it whole as IGST.
func GSTSplit(mode domain.GSTMode, place string, taxTotal float64) *domain.GSTBreakup {
	g := &domain.GSTBreakup{Mode: string(mode), PlaceOfSupply: place}
	if mode == domain.GSTModeInter {
		g.IGST = taxTotal
		return g
	}
	g.CGST = taxTotal / 2
	g.SGST = taxTotal / 2
	return g
}

func deriveGSTMode(sellerPlace, buyerPlace string) domain.GSTMode {
	if sellerPlace == "" || buyerPlace == "" {
		return domain.GSTModeIntra
	}
	if strings.EqualFold(strings.TrimSpace(sellerPlace), strings.TrimSpace(buyerPlace)) {
		return domain.GSTModeIntra
	}
	return domain.GSTModeInter
}

func buyerPlace(req *domain.GenerationRequest) string {
	if req == nil {
		return ""
	}
	if req.To.PlaceOfSupply != "" {
		return req.To.PlaceOfSupply
	}
	if a := req.To.BillingAddr; a != nil {
		if a.State != "" {
			return a.State
		}
		return a.StateCode
	}
	return ""
}
