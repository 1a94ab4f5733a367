package normalize

import (
	"time"

	"draftly/internal/domain"
	"draftly/internal/loose"
)

const quotationValidity = 15 * 24 * time.Hour

// Quotation builds a complete quotation from raw model output. raw may be nil.
func (n *Normalizer) Quotation(raw map[string]any, req *domain.GenerationRequest) *domain.QuotationOutput {
	data := loose.CloneMap(raw)
	dates := loose.Map(data["dates"])
	hd := hintDates(req)

	issue := resolveDate(dates["issue_date"], hd.IssueDate, n.today)
	validTill := resolveDate(dates["valid_till"], hd.ValidTill, func() time.Time { return issue.Add(quotationValidity) })

	items := ensureItems(data["items"], req)
	t := computeTotals(data, items)

	out := &domain.QuotationOutput{
		DocType:  string(domain.DocTypeQuotation),
		Currency: currencyOf(data, req),
		Locale:   localeOf(data, req),
		Seller:   sellerParty(data["seller"], req),
		Buyer:    buyerParty(data["buyer"], req),
		Dates:    domain.QuotationDates{IssueDate: formatDate(issue), ValidTill: formatDate(validTill)},
		Items:    items,
		Totals:   t,
		Terms:    ensureTerms(data["terms"], req),
		Notes:    notesOf(data, req),
		Payment:  ensurePayment(data["payment"], req),
	}
	if meta := ensureDocMeta(data["doc_meta"], req); meta != (domain.DocMeta{}) {
		out.DocMeta = &meta
	}

	txnRef := ""
	if out.DocMeta != nil {
		txnRef = out.DocMeta.DocNo
	}
	attachDeeplink(out.Payment, req, t, txnRef)
	return out
}
