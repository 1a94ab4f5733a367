// Package normalize turns raw, possibly incomplete model output into complete
// quotation, tax invoice and project brief documents. Request data and hints
// fill whatever the model left out; totals are always recomputed.
package normalize

import (
	"strings"
	"time"
	"unicode/utf8"

	"draftly/internal/domain"
	"draftly/internal/loose"
	"draftly/internal/numeric"
	"draftly/internal/totals"
	"draftly/internal/upi"
)

const (
	maxSynthesizedDescription = 120
	maxPaymentNote            = 50
	defaultTermsTitle         = "Terms & Conditions"
	defaultDescription        = "Professional services"
	fallbackDescription       = "Line item"
)

// DefaultTerms are printed when neither the model nor the caller supplies terms.
var DefaultTerms = []string{
	"Prices exclusive of applicable taxes unless stated otherwise",
	"Payment terms as per agreement",
}

// Normalizer builds documents. Clock supplies "today"; nil means time.Now.
type Normalizer struct {
	Clock func() time.Time
}

// New returns a Normalizer reading the given clock.
func New(clock func() time.Time) *Normalizer {
	return &Normalizer{Clock: clock}
}

func (n *Normalizer) today() time.Time {
	now := time.Now()
	if n != nil && n.Clock != nil {
		now = n.Clock()
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a YYYY-MM-DD date, also accepting a full timestamp whose
// first ten characters are a date.
func ParseDate(v any) (time.Time, bool) {
	s := numeric.CoerceString(v)
	if len(s) > len(domain.DateLayout) {
		s = s[:len(domain.DateLayout)]
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// resolveDate picks the raw value, then the hint, then fallback().
func resolveDate(raw any, hint string, fallback func() time.Time) time.Time {
	if t, ok := ParseDate(raw); ok {
		return t
	}
	if t, ok := ParseDate(hint); ok {
		return t
	}
	return fallback()
}

func hints(req *domain.GenerationRequest) *domain.GenerationHints {
	if req == nil || req.Hints == nil {
		return &domain.GenerationHints{}
	}
	return req.Hints
}

func hintDates(req *domain.GenerationRequest) domain.HintDates {
	if h := hints(req); h.Dates != nil {
		return *h.Dates
	}
	return domain.HintDates{}
}

// Truncate shortens s to at most max runes.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func requirementDescription(req *domain.GenerationRequest) string {
	if req == nil {
		return ""
	}
	return Truncate(req.Requirement, maxSynthesizedDescription)
}

// ensureItems resolves the line items: raw items, else hint items, else a
// single item synthesized from the requirement.
func ensureItems(raw any, req *domain.GenerationRequest) []domain.Item {
	seed := loose.Maps(raw)
	if len(seed) == 0 {
		for _, h := range hints(req).Items {
			seed = append(seed, hintItemMap(h))
		}
	}
	if len(seed) == 0 {
		desc := requirementDescription(req)
		if desc == "" {
			desc = defaultDescription
		}
		seed = []map[string]any{{"description": desc, "qty": 1, "unit_price": 0}}
	}

	items := make([]domain.Item, 0, len(seed))
	for _, entry := range seed {
		items = append(items, CoerceItem(entry, requirementDescription(req)))
	}
	return items
}

// CoerceItem reads one loosely-typed item. Quantity defaults to 1 and is
// lifted back to 1 when it coerces to 0; money fields and rates are floored
// at 0 and capped at numeric.MaxAmount.
func CoerceItem(entry map[string]any, fallbackDesc string) domain.Item {
	desc := numeric.CoerceString(entry["description"])
	if desc == "" {
		desc = fallbackDesc
	}
	if desc == "" {
		desc = fallbackDescription
	}
	qty := max(numeric.CoerceAmount(entry["qty"], 1), 0)
	if qty == 0 {
		qty = 1
	}
	unit := numeric.CoerceString(entry["unit"])
	if unit == "" {
		unit = domain.DefaultUnit
	}
	return domain.Item{
		Description: desc,
		Qty:         qty,
		UnitPrice:   max(numeric.CoerceAmount(entry["unit_price"], 0), 0),
		Unit:        unit,
		Discount:    max(numeric.CoerceAmount(entry["discount"], 0), 0),
		TaxRate:     max(numeric.CoerceAmount(entry["tax_rate"], 0), 0),
		HSNSAC:      numeric.CoerceString(entry["hsn_sac"]),
	}
}

func hintItemMap(h domain.HintItem) map[string]any {
	m := map[string]any{
		"description": h.Description,
		"unit":        h.Unit,
		"hsn_sac":     h.HSNSAC,
	}
	if h.Qty != nil {
		m["qty"] = *h.Qty
	}
	if h.UnitPrice != nil {
		m["unit_price"] = *h.UnitPrice
	}
	if h.Discount != nil {
		m["discount"] = *h.Discount
	}
	if h.TaxRate != nil {
		m["tax_rate"] = *h.TaxRate
	}
	return m
}

func computeTotals(data map[string]any, items []domain.Item) domain.Totals {
	shipping := max(numeric.CoerceAmount(loose.Map(data["totals"])["shipping"], 0), 0)
	return totals.ComputeTotals(items, shipping)
}

func ensureTerms(raw any, req *domain.GenerationRequest) domain.Terms {
	src := loose.Map(raw)
	h := hints(req).Terms
	if h == nil {
		h = &domain.HintTerms{}
	}

	title := numeric.CoerceString(src["title"])
	if title == "" {
		title = h.Title
	}
	if title == "" {
		title = defaultTermsTitle
	}

	bullets := numeric.CoerceStringList(src["bullets"])
	if len(bullets) == 0 {
		bullets = numeric.CoerceStringList(h.Bullets)
	}
	if len(bullets) == 0 {
		bullets = append([]string(nil), DefaultTerms...)
	}
	return domain.Terms{Title: title, Bullets: bullets}
}

// FormatAddress joins the non-empty address components with ", ".
func FormatAddress(a *domain.Address) string {
	if a == nil {
		return ""
	}
	return joinNonEmpty(a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country)
}

// FormatAddressMap is FormatAddress for a loosely-typed address object.
func FormatAddressMap(m map[string]any) string {
	parts := make([]string, 0, 6)
	for _, k := range []string{"line1", "line2", "city", "state", "postal_code", "country"} {
		parts = append(parts, numeric.CoerceString(m[k]))
	}
	return joinNonEmpty(parts...)
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// PartyAddress reads a party address that may be a string or an object.
func PartyAddress(v any) string {
	if m := loose.Map(v); m != nil {
		return FormatAddressMap(m)
	}
	return numeric.CoerceString(v)
}

// ensureParty prefers raw sub-fields and falls back to the profile.
func ensureParty(raw any, profile domain.PartyBase, alt *domain.Address) domain.Party {
	src := loose.Map(raw)
	pick := func(key, fallback string) string {
		if s := numeric.CoerceString(src[key]); s != "" {
			return s
		}
		return fallback
	}
	addr := PartyAddress(src["address"])
	if addr == "" {
		addr = FormatAddress(profile.BillingAddr)
	}
	if addr == "" {
		addr = FormatAddress(alt)
	}
	return domain.Party{
		Name:    pick("name", profile.Name),
		Address: addr,
		Email:   pick("email", profile.Email),
		Phone:   pick("phone", profile.Phone),
		GSTIN:   pick("gstin", profile.GSTIN),
		PAN:     pick("pan", profile.PAN),
	}
}

func sellerParty(raw any, req *domain.GenerationRequest) domain.Party {
	if req == nil {
		return ensureParty(raw, domain.PartyBase{Name: "Seller"}, nil)
	}
	return ensureParty(raw, req.From.PartyBase, nil)
}

func buyerParty(raw any, req *domain.GenerationRequest) domain.Party {
	if req == nil {
		return ensureParty(raw, domain.PartyBase{Name: "Buyer"}, nil)
	}
	return ensureParty(raw, req.To.PartyBase, req.To.ShippingAddr)
}

// ensureDocMeta merges hint numbers under the raw ones.
func ensureDocMeta(raw any, req *domain.GenerationRequest) domain.DocMeta {
	src := loose.Map(raw)
	h := hints(req).DocMeta
	if h == nil {
		h = &domain.HintDocMeta{}
	}
	pick := func(key, fallback string) string {
		if s := numeric.CoerceString(src[key]); s != "" {
			return s
		}
		return fallback
	}
	return domain.DocMeta{
		DocNo: pick("doc_no", h.DocNo),
		RefNo: pick("ref_no", h.RefNo),
		PONo:  pick("po_no", h.PONo),
	}
}

// ensurePayment merges the raw payment block with hints. The raw mode wins
// when it is a known mode; instructions from hints only fill a gap. Returns
// nil when nothing is known about payment.
func ensurePayment(raw any, req *domain.GenerationRequest) *domain.Payment {
	src := loose.Map(raw)
	h := hints(req).Payment
	if h == nil {
		h = &domain.HintPayment{}
	}

	p := domain.Payment{
		Mode:         paymentMode(src["mode"]),
		UPIDeeplink:  numeric.CoerceString(src["upi_deeplink"]),
		Instructions: numeric.CoerceString(src["instructions"]),
	}
	if p.Mode == "" {
		p.Mode = paymentMode(h.Mode)
	}
	if p.Instructions == "" {
		p.Instructions = h.Instructions
	}
	if p.UPIDeeplink == "" {
		p.UPIDeeplink = h.UPIDeeplink
	}
	if p == (domain.Payment{}) {
		return nil
	}
	return &p
}

func paymentMode(v any) string {
	mode := strings.ToUpper(numeric.CoerceString(v))
	if domain.ValidPaymentModes[domain.PaymentMode(mode)] {
		return mode
	}
	return ""
}

// attachDeeplink adds a UPI link to a UPI payment once the grand total is
// final. It needs the seller's UPI id; without one the payment is unchanged.
func attachDeeplink(p *domain.Payment, req *domain.GenerationRequest, t domain.Totals, txnRef string) {
	if p == nil || req == nil || p.Mode != string(domain.PaymentModeUPI) {
		return
	}
	if req.From.Bank == nil || req.From.Bank.UPIID == "" {
		return
	}
	amount := t.GrandTotal
	p.UPIDeeplink = upi.Deeplink(upi.Params{
		UPIID:     req.From.Bank.UPIID,
		PayeeName: req.From.Name,
		Amount:    &amount,
		Currency:  req.CurrencyOrDefault(),
		Note:      Truncate(req.Requirement, maxPaymentNote),
		TxnRef:    txnRef,
	})
}

func currencyOf(data map[string]any, req *domain.GenerationRequest) string {
	if c := strings.ToUpper(numeric.CoerceString(data["currency"])); len(c) == 3 {
		return c
	}
	if req == nil {
		return domain.DefaultCurrency
	}
	return req.CurrencyOrDefault()
}

func localeOf(data map[string]any, req *domain.GenerationRequest) string {
	if l := numeric.CoerceString(data["locale"]); len(l) >= 2 {
		return l
	}
	if req == nil {
		return domain.DefaultLocale
	}
	return req.LocaleOrDefault()
}

func notesOf(data map[string]any, req *domain.GenerationRequest) string {
	if s := numeric.CoerceString(data["notes"]); s != "" {
		return s
	}
	if req == nil {
		return ""
	}
	return req.From.Notes
}
