// Package repair rebuilds malformed document bundles into schema-valid ones.
// It is the last-resort path after validation fails: every field is coerced
// or defaulted in a single deterministic pass, and totals are recomputed from
// the repaired items at the end. Inputs are never modified.
package repair

import (
	"encoding/json"
	"strings"
	"time"

	"draftly/internal/domain"
	"draftly/internal/loose"
	"draftly/internal/normalize"
	"draftly/internal/numeric"
	"draftly/internal/totals"
)

// DefaultTerms are used when a draft carries no usable terms.
var DefaultTerms = []string{
	"Prices exclusive of applicable taxes unless stated otherwise",
	"Payment due within agreed timeline",
}

// Engine repairs bundles and drafts. Clock supplies "today" for missing
// dates; nil means time.Now.
type Engine struct {
	Clock func() time.Time
}

// New returns an Engine reading the given clock.
func New(clock func() time.Time) *Engine {
	return &Engine{Clock: clock}
}

func (e *Engine) today() time.Time {
	now := time.Now()
	if e.Clock != nil {
		now = e.Clock()
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RepairBundle returns a {drafts, project_brief?} bundle built from bundle.
// Anything that is not an object is treated as an empty bundle.
func (e *Engine) RepairBundle(bundle any) map[string]any {
	src := loose.Map(bundle)

	rawDrafts := loose.List(src["drafts"])
	drafts := make([]any, 0, max(len(rawDrafts), 1))
	for _, d := range rawDrafts {
		drafts = append(drafts, e.RepairDraft(d))
	}
	if len(drafts) == 0 {
		drafts = append(drafts, e.RepairDraft(nil))
	}

	out := map[string]any{"drafts": drafts}
	if brief := loose.Map(src["project_brief"]); len(brief) > 0 {
		sellerName := numeric.CoerceString(loose.Map(loose.Map(drafts[0])["seller"])["name"])
		out["project_brief"] = e.repairBrief(brief, sellerName)
	}
	return out
}

// RepairDraft returns a schema-valid quotation or invoice draft built from
// draft. Unknown keys are dropped.
func (e *Engine) RepairDraft(draft any) map[string]any {
	src := loose.Map(draft)

	docType := domain.DocType(strings.ToUpper(numeric.CoerceString(src["doc_type"])))
	if !domain.DraftDocTypes[docType] {
		docType = domain.DocTypeQuotation
	}

	out := map[string]any{
		"doc_type": string(docType),
		"locale":   stringOr(src["locale"], 2, domain.DefaultLocale),
		"currency": currency(src["currency"]),
		"seller":   repairParty(src["seller"], "Seller"),
		"buyer":    repairParty(src["buyer"], "Buyer"),
		"dates":    e.repairDates(loose.Map(src["dates"]), docType),
		"items":    repairItems(src["items"]),
		"totals":   repairTotals(loose.Map(src["totals"])),
		"terms":    repairTerms(src["terms"]),
	}
	if meta := repairDocMeta(src["doc_meta"]); meta != nil {
		out["doc_meta"] = meta
	}
	if notes := numeric.CoerceString(src["notes"]); notes != "" {
		out["notes"] = notes
	}
	if p := repairPayment(src["payment"]); p != nil {
		out["payment"] = p
	}
	return totals.RecomputeDraft(out)
}

func stringOr(v any, minLen int, def string) string {
	if s := numeric.CoerceString(v); len(s) >= minLen {
		return s
	}
	return def
}

func currency(v any) string {
	if c := strings.ToUpper(numeric.CoerceString(v)); len(c) == 3 {
		return c
	}
	return domain.DefaultCurrency
}

var partyFields = []string{"email", "phone", "gstin", "pan"}

// repairParty accepts an object or a bare name string.
func repairParty(v any, defaultName string) map[string]any {
	src := loose.Map(v)
	name := numeric.CoerceString(src["name"])
	if src == nil {
		name = numeric.CoerceString(v)
	}
	if name == "" {
		name = defaultName
	}

	out := map[string]any{"name": name}
	if addr := normalize.PartyAddress(src["address"]); addr != "" {
		out["address"] = addr
	}
	for _, k := range partyFields {
		if s := numeric.CoerceString(src[k]); s != "" {
			out[k] = s
		}
	}
	if bank := pickStrings(loose.Map(src["bank"]), "account_name", "account_no", "ifsc", "upi_id"); bank != nil {
		out["bank"] = bank
	}
	return out
}

// pickStrings copies the non-empty string values of keys; nil when none.
func pickStrings(src map[string]any, keys ...string) map[string]any {
	var out map[string]any
	for _, k := range keys {
		if s := numeric.CoerceString(src[k]); s != "" {
			if out == nil {
				out = make(map[string]any, len(keys))
			}
			out[k] = s
		}
	}
	return out
}

func repairDocMeta(v any) map[string]any {
	return pickStrings(loose.Map(v), "doc_no", "ref_no", "po_no")
}

// repairDates keeps parseable dates, defaults the issue date to today and
// fills the type's second date (+7 days due, +15 days validity).
func (e *Engine) repairDates(src map[string]any, docType domain.DocType) map[string]any {
	issue, ok := normalize.ParseDate(src["issue_date"])
	if !ok {
		issue = e.today()
	}
	out := map[string]any{"issue_date": issue.Format(domain.DateLayout)}
	for _, k := range []string{"due_date", "valid_till"} {
		if t, ok := normalize.ParseDate(src[k]); ok {
			out[k] = t.Format(domain.DateLayout)
		}
	}
	if _, ok := out["due_date"]; !ok && docType == domain.DocTypeTaxInvoice {
		out["due_date"] = issue.AddDate(0, 0, 7).Format(domain.DateLayout)
	}
	if _, ok := out["valid_till"]; !ok && docType == domain.DocTypeQuotation {
		out["valid_till"] = issue.AddDate(0, 0, 15).Format(domain.DateLayout)
	}
	return out
}

func repairItems(v any) []any {
	var raw []map[string]any
	switch t := v.(type) {
	case []any:
		raw = loose.Maps(t)
	case map[string]any:
		raw = []map[string]any{t}
	}
	if len(raw) == 0 {
		raw = []map[string]any{{"description": "Consulting services", "qty": 1, "unit_price": 0}}
	}

	out := make([]any, 0, len(raw))
	for _, m := range raw {
		item := normalize.CoerceItem(m, "Line item")
		entry := map[string]any{
			"description": item.Description,
			"qty":         item.Qty,
			"unit_price":  item.UnitPrice,
			"unit":        item.Unit,
			"discount":    item.Discount,
			"tax_rate":    item.TaxRate,
		}
		if item.HSNSAC != "" {
			entry["hsn_sac"] = item.HSNSAC
		}
		out = append(out, entry)
	}
	return out
}

var totalsFields = []string{"subtotal", "discount_total", "tax_total", "shipping", "round_off", "grand_total"}

// repairTotals coerces the numeric fields. Everything except shipping is
// overwritten by the final recompute.
func repairTotals(src map[string]any) map[string]any {
	out := make(map[string]any, len(totalsFields)+1)
	for _, k := range totalsFields {
		out[k] = numeric.CoerceAmount(src[k], 0)
	}
	out["shipping"] = max(out["shipping"].(float64), 0)
	if c := numeric.CoerceString(src["currency"]); c != "" {
		out["currency"] = currency(c)
	}
	return out
}

// repairTerms accepts a terms object or a bare list of bullets.
func repairTerms(v any) map[string]any {
	src := loose.Map(v)
	bullets := numeric.CoerceStringList(src["bullets"])
	if src == nil {
		bullets = numeric.CoerceStringList(loose.List(v))
	}
	if len(bullets) == 0 {
		bullets = append([]string(nil), DefaultTerms...)
	}
	title := numeric.CoerceString(src["title"])
	if title == "" {
		title = "Terms & Conditions"
	}
	list := make([]any, len(bullets))
	for i, b := range bullets {
		list[i] = b
	}
	return map[string]any{"title": title, "bullets": list}
}

func repairPayment(v any) map[string]any {
	src := loose.Map(v)
	out := pickStrings(src, "upi_deeplink", "instructions")
	mode := domain.PaymentMode(strings.ToUpper(numeric.CoerceString(src["mode"])))
	if domain.ValidPaymentModes[mode] {
		if out == nil {
			out = map[string]any{}
		}
		out["mode"] = string(mode)
	}
	return out
}

// repairBrief runs the brief through the normalizer's shape rules and
// returns it as a plain JSON object.
func (e *Engine) repairBrief(src map[string]any, sellerName string) map[string]any {
	requirement := numeric.CoerceString(src["objective"])
	if requirement == "" {
		requirement = numeric.CoerceString(src["title"])
	}
	brief := normalize.New(e.Clock).BriefBody(src, requirement, sellerName)

	out := toMap(brief)
	for _, k := range []string{"seller", "buyer"} {
		if _, ok := src[k]; ok {
			out[k] = repairParty(src[k], strings.ToUpper(k[:1])+k[1:])
		}
	}
	return out
}

func toMap(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}
	return out
}
