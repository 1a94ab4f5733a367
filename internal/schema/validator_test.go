package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftly/internal/domain"
	"draftly/internal/schema"
)

func validDraft() map[string]any {
	return map[string]any{
		"doc_type": "QUOTATION",
		"locale":   "en-IN",
		"currency": "INR",
		"seller":   map[string]any{"name": "Acme Solutions"},
		"buyer":    map[string]any{"name": "Globex"},
		"dates":    map[string]any{"issue_date": "2025-01-10", "valid_till": "2025-01-25"},
		"items": []any{
			map[string]any{"description": "Design", "qty": 1, "unit_price": 50000, "unit": "pcs", "discount": 0, "tax_rate": 18},
		},
		"totals": map[string]any{
			"subtotal": 50000, "discount_total": 0, "tax_total": 9000,
			"shipping": 0, "round_off": 0, "grand_total": 59000,
		},
		"terms": map[string]any{"title": "Terms & Conditions", "bullets": []any{"Payment due within 7 days"}},
	}
}

func TestValidator_ValidBundle(t *testing.T) {
	v := schema.New()

	ok, errs := v.ValidateBundle(map[string]any{"drafts": []any{validDraft()}})

	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestValidator_InvalidDocType(t *testing.T) {
	v := schema.New()
	draft := validDraft()
	draft["doc_type"] = "PROJECT_BRIEF"

	ok, errs := v.ValidateBundle(map[string]any{"drafts": []any{draft}})

	assert.False(t, ok)
	require.NotEmpty(t, errs)
	assert.Equal(t, "/drafts/0/doc_type", errs[0].Path)
}

func TestValidator_RootErrors(t *testing.T) {
	v := schema.New()

	ok, errs := v.ValidateBundle(map[string]any{})

	assert.False(t, ok)
	require.NotEmpty(t, errs)
	assert.Equal(t, "/", errs[0].Path)
}

func TestValidator_DraftWrapper(t *testing.T) {
	v := schema.New()

	ok, errs := v.ValidateDraft(validDraft())
	assert.True(t, ok, "%v", errs)

	bad := validDraft()
	bad["terms"] = map[string]any{"bullets": []any{}}
	ok, errs = v.ValidateDraft(bad)
	assert.False(t, ok)
	require.NotEmpty(t, errs)
	assert.Equal(t, "/terms/bullets", errs[0].Path)
}

func TestValidator_DateFormatAsserted(t *testing.T) {
	v := schema.New()
	draft := validDraft()
	draft["dates"] = map[string]any{"issue_date": "10/01/2025"}

	ok, errs := v.ValidateDraft(draft)

	assert.False(t, ok)
	require.NotEmpty(t, errs)
	assert.Equal(t, "/dates/issue_date", errs[0].Path)
}

func TestValidator_UnknownSchema(t *testing.T) {
	v := schema.New()

	ok, errs := v.Validate(map[string]any{}, "nope")

	assert.False(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "/", errs[0].Path)
	assert.Contains(t, errs[0].Message, "unknown schema")
}

func TestValidator_TypedQuotation(t *testing.T) {
	v := schema.New()
	q := domain.QuotationOutput{
		DocType:  "QUOTATION",
		Currency: "INR",
		Locale:   "en-IN",
		Seller:   domain.Party{Name: "Acme"},
		Buyer:    domain.Party{Name: "Globex"},
		Dates:    domain.QuotationDates{IssueDate: "2025-01-10", ValidTill: "2025-01-25"},
		Items:    []domain.Item{{Description: "Design", Qty: 1, UnitPrice: 100, Unit: "pcs"}},
		Totals:   domain.Totals{Subtotal: 100, GrandTotal: 100},
		Terms:    domain.Terms{Title: "Terms", Bullets: []string{"Net 7"}},
	}

	ok, errs := v.Validate(q, schema.Quotation)
	assert.True(t, ok, "%v", errs)

	ok, _ = v.Validate(q, schema.TaxInvoice)
	assert.False(t, ok, "quotation must not pass the invoice schema")
}

func TestValidator_InvoiceRequiresDocNo(t *testing.T) {
	v := schema.New()
	inv := domain.TaxInvoiceOutput{
		DocType:  "TAX_INVOICE",
		Currency: "INR",
		Locale:   "en-IN",
		Seller:   domain.Party{Name: "Acme"},
		Buyer:    domain.Party{Name: "Globex"},
		Dates:    domain.InvoiceDates{IssueDate: "2025-01-10", DueDate: "2025-01-17"},
		Items:    []domain.Item{{Description: "Design", Qty: 1, UnitPrice: 100, Unit: "pcs"}},
		Totals:   domain.Totals{Subtotal: 100, GrandTotal: 100},
		Terms:    domain.Terms{Title: "Terms", Bullets: []string{"Net 7"}},
	}

	ok, errs := v.Validate(inv, schema.TaxInvoice)
	assert.False(t, ok)
	require.NotEmpty(t, errs)
	assert.Equal(t, "/doc_meta", errs[0].Path)

	inv.DocMeta.DocNo = "INV-20250110"
	ok, errs = v.Validate(inv, schema.TaxInvoice)
	assert.True(t, ok, "%v", errs)
}

func TestValidator_ProjectBriefShapes(t *testing.T) {
	v := schema.New()
	legacy := map[string]any{
		"title":         "Acme - Project Brief",
		"objective":     "Build a site",
		"scope":         []any{"Design", "Build"},
		"deliverables":  []any{"Website"},
		"milestones":    []any{map[string]any{"name": "Discovery", "start": "2025-01-10", "end": "2025-01-17", "fee": 0}},
		"timeline_days": 30,
		"billing_plan":  []any{map[string]any{"when": "Kickoff", "percent": 100}},
	}
	ok, errs := v.Validate(legacy, schema.ProjectBrief)
	assert.True(t, ok, "%v", errs)

	structured := map[string]any{
		"title":         "Acme - Project Brief",
		"objective":     "Build a site",
		"scope":         map[string]any{"in_scope": []any{map[string]any{"title": "Design"}}, "out_of_scope": []any{"Hosting"}},
		"deliverables":  []any{map[string]any{"title": "Website", "description": "Marketing site"}},
		"milestones":    []any{map[string]any{"title": "Discovery", "start_date": "2025-01-10", "end_date": "2025-01-17"}},
		"timeline_days": 30,
		"billing_plan":  []any{map[string]any{"milestone": "Kickoff", "percentage": 100}},
		"risks":         []any{map[string]any{"risk": "Scope creep", "mitigation": "Change requests"}},
	}
	ok, errs = v.Validate(structured, schema.ProjectBrief)
	assert.True(t, ok, "%v", errs)

	structured["billing_plan"] = []any{map[string]any{"milestone": "Kickoff", "percentage": 140}}
	ok, _ = v.Validate(structured, schema.ProjectBrief)
	assert.False(t, ok)
}

func TestValidator_Report(t *testing.T) {
	v := schema.New()

	report := v.Report(map[string]any{"drafts": []any{validDraft()}}, schema.Bundle)
	assert.True(t, report.OK)
	assert.NotNil(t, report.Errors)
	assert.Empty(t, report.Errors)
}

func TestDocument(t *testing.T) {
	data, err := schema.Document(schema.Quotation)
	require.NoError(t, err)
	assert.Contains(t, string(data), "$schema")

	_, err = schema.Document(schema.Draft)
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)

	_, err = schema.Document("nope")
	assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
}

func TestReady(t *testing.T) {
	assert.NoError(t, schema.New().Ready())
}
