// Package prompt builds the chat prompts sent to LLM providers and negotiates
// the response format each provider can honour.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"draftly/internal/domain"
	"draftly/internal/port"
	"draftly/internal/schema"
)

const systemPrompt = `You are an expert commercial-docs drafter for India-focused SMEs.
Output STRICT JSON matching the provided JSON Schema. No markdown, no comments, no extra keys.
Prefer INR context and GST. For quotations set valid_till = issue_date + 14..15 days; for invoices set due_date = issue_date + 7 days unless specified. Use conservative defaults when ambiguous.`

const bundleSystemPrompt = `You are an expert commercial-docs drafter for India-focused SMEs.
Output STRICT JSON matching the provided JSON Schema for DocumentBundle.
No markdown, no comments, no extra keys.
Prefer INR context and GST. For quotations set valid_till = issue_date + 14..15 days; for invoices set due_date = issue_date + 7 days unless specified.
Use conservative defaults when ambiguous.`

// DefaultTemperature is used for every drafting call.
const DefaultTemperature float32 = 0.2

var tasks = map[domain.DocType]string{
	domain.DocTypeQuotation:    "Generate a QUOTATION with line items, totals, terms, and optional UPI payment.",
	domain.DocTypeTaxInvoice:   "Generate a TAX_INVOICE suitable for GST in India with due date, GST breakup, totals, and payment block.",
	domain.DocTypeProjectBrief: "Generate a PROJECT BRIEF with title, objective, scope, deliverables, milestones, billing plan totaling 100%, risks, and timeline_days.",
}

var schemaNames = map[domain.DocType]string{
	domain.DocTypeQuotation:    schema.Quotation,
	domain.DocTypeTaxInvoice:   schema.TaxInvoice,
	domain.DocTypeProjectBrief: schema.ProjectBrief,
}

// Prompt is a rendered system/user pair plus the schema the answer must obey.
type Prompt struct {
	System     string
	User       string
	SchemaName string
	Title      string
	Schema     json.RawMessage
}

// ForDocument renders the prompt for a single-document generation request.
func ForDocument(docType domain.DocType, req *domain.GenerationRequest) (*Prompt, error) {
	task, ok := tasks[docType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedDocType, docType)
	}
	name := schemaNames[docType]
	doc, err := schema.Document(name)
	if err != nil {
		return nil, fmt.Errorf("loading %s schema: %w", name, err)
	}

	hints := any(map[string]any{})
	if req.Hints != nil {
		hints = req.Hints
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", task)
	b.WriteString("Inputs:\n")
	fmt.Fprintf(&b, "- Seller (FROM): %s\n", compact(req.From))
	fmt.Fprintf(&b, "- Buyer (TO): %s\n", compact(req.To))
	fmt.Fprintf(&b, "- Currency: %s\n", req.CurrencyOrDefault())
	fmt.Fprintf(&b, "- Locale: %s\n", req.LocaleOrDefault())
	fmt.Fprintf(&b, "- Hints: %s\n", compact(hints))
	fmt.Fprintf(&b, "- Requirement: %s\n", req.Requirement)
	fmt.Fprintf(&b, "Return a single JSON object obeying %s.schema.json.", name)

	return &Prompt{
		System:     systemPrompt,
		User:       b.String(),
		SchemaName: name,
		Title:      titleOf(doc, name),
		Schema:     doc,
	}, nil
}

// ForBundle renders the prompt for the whole-bundle drafting endpoint.
func ForBundle(req *domain.DraftRequest) (*Prompt, error) {
	doc, err := schema.Document(schema.Bundle)
	if err != nil {
		return nil, fmt.Errorf("loading bundle schema: %w", err)
	}

	prefer := req.Prefer
	if len(prefer) == 0 {
		prefer = []string{string(domain.DocTypeQuotation)}
	}
	currency := req.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Requirement:\n%s\n\n", req.Prompt)
	b.WriteString("Preferences:\n")
	fmt.Fprintf(&b, "- doc_types: %s\n", compact(prefer))
	fmt.Fprintf(&b, "- currency: %s\n", currency)
	fmt.Fprintf(&b, "- seller_defaults: %s\n", orNone(req.Defaults))
	fmt.Fprintf(&b, "- buyer_hint: %s\n\n", orNone(req.BuyerHint))
	b.WriteString("Return exactly one JSON object of type DocumentBundle.\n")
	b.WriteString("Schema name: DocumentBundle")

	return &Prompt{
		System:     bundleSystemPrompt,
		User:       b.String(),
		SchemaName: schema.Bundle,
		Title:      "DocumentBundle",
		Schema:     doc,
	}, nil
}

// Packet turns the prompt into a provider request. Providers that accept a
// JSON Schema get one; the rest are asked for a plain JSON object.
func (p *Prompt) Packet(model string, caps port.Capabilities) port.PromptPacket {
	packet := port.PromptPacket{
		SystemPrompt: p.System,
		UserPrompt:   p.User,
		Model:        model,
		Temperature:  DefaultTemperature,
	}
	switch {
	case caps.SupportsJSONSchema:
		packet.ResponseFormat = &port.ResponseFormat{
			Type:       port.ResponseFormatJSONSchema,
			SchemaName: p.Title,
			Schema:     p.Schema,
		}
	case caps.SupportsPlainJSON:
		packet.ResponseFormat = &port.ResponseFormat{Type: port.ResponseFormatJSONObject}
	}
	return packet
}

func titleOf(doc []byte, fallback string) string {
	var head struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(doc, &head); err != nil || head.Title == "" {
		return fallback
	}
	return head.Title
}

func compact(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func orNone(v any) string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return "None"
		}
		return t
	case map[string]string:
		if len(t) == 0 {
			return "None"
		}
	}
	return compact(v)
}
