// Package schema validates generated documents against the embedded JSON
// Schema documents. Validation never returns an error to the caller: every
// failure, including a schema that does not compile, is reported as a list of
// path/message pairs.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"draftly/internal/domain"
)

// Schema names accepted by Validate.
const (
	Quotation    = "quotation_output"
	TaxInvoice   = "tax_invoice_output"
	ProjectBrief = "project_brief_output"
	Bundle       = "document_bundle"
	Draft        = "doc_draft"
)

const baseURL = "https://draftly.local/schemas/"

//go:embed schemas/*.json
var documents embed.FS

// draftWrapper validates a single draft through the bundle's shared definitions.
var draftWrapper = []byte(`{"$schema":"https://json-schema.org/draft/2020-12/schema","$ref":"` + baseURL + `document_bundle.json#/$defs/DocDraft"}`)

// Validator holds the compiled schemas. It is safe for concurrent use.
type Validator struct {
	compiled map[string]*jsonschema.Schema
	failures map[string]error
}

// New compiles every embedded schema. A schema that fails to compile is
// remembered and reported on each Validate call that names it.
func New() *Validator {
	v := &Validator{
		compiled: make(map[string]*jsonschema.Schema),
		failures: make(map[string]error),
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.AssertFormat = true

	for _, name := range []string{Quotation, TaxInvoice, ProjectBrief, Bundle} {
		data, err := documents.ReadFile("schemas/" + name + ".json")
		if err != nil {
			v.failures[name] = fmt.Errorf("reading schema %s: %w", name, err)
			continue
		}
		if err := c.AddResource(baseURL+name+".json", bytes.NewReader(data)); err != nil {
			v.failures[name] = fmt.Errorf("loading schema %s: %w", name, err)
		}
	}
	if err := c.AddResource(baseURL+Draft+".json", bytes.NewReader(draftWrapper)); err != nil {
		v.failures[Draft] = fmt.Errorf("loading schema %s: %w", Draft, err)
	}

	for _, name := range Names() {
		if _, failed := v.failures[name]; failed {
			continue
		}
		s, err := c.Compile(baseURL + name + ".json")
		if err != nil {
			v.failures[name] = fmt.Errorf("compiling schema %s: %w", name, err)
			continue
		}
		v.compiled[name] = s
	}
	return v
}

// Ready returns the first schema load failure, or nil when every schema
// compiled.
func (v *Validator) Ready() error {
	for _, name := range Names() {
		if err, failed := v.failures[name]; failed {
			return err
		}
	}
	return nil
}

// Names lists the schema names Validate understands.
func Names() []string {
	return []string{Quotation, TaxInvoice, ProjectBrief, Bundle, Draft}
}

// Document returns the raw JSON of an embedded schema, for use as a provider
// response format. The doc_draft wrapper is not a standalone document.
func Document(name string) ([]byte, error) {
	if name == Draft {
		return nil, fmt.Errorf("%w: %s", domain.ErrSchemaNotFound, name)
	}
	data, err := documents.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSchemaNotFound, name)
	}
	return data, nil
}

// Validate checks payload against the named schema. payload may be any value
// that marshals to JSON; typed structs and decoded maps validate identically.
func (v *Validator) Validate(payload any, name string) (bool, []domain.ValidationError) {
	if err, failed := v.failures[name]; failed {
		return false, rootError(err.Error())
	}
	s, ok := v.compiled[name]
	if !ok {
		return false, rootError(fmt.Sprintf("unknown schema %q", name))
	}

	doc, err := roundTrip(payload)
	if err != nil {
		return false, rootError(fmt.Sprintf("payload is not valid JSON: %v", err))
	}

	err = s.Validate(doc)
	if err == nil {
		return true, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return false, rootError(err.Error())
	}
	return false, flatten(verr)
}

// ValidateBundle validates a whole {drafts, project_brief} bundle.
func (v *Validator) ValidateBundle(payload any) (bool, []domain.ValidationError) {
	return v.Validate(payload, Bundle)
}

// ValidateDraft validates a single quotation or invoice draft.
func (v *Validator) ValidateDraft(payload any) (bool, []domain.ValidationError) {
	return v.Validate(payload, Draft)
}

// Report wraps a Validate result in the API envelope.
func (v *Validator) Report(payload any, name string) domain.ValidationReport {
	ok, errs := v.Validate(payload, name)
	if errs == nil {
		errs = []domain.ValidationError{}
	}
	return domain.ValidationReport{OK: ok, Errors: errs}
}

func roundTrip(payload any) (any, error) {
	var data []byte
	switch p := payload.(type) {
	case json.RawMessage:
		data = p
	case []byte:
		data = p
	default:
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// flatten collects the leaf causes of a validation error. Duplicate
// path/message pairs, common under anyOf, are reported once.
func flatten(root *jsonschema.ValidationError) []domain.ValidationError {
	var out []domain.ValidationError
	seen := make(map[domain.ValidationError]bool)

	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			ve := domain.ValidationError{Path: pathOf(e.InstanceLocation), Message: e.Message}
			if !seen[ve] {
				seen[ve] = true
				out = append(out, ve)
			}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(root)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func pathOf(location string) string {
	if location == "" {
		return "/"
	}
	return location
}

func rootError(msg string) []domain.ValidationError {
	return []domain.ValidationError{{Path: "/", Message: msg}}
}
