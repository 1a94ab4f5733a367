package port

import "draftly/internal/domain"

// SchemaValidator checks payloads against named JSON Schema documents.
type SchemaValidator interface {
	Validate(payload any, name string) (bool, []domain.ValidationError)
	ValidateBundle(payload any) (bool, []domain.ValidationError)
	ValidateDraft(payload any) (bool, []domain.ValidationError)
	Report(payload any, name string) domain.ValidationReport
}
