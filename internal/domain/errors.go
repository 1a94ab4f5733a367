package domain

import "errors"

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrRateLimited          = errors.New("rate limit exceeded")
	ErrProviderNotEnabled   = errors.New("provider is not enabled")
	ErrProviderFailed       = errors.New("provider call failed")
	ErrProviderInvalidJSON  = errors.New("provider returned invalid JSON")
	ErrUnsupportedDocType   = errors.New("unsupported document type")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrSchemaNotFound       = errors.New("schema not found")
	ErrUnsupportedExportFmt = errors.New("unsupported export format")
)

// ValidationError is one schema violation located by a JSON-pointer-like path.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationReport is the envelope returned by validation endpoints.
type ValidationReport struct {
	OK     bool              `json:"ok"`
	Errors []ValidationError `json:"errors"`
}

// RepairResult reports a repair run: the validation state before and after.
type RepairResult struct {
	Bundle      map[string]any    `json:"bundle"`
	WasValid    bool              `json:"was_valid"`
	Errors      []ValidationError `json:"errors"`
	ValidAfter  bool              `json:"valid_after"`
	ErrorsAfter []ValidationError `json:"errors_after"`
}
