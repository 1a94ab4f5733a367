package handler

import (
	"draftly/internal/domain"
	"draftly/internal/service"
)

// Swagger type definitions for API documentation.
// Request and response bodies used by swag annotations on the handlers.

// --- Request Types ---

// BundleRequest is the body of the validate and repair endpoints.
type BundleRequest struct {
	Bundle map[string]any `json:"bundle" binding:"required"`
	Schema string         `json:"schema" example:"document_bundle"`
}

// DraftBody is the body of the endpoints that take a single draft.
type DraftBody struct {
	Draft map[string]any `json:"draft" binding:"required"`
}

// --- Response Types ---

// RepairMeta reports validation before and after a repair.
type RepairMeta struct {
	WasValid    bool                     `json:"was_valid" example:"false"`
	Errors      []domain.ValidationError `json:"errors"`
	ValidAfter  bool                     `json:"valid_after" example:"true"`
	ErrorsAfter []domain.ValidationError `json:"errors_after"`
}

// ProviderList lists every known provider.
type ProviderList struct {
	Providers []service.ProviderInfo `json:"providers"`
}

// SelectResponse confirms a workspace's provider selection.
type SelectResponse struct {
	OK     bool               `json:"ok" example:"true"`
	Active *service.Selection `json:"active"`
}

// TotalsResponse carries a draft with recomputed totals.
type TotalsResponse struct {
	Draft map[string]any `json:"draft"`
}

// HealthResponse represents the liveness response.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version" example:"1.0.0"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
