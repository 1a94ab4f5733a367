package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"draftly/internal/domain"
	"draftly/internal/middleware"
	"draftly/internal/provider"
)

// APIResponse is the standard envelope for API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondWithMeta sends a 200 success response with metadata.
func RespondWithMeta(c *gin.Context, data, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   msg,
			RequestID: c.GetString(middleware.ContextKeyRequestID),
		},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var rlErr *provider.RateLimitError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded, try again later"
	case errors.Is(err, domain.ErrProviderNotEnabled):
		return http.StatusServiceUnavailable, "PROVIDER_ERROR", "provider is not available; check API key configuration"
	case errors.Is(err, domain.ErrProviderInvalidJSON):
		return http.StatusBadGateway, "PROVIDER_ERROR", "provider returned invalid JSON"
	case errors.As(err, &rlErr):
		return http.StatusBadGateway, "PROVIDER_ERROR", "provider is rate limited; try again later"
	case errors.Is(err, domain.ErrProviderFailed):
		return http.StatusBadGateway, "PROVIDER_ERROR", "failed to generate document"
	case errors.Is(err, domain.ErrUnsupportedDocType):
		return http.StatusBadRequest, "UNSUPPORTED_DOC_TYPE", "unsupported document type"
	case errors.Is(err, domain.ErrSchemaNotFound):
		return http.StatusBadRequest, "SCHEMA_NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrUnsupportedExportFmt):
		return http.StatusBadRequest, "UNSUPPORTED_EXPORT_FORMAT", "unsupported export format; allowed: csv, xlsx"
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// errorHandler maps domain errors onto responses and logs server-side failures.
type errorHandler struct {
	logger *zap.Logger
}

func newErrorHandler(logger *zap.Logger) errorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return errorHandler{logger: logger}
}

// HandleError maps a domain error and sends the appropriate error response.
func (h errorHandler) HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		h.logger.Error("request failed",
			zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	_ = c.Error(err)
	RespondError(c, status, code, msg)
}
