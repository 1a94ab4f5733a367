package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"draftly/internal/domain"
	"draftly/internal/middleware"
	"draftly/internal/port"
	"draftly/internal/service"
)

// GenerationMeta describes how a generated document was produced.
type GenerationMeta struct {
	Provider    string                  `json:"provider"`
	Model       string                  `json:"model"`
	WorkspaceID string                  `json:"workspace_id"`
	LatencyMS   int64                   `json:"latency_ms"`
	Usage       *port.Usage             `json:"usage,omitempty"`
	Validation  domain.ValidationReport `json:"validation"`
}

// DraftMeta describes how a drafted bundle was produced.
type DraftMeta struct {
	Provider    string                   `json:"provider"`
	Model       string                   `json:"model"`
	WorkspaceID string                   `json:"workspace_id"`
	Source      string                   `json:"source"`
	Repaired    bool                     `json:"repaired"`
	Errors      []domain.ValidationError `json:"errors,omitempty"`
}

// GenerationHandler handles LLM-backed document endpoints.
type GenerationHandler struct {
	errorHandler
	generation service.GenerationService
	drafting   service.DraftingService
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generation service.GenerationService, drafting service.DraftingService, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		errorHandler: newErrorHandler(logger),
		generation:   generation,
		drafting:     drafting,
	}
}

// Quotation handles POST /api/v1/generate/quotation
// @Summary Generate a quotation
// @Description Generate a quotation with the selected LLM provider and normalize it
// @Tags generation
// @Accept json
// @Produce json
// @Param X-Provider header string false "Provider override"
// @Param X-Model header string false "Model override"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Param request body domain.GenerationRequest true "Requirement and hints"
// @Success 200 {object} Response{meta=GenerationMeta} "Generated document"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 429 {object} ErrorResponseBody "Rate limited"
// @Failure 502 {object} ErrorResponseBody "Provider failed or returned invalid JSON"
// @Failure 503 {object} ErrorResponseBody "Provider not enabled"
// @Security APIKeyAuth
// @Router /api/v1/generate/quotation [post]
func (h *GenerationHandler) Quotation(c *gin.Context) {
	h.generate(c, domain.DocTypeQuotation)
}

// Invoice handles POST /api/v1/generate/invoice
// @Summary Generate a tax invoice
// @Description Generate a tax invoice with the selected LLM provider and normalize it
// @Tags generation
// @Accept json
// @Produce json
// @Param X-Provider header string false "Provider override"
// @Param X-Model header string false "Model override"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Param request body domain.GenerationRequest true "Requirement and hints"
// @Success 200 {object} Response{meta=GenerationMeta} "Generated document"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 429 {object} ErrorResponseBody "Rate limited"
// @Failure 502 {object} ErrorResponseBody "Provider failed or returned invalid JSON"
// @Failure 503 {object} ErrorResponseBody "Provider not enabled"
// @Security APIKeyAuth
// @Router /api/v1/generate/invoice [post]
func (h *GenerationHandler) Invoice(c *gin.Context) {
	h.generate(c, domain.DocTypeTaxInvoice)
}

// ProjectBrief handles POST /api/v1/generate/project-brief
// @Summary Generate a project brief
// @Description Generate a project brief with the selected LLM provider and normalize it
// @Tags generation
// @Accept json
// @Produce json
// @Param X-Provider header string false "Provider override"
// @Param X-Model header string false "Model override"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Param request body domain.GenerationRequest true "Requirement and hints"
// @Success 200 {object} Response{meta=GenerationMeta} "Generated document"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 429 {object} ErrorResponseBody "Rate limited"
// @Failure 502 {object} ErrorResponseBody "Provider failed or returned invalid JSON"
// @Failure 503 {object} ErrorResponseBody "Provider not enabled"
// @Security APIKeyAuth
// @Router /api/v1/generate/project-brief [post]
func (h *GenerationHandler) ProjectBrief(c *gin.Context) {
	h.generate(c, domain.DocTypeProjectBrief)
}

// generate reads provider overrides from headers; headers win over the body's
// workspace_id.
func (h *GenerationHandler) generate(c *gin.Context, docType domain.DocType) {
	var req domain.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == "" {
		workspaceID = req.WorkspaceID
	}

	result, err := h.generation.Generate(c.Request.Context(), service.GenerateInput{
		DocType:     docType,
		Request:     &req,
		Provider:    c.GetHeader(middleware.HeaderProvider),
		Model:       c.GetHeader(middleware.HeaderModel),
		WorkspaceID: workspaceID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	RespondWithMeta(c, result.Document, GenerationMeta{
		Provider:    result.Selection.Provider,
		Model:       result.Selection.Model,
		WorkspaceID: result.Selection.WorkspaceID,
		LatencyMS:   result.LatencyMS,
		Usage:       result.Usage,
		Validation:  result.Validation,
	})
}

// Draft handles POST /api/v1/draft. Body fields win over headers.
// @Summary Draft a document bundle
// @Description Draft one or more documents from a free-text prompt. Falls back to a blueprint bundle when no provider output is usable.
// @Tags generation
// @Accept json
// @Produce json
// @Param X-Provider header string false "Provider override"
// @Param X-Model header string false "Model override"
// @Param X-Workspace-Id header string false "Workspace ID"
// @Param request body domain.DraftRequest true "Prompt and drafting preferences"
// @Success 200 {object} Response{meta=DraftMeta} "Schema-valid bundle"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 429 {object} ErrorResponseBody "Rate limited"
// @Security APIKeyAuth
// @Router /api/v1/draft [post]
func (h *GenerationHandler) Draft(c *gin.Context) {
	var req domain.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "prompt is required and must be at least 5 characters")
		return
	}
	if req.WorkspaceID == "" {
		req.WorkspaceID = middleware.GetWorkspaceID(c)
	}
	if req.Provider == "" {
		req.Provider = c.GetHeader(middleware.HeaderProvider)
	}
	if req.Model == "" {
		req.Model = c.GetHeader(middleware.HeaderModel)
	}

	result, err := h.drafting.Draft(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	RespondWithMeta(c, result.Bundle, DraftMeta{
		Provider:    result.Selection.Provider,
		Model:       result.Selection.Model,
		WorkspaceID: result.Selection.WorkspaceID,
		Source:      result.Source,
		Repaired:    result.Repaired,
		Errors:      result.Errors,
	})
}
