package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"draftly/internal/middleware"
	"draftly/internal/service"
)

// ProviderHandler handles provider discovery and selection.
type ProviderHandler struct {
	errorHandler
	providers service.ProviderService
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(providers service.ProviderService, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{errorHandler: newErrorHandler(logger), providers: providers}
}

// List handles GET /api/v1/providers
// @Summary List providers
// @Description List known providers with their models and capabilities
// @Tags providers
// @Produce json
// @Success 200 {object} Response{data=ProviderList} "Providers"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security APIKeyAuth
// @Router /api/v1/providers [get]
func (h *ProviderHandler) List(c *gin.Context) {
	RespondOK(c, ProviderList{Providers: h.providers.Describe(c.Request.Context())})
}

// Select handles POST /api/v1/providers/select
// @Summary Select a provider
// @Description Remember a provider and model for a workspace
// @Tags providers
// @Accept json
// @Produce json
// @Param request body service.SelectInput true "Provider selection"
// @Success 200 {object} Response{data=SelectResponse} "Active selection"
// @Failure 400 {object} ErrorResponseBody "Unknown or disabled provider"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security APIKeyAuth
// @Router /api/v1/providers/select [post]
func (h *ProviderHandler) Select(c *gin.Context) {
	var input service.SelectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "provider is required")
		return
	}
	if input.WorkspaceID == "" {
		input.WorkspaceID = middleware.GetWorkspaceID(c)
	}

	sel, err := h.providers.Select(input)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_PROVIDER", err.Error())
		return
	}
	RespondOK(c, SelectResponse{OK: true, Active: sel})
}

// Active handles GET /api/v1/providers/active
// @Summary Get the active provider
// @Tags providers
// @Produce json
// @Param workspace_id query string false "Workspace ID, defaults to the X-Workspace-Id header"
// @Success 200 {object} Response{data=service.Selection} "Active selection"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security APIKeyAuth
// @Router /api/v1/providers/active [get]
func (h *ProviderHandler) Active(c *gin.Context) {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		workspaceID = middleware.GetWorkspaceID(c)
	}
	RespondOK(c, h.providers.Active(workspaceID))
}
