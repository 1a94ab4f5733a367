package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"draftly/internal/domain"
	"draftly/internal/export"
	"draftly/internal/schema"
	"draftly/internal/service"
	"draftly/internal/upi"
)

// DocumentHandler handles the offline document tools: validation, repair,
// totals, UPI links and export.
type DocumentHandler struct {
	errorHandler
	documents service.DocumentService
	clock     func() time.Time
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documents service.DocumentService, clock func() time.Time, logger *zap.Logger) *DocumentHandler {
	if clock == nil {
		clock = time.Now
	}
	return &DocumentHandler{errorHandler: newErrorHandler(logger), documents: documents, clock: clock}
}

// Validate handles POST /api/v1/validate. The bundle schema is used unless the
// body names another.
// @Summary Validate a document
// @Description Validate a bundle, or any payload against a named schema
// @Tags documents
// @Accept json
// @Produce json
// @Param request body BundleRequest true "Payload and optional schema name"
// @Success 200 {object} Response{data=domain.ValidationReport} "Validation report"
// @Failure 400 {object} ErrorResponseBody "Invalid request or unknown schema"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security APIKeyAuth
// @Router /api/v1/validate [post]
func (h *DocumentHandler) Validate(c *gin.Context) {
	var req BundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "bundle is required")
		return
	}
	report, err := h.documents.Validate(req.Bundle, req.Schema)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	RespondOK(c, report)
}

// ValidateDraft handles POST /api/v1/validate/draft
// @Summary Validate a single draft
// @Tags documents
// @Accept json
// @Produce json
// @Param request body DraftBody true "Draft to validate"
// @Success 200 {object} Response{data=domain.ValidationReport} "Validation report"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security APIKeyAuth
// @Router /api/v1/validate/draft [post]
func (h *DocumentHandler) ValidateDraft(c *gin.Context) {
	var req DraftBody
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "draft is required")
		return
	}
	report, err := h.documents.Validate(req.Draft, schema.Draft)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	RespondOK(c, report)
}

// Repair handles POST /api/v1/repair
// @Summary Repair a bundle
// @Description Coerce a malformed bundle into one that passes the bundle schema
// @Tags documents
// @Accept json
// @Produce json
// @Param request body BundleRequest true "Bundle to repair"
// @Success 200 {object} Response{meta=RepairMeta} "Repaired bundle"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security APIKeyAuth
// @Router /api/v1/repair [post]
func (h *DocumentHandler) Repair(c *gin.Context) {
	var req BundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "bundle is required")
		return
	}
	result := h.documents.Repair(req.Bundle)
	RespondWithMeta(c, result.Bundle, RepairMeta{
		WasValid:    result.WasValid,
		Errors:      result.Errors,
		ValidAfter:  result.ValidAfter,
		ErrorsAfter: result.ErrorsAfter,
	})
}

// ComputeTotals handles POST /api/v1/compute/totals
// @Summary Recompute draft totals
// @Description Rebuild line totals and the totals block from the draft's items
// @Tags documents
// @Accept json
// @Produce json
// @Param request body DraftBody true "Draft with items"
// @Success 200 {object} Response{data=TotalsResponse} "Draft with recomputed totals"
// @Failure 400 {object} ErrorResponseBody "Missing draft or items"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security APIKeyAuth
// @Router /api/v1/compute/totals [post]
func (h *DocumentHandler) ComputeTotals(c *gin.Context) {
	var req DraftBody
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "draft is required")
		return
	}
	draft, err := h.documents.RecomputeTotals(req.Draft)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	RespondOK(c, TotalsResponse{Draft: draft})
}

// UPIDeeplink handles POST /api/v1/upi/deeplink
// @Summary Build a UPI payment link
// @Tags payments
// @Accept json
// @Produce json
// @Param request body upi.Params true "Payee and payment details"
// @Success 200 {object} Response{data=service.UPILink} "Deep link and QR payload"
// @Failure 400 {object} ErrorResponseBody "Missing upi_id or payee_name"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security APIKeyAuth
// @Router /api/v1/upi/deeplink [post]
func (h *DocumentHandler) UPIDeeplink(c *gin.Context) {
	var params upi.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "upi_id and payee_name are required")
		return
	}
	link, err := h.documents.UPILink(params)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	RespondOK(c, link)
}

// Export handles POST /api/v1/export/:format for csv and xlsx.
// @Summary Export a draft
// @Description Render a draft's items and totals as CSV or XLSX
// @Tags documents
// @Accept json
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format path string true "Export format (csv or xlsx)"
// @Param request body DraftBody true "Draft to export"
// @Success 200 {file} file "Exported file"
// @Failure 400 {object} ErrorResponseBody "Unsupported format or invalid draft"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security APIKeyAuth
// @Router /api/v1/export/{format} [post]
func (h *DocumentHandler) Export(c *gin.Context) {
	format := c.Param("format")
	if format != export.FormatCSV && format != export.FormatXLSX {
		h.HandleError(c, fmt.Errorf("%w: %s", domain.ErrUnsupportedExportFmt, format))
		return
	}

	var req DraftBody
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "draft is required")
		return
	}
	if _, err := h.documents.RecomputeTotals(req.Draft); err != nil {
		h.HandleError(c, err)
		return
	}

	sheet := export.Build(req.Draft)
	var buf bytes.Buffer
	if err := export.Render(&buf, format, sheet); err != nil {
		h.HandleError(c, err)
		return
	}

	filename := export.BuildFilename(sheet, format, h.clock())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}
