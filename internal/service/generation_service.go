package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"draftly/internal/domain"
	"draftly/internal/extract"
	"draftly/internal/metrics"
	"draftly/internal/normalize"
	"draftly/internal/port"
	"draftly/internal/prompt"
	"draftly/internal/provider"
)

// GenerateInput carries one single-document generation request plus the
// provider overrides read from request headers.
type GenerateInput struct {
	DocType     domain.DocType
	Request     *domain.GenerationRequest
	Provider    string
	Model       string
	WorkspaceID string
}

// GenerateResult is a normalized document and how it was produced.
type GenerateResult struct {
	Document   any                     `json:"document"`
	Selection  Selection               `json:"selection"`
	Validation domain.ValidationReport `json:"validation"`
	LatencyMS  int64                   `json:"latency_ms"`
	Usage      *port.Usage             `json:"usage,omitempty"`
}

// GenerationService drafts a single quotation, invoice or project brief.
type GenerationService interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error)
}

type generationService struct {
	providers  ProviderService
	validator  port.SchemaValidator
	normalizer *normalize.Normalizer
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewGenerationService creates a GenerationService.
func NewGenerationService(
	providers ProviderService,
	validator port.SchemaValidator,
	normalizer *normalize.Normalizer,
	m *metrics.Metrics,
	logger *zap.Logger,
) GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &generationService{
		providers:  providers,
		validator:  validator,
		normalizer: normalizer,
		metrics:    m,
		logger:     logger,
	}
}

func (s *generationService) Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	if input.Request == nil {
		return nil, fmt.Errorf("%w: missing request body", domain.ErrInvalidRequest)
	}
	workspaceID := input.WorkspaceID
	if workspaceID == "" {
		workspaceID = input.Request.WorkspaceID
	}
	sel := s.providers.Resolve(workspaceID, input.Provider, input.Model)
	log := s.logger.With(
		zap.String("doc_type", string(input.DocType)),
		zap.String("provider", sel.Provider),
		zap.String("model", sel.Model),
		zap.String("workspace_id", sel.WorkspaceID),
	)

	p, ok := s.providers.Get(sel.Provider)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotEnabled, sel.Provider)
	}

	pr, err := prompt.ForDocument(input.DocType, input.Request)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := p.Generate(ctx, pr.Packet(sel.Model, p.Capabilities()))
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObserveProviderCall(sel.Provider, outcomeOf(err), elapsed)
		log.Error("generation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderFailed, err)
	}
	s.metrics.ObserveProviderCall(raw.Provider, "ok", elapsed)
	if raw.Usage != nil {
		s.metrics.RecordTokenUsage(raw.Provider, raw.Usage.PromptTokens, raw.Usage.CompletionTokens)
	}

	data, err := extract.JSON(raw.Content)
	if err != nil {
		log.Warn("provider returned invalid JSON", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderInvalidJSON, err)
	}

	var doc any
	switch input.DocType {
	case domain.DocTypeQuotation:
		doc = s.normalizer.Quotation(data, input.Request)
	case domain.DocTypeTaxInvoice:
		doc = s.normalizer.Invoice(data, input.Request)
	case domain.DocTypeProjectBrief:
		doc = s.normalizer.ProjectBrief(data, input.Request)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedDocType, input.DocType)
	}

	report := s.validator.Report(doc, pr.SchemaName)
	result := "valid"
	if !report.OK {
		result = "invalid"
		log.Warn("normalized document failed schema validation", zap.Any("errors", report.Errors))
	}
	s.metrics.RecordDocument(string(input.DocType), result)

	if raw.Provider != "" && raw.Provider != sel.Provider {
		sel.Provider = raw.Provider
	}
	if raw.Model != "" {
		sel.Model = raw.Model
	}

	log.Info("document generated", zap.Duration("latency", elapsed), zap.Bool("valid", report.OK))
	return &GenerateResult{
		Document:   doc,
		Selection:  sel,
		Validation: report,
		LatencyMS:  elapsed.Milliseconds(),
		Usage:      raw.Usage,
	}, nil
}

func outcomeOf(err error) string {
	var rlErr *provider.RateLimitError
	if errors.As(err, &rlErr) {
		return "rate_limited"
	}
	return "error"
}
