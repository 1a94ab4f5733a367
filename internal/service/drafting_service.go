package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"draftly/internal/domain"
	"draftly/internal/extract"
	"draftly/internal/metrics"
	"draftly/internal/normalize"
	"draftly/internal/port"
	"draftly/internal/prompt"
	"draftly/internal/repair"
	"draftly/internal/totals"
)

// Draft sources reported in DraftResult.Source.
const (
	SourceProvider = "provider"
	SourceFallback = "fallback"
)

// DraftResult is a schema-valid bundle and how it was produced.
type DraftResult struct {
	Bundle    map[string]any           `json:"bundle"`
	Source    string                   `json:"source"`
	Repaired  bool                     `json:"repaired"`
	Selection Selection                `json:"selection"`
	Errors    []domain.ValidationError `json:"errors,omitempty"`
}

// DraftingService drafts a whole document bundle from a free-text prompt.
// It never fails on provider trouble: a blueprint bundle is used instead.
type DraftingService interface {
	Draft(ctx context.Context, req *domain.DraftRequest) (*DraftResult, error)
}

type draftingService struct {
	providers ProviderService
	validator port.SchemaValidator
	repairer  *repair.Engine
	clock     func() time.Time
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewDraftingService creates a DraftingService.
func NewDraftingService(
	providers ProviderService,
	validator port.SchemaValidator,
	repairer *repair.Engine,
	clock func() time.Time,
	m *metrics.Metrics,
	logger *zap.Logger,
) DraftingService {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &draftingService{
		providers: providers,
		validator: validator,
		repairer:  repairer,
		clock:     clock,
		metrics:   m,
		logger:    logger,
	}
}

func (s *draftingService) Draft(ctx context.Context, req *domain.DraftRequest) (*DraftResult, error) {
	sel := s.providers.Resolve(req.WorkspaceID, req.Provider, req.Model)
	log := s.logger.With(
		zap.String("provider", sel.Provider),
		zap.String("model", sel.Model),
		zap.String("workspace_id", sel.WorkspaceID),
	)

	result := &DraftResult{Source: SourceProvider, Selection: sel}
	bundle, ok := s.generate(ctx, req, sel, log)
	if ok {
		bundle = recomputeDrafts(bundle)
	} else {
		bundle = s.fallbackBundle(req)
		result.Source = SourceFallback
	}

	valid, errs := s.validator.ValidateBundle(bundle)
	if !valid {
		log.Info("bundle failed validation, repairing", zap.Int("errors", len(errs)))
		bundle = s.repairer.RepairBundle(bundle)
		result.Repaired = true
		result.Errors = errs
		s.metrics.RecordRepair("draft")
	}
	result.Bundle = bundle

	outcome := "valid"
	switch {
	case result.Source == SourceFallback:
		outcome = "fallback"
	case result.Repaired:
		outcome = "invalid"
	}
	for _, d := range draftTypes(bundle) {
		s.metrics.RecordDocument(d, outcome)
	}
	return result, nil
}

func (s *draftingService) generate(ctx context.Context, req *domain.DraftRequest, sel Selection, log *zap.Logger) (map[string]any, bool) {
	p, ok := s.providers.Get(sel.Provider)
	if !ok {
		log.Warn("provider not enabled, using fallback bundle")
		return nil, false
	}
	pr, err := prompt.ForBundle(req)
	if err != nil {
		log.Error("building bundle prompt", zap.Error(err))
		return nil, false
	}

	start := time.Now()
	raw, err := p.Generate(ctx, pr.Packet(sel.Model, p.Capabilities()))
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObserveProviderCall(sel.Provider, outcomeOf(err), elapsed)
		log.Warn("provider failed, using fallback bundle", zap.Error(err))
		return nil, false
	}
	s.metrics.ObserveProviderCall(raw.Provider, "ok", elapsed)
	if raw.Usage != nil {
		s.metrics.RecordTokenUsage(raw.Provider, raw.Usage.PromptTokens, raw.Usage.CompletionTokens)
	}

	data, err := extract.JSON(raw.Content)
	if err != nil {
		log.Warn("provider returned invalid JSON, using fallback bundle", zap.Error(err))
		return nil, false
	}
	return data, true
}

// fallbackBundle is the blueprint used when no provider output is available.
func (s *draftingService) fallbackBundle(req *domain.DraftRequest) map[string]any {
	docType := domain.DocTypeQuotation
	if len(req.Prefer) > 0 {
		if t := domain.DocType(strings.ToUpper(req.Prefer[0])); domain.DraftDocTypes[t] {
			docType = t
		}
	}
	currency := req.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	seller := req.Defaults["name"]
	if seller == "" {
		seller = "Seller"
	}
	description := normalize.Truncate(strings.TrimSpace(req.Prompt), 60)
	if description == "" {
		description = "Scope"
	}

	draft := map[string]any{
		"doc_type": string(docType),
		"locale":   domain.DefaultLocale,
		"currency": currency,
		"seller":   map[string]any{"name": seller},
		"buyer":    map[string]any{"name": "Client"},
		"doc_meta": map[string]any{"doc_no": "DRAFT-" + strings.ToUpper(uuid.NewString()[:8])},
		"dates":    map[string]any{"issue_date": s.clock().UTC().Format(domain.DateLayout)},
		"items": []any{map[string]any{
			"description": description,
			"qty":         1.0,
			"unit_price":  0.0,
			"unit":        domain.DefaultUnit,
			"discount":    0.0,
			"tax_rate":    0.0,
		}},
		"terms": map[string]any{
			"title":   "Terms & Conditions",
			"bullets": []any{"Payment due within 7 days"},
		},
	}
	return map[string]any{"drafts": []any{totals.RecomputeDraft(draft)}}
}

// recomputeDrafts rebuilds the totals of every draft that carries an item list.
// Anything else, project_brief included, is left for validation and repair.
func recomputeDrafts(bundle map[string]any) map[string]any {
	drafts, ok := bundle["drafts"].([]any)
	if !ok {
		return bundle
	}
	out := make(map[string]any, len(bundle))
	for k, v := range bundle {
		out[k] = v
	}
	recomputed := make([]any, len(drafts))
	for i, d := range drafts {
		recomputed[i] = d
		if m, ok := d.(map[string]any); ok {
			if _, ok := m["items"].([]any); ok {
				recomputed[i] = totals.RecomputeDraft(m)
			}
		}
	}
	out["drafts"] = recomputed
	return out
}

func draftTypes(bundle map[string]any) []string {
	drafts, _ := bundle["drafts"].([]any)
	out := make([]string, 0, len(drafts))
	for _, d := range drafts {
		if m, ok := d.(map[string]any); ok {
			if t, ok := m["doc_type"].(string); ok {
				out = append(out, t)
			}
		}
	}
	return out
}
