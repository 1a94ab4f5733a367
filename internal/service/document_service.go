package service

import (
	"fmt"
	"time"

	"draftly/internal/domain"
	"draftly/internal/loose"
	"draftly/internal/metrics"
	"draftly/internal/port"
	"draftly/internal/repair"
	"draftly/internal/schema"
	"draftly/internal/totals"
	"draftly/internal/upi"
)

// UPILink is the response of a deep link request.
type UPILink struct {
	Deeplink  string `json:"deeplink"`
	QRPayload string `json:"qr_payload"`
}

// DocumentService exposes the offline document tools: validation, repair,
// totals recompute and UPI links. None of them call a provider.
type DocumentService interface {
	Validate(payload any, schemaName string) (domain.ValidationReport, error)
	Repair(bundle any) domain.RepairResult
	RecomputeTotals(draft map[string]any) (map[string]any, error)
	UPILink(params upi.Params) (*UPILink, error)
}

type documentService struct {
	validator port.SchemaValidator
	repairer  *repair.Engine
	metrics   *metrics.Metrics
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(validator port.SchemaValidator, repairer *repair.Engine, m *metrics.Metrics) DocumentService {
	if repairer == nil {
		repairer = repair.New(time.Now)
	}
	return &documentService{validator: validator, repairer: repairer, metrics: m}
}

func (s *documentService) Validate(payload any, schemaName string) (domain.ValidationReport, error) {
	if schemaName == "" {
		schemaName = schema.Bundle
	}
	known := false
	for _, n := range schema.Names() {
		if n == schemaName {
			known = true
			break
		}
	}
	if !known {
		return domain.ValidationReport{}, fmt.Errorf("%w: %s", domain.ErrSchemaNotFound, schemaName)
	}
	return s.validator.Report(payload, schemaName), nil
}

func (s *documentService) Repair(bundle any) domain.RepairResult {
	ok, errs := s.validator.ValidateBundle(bundle)
	if errs == nil {
		errs = []domain.ValidationError{}
	}
	repaired := s.repairer.RepairBundle(bundle)
	s.metrics.RecordRepair("api")
	after := s.validator.Report(repaired, schema.Bundle)
	return domain.RepairResult{
		Bundle:      repaired,
		WasValid:    ok,
		Errors:      errs,
		ValidAfter:  after.OK,
		ErrorsAfter: after.Errors,
	}
}

func (s *documentService) RecomputeTotals(draft map[string]any) (map[string]any, error) {
	if draft == nil {
		return nil, fmt.Errorf("%w: draft must be an object", domain.ErrInvalidRequest)
	}
	if len(loose.List(draft["items"])) == 0 {
		return nil, fmt.Errorf("%w: draft has no items", domain.ErrInvalidRequest)
	}
	return totals.RecomputeDraft(draft), nil
}

func (s *documentService) UPILink(params upi.Params) (*UPILink, error) {
	if params.UPIID == "" || params.PayeeName == "" {
		return nil, fmt.Errorf("%w: upi_id and payee_name are required", domain.ErrInvalidRequest)
	}
	if params.Amount != nil && *params.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", domain.ErrInvalidRequest)
	}
	return &UPILink{Deeplink: upi.Deeplink(params), QRPayload: upi.QRPayload(params)}, nil
}
