package normalize

import (
	"draftly/internal/domain"
	"draftly/internal/loose"
	"draftly/internal/numeric"
)

const defaultTimelineDays = 30

// ProjectBrief builds a complete project brief from raw model output. raw may
// be nil. Parties fall back to the request profiles.
func (n *Normalizer) ProjectBrief(raw map[string]any, req *domain.GenerationRequest) *domain.ProjectBriefOutput {
	data := loose.CloneMap(raw)
	requirement, sellerName := "", "Seller"
	if req != nil {
		requirement, sellerName = req.Requirement, req.From.Name
	}

	out := n.BriefBody(data, requirement, sellerName)
	seller := sellerParty(data["seller"], req)
	buyer := buyerParty(data["buyer"], req)
	out.Seller, out.Buyer = &seller, &buyer
	return out
}

// BriefBody normalizes every brief field except the parties. requirement
// seeds the objective and the scope fallback; sellerName seeds the title.
func (n *Normalizer) BriefBody(data map[string]any, requirement, sellerName string) *domain.ProjectBriefOutput {
	title := numeric.CoerceString(data["title"])
	if title == "" {
		title = sellerName + " - Project Brief"
	}
	objective := numeric.CoerceString(data["objective"])
	if objective == "" {
		objective = requirement
	}
	if objective == "" {
		objective = title
	}

	assumptions := numeric.CoerceStringList(data["assumptions"])
	if assumptions == nil {
		assumptions = []string{}
	}

	return &domain.ProjectBriefOutput{
		Title:        title,
		Objective:    objective,
		Scope:        ParseScope(data["scope"], requirement),
		Deliverables: ParseScope(data["deliverables"], requirement),
		Assumptions:  assumptions,
		Milestones:   ParseMilestones(data["milestones"], n.today()),
		TimelineDays: max(numeric.CoerceInt(data["timeline_days"], defaultTimelineDays), 1),
		BillingPlan:  ParseBillingPlan(data["billing_plan"]),
		Risks:        ParseRisks(data["risks"]),
	}
}
