package normalize

import (
	"fmt"
	"math"
	"time"

	"draftly/internal/domain"
	"draftly/internal/loose"
	"draftly/internal/numeric"
)

// Project briefs arrive in two generations of layout. The parsers below map
// either layout onto the canonical domain types and remember which one was
// seen so the output keeps it.

var scopeTitleKeys = []string{"title", "name", "item", "deliverable", "scope", "description"}

// ParseScope reads scope or deliverables. Accepted layouts:
//
//	["a", "b"]                                   legacy
//	[{"title": "a", "description": ".."}]        structured
//	{"in_scope": [..], "out_of_scope": [..]}     sections
//
// An empty result falls back to a single entry built from fallback.
func ParseScope(raw any, fallback string) domain.ScopeList {
	var s domain.ScopeList
	switch v := raw.(type) {
	case map[string]any:
		s.Shape = domain.ShapeSections
		s.Entries = scopeEntries(loose.List(loose.FirstOf(v, "in_scope", "included")))
		s.OutOfScope = scopeTitles(loose.List(loose.FirstOf(v, "out_of_scope", "excluded")))
	case []any:
		s.Shape = domain.ShapeLegacy
		if anyObject(v) {
			s.Shape = domain.ShapeStructured
		}
		s.Entries = scopeEntries(v)
	default:
		s.Shape = domain.ShapeLegacy
		if str := numeric.CoerceString(raw); str != "" {
			s.Entries = []domain.ScopeEntry{{Title: str}}
		}
	}
	if len(s.Entries) == 0 {
		title := Truncate(fallback, maxSynthesizedDescription)
		if title == "" {
			title = "Scope as per requirement"
		}
		s.Entries = []domain.ScopeEntry{{Title: title}}
	}
	return s
}

func scopeEntries(list []any) []domain.ScopeEntry {
	out := make([]domain.ScopeEntry, 0, len(list))
	for _, item := range list {
		if m := loose.Map(item); m != nil {
			title := ""
			titleKey := ""
			for _, k := range scopeTitleKeys {
				if title = numeric.CoerceString(m[k]); title != "" {
					titleKey = k
					break
				}
			}
			if title == "" {
				continue
			}
			desc := ""
			if titleKey != "description" {
				desc = numeric.CoerceString(m["description"])
			}
			out = append(out, domain.ScopeEntry{Title: title, Description: desc})
			continue
		}
		if s := numeric.CoerceString(item); s != "" {
			out = append(out, domain.ScopeEntry{Title: s})
		}
	}
	return out
}

func scopeTitles(list []any) []string {
	out := make([]string, 0, len(list))
	for _, e := range scopeEntries(list) {
		out = append(out, e.Title)
	}
	return out
}

// ParseRisks reads risks as plain strings (legacy) or {risk, impact,
// mitigation} objects (structured). Entries without text are dropped.
func ParseRisks(raw any) domain.RiskList {
	list := loose.List(raw)
	r := domain.RiskList{Shape: domain.ShapeLegacy, Entries: []domain.RiskEntry{}}
	if anyObject(list) {
		r.Shape = domain.ShapeStructured
	}
	for _, item := range list {
		if m := loose.Map(item); m != nil {
			text := numeric.CoerceString(loose.FirstOf(m, "risk", "title", "name", "description"))
			if text == "" {
				continue
			}
			r.Entries = append(r.Entries, domain.RiskEntry{
				Risk:       text,
				Impact:     numeric.CoerceString(m["impact"]),
				Mitigation: numeric.CoerceString(m["mitigation"]),
			})
			continue
		}
		if s := numeric.CoerceString(item); s != "" {
			r.Entries = append(r.Entries, domain.RiskEntry{Risk: s})
		}
	}
	return r
}

// ParseMilestones reads milestones keyed {name, start, end, fee} (legacy) or
// {title, start_date, end_date, fee, deliverables} (structured). Unparseable
// starts become today, unparseable ends start+7 days, and an end before its
// start is moved to the start. No milestones yields the default
// Discovery/Execution pair.
func ParseMilestones(raw any, today time.Time) domain.MilestonePlan {
	list := loose.List(raw)
	if len(list) == 0 {
		return domain.MilestonePlan{
			Shape: domain.ShapeLegacy,
			Entries: []domain.Milestone{
				{Name: "Discovery", Start: formatDate(today), End: formatDate(today.AddDate(0, 0, 7))},
				{Name: "Execution", Start: formatDate(today.AddDate(0, 0, 8)), End: formatDate(today.AddDate(0, 0, 30))},
			},
		}
	}

	plan := domain.MilestonePlan{Shape: domain.ShapeLegacy}
	for _, item := range list {
		if m := loose.Map(item); m != nil && loose.HasAny(m, "title", "start_date", "end_date", "deliverables") {
			plan.Shape = domain.ShapeStructured
			break
		}
	}

	for _, item := range list {
		m := loose.Map(item)
		start, ok := ParseDate(loose.FirstOf(m, "start", "start_date"))
		if !ok {
			start = today
		}
		end, ok := ParseDate(loose.FirstOf(m, "end", "end_date"))
		if !ok {
			end = start.AddDate(0, 0, 7)
		}
		if end.Before(start) {
			end = start
		}
		name := numeric.CoerceString(loose.FirstOf(m, "name", "title"))
		if m == nil {
			name = numeric.CoerceString(item)
		}
		if name == "" {
			name = "Milestone"
		}
		plan.Entries = append(plan.Entries, domain.Milestone{
			Name:         name,
			Start:        formatDate(start),
			End:          formatDate(end),
			Fee:          max(numeric.CoerceAmount(m["fee"], 0), 0),
			Deliverables: numeric.CoerceStringList(m["deliverables"]),
		})
	}
	return plan
}

// DefaultBillingPlan is used when the model produced no billing parts.
var DefaultBillingPlan = []domain.BillingPart{
	{Label: "Project kickoff", Percent: 40},
	{Label: "Midway", Percent: 40},
	{Label: "Completion", Percent: 20},
}

// ParseBillingPlan reads billing parts keyed {when, percent} (legacy) or
// {milestone, percentage} (structured) and rescales them to sum to 100.
func ParseBillingPlan(raw any) domain.BillingPlan {
	list := loose.List(raw)
	if len(list) == 0 {
		return domain.BillingPlan{
			Shape: domain.ShapeLegacy,
			Parts: append([]domain.BillingPart(nil), DefaultBillingPlan...),
		}
	}

	plan := domain.BillingPlan{Shape: domain.ShapeLegacy}
	for _, item := range list {
		if m := loose.Map(item); m != nil && loose.HasAny(m, "milestone", "percentage") {
			plan.Shape = domain.ShapeStructured
			break
		}
	}
	for i, item := range list {
		m := loose.Map(item)
		label := numeric.CoerceString(loose.FirstOf(m, "when", "milestone", "label", "name"))
		if label == "" {
			label = fmt.Sprintf("Milestone %d", i+1)
		}
		plan.Parts = append(plan.Parts, domain.BillingPart{
			Label:   label,
			Percent: numeric.CoerceInt(loose.FirstOf(m, "percent", "percentage"), 0),
		})
	}
	plan.Parts = RescaleBilling(plan.Parts)
	return plan
}

// RescaleBilling returns parts whose percentages sum to exactly 100.
// Negative inputs count as 0. An all-zero plan is split evenly. Otherwise
// each part is scaled proportionally and rounded, with the last part taking
// the remainder; if rounding overshoots, the excess is taken back from the
// preceding parts, latest first.
func RescaleBilling(parts []domain.BillingPart) []domain.BillingPart {
	if len(parts) == 0 {
		return parts
	}
	out := make([]domain.BillingPart, len(parts))
	total := 0
	for i, p := range parts {
		out[i] = domain.BillingPart{Label: p.Label, Percent: max(p.Percent, 0)}
		total += out[i].Percent
	}

	if total == 0 {
		equal := int(math.RoundToEven(100 / float64(len(out))))
		for i := range out {
			out[i].Percent = equal
		}
		total = equal * len(out)
	}
	if total == 100 {
		return out
	}

	remainder := 100
	last := len(out) - 1
	for i := 0; i < last; i++ {
		pct := int(math.RoundToEven(float64(out[i].Percent) * 100 / float64(total)))
		out[i].Percent = pct
		remainder -= pct
	}
	for i := last - 1; remainder < 0 && i >= 0; i-- {
		take := min(out[i].Percent, -remainder)
		out[i].Percent -= take
		remainder += take
	}
	out[last].Percent = remainder
	return out
}

func anyObject(list []any) bool {
	for _, item := range list {
		if loose.Map(item) != nil {
			return true
		}
	}
	return false
}
