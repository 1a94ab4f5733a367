package domain

import "encoding/json"

// ScopeEntry is one scope or deliverable line.
type ScopeEntry struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ScopeList holds scope or deliverables in the shape the model produced.
// Entries is the canonical form; Strings() flattens it for consumers that only
// understand the legacy list-of-strings layout.
type ScopeList struct {
	Shape      Shape
	Entries    []ScopeEntry
	OutOfScope []string
}

// Strings returns the entry titles in order.
func (s ScopeList) Strings() []string {
	out := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		out = append(out, e.Title)
	}
	return out
}

// MarshalJSON emits the list in its detected shape.
func (s ScopeList) MarshalJSON() ([]byte, error) {
	switch s.Shape {
	case ShapeStructured:
		return json.Marshal(s.entries())
	case ShapeSections:
		out := s.OutOfScope
		if out == nil {
			out = []string{}
		}
		return json.Marshal(struct {
			InScope    []ScopeEntry `json:"in_scope"`
			OutOfScope []string     `json:"out_of_scope"`
		}{InScope: s.entries(), OutOfScope: out})
	default:
		return json.Marshal(s.Strings())
	}
}

func (s ScopeList) entries() []ScopeEntry {
	if s.Entries == nil {
		return []ScopeEntry{}
	}
	return s.Entries
}

// RiskEntry is one structured project risk.
type RiskEntry struct {
	Risk       string `json:"risk"`
	Impact     string `json:"impact,omitempty"`
	Mitigation string `json:"mitigation,omitempty"`
}

// RiskList holds project risks in the shape the model produced. It may be empty.
type RiskList struct {
	Shape   Shape
	Entries []RiskEntry
}

// Strings returns the risk descriptions in order.
func (r RiskList) Strings() []string {
	out := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.Risk)
	}
	return out
}

// MarshalJSON emits the list in its detected shape.
func (r RiskList) MarshalJSON() ([]byte, error) {
	if r.Shape == ShapeStructured {
		if r.Entries == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(r.Entries)
	}
	return json.Marshal(r.Strings())
}

// Milestone is one dated project phase. Dates are YYYY-MM-DD and End >= Start.
type Milestone struct {
	Name         string
	Start        string
	End          string
	Fee          float64
	Deliverables []string
}

// MilestonePlan holds milestones in the shape the model produced.
type MilestonePlan struct {
	Shape   Shape
	Entries []Milestone
}

type legacyMilestone struct {
	Name  string  `json:"name"`
	Start string  `json:"start"`
	End   string  `json:"end"`
	Fee   float64 `json:"fee"`
}

type structuredMilestone struct {
	Title        string   `json:"title"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Fee          float64  `json:"fee"`
	Deliverables []string `json:"deliverables,omitempty"`
}

// MarshalJSON emits milestones with the key names of the detected shape.
func (m MilestonePlan) MarshalJSON() ([]byte, error) {
	if m.Shape == ShapeStructured {
		out := make([]structuredMilestone, 0, len(m.Entries))
		for _, e := range m.Entries {
			out = append(out, structuredMilestone{Title: e.Name, StartDate: e.Start, EndDate: e.End, Fee: e.Fee, Deliverables: e.Deliverables})
		}
		return json.Marshal(out)
	}
	out := make([]legacyMilestone, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, legacyMilestone{Name: e.Name, Start: e.Start, End: e.End, Fee: e.Fee})
	}
	return json.Marshal(out)
}

// BillingPart is a milestone label with its share of the fee.
type BillingPart struct {
	Label   string
	Percent int
}

// BillingPlan holds billing parts; percentages always sum to exactly 100.
type BillingPlan struct {
	Shape Shape
	Parts []BillingPart
}

// Total returns the sum of the part percentages.
func (b BillingPlan) Total() int {
	sum := 0
	for _, p := range b.Parts {
		sum += p.Percent
	}
	return sum
}

type legacyBillingPart struct {
	When    string `json:"when"`
	Percent int    `json:"percent"`
}

type structuredBillingPart struct {
	Milestone  string `json:"milestone"`
	Percentage int    `json:"percentage"`
}

// MarshalJSON emits billing parts with the key names of the detected shape.
func (b BillingPlan) MarshalJSON() ([]byte, error) {
	if b.Shape == ShapeStructured {
		out := make([]structuredBillingPart, 0, len(b.Parts))
		for _, p := range b.Parts {
			out = append(out, structuredBillingPart{Milestone: p.Label, Percentage: p.Percent})
		}
		return json.Marshal(out)
	}
	out := make([]legacyBillingPart, 0, len(b.Parts))
	for _, p := range b.Parts {
		out = append(out, legacyBillingPart{When: p.Label, Percent: p.Percent})
	}
	return json.Marshal(out)
}

// ProjectBriefOutput is a normalized project brief. It carries no totals.
type ProjectBriefOutput struct {
	Title        string        `json:"title"`
	Objective    string        `json:"objective"`
	Scope        ScopeList     `json:"scope"`
	Deliverables ScopeList     `json:"deliverables"`
	Assumptions  []string      `json:"assumptions"`
	Milestones   MilestonePlan `json:"milestones"`
	TimelineDays int           `json:"timeline_days"`
	BillingPlan  BillingPlan   `json:"billing_plan"`
	Risks        RiskList      `json:"risks"`
	Seller       *Party        `json:"seller,omitempty"`
	Buyer        *Party        `json:"buyer,omitempty"`
}
