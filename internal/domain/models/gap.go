package models

// Gap reason flags. Flags are independent and additive, not mutually
// exclusive.
const (
	GapReasonNotStarted = "not_started"
	GapReasonNoEvidence = "no_evidence"
	GapReasonNoPolicy   = "no_policy"
	GapReasonHasFinding = "has_finding"
)

// GapItem is a derived, non-persisted view of one unsatisfied control
type GapItem struct {
	ControlID      string   `json:"control_id"`
	Framework      string   `json:"framework"`
	Title          string   `json:"title"`
	Status         ControlProgress `json:"status"`
	Reasons        []string `json:"reasons"`
	Urgency        int      `json:"urgency"`
	ActiveFindings []string `json:"active_findings,omitempty"` // finding titles mapped to this control
}

// GapReport is the full read-side gap aggregation for an organization
type GapReport struct {
	Items             []GapItem `json:"items"`
	TotalControls     int       `json:"total_controls"`
	SatisfiedControls int       `json:"satisfied_controls"`
	CompliancePercent int       `json:"compliance_percent"`
}
