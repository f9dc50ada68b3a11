package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskStatus represents the lifecycle status of a risk-register entry
type RiskStatus string

const (
	RiskStatusIdentified RiskStatus = "identified"
	RiskStatusAssessed   RiskStatus = "assessed"
	RiskStatusMitigating RiskStatus = "mitigating"
	RiskStatusClosed     RiskStatus = "closed"
	RiskStatusAccepted   RiskStatus = "accepted"
)

// Terminal reports whether automatic management must never touch this
// risk again: a closed or accepted risk is not reopened even if the
// originating finding reappears.
func (s RiskStatus) Terminal() bool {
	return s == RiskStatusClosed || s == RiskStatusAccepted
}

// RiskSourceScan marks risks auto-managed by the posture scan
const RiskSourceScan = "scan"

// Risk is an organization risk-register entry. At most one row exists per
// (org_id, source, source_ref); that uniqueness is enforced by the store
// and is the actual duplicate-prevention mechanism under concurrent scans.
type Risk struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	OrgID      uuid.UUID  `json:"org_id" db:"org_id"`
	Title      string     `json:"title" db:"title"`
	Category   string     `json:"category" db:"category"`
	Likelihood int        `json:"likelihood" db:"likelihood"` // 1-5
	Impact     int        `json:"impact" db:"impact"`         // 1-5
	Status     RiskStatus `json:"status" db:"status"`
	Source     string     `json:"source" db:"source"`
	SourceRef  string     `json:"source_ref" db:"source_ref"`
	ControlID  string     `json:"control_id,omitempty" db:"control_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// Score returns the derived risk score
func (r *Risk) Score() int {
	return r.Likelihood * r.Impact
}
