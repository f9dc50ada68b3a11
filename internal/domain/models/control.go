package models

import (
	"time"

	"github.com/google/uuid"
)

// Control is a framework-defined compliance requirement. Static reference
// data; the scan subsystem never mutates it.
type Control struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ControlID string    `json:"control_id" db:"control_id"` // e.g. "CC6.1"
	Framework string    `json:"framework" db:"framework"`
	Domain    string    `json:"domain,omitempty" db:"domain"`
	Category  string    `json:"category,omitempty" db:"category"`
	Title     string    `json:"title" db:"title"`
}

// ControlProgress represents the per-organization status of a control
type ControlProgress string

const (
	ControlNotStarted    ControlProgress = "not_started"
	ControlInProgress    ControlProgress = "in_progress"
	ControlVerified      ControlProgress = "verified"
	ControlNotApplicable ControlProgress = "not_applicable"
)

// ControlStatus is the per-organization, per-control progress record.
// The scan driver only ever moves it toward in_progress; verified and
// not_applicable are set outside this subsystem and are never regressed.
type ControlStatus struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	OrgID         uuid.UUID       `json:"org_id" db:"org_id"`
	ControlID     string          `json:"control_id" db:"control_id"`
	Status        ControlProgress `json:"status" db:"status"`
	EvidenceCount int             `json:"evidence_count" db:"evidence_count"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// Terminal reports whether the scan driver must leave this status alone
func (p ControlProgress) Terminal() bool {
	return p == ControlVerified || p == ControlNotApplicable
}
