package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Severity represents the finding severity level
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// FindingStatus represents the lifecycle status of a finding
type FindingStatus string

const (
	FindingStatusActive   FindingStatus = "ACTIVE"
	FindingStatusResolved FindingStatus = "RESOLVED"
)

// ResourceRef identifies the cloud resource a finding is attached to
type ResourceRef struct {
	ARN  string `json:"arn,omitempty"`
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Finding represents a single normalized misconfiguration detection.
// The identity key is (account_id, rule_id, resource.id): re-scans update
// the stored row in place and never create a second one.
type Finding struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	AccountID uuid.UUID      `json:"account_id" db:"account_id"`
	RuleID    string         `json:"rule_id" db:"rule_id"`
	Title     string         `json:"title" db:"title"`
	Severity  Severity       `json:"severity" db:"severity"`
	Status    FindingStatus  `json:"status" db:"status"`
	Resource  ResourceRef    `json:"resource"`
	Details   map[string]any `json:"details,omitempty" db:"details"`

	// Secondary framework cross-reference (e.g. an ISO control id),
	// attached as metadata and not used for control mapping.
	CrossRef string `json:"cross_ref,omitempty" db:"cross_ref"`

	FirstSeen time.Time `json:"first_seen" db:"first_seen"`
	LastSeen  time.Time `json:"last_seen" db:"last_seen"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the finding is in the ACTIVE lifecycle state
func (f *Finding) IsActive() bool {
	return f.Status == FindingStatusActive
}

// SeverityWeight returns a numeric weight for ordering by severity
func (f *Finding) SeverityWeight() int {
	switch f.Severity {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of Severity
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity normalizes an upstream severity string to the canonical
// vocabulary. Unknown values map to medium so feed-supplied severities
// never escape the known range.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium", "moderate":
		return SeverityMedium
	case "low", "informational", "info":
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// String returns the string representation of FindingStatus
func (s FindingStatus) String() string {
	return string(s)
}

// ParseFindingStatus normalizes an upstream status string to the canonical
// uppercase vocabulary. Anything that is not recognizably resolved is
// treated as active.
func ParseFindingStatus(s string) FindingStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RESOLVED", "CLOSED", "ARCHIVED":
		return FindingStatusResolved
	default:
		return FindingStatusActive
	}
}
