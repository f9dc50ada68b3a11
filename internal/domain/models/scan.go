package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanSummary is returned to the scan trigger caller: counts and the
// findings from this run, so callers never need to re-read storage for
// immediate results.
type ScanSummary struct {
	AccountID    uuid.UUID     `json:"account_id"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  time.Time     `json:"completed_at"`
	Duration     time.Duration `json:"duration"`
	AssetCount   int           `json:"asset_count"`
	FindingCount int           `json:"finding_count"`
	Findings     []*Finding    `json:"findings"`
	AreaStatuses []AreaStatus  `json:"area_statuses"`
}
