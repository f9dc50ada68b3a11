package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus represents the health of a connected cloud account
type AccountStatus string

const (
	AccountStatusConnected AccountStatus = "connected"
	AccountStatusScanning  AccountStatus = "scanning"
	AccountStatusError     AccountStatus = "error"
)

// Account represents one customer's cloud environment. The scan lifecycle
// is the only writer of LastScanAt and Status.
type Account struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	OrgID          uuid.UUID     `json:"org_id" db:"org_id"`
	Name           string        `json:"name" db:"name"`
	Provider       string        `json:"provider" db:"provider"`
	ExternalID     string        `json:"external_id" db:"external_id"` // cloud-native account number
	CredentialRef  string        `json:"-" db:"credential_ref"`        // vault lookup key
	Regions        []string      `json:"regions" db:"regions"`
	Status         AccountStatus `json:"status" db:"status"`
	LastScanAt     *time.Time    `json:"last_scan_at,omitempty" db:"last_scan_at"`
	LastScanError  string        `json:"last_scan_error,omitempty" db:"last_scan_error"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// Asset represents a discovered cloud resource. Upserted on
// (org_id, external_id); never deleted by the scanner, staleness is
// tracked via LastSeen.
type Asset struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	OrgID      uuid.UUID      `json:"org_id" db:"org_id"`
	AccountID  uuid.UUID      `json:"account_id" db:"account_id"`
	Name       string         `json:"name" db:"name"`
	Type       string         `json:"type" db:"type"`
	Provider   string         `json:"provider" db:"provider"`
	ExternalID string         `json:"external_id" db:"external_id"`
	Region     string         `json:"region,omitempty" db:"region"`
	Metadata   map[string]any `json:"metadata,omitempty" db:"metadata"`
	FirstSeen  time.Time      `json:"first_seen" db:"first_seen"`
	LastSeen   time.Time      `json:"last_seen" db:"last_seen"`
}
