package models

import "time"

// ServiceArea identifies one independently collected slice of cloud signal
type ServiceArea string

const (
	AreaIdentity     ServiceArea = "identity"
	AreaCompute      ServiceArea = "compute"
	AreaNetwork      ServiceArea = "network"
	AreaStorage      ServiceArea = "storage"
	AreaAuditTrail   ServiceArea = "audit_trail"
	AreaSecurityFeed ServiceArea = "security_feed"
)

// AreaStatus records the outcome of one service area's collection. A failed
// area contributes empty signal, not a failed scan.
type AreaStatus struct {
	Area     ServiceArea   `json:"area"`
	OK       bool          `json:"ok"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// CloudSignal is the aggregate of all raw per-service collection results
// for one scan. Zero-valued slices mean "no signal for that area".
type CloudSignal struct {
	Identity     IdentitySignal
	Compute      ComputeSignal
	Network      NetworkSignal
	Storage      StorageSignal
	AuditTrail   AuditTrailSignal
	SecurityFeed SecurityFeedSignal
}

// IdentitySignal holds identity/access signal.
// Root.DataAvailable is false when the account summary call failed; rules
// must check it before evaluating so collection failures do not become
// false positives.
type IdentitySignal struct {
	Root           RootAccountInfo
	Users          []IAMUser
	PasswordPolicy *PasswordPolicy // nil when the account has none
}

type RootAccountInfo struct {
	MFAEnabled    bool `json:"mfa_enabled"`
	HasAccessKeys bool `json:"has_access_keys"`
	DataAvailable bool `json:"data_available"`
}

type IAMUser struct {
	UserName         string      `json:"user_name"`
	ARN              string      `json:"arn"`
	ConsoleAccess    bool        `json:"console_access"` // has a login profile
	MFAEnabled       bool        `json:"mfa_enabled"`
	AttachedPolicies []string    `json:"attached_policies"`
	AccessKeys       []AccessKey `json:"access_keys"`
}

type AccessKey struct {
	ID        string    `json:"id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type PasswordPolicy struct {
	MinimumLength  int  `json:"minimum_length"`
	RequireSymbols bool `json:"require_symbols"`
	RequireNumbers bool `json:"require_numbers"`
}

// ComputeSignal holds compute instance signal
type ComputeSignal struct {
	Instances []Instance
}

type Instance struct {
	ID       string `json:"id"`
	ARN      string `json:"arn"`
	Name     string `json:"name"`
	Region   string `json:"region"`
	State    string `json:"state"`
	PublicIP string `json:"public_ip,omitempty"`
}

// NetworkSignal holds security rule and default-network signal
type NetworkSignal struct {
	SecurityRules   []SecurityRule
	DefaultNetworks []DefaultNetwork
}

// SecurityRule is a single inbound rule in a security group, carrying its
// region so findings are attributed correctly.
type SecurityRule struct {
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	Region    string `json:"region"`
	Protocol  string `json:"protocol"`
	FromPort  int    `json:"from_port"`
	ToPort    int    `json:"to_port"`
	CIDR      string `json:"cidr"`
}

type DefaultNetwork struct {
	ID     string `json:"id"`
	Region string `json:"region"`
}

// StorageSignal holds object storage signal
type StorageSignal struct {
	Buckets []Bucket
}

// Bucket represents an object store and its protection attributes
type Bucket struct {
	Name              string            `json:"name"`
	ARN               string            `json:"arn"`
	Region            string            `json:"region"`
	PublicAccessBlock PublicAccessBlock `json:"public_access_block"`
	Encrypted         bool              `json:"encrypted"`
	LoggingEnabled    bool              `json:"logging_enabled"`
}

// PublicAccessBlock holds the four public-access-block protections; all
// four must be enabled for a bucket to be considered protected.
type PublicAccessBlock struct {
	BlockPublicACLs       bool `json:"block_public_acls"`
	IgnorePublicACLs      bool `json:"ignore_public_acls"`
	BlockPublicPolicy     bool `json:"block_public_policy"`
	RestrictPublicBuckets bool `json:"restrict_public_buckets"`
}

// AllEnabled reports whether all four protections are on
func (p PublicAccessBlock) AllEnabled() bool {
	return p.BlockPublicACLs && p.IgnorePublicACLs && p.BlockPublicPolicy && p.RestrictPublicBuckets
}

// AuditTrailSignal holds audit-trail configuration signal for the scanned
// region. Collected is false when the area itself failed, so the trail
// rules can distinguish "no trail" from "no signal".
type AuditTrailSignal struct {
	Collected bool
	Trails    []Trail
}

type Trail struct {
	Name              string `json:"name"`
	ARN               string `json:"arn"`
	Region            string `json:"region"`
	IsLogging         bool   `json:"is_logging"`
	LogFileValidation bool   `json:"log_file_validation"`
}

// SecurityFeedSignal holds findings from the provider's managed
// security-findings feed, when enabled on the account.
type SecurityFeedSignal struct {
	Enabled  bool
	Findings []FeedFinding
}

// FeedFinding is a provider-issued finding, passed through with its
// assigned severity (normalized only).
type FeedFinding struct {
	ID           string         `json:"id"`
	GeneratorID  string         `json:"generator_id"`
	Title        string         `json:"title"`
	Severity     string         `json:"severity"`
	Status       string         `json:"status"`
	ResourceID   string         `json:"resource_id"`
	ResourceType string         `json:"resource_type"`
	ResourceARN  string         `json:"resource_arn"`
	Detail       map[string]any `json:"detail,omitempty"`
}
