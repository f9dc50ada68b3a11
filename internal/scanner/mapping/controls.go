// Package mapping holds the static tables linking detection rules to the
// compliance controls they evidence a gap against, plus the secondary
// cross-framework references attached to findings as metadata.
package mapping

import "strings"

// ruleControls maps a rule identifier to the control identifiers it maps to.
// Hand-maintained; loaded once, never mutated.
var ruleControls = map[string][]string{
	// Identity
	"iam_root_mfa_disabled":       {"CC6.6"},
	"iam_user_console_no_mfa":     {"CC6.6"},
	"iam_access_key_stale":        {"CC6.1"},
	"iam_user_admin_policy":       {"CC6.3"},
	"iam_password_policy_missing": {"CC6.1"},

	// Network
	"net_ssh_open_world":          {"CC6.1", "CC6.6"},
	"net_rdp_open_world":          {"CC6.1", "CC6.6"},
	"net_instance_public_ip":      {"CC6.1"},
	"net_default_network_present": {"CC6.1"},

	// Storage
	"storage_public_access_block":  {"CC6.2"},
	"storage_encryption_disabled":  {"CC6.3"},
	"storage_access_logs_disabled": {"CC7.1"},

	// Audit trail
	"trail_missing":             {"CC7.2"},
	"trail_not_logging":         {"CC7.2"},
	"trail_validation_disabled": {"CC7.1"},

	// Managed security feed
	"security_feed_finding": {"CC7.1"},
}

// ruleCrossRefs maps a rule identifier to an ISO 27001 Annex A reference.
// Attached to findings as metadata only.
var ruleCrossRefs = map[string]string{
	"iam_root_mfa_disabled":        "A.9.4.2",
	"iam_user_console_no_mfa":      "A.9.4.2",
	"iam_access_key_stale":         "A.9.2.5",
	"iam_user_admin_policy":        "A.9.2.3",
	"iam_password_policy_missing":  "A.9.4.3",
	"net_ssh_open_world":           "A.13.1.1",
	"net_rdp_open_world":           "A.13.1.1",
	"net_instance_public_ip":       "A.13.1.3",
	"net_default_network_present":  "A.13.1.3",
	"storage_public_access_block":  "A.13.2.1",
	"storage_encryption_disabled":  "A.10.1.1",
	"storage_access_logs_disabled": "A.12.4.1",
	"trail_missing":                "A.12.4.1",
	"trail_not_logging":            "A.12.4.1",
	"trail_validation_disabled":    "A.12.4.2",
	"security_feed_finding":        "A.12.6.1",
}

// controlRules is the reverse index, built once at load
var controlRules = func() map[string][]string {
	idx := make(map[string][]string)
	for rule, controls := range ruleControls {
		for _, c := range controls {
			idx[c] = append(idx[c], rule)
		}
	}
	return idx
}()

// ControlsForRule returns the control identifiers a rule maps to.
// Feed-derived rules (feed_<generator>) all map like the generic
// security_feed_finding entry.
func ControlsForRule(ruleID string) []string {
	if strings.HasPrefix(ruleID, "feed_") {
		return ruleControls["security_feed_finding"]
	}
	return ruleControls[ruleID]
}

// RulesForControl returns the rule identifiers that map to a control
func RulesForControl(controlID string) []string {
	return controlRules[controlID]
}

// CrossRefForRule returns the secondary framework reference for a rule,
// or "" when none is defined.
func CrossRefForRule(ruleID string) string {
	if strings.HasPrefix(ruleID, "feed_") {
		return ruleCrossRefs["security_feed_finding"]
	}
	return ruleCrossRefs[ruleID]
}
