// Package rules holds the fixed registry of posture detection rules. Each
// rule is a pure function of one slice of collected signal: no cross-rule
// state, so rules may run in any order (or concurrently) with identical
// results.
package rules

import (
	"fmt"
	"sort"
	"time"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/mapping"
)

// Result carries the output of one rule evaluation
type Result struct {
	Findings []*models.Finding
	Assets   []*models.Asset
}

// Rule is a single detection rule keyed by a stable identifier
type Rule interface {
	// ID returns the stable rule identifier
	ID() string

	// Area returns the signal slice this rule consumes
	Area() models.ServiceArea

	// Evaluate inspects the signal and emits zero or more findings and
	// discovered assets. now is passed in so age-based rules stay pure.
	Evaluate(sig *models.CloudSignal, now time.Time) Result
}

// Registry holds the fixed set of registered rules
type Registry struct {
	rules map[string]Rule
	order []string
}

// NewRegistry creates a registry pre-loaded with the default rule set
func NewRegistry() *Registry {
	r := &Registry{rules: make(map[string]Rule)}
	for _, rule := range defaultRules() {
		r.mustRegister(rule)
	}
	return r
}

func defaultRules() []Rule {
	return []Rule{
		// Identity
		&RootMFARule{},
		&ConsoleMFARule{},
		&StaleAccessKeyRule{},
		&AdminPolicyRule{},
		&PasswordPolicyRule{},
		// Compute / network
		&PublicInstanceRule{},
		&OpenSSHRule{},
		&OpenRDPRule{},
		&DefaultNetworkRule{},
		// Storage
		&PublicAccessBlockRule{},
		&BucketEncryptionRule{},
		&BucketLoggingRule{},
		// Audit trail
		&TrailMissingRule{},
		&TrailNotLoggingRule{},
		&TrailValidationRule{},
		// Managed security feed
		&SecurityFeedRule{},
	}
}

func (r *Registry) mustRegister(rule Rule) {
	if _, exists := r.rules[rule.ID()]; exists {
		panic(fmt.Sprintf("rule already registered: %s", rule.ID()))
	}
	r.rules[rule.ID()] = rule
	r.order = append(r.order, rule.ID())
}

// Get returns a rule by identifier
func (r *Registry) Get(id string) (Rule, bool) {
	rule, ok := r.rules[id]
	return rule, ok
}

// List returns all rules in registration order
func (r *Registry) List() []Rule {
	out := make([]Rule, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rules[id])
	}
	return out
}

// Count returns the number of registered rules
func (r *Registry) Count() int {
	return len(r.rules)
}

// EvaluateAll runs every rule against the signal and aggregates the
// results. Findings get their secondary framework cross-reference attached
// here; assets are deduplicated by external identifier.
func (r *Registry) EvaluateAll(sig *models.CloudSignal, now time.Time) Result {
	var out Result
	seenAssets := make(map[string]bool)

	for _, rule := range r.List() {
		res := rule.Evaluate(sig, now)
		for _, f := range res.Findings {
			if f.CrossRef == "" {
				f.CrossRef = mapping.CrossRefForRule(f.RuleID)
			}
			out.Findings = append(out.Findings, f)
		}
		for _, a := range res.Assets {
			if a.ExternalID == "" || seenAssets[a.ExternalID] {
				continue
			}
			seenAssets[a.ExternalID] = true
			out.Assets = append(out.Assets, a)
		}
	}

	// Highest severity first so callers see the worst findings up front
	sort.SliceStable(out.Findings, func(i, j int) bool {
		return out.Findings[i].SeverityWeight() > out.Findings[j].SeverityWeight()
	})

	return out
}

// newFinding builds an active finding with the shared fields filled in
func newFinding(ruleID, title string, sev models.Severity, res models.ResourceRef, details map[string]any) *models.Finding {
	return &models.Finding{
		RuleID:   ruleID,
		Title:    title,
		Severity: sev,
		Status:   models.FindingStatusActive,
		Resource: res,
		Details:  details,
	}
}
