package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
)

func TestRegistryHasAllRules(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, 16, r.Count())
	for _, id := range []string{
		"iam_root_mfa_disabled", "net_ssh_open_world",
		"storage_public_access_block", "trail_missing", "security_feed_finding",
	} {
		_, ok := r.Get(id)
		assert.True(t, ok, "rule %s should be registered", id)
	}
}

func TestEvaluateAll(t *testing.T) {
	sig := &models.CloudSignal{
		Identity: models.IdentitySignal{
			Root: models.RootAccountInfo{MFAEnabled: false, DataAvailable: true},
			Users: []models.IAMUser{
				{UserName: "alice", ARN: "arn:aws:iam::1:user/alice", ConsoleAccess: true},
			},
			PasswordPolicy: &models.PasswordPolicy{MinimumLength: 14},
		},
		Storage: models.StorageSignal{Buckets: []models.Bucket{
			{Name: "logs", Encrypted: true, LoggingEnabled: false, PublicAccessBlock: allBlocked()},
		}},
	}

	res := NewRegistry().EvaluateAll(sig, time.Now())

	// critical root finding, high console finding, low bucket logging finding
	assert.Len(t, res.Findings, 3)

	// Sorted by severity, worst first
	assert.Equal(t, models.SeverityCritical, res.Findings[0].Severity)
	assert.Equal(t, models.SeverityHigh, res.Findings[1].Severity)
	assert.Equal(t, models.SeverityLow, res.Findings[2].Severity)

	// Cross-framework reference attached from the mapping tables
	assert.Equal(t, "A.9.4.2", res.Findings[0].CrossRef)

	// One user asset, one bucket asset
	assert.Len(t, res.Assets, 2)
}

func TestEvaluateAllDedupsAssets(t *testing.T) {
	// The same instance surfaces from compute signal in two rule outputs
	// only once.
	sig := &models.CloudSignal{
		Compute: models.ComputeSignal{Instances: []models.Instance{
			{ID: "i-1", Name: "web", PublicIP: "54.1.2.3"},
		}},
	}

	res := NewRegistry().EvaluateAll(sig, time.Now())

	seen := make(map[string]int)
	for _, a := range res.Assets {
		seen[a.ExternalID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "asset %s should appear once", id)
	}
}

func TestEvaluateAllOnEmptySignal(t *testing.T) {
	res := NewRegistry().EvaluateAll(&models.CloudSignal{}, time.Now())

	// Empty signal produces nothing: failed areas must not fabricate
	// findings.
	assert.Empty(t, res.Findings)
	assert.Empty(t, res.Assets)
}
