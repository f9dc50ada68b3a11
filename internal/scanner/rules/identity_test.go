package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
)

func identitySignal(id models.IdentitySignal) *models.CloudSignal {
	return &models.CloudSignal{Identity: id}
}

func TestRootMFARule(t *testing.T) {
	tests := []struct {
		name     string
		root     models.RootAccountInfo
		expected int
	}{
		{
			name:     "root without MFA is flagged",
			root:     models.RootAccountInfo{MFAEnabled: false, DataAvailable: true},
			expected: 1,
		},
		{
			name:     "root with MFA is clean",
			root:     models.RootAccountInfo{MFAEnabled: true, DataAvailable: true},
			expected: 0,
		},
		{
			name:     "no data means no finding",
			root:     models.RootAccountInfo{MFAEnabled: false, DataAvailable: false},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := RootMFARule{}.Evaluate(identitySignal(models.IdentitySignal{Root: tt.root}), time.Now())
			assert.Len(t, res.Findings, tt.expected)
			if tt.expected > 0 {
				assert.Equal(t, models.SeverityCritical, res.Findings[0].Severity)
				assert.Equal(t, "iam_root_mfa_disabled", res.Findings[0].RuleID)
			}
		})
	}
}

func TestConsoleMFARule(t *testing.T) {
	sig := identitySignal(models.IdentitySignal{
		Users: []models.IAMUser{
			{UserName: "alice", ARN: "arn:aws:iam::1:user/alice", ConsoleAccess: true, MFAEnabled: false},
			{UserName: "bob", ARN: "arn:aws:iam::1:user/bob", ConsoleAccess: true, MFAEnabled: true},
			{UserName: "ci-bot", ARN: "arn:aws:iam::1:user/ci-bot", ConsoleAccess: false, MFAEnabled: false},
		},
	})

	res := ConsoleMFARule{}.Evaluate(sig, time.Now())

	// Only the console user without MFA is flagged; API-only users are not
	assert.Len(t, res.Findings, 1)
	assert.Equal(t, models.SeverityHigh, res.Findings[0].Severity)
	assert.Equal(t, "alice", res.Findings[0].Resource.ID)

	// Every user is still discovered as an asset
	assert.Len(t, res.Assets, 3)
}

func TestStaleAccessKeyRule(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		key         models.AccessKey
		expected    int
		expectedSev models.Severity
	}{
		{
			name:     "fresh key is clean",
			key:      models.AccessKey{ID: "AKIA1", Active: true, CreatedAt: now.AddDate(0, 0, -30)},
			expected: 0,
		},
		{
			name:     "89 days is still clean",
			key:      models.AccessKey{ID: "AKIA2", Active: true, CreatedAt: now.AddDate(0, 0, -89)},
			expected: 0,
		},
		{
			name:        "90 days is medium",
			key:         models.AccessKey{ID: "AKIA3", Active: true, CreatedAt: now.AddDate(0, 0, -90)},
			expected:    1,
			expectedSev: models.SeverityMedium,
		},
		{
			name:        "180 days is high",
			key:         models.AccessKey{ID: "AKIA4", Active: true, CreatedAt: now.AddDate(0, 0, -180)},
			expected:    1,
			expectedSev: models.SeverityHigh,
		},
		{
			name:     "inactive old key is skipped",
			key:      models.AccessKey{ID: "AKIA5", Active: false, CreatedAt: now.AddDate(0, 0, -400)},
			expected: 0,
		},
		{
			name:     "zero creation time is skipped",
			key:      models.AccessKey{ID: "AKIA6", Active: true},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := identitySignal(models.IdentitySignal{
				Users: []models.IAMUser{{UserName: "alice", AccessKeys: []models.AccessKey{tt.key}}},
			})
			res := StaleAccessKeyRule{}.Evaluate(sig, now)
			assert.Len(t, res.Findings, tt.expected)
			if tt.expected > 0 {
				assert.Equal(t, tt.expectedSev, res.Findings[0].Severity)
				assert.Equal(t, tt.key.ID, res.Findings[0].Resource.ID)
			}
		})
	}
}

func TestAdminPolicyRule(t *testing.T) {
	sig := identitySignal(models.IdentitySignal{
		Users: []models.IAMUser{
			{UserName: "admin-user", AttachedPolicies: []string{"ReadOnlyAccess", "AdministratorAccess"}},
			{UserName: "reader", AttachedPolicies: []string{"ReadOnlyAccess"}},
		},
	})

	res := AdminPolicyRule{}.Evaluate(sig, time.Now())

	assert.Len(t, res.Findings, 1)
	assert.Equal(t, models.SeverityHigh, res.Findings[0].Severity)
	assert.Equal(t, "admin-user", res.Findings[0].Resource.ID)
}

func TestPasswordPolicyRule(t *testing.T) {
	tests := []struct {
		name     string
		identity models.IdentitySignal
		expected int
	}{
		{
			name: "missing policy is flagged",
			identity: models.IdentitySignal{
				Root: models.RootAccountInfo{DataAvailable: true},
			},
			expected: 1,
		},
		{
			name: "present policy is clean",
			identity: models.IdentitySignal{
				Root:           models.RootAccountInfo{DataAvailable: true},
				PasswordPolicy: &models.PasswordPolicy{MinimumLength: 14},
			},
			expected: 0,
		},
		{
			name:     "no identity signal means no finding",
			identity: models.IdentitySignal{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := PasswordPolicyRule{}.Evaluate(identitySignal(tt.identity), time.Now())
			assert.Len(t, res.Findings, tt.expected)
			if tt.expected > 0 {
				assert.Equal(t, models.SeverityMedium, res.Findings[0].Severity)
			}
		})
	}
}
