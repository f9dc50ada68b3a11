package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/rules"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// fakeFindingStore mimics the composite-key upsert semantics of the real
// store: one row per (account, rule, resource).
type fakeFindingStore struct {
	rows    map[string]*models.Finding
	failOn  string
	upserts int
}

func newFakeFindingStore() *fakeFindingStore {
	return &fakeFindingStore{rows: make(map[string]*models.Finding)}
}

func findingKey(f *models.Finding) string {
	return f.AccountID.String() + "/" + f.RuleID + "/" + f.Resource.ID
}

func (s *fakeFindingStore) Upsert(_ context.Context, f *models.Finding) (*models.Finding, bool, error) {
	if s.failOn != "" && f.RuleID == s.failOn {
		return nil, false, errors.New("store unavailable")
	}
	s.upserts++
	key := findingKey(f)
	if existing, ok := s.rows[key]; ok {
		copied := *f
		copied.ID = existing.ID
		s.rows[key] = &copied
		return &copied, false, nil
	}
	copied := *f
	copied.ID = uuid.New()
	s.rows[key] = &copied
	return &copied, true, nil
}

type fakeAssetStore struct {
	rows map[string]*models.Asset
}

func newFakeAssetStore() *fakeAssetStore {
	return &fakeAssetStore{rows: make(map[string]*models.Asset)}
}

func (s *fakeAssetStore) Upsert(_ context.Context, a *models.Asset) (*models.Asset, error) {
	key := a.OrgID.String() + "/" + a.ExternalID
	copied := *a
	if existing, ok := s.rows[key]; ok {
		copied.ID = existing.ID
	} else {
		copied.ID = uuid.New()
	}
	s.rows[key] = &copied
	return &copied, nil
}

func testAccount() *models.Account {
	return &models.Account{
		ID:       uuid.New(),
		OrgID:    uuid.New(),
		Provider: "aws",
	}
}

func scanResult() rules.Result {
	return rules.Result{
		Findings: []*models.Finding{
			{RuleID: "iam_root_mfa_disabled", Title: "Root MFA off", Severity: models.SeverityCritical,
				Status: models.FindingStatusActive, Resource: models.ResourceRef{Type: "iam_root", ID: "root"}},
			{RuleID: "net_ssh_open_world", Title: "SSH open", Severity: models.SeverityHigh,
				Status: models.FindingStatusActive, Resource: models.ResourceRef{Type: "security_group", ID: "sg-1"}},
		},
		Assets: []*models.Asset{
			{Name: "web", Type: "instance", ExternalID: "i-1"},
		},
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	findings := newFakeFindingStore()
	assets := newFakeAssetStore()
	r := NewReconciler(findings, assets, logger.NewDevelopment())
	account := testAccount()

	stored, stats, err := r.Reconcile(context.Background(), account, scanResult())
	assert.NoError(t, err)
	assert.Equal(t, 2, stats.NewFindings)
	assert.Equal(t, 0, stats.UpdatedFindings)
	assert.Equal(t, 1, stats.Assets)
	assert.Len(t, stored, 2)

	// Second run over identical signal updates in place, no new rows
	stored, stats, err = r.Reconcile(context.Background(), account, scanResult())
	assert.NoError(t, err)
	assert.Equal(t, 0, stats.NewFindings)
	assert.Equal(t, 2, stats.UpdatedFindings)
	assert.Len(t, stored, 2)

	assert.Len(t, findings.rows, 2)
	assert.Len(t, assets.rows, 1)
}

func TestReconcileStampsOwnership(t *testing.T) {
	findings := newFakeFindingStore()
	assets := newFakeAssetStore()
	r := NewReconciler(findings, assets, logger.NewDevelopment())
	account := testAccount()

	stored, _, err := r.Reconcile(context.Background(), account, scanResult())
	assert.NoError(t, err)

	for _, f := range stored {
		assert.Equal(t, account.ID, f.AccountID)
	}
	for _, a := range assets.rows {
		assert.Equal(t, account.OrgID, a.OrgID)
		assert.Equal(t, account.ID, a.AccountID)
		assert.Equal(t, "aws", a.Provider)
	}
}

func TestReconcileNormalizesSeverityAndStatus(t *testing.T) {
	findings := newFakeFindingStore()
	r := NewReconciler(findings, newFakeAssetStore(), logger.NewDevelopment())
	account := testAccount()

	stored, _, err := r.Reconcile(context.Background(), account, rules.Result{
		Findings: []*models.Finding{
			{RuleID: "net_ssh_open_world", Title: "SSH open", Severity: "HIGH",
				Status: "active", Resource: models.ResourceRef{Type: "security_group", ID: "sg-1"}},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, stored, 1)

	// Stored in the canonical vocabulary, not the rule's casing
	assert.Equal(t, models.SeverityHigh, stored[0].Severity)
	assert.Equal(t, models.FindingStatusActive, stored[0].Status)

	// The risk lifecycle recognizes the normalized finding as high severity
	riskStore := newFakeRiskStore()
	NewRiskManager(riskStore, logger.NewDevelopment()).Apply(context.Background(), account.OrgID, stored)
	assert.Len(t, riskStore.risks, 1)
}

func TestReconcileSurfacesWriteFailure(t *testing.T) {
	findings := newFakeFindingStore()
	findings.failOn = "net_ssh_open_world"
	r := NewReconciler(findings, newFakeAssetStore(), logger.NewDevelopment())

	stored, stats, err := r.Reconcile(context.Background(), testAccount(), scanResult())

	// The failure surfaces, but the write that succeeded before it stands
	assert.Error(t, err)
	assert.Equal(t, 1, stats.NewFindings)
	assert.Len(t, stored, 1)
	assert.Len(t, findings.rows, 1)
}
