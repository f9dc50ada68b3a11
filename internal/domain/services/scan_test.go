package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/config"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/collector"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/credentials"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/rules"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

type fakeVault struct {
	material credentials.Material
}

func (f *fakeVault) Fetch(_ context.Context, _ string) (credentials.Material, error) {
	return f.material, nil
}

type fakeAccountStore struct {
	account   *models.Account
	scanning  bool
	finished  bool
	finishErr string
}

func (s *fakeAccountStore) GetByID(_ context.Context, _ uuid.UUID) (*models.Account, error) {
	return s.account, nil
}

func (s *fakeAccountStore) MarkScanning(_ context.Context, _ uuid.UUID) error {
	s.scanning = true
	return nil
}

func (s *fakeAccountStore) FinishScan(_ context.Context, _ uuid.UUID, scanErr string) error {
	s.finished = true
	s.finishErr = scanErr
	return nil
}

type fakeScanLocker struct {
	denyAcquire   bool
	acquires      int
	releases      int
	invalidations int
}

func (l *fakeScanLocker) AcquireScanLock(_ context.Context, _ string, _ time.Duration) (bool, error) {
	l.acquires++
	return !l.denyAcquire, nil
}

func (l *fakeScanLocker) ReleaseScanLock(_ context.Context, _ string) error {
	l.releases++
	return nil
}

func (l *fakeScanLocker) InvalidateGapReport(_ context.Context, _ string) error {
	l.invalidations++
	return nil
}

// providerServer serves a canned account posture: root MFA disabled, one
// healthy audit trail, everything else clean. failStorage makes the
// storage endpoint return 500.
func providerServer(t *testing.T, failStorage bool) *httptest.Server {
	t.Helper()
	write := func(w http.ResponseWriter, v any) {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/identity":
			write(w, models.IdentitySignal{
				Root:           models.RootAccountInfo{DataAvailable: true, MFAEnabled: false},
				PasswordPolicy: &models.PasswordPolicy{MinimumLength: 14, RequireSymbols: true},
			})
		case "/compute/instances":
			write(w, models.ComputeSignal{})
		case "/network/security-rules":
			write(w, models.NetworkSignal{})
		case "/storage/buckets":
			if failStorage {
				http.Error(w, "access denied", http.StatusInternalServerError)
				return
			}
			write(w, models.StorageSignal{})
		case "/audit/trails":
			write(w, models.AuditTrailSignal{Collected: true, Trails: []models.Trail{
				{Name: "main", Region: "us-east-1", IsLogging: true, LogFileValidation: true},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
}

type scanFixture struct {
	svc      *ScanService
	accounts *fakeAccountStore
	locker   *fakeScanLocker
	findings *fakeFindingStore
	risks    *fakeRiskStore
	statuses *fakeControlStatusStore
}

func newScanFixture(t *testing.T, serverURL string, vault credentials.Vault) *scanFixture {
	t.Helper()
	log := logger.NewDevelopment()
	scannerCfg := config.ScannerConfig{
		Deadline:           30 * time.Second,
		MaxConcurrentAreas: 3,
		LockTTL:            time.Minute,
	}
	provider := collector.NewClient(config.ProviderConfig{
		BaseURL:        serverURL,
		TokenURL:       serverURL + "/token",
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 10 * time.Second,
	}, log)

	f := &scanFixture{
		accounts: &fakeAccountStore{account: &models.Account{
			ID:            uuid.New(),
			OrgID:         uuid.New(),
			Name:          "prod",
			Provider:      "aws",
			CredentialRef: "vault-ref-1",
			Regions:       []string{"us-east-1"},
			Status:        models.AccountStatusConnected,
		}},
		locker:   &fakeScanLocker{},
		findings: newFakeFindingStore(),
		risks:    newFakeRiskStore(),
		statuses: newFakeControlStatusStore(nil),
	}
	f.svc = NewScanService(
		f.accounts,
		vault,
		provider,
		collector.New(scannerCfg, log),
		rules.NewRegistry(),
		NewReconciler(f.findings, newFakeAssetStore(), log),
		NewControlStatusDriver(f.statuses, log),
		NewRiskManager(f.risks, log),
		f.locker,
		scannerCfg,
		log,
	)
	return f
}

func TestScanEndToEnd(t *testing.T) {
	server := providerServer(t, false)
	defer server.Close()

	vault := &fakeVault{material: credentials.Material{AccessKeyID: "AKIA123", SecretKey: "secret"}}
	f := newScanFixture(t, server.URL, vault)

	summary, err := f.svc.Scan(context.Background(), f.accounts.account.ID)
	assert.NoError(t, err)
	assert.NotNil(t, summary)

	// Root MFA disabled is the only misconfiguration in the canned posture
	assert.Equal(t, 1, summary.FindingCount)
	assert.Equal(t, "iam_root_mfa_disabled", summary.Findings[0].RuleID)
	assert.Equal(t, models.SeverityCritical, summary.Findings[0].Severity)
	for _, st := range summary.AreaStatuses {
		assert.True(t, st.OK, "area %s should succeed", st.Area)
	}

	// Downstream drivers ran: CC6.6 advanced, a risk opened
	assert.Contains(t, f.statuses.advanced, "CC6.6")
	assert.Len(t, f.risks.risks, 1)

	// Bookkeeping: scan recorded, lock cycled, gap cache invalidated
	assert.True(t, f.accounts.scanning)
	assert.True(t, f.accounts.finished)
	assert.Empty(t, f.accounts.finishErr)
	assert.Equal(t, 1, f.locker.acquires)
	assert.Equal(t, 1, f.locker.releases)
	assert.Equal(t, 1, f.locker.invalidations)
}

func TestScanCredentialFailureIsFatal(t *testing.T) {
	server := providerServer(t, false)
	defer server.Close()

	f := newScanFixture(t, server.URL, &fakeVault{material: credentials.Material{}})

	summary, err := f.svc.Scan(context.Background(), f.accounts.account.ID)
	assert.ErrorIs(t, err, credentials.ErrNoUsableCredentials)
	assert.Nil(t, summary)

	// Nothing was written, and the failure was recorded on the account
	assert.Empty(t, f.findings.rows)
	assert.Empty(t, f.risks.risks)
	assert.True(t, f.accounts.finished)
	assert.Contains(t, f.accounts.finishErr, "no usable key pair or role descriptor")
	assert.Equal(t, 0, f.locker.invalidations)
}

func TestScanSurvivesAreaFailure(t *testing.T) {
	server := providerServer(t, true)
	defer server.Close()

	vault := &fakeVault{material: credentials.Material{AccessKeyID: "AKIA123", SecretKey: "secret"}}
	f := newScanFixture(t, server.URL, vault)

	summary, err := f.svc.Scan(context.Background(), f.accounts.account.ID)
	assert.NoError(t, err)

	// Storage degraded to an empty signal; the identity finding is intact
	byArea := make(map[models.ServiceArea]models.AreaStatus)
	for _, st := range summary.AreaStatuses {
		byArea[st.Area] = st
	}
	assert.False(t, byArea[models.AreaStorage].OK)
	assert.Contains(t, byArea[models.AreaStorage].Error, "access denied")
	assert.True(t, byArea[models.AreaIdentity].OK)

	assert.Equal(t, 1, summary.FindingCount)
	assert.Empty(t, f.accounts.finishErr)
}

func TestScanLockDenied(t *testing.T) {
	server := providerServer(t, false)
	defer server.Close()

	vault := &fakeVault{material: credentials.Material{AccessKeyID: "AKIA123", SecretKey: "secret"}}
	f := newScanFixture(t, server.URL, vault)
	f.locker.denyAcquire = true

	summary, err := f.svc.Scan(context.Background(), f.accounts.account.ID)
	assert.ErrorIs(t, err, ErrScanInProgress)
	assert.Nil(t, summary)
	assert.False(t, f.accounts.scanning)
	assert.Equal(t, 0, f.locker.releases)
}
