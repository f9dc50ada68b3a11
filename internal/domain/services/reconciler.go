package services

import (
	"context"
	"fmt"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/rules"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// FindingStore is the slice of finding persistence the reconciler needs
type FindingStore interface {
	Upsert(ctx context.Context, f *models.Finding) (*models.Finding, bool, error)
}

// AssetStore is the slice of asset persistence the reconciler needs
type AssetStore interface {
	Upsert(ctx context.Context, a *models.Asset) (*models.Asset, error)
}

// ReconcileStats summarizes one reconciliation pass
type ReconcileStats struct {
	NewFindings     int
	UpdatedFindings int
	Assets          int
}

// Reconciler merges a scan's evaluation output into durable storage using
// composite-key upserts. Repeated runs against identical signal leave
// exactly one row per identity key; the conflict targets in the store are
// what make that hold under concurrent scans.
type Reconciler struct {
	findings FindingStore
	assets   AssetStore
	logger   *logger.Logger
}

// NewReconciler creates a Reconciler
func NewReconciler(findings FindingStore, assets AssetStore, log *logger.Logger) *Reconciler {
	return &Reconciler{
		findings: findings,
		assets:   assets,
		logger:   log.WithComponent("reconciler"),
	}
}

// Reconcile upserts the scan's assets and findings for one account and
// returns the stored findings plus counts. A write failure is surfaced to
// the caller but writes already committed stand; there is no rollback.
func (r *Reconciler) Reconcile(ctx context.Context, account *models.Account, result rules.Result) ([]*models.Finding, ReconcileStats, error) {
	var stats ReconcileStats

	for _, asset := range result.Assets {
		asset.OrgID = account.OrgID
		asset.AccountID = account.ID
		if asset.Provider == "" {
			asset.Provider = account.Provider
		}
		if _, err := r.assets.Upsert(ctx, asset); err != nil {
			return nil, stats, fmt.Errorf("asset reconciliation failed for %s: %w", asset.ExternalID, err)
		}
		stats.Assets++
	}

	stored := make([]*models.Finding, 0, len(result.Findings))
	for _, finding := range result.Findings {
		finding.AccountID = account.ID
		// Canonical vocabulary before storage, whatever casing the rule
		// emitted. Downstream severity and status comparisons rely on it.
		finding.Severity = models.ParseSeverity(string(finding.Severity))
		finding.Status = models.ParseFindingStatus(string(finding.Status))
		row, inserted, err := r.findings.Upsert(ctx, finding)
		if err != nil {
			return stored, stats, fmt.Errorf("finding reconciliation failed for %s/%s: %w", finding.RuleID, finding.Resource.ID, err)
		}
		if inserted {
			stats.NewFindings++
		} else {
			stats.UpdatedFindings++
		}
		stored = append(stored, row)
	}

	r.logger.Info().
		Str("account_id", account.ID.String()).
		Int("new_findings", stats.NewFindings).
		Int("updated_findings", stats.UpdatedFindings).
		Int("assets", stats.Assets).
		Msg("scan results reconciled")

	return stored, stats, nil
}
