package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/mapping"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// RiskStore is the slice of risk-register persistence the manager needs
type RiskStore interface {
	GetBySourceRef(ctx context.Context, orgID uuid.UUID, source, sourceRef string) (*models.Risk, error)
	CreateIfAbsent(ctx context.Context, risk *models.Risk) (bool, error)
	Close(ctx context.Context, orgID uuid.UUID, source, sourceRef string) error
}

// RiskManager auto-manages risk-register entries from reconciled findings.
// High and critical ACTIVE findings open risks; RESOLVED findings close
// them. Terminal risks are never reopened.
type RiskManager struct {
	store  RiskStore
	logger *logger.Logger
}

// NewRiskManager creates a RiskManager
func NewRiskManager(store RiskStore, log *logger.Logger) *RiskManager {
	return &RiskManager{
		store:  store,
		logger: log.WithComponent("risk-manager"),
	}
}

// SourceRef derives the stable dedup reference for a finding: the rule
// identifier composed with the best available resource identity.
func SourceRef(f *models.Finding) string {
	resource := f.Resource.ID
	if resource == "" {
		resource = f.Resource.ARN
	}
	if resource == "" {
		resource = "unknown"
	}
	return f.RuleID + ":" + resource
}

// Apply processes each finding independently: failures are logged per
// finding and never abort the rest of the batch.
func (m *RiskManager) Apply(ctx context.Context, orgID uuid.UUID, findings []*models.Finding) {
	for _, f := range findings {
		if err := m.applyOne(ctx, orgID, f); err != nil {
			m.logger.Error().
				Err(err).
				Str("rule_id", f.RuleID).
				Str("resource_id", f.Resource.ID).
				Msg("risk lifecycle update failed for finding")
		}
	}
}

func (m *RiskManager) applyOne(ctx context.Context, orgID uuid.UUID, f *models.Finding) error {
	sourceRef := SourceRef(f)

	if !f.IsActive() {
		// Explicit resolution closes the matching risk unless a human
		// already moved it to a terminal state.
		return m.store.Close(ctx, orgID, models.RiskSourceScan, sourceRef)
	}

	if f.Severity != models.SeverityCritical && f.Severity != models.SeverityHigh {
		return nil
	}

	// Existence check is an optimization only; the store's uniqueness on
	// (org, source, source_ref) is the real duplicate guard.
	if existing, err := m.store.GetBySourceRef(ctx, orgID, models.RiskSourceScan, sourceRef); err == nil && existing != nil {
		return nil
	}

	likelihood, impact := 4, 4
	if f.Severity == models.SeverityCritical {
		likelihood, impact = 5, 5
	}

	risk := &models.Risk{
		OrgID:      orgID,
		Title:      f.Title,
		Category:   "technical",
		Likelihood: likelihood,
		Impact:     impact,
		Status:     models.RiskStatusIdentified,
		Source:     models.RiskSourceScan,
		SourceRef:  sourceRef,
	}
	if controls := mapping.ControlsForRule(f.RuleID); len(controls) > 0 {
		risk.ControlID = controls[0]
	}

	created, err := m.store.CreateIfAbsent(ctx, risk)
	if err != nil {
		return err
	}
	if created {
		m.logger.Info().
			Str("org_id", orgID.String()).
			Str("source_ref", sourceRef).
			Str("severity", string(f.Severity)).
			Msg("risk opened from finding")
	}
	return nil
}
