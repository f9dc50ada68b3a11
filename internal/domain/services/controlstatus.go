package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/mapping"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// ControlStatusStore is the slice of control-status persistence the driver
// needs.
type ControlStatusStore interface {
	StatusesForOrg(ctx context.Context, orgID uuid.UUID) (map[string]*models.ControlStatus, error)
	AdvanceToInProgress(ctx context.Context, orgID uuid.UUID, controlID string) error
}

// ControlStatusDriver advances the per-control remediation state machine
// from reconciled findings. The only transition it performs is toward
// in_progress; verified and not_applicable are terminal for this driver.
type ControlStatusDriver struct {
	store  ControlStatusStore
	logger *logger.Logger
}

// NewControlStatusDriver creates a ControlStatusDriver
func NewControlStatusDriver(store ControlStatusStore, log *logger.Logger) *ControlStatusDriver {
	return &ControlStatusDriver{
		store:  store,
		logger: log.WithComponent("control-status"),
	}
}

// Apply maps each ACTIVE finding to its controls and advances them to
// in_progress. A failure on one control is logged and does not stop the
// rest. The store read here is only to skip work: the conditional update
// in the store is what actually prevents regressing a terminal status.
// Returns the number of controls advanced.
func (d *ControlStatusDriver) Apply(ctx context.Context, orgID uuid.UUID, findings []*models.Finding) int {
	touched := make(map[string]bool)
	var order []string
	for _, f := range findings {
		if !f.IsActive() {
			continue
		}
		for _, controlID := range mapping.ControlsForRule(f.RuleID) {
			if !touched[controlID] {
				touched[controlID] = true
				order = append(order, controlID)
			}
		}
	}
	if len(order) == 0 {
		return 0
	}

	current, err := d.store.StatusesForOrg(ctx, orgID)
	if err != nil {
		d.logger.Warn().Err(err).Msg("failed to read control statuses, advancing unconditionally")
		current = map[string]*models.ControlStatus{}
	}

	advanced := 0
	for _, controlID := range order {
		if cs, ok := current[controlID]; ok && cs.Status.Terminal() {
			continue
		}
		if err := d.store.AdvanceToInProgress(ctx, orgID, controlID); err != nil {
			d.logger.Error().
				Err(err).
				Str("control_id", controlID).
				Msg("failed to advance control status")
			continue
		}
		advanced++
	}

	if advanced > 0 {
		d.logger.Info().
			Str("org_id", orgID.String()).
			Int("controls_advanced", advanced).
			Msg("control statuses advanced")
	}
	return advanced
}
