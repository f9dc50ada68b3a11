package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
)

// ControlRepository handles control reference data and per-org control
// status records.
type ControlRepository struct {
	pool *pgxpool.Pool
}

// NewControlRepository creates a new control repository
func NewControlRepository(pool *pgxpool.Pool) *ControlRepository {
	return &ControlRepository{pool: pool}
}

// ListForOrg returns the control definitions for an organization's
// assigned frameworks.
func (r *ControlRepository) ListForOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Control, error) {
	query := `
		SELECT c.id, c.control_id, c.framework, c.domain, c.category, c.title
		FROM controls c
		JOIN org_frameworks f ON f.framework = c.framework
		WHERE f.org_id = $1
		ORDER BY c.framework, c.control_id`

	rows, err := r.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list controls: %w", err)
	}
	defer rows.Close()

	var controls []*models.Control
	for rows.Next() {
		var c models.Control
		if err := rows.Scan(&c.ID, &c.ControlID, &c.Framework, &c.Domain, &c.Category, &c.Title); err != nil {
			return nil, fmt.Errorf("failed to scan control: %w", err)
		}
		controls = append(controls, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read controls: %w", err)
	}
	return controls, nil
}

// StatusesForOrg returns the per-control status records for an
// organization, keyed by control identifier.
func (r *ControlRepository) StatusesForOrg(ctx context.Context, orgID uuid.UUID) (map[string]*models.ControlStatus, error) {
	query := `
		SELECT id, org_id, control_id, status, evidence_count, updated_at
		FROM control_statuses
		WHERE org_id = $1`

	rows, err := r.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list control statuses: %w", err)
	}
	defer rows.Close()

	statuses := make(map[string]*models.ControlStatus)
	for rows.Next() {
		var (
			cs     models.ControlStatus
			status string
		)
		if err := rows.Scan(&cs.ID, &cs.OrgID, &cs.ControlID, &status, &cs.EvidenceCount, &cs.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan control status: %w", err)
		}
		cs.Status = models.ControlProgress(status)
		statuses[cs.ControlID] = &cs
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read control statuses: %w", err)
	}
	return statuses, nil
}

// AdvanceToInProgress moves a control status to in_progress, creating the
// record when absent. The conditional in the conflict branch is what keeps
// verified and not_applicable controls untouched, regardless of what the
// caller checked beforehand.
func (r *ControlRepository) AdvanceToInProgress(ctx context.Context, orgID uuid.UUID, controlID string) error {
	query := `
		INSERT INTO control_statuses (id, org_id, control_id, status, evidence_count, updated_at)
		VALUES ($1, $2, $3, 'in_progress', 0, now())
		ON CONFLICT (org_id, control_id) DO UPDATE SET
			status = 'in_progress',
			updated_at = now()
		WHERE control_statuses.status NOT IN ('verified', 'not_applicable')`

	_, err := r.pool.Exec(ctx, query, uuid.New(), orgID, controlID)
	if err != nil {
		return fmt.Errorf("failed to advance control status: %w", err)
	}
	return nil
}
