package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PolicyRepository reads policy coverage for gap computation. Policies are
// authored elsewhere; the scanner only cares which controls have at least
// one approved policy linked.
type PolicyRepository struct {
	pool *pgxpool.Pool
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(pool *pgxpool.Pool) *PolicyRepository {
	return &PolicyRepository{pool: pool}
}

// ApprovedControls returns the set of control identifiers covered by at
// least one approved policy in the organization.
func (r *PolicyRepository) ApprovedControls(ctx context.Context, orgID uuid.UUID) (map[string]bool, error) {
	query := `
		SELECT DISTINCT pc.control_id
		FROM policy_controls pc
		JOIN policies p ON p.id = pc.policy_id
		WHERE p.org_id = $1 AND p.status = 'approved'`

	rows, err := r.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved policy controls: %w", err)
	}
	defer rows.Close()

	covered := make(map[string]bool)
	for rows.Next() {
		var controlID string
		if err := rows.Scan(&controlID); err != nil {
			return nil, fmt.Errorf("failed to scan policy control: %w", err)
		}
		covered[controlID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read policy controls: %w", err)
	}
	return covered, nil
}
