package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
)

// RiskRepository handles risk register persistence. Scan-managed risks key
// on (org_id, source, source_ref); the unique index on that triple is the
// backstop against duplicate entries.
type RiskRepository struct {
	pool *pgxpool.Pool
}

// NewRiskRepository creates a new risk repository
func NewRiskRepository(pool *pgxpool.Pool) *RiskRepository {
	return &RiskRepository{pool: pool}
}

const selectRisks = `
	SELECT id, org_id, title, category, status, likelihood, impact,
	       source, source_ref, control_id, created_at, updated_at
	FROM risks`

// GetBySourceRef looks up a risk by its origin key
func (r *RiskRepository) GetBySourceRef(ctx context.Context, orgID uuid.UUID, source, sourceRef string) (*models.Risk, error) {
	query := selectRisks + `
		WHERE org_id = $1 AND source = $2 AND source_ref = $3`

	risk, err := scanRisk(r.pool.QueryRow(ctx, query, orgID, source, sourceRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get risk: %w", err)
	}
	return risk, nil
}

// CreateIfAbsent inserts a risk unless one already exists for the same
// (org_id, source, source_ref). Returns whether a row was actually
// inserted; a concurrent or earlier insert makes this a silent no-op.
func (r *RiskRepository) CreateIfAbsent(ctx context.Context, risk *models.Risk) (bool, error) {
	query := `
		INSERT INTO risks (
			id, org_id, title, category, status, likelihood, impact,
			source, source_ref, control_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		ON CONFLICT (org_id, source, source_ref) DO NOTHING
		RETURNING id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		uuid.New(), risk.OrgID, risk.Title, risk.Category, string(risk.Status),
		risk.Likelihood, risk.Impact, risk.Source, risk.SourceRef, risk.ControlID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create risk: %w", err)
	}
	risk.ID = id
	return true, nil
}

// Close moves a scan-managed risk to closed unless a human already moved
// it to a terminal state. Accepted risks stay accepted.
func (r *RiskRepository) Close(ctx context.Context, orgID uuid.UUID, source, sourceRef string) error {
	query := `
		UPDATE risks
		SET status = 'closed', updated_at = now()
		WHERE org_id = $1 AND source = $2 AND source_ref = $3
		  AND status NOT IN ('closed', 'accepted')`

	_, err := r.pool.Exec(ctx, query, orgID, source, sourceRef)
	if err != nil {
		return fmt.Errorf("failed to close risk: %w", err)
	}
	return nil
}

// ListByOrg returns risks for an organization, highest score first
func (r *RiskRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Risk, error) {
	if limit <= 0 {
		limit = 100
	}

	query := selectRisks + `
		WHERE org_id = $1
		ORDER BY likelihood * impact DESC, created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list risks: %w", err)
	}
	defer rows.Close()

	var risks []*models.Risk
	for rows.Next() {
		risk, err := scanRisk(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan risk: %w", err)
		}
		risks = append(risks, risk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read risks: %w", err)
	}
	return risks, nil
}

type riskRow interface {
	Scan(dest ...any) error
}

func scanRisk(row riskRow) (*models.Risk, error) {
	var (
		risk   models.Risk
		status string
	)
	err := row.Scan(
		&risk.ID, &risk.OrgID, &risk.Title, &risk.Category, &status,
		&risk.Likelihood, &risk.Impact, &risk.Source, &risk.SourceRef,
		&risk.ControlID, &risk.CreatedAt, &risk.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	risk.Status = models.RiskStatus(status)
	return &risk, nil
}
