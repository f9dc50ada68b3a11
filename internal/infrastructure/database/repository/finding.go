package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
)

// FindingRepository handles finding persistence. The composite uniqueness
// on (account_id, rule_id, resource_id) is declared in the schema and is
// what makes re-scans idempotent.
type FindingRepository struct {
	pool *pgxpool.Pool
}

// NewFindingRepository creates a new finding repository
func NewFindingRepository(pool *pgxpool.Pool) *FindingRepository {
	return &FindingRepository{pool: pool}
}

// Upsert creates or updates a finding on its identity key. On conflict the
// mutable fields (title, severity, status, details, resource ARN/type) are
// overwritten with the new scan's values and last_seen is refreshed;
// first_seen is preserved. Returns the stored row and whether it was newly
// inserted.
func (r *FindingRepository) Upsert(ctx context.Context, f *models.Finding) (*models.Finding, bool, error) {
	details, err := json.Marshal(f.Details)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal finding details: %w", err)
	}

	query := `
		INSERT INTO findings (
			id, account_id, rule_id, title, severity, status,
			resource_arn, resource_type, resource_id, details, cross_ref,
			first_seen, last_seen, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now(), now(), now())
		ON CONFLICT (account_id, rule_id, resource_id) DO UPDATE SET
			title = EXCLUDED.title,
			severity = EXCLUDED.severity,
			status = EXCLUDED.status,
			resource_arn = EXCLUDED.resource_arn,
			resource_type = EXCLUDED.resource_type,
			details = EXCLUDED.details,
			cross_ref = EXCLUDED.cross_ref,
			last_seen = now(),
			updated_at = now()
		RETURNING id, first_seen, last_seen, created_at, updated_at, (xmax = 0) AS inserted`

	stored := *f
	var inserted bool
	err = r.pool.QueryRow(ctx, query,
		uuid.New(), f.AccountID, f.RuleID, f.Title, string(f.Severity), string(f.Status),
		f.Resource.ARN, f.Resource.Type, f.Resource.ID, details, f.CrossRef,
	).Scan(&stored.ID, &stored.FirstSeen, &stored.LastSeen, &stored.CreatedAt, &stored.UpdatedAt, &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert finding: %w", err)
	}

	return &stored, inserted, nil
}

// ListByAccount returns findings for one account, most recently seen first
func (r *FindingRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*models.Finding, error) {
	if limit <= 0 {
		limit = 100
	}

	query := selectFindings + `
		WHERE account_id = $1
		ORDER BY last_seen DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	defer rows.Close()

	return scanFindings(rows)
}

// ListActiveByOrg returns all ACTIVE findings across an organization's
// accounts. Used by gap computation to decide which controls have an
// active finding mapped to them.
func (r *FindingRepository) ListActiveByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Finding, error) {
	query := `
		SELECT f.id, f.account_id, f.rule_id, f.title, f.severity, f.status,
		       f.resource_arn, f.resource_type, f.resource_id, f.details, f.cross_ref,
		       f.first_seen, f.last_seen, f.created_at, f.updated_at
		FROM findings f
		JOIN accounts a ON a.id = f.account_id
		WHERE a.org_id = $1 AND f.status = 'ACTIVE'
		ORDER BY f.last_seen DESC`

	rows, err := r.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active findings: %w", err)
	}
	defer rows.Close()

	return scanFindings(rows)
}

const selectFindings = `
	SELECT id, account_id, rule_id, title, severity, status,
	       resource_arn, resource_type, resource_id, details, cross_ref,
	       first_seen, last_seen, created_at, updated_at
	FROM findings`

type findingRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanFindings(rows findingRows) ([]*models.Finding, error) {
	var findings []*models.Finding
	for rows.Next() {
		var (
			f        models.Finding
			severity string
			status   string
			details  []byte
		)
		err := rows.Scan(
			&f.ID, &f.AccountID, &f.RuleID, &f.Title, &severity, &status,
			&f.Resource.ARN, &f.Resource.Type, &f.Resource.ID, &details, &f.CrossRef,
			&f.FirstSeen, &f.LastSeen, &f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.Severity = models.Severity(severity)
		f.Status = models.FindingStatus(status)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &f.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal finding details: %w", err)
			}
		}
		findings = append(findings, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read findings: %w", err)
	}
	return findings, nil
}
