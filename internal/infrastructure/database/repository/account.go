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

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("repository: not found")

// AccountRepository handles cloud account persistence
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `
		SELECT id, org_id, name, provider, external_id, credential_ref, regions,
		       status, last_scan_at, last_scan_error, created_at, updated_at
		FROM accounts
		WHERE id = $1`

	var a models.Account
	var status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.OrgID, &a.Name, &a.Provider, &a.ExternalID, &a.CredentialRef,
		&a.Regions, &status, &a.LastScanAt, &a.LastScanError, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	a.Status = models.AccountStatus(status)
	return &a, nil
}

// MarkScanning flags an account as being scanned
func (r *AccountRepository) MarkScanning(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET status = 'scanning', updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark account scanning: %w", err)
	}
	return nil
}

// FinishScan records scan completion: timestamp, health status and the
// last error (empty on success).
func (r *AccountRepository) FinishScan(ctx context.Context, id uuid.UUID, scanErr string) error {
	status := string(models.AccountStatusConnected)
	if scanErr != "" {
		status = string(models.AccountStatusError)
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET status = $2, last_scan_at = now(), last_scan_error = $3, updated_at = now()
		WHERE id = $1`,
		id, status, scanErr)
	if err != nil {
		return fmt.Errorf("failed to finish scan: %w", err)
	}
	return nil
}
