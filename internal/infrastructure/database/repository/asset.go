package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
)

// AssetRepository handles asset persistence. Assets key on
// (org_id, external_id); the scanner never deletes them, staleness shows
// up as an old last_seen.
type AssetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(pool *pgxpool.Pool) *AssetRepository {
	return &AssetRepository{pool: pool}
}

// Upsert creates or refreshes an asset on (org_id, external_id)
func (r *AssetRepository) Upsert(ctx context.Context, a *models.Asset) (*models.Asset, error) {
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal asset metadata: %w", err)
	}

	query := `
		INSERT INTO assets (
			id, org_id, account_id, name, type, provider, external_id, region,
			metadata, first_seen, last_seen
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT (org_id, external_id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			region = EXCLUDED.region,
			metadata = EXCLUDED.metadata,
			last_seen = now()
		RETURNING id, first_seen, last_seen`

	stored := *a
	err = r.pool.QueryRow(ctx, query,
		uuid.New(), a.OrgID, a.AccountID, a.Name, a.Type, a.Provider, a.ExternalID, a.Region, metadata,
	).Scan(&stored.ID, &stored.FirstSeen, &stored.LastSeen)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert asset: %w", err)
	}

	return &stored, nil
}

// ListByOrg returns assets for an organization, most recently seen first
func (r *AssetRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Asset, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, org_id, account_id, name, type, provider, external_id, region,
		       metadata, first_seen, last_seen
		FROM assets
		WHERE org_id = $1
		ORDER BY last_seen DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		var (
			a        models.Asset
			metadata []byte
		)
		err := rows.Scan(
			&a.ID, &a.OrgID, &a.AccountID, &a.Name, &a.Type, &a.Provider,
			&a.ExternalID, &a.Region, &metadata, &a.FirstSeen, &a.LastSeen,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal asset metadata: %w", err)
			}
		}
		assets = append(assets, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assets: %w", err)
	}
	return assets, nil
}
