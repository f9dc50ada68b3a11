package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles all repository instances
type Repositories struct {
	Accounts *AccountRepository
	Assets   *AssetRepository
	Findings *FindingRepository
	Controls *ControlRepository
	Risks    *RiskRepository
	Policies *PolicyRepository
}

// NewRepositories creates all repositories sharing one pool
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Accounts: NewAccountRepository(pool),
		Assets:   NewAssetRepository(pool),
		Findings: NewFindingRepository(pool),
		Controls: NewControlRepository(pool),
		Risks:    NewRiskRepository(pool),
		Policies: NewPolicyRepository(pool),
	}
}
