package handlers

import (
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/services"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/infrastructure/cache"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/infrastructure/database"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/infrastructure/database/repository"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Scans    *ScanHandler
	Gaps     *GapHandler
	Findings *FindingsHandler
	Risks    *RisksHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Scan   *services.ScanService
	Gap    *services.GapService
	Repos  *repository.Repositories
	DB     *database.PostgresDB
	Cache  *cache.RedisCache
	Logger *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.DB, deps.Cache, deps.Logger),
		Scans:    NewScanHandler(deps.Scan, deps.Logger),
		Gaps:     NewGapHandler(deps.Gap, deps.Logger),
		Findings: NewFindingsHandler(deps.Repos, deps.Logger),
		Risks:    NewRisksHandler(deps.Repos, deps.Logger),
	}
}
