package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/config"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/collector"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/credentials"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/rules"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// ErrScanInProgress is returned when another scan already holds the
// account's scan lock.
var ErrScanInProgress = errors.New("scan already in progress for this account")

// AccountStore is the slice of account persistence the scan needs
type AccountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	MarkScanning(ctx context.Context, id uuid.UUID) error
	FinishScan(ctx context.Context, id uuid.UUID, scanErr string) error
}

// ScanLocker serializes scans per account and invalidates derived caches.
// The lock is advisory: store-level uniqueness keeps reconciliation
// correct even if two scans race past it.
type ScanLocker interface {
	AcquireScanLock(ctx context.Context, accountID string, ttl time.Duration) (bool, error)
	ReleaseScanLock(ctx context.Context, accountID string) error
	InvalidateGapReport(ctx context.Context, orgID string) error
}

// ScanService orchestrates one posture scan end to end: credential
// resolution, signal collection, rule evaluation, reconciliation, and the
// downstream control-status and risk drivers.
type ScanService struct {
	accounts      AccountStore
	vault         credentials.Vault
	provider      *collector.Client
	collector     *collector.Collector
	registry      *rules.Registry
	reconciler    *Reconciler
	controlDriver *ControlStatusDriver
	risks         *RiskManager
	locker        ScanLocker
	cfg           config.ScannerConfig
	logger        *logger.Logger
}

// NewScanService creates a ScanService
func NewScanService(
	accounts AccountStore,
	vault credentials.Vault,
	provider *collector.Client,
	coll *collector.Collector,
	registry *rules.Registry,
	reconciler *Reconciler,
	controlDriver *ControlStatusDriver,
	risks *RiskManager,
	locker ScanLocker,
	cfg config.ScannerConfig,
	log *logger.Logger,
) *ScanService {
	return &ScanService{
		accounts:      accounts,
		vault:         vault,
		provider:      provider,
		collector:     coll,
		registry:      registry,
		reconciler:    reconciler,
		controlDriver: controlDriver,
		risks:         risks,
		locker:        locker,
		cfg:           cfg,
		logger:        log.WithComponent("scan"),
	}
}

// Scan runs a full posture scan for one account. Credential failure is
// fatal and writes nothing; a failed service area degrades to a partial
// scan. The summary carries the findings from this run so callers do not
// need to re-read storage.
func (s *ScanService) Scan(ctx context.Context, accountID uuid.UUID) (*models.ScanSummary, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithAccountID(accountID.String())

	if s.locker != nil {
		acquired, err := s.locker.AcquireScanLock(ctx, accountID.String(), s.cfg.LockTTL)
		if err != nil {
			log.Warn().Err(err).Msg("scan lock unavailable, proceeding without it")
		} else if !acquired {
			return nil, ErrScanInProgress
		} else {
			defer func() {
				if err := s.locker.ReleaseScanLock(context.WithoutCancel(ctx), accountID.String()); err != nil {
					log.Warn().Err(err).Msg("failed to release scan lock")
				}
			}()
		}
	}

	startedAt := time.Now()
	log.Info().Str("account", account.Name).Msg("starting posture scan")

	if err := s.accounts.MarkScanning(ctx, accountID); err != nil {
		return nil, err
	}

	scanCtx, cancel := context.WithTimeout(ctx, s.cfg.Deadline)
	defer cancel()

	summary, scanErr := s.run(scanCtx, account, startedAt, log)

	finishMsg := ""
	if scanErr != nil {
		finishMsg = scanErr.Error()
	}
	if err := s.accounts.FinishScan(context.WithoutCancel(ctx), accountID, finishMsg); err != nil {
		log.Error().Err(err).Msg("failed to record scan completion")
	}

	if scanErr != nil {
		log.Error().Err(scanErr).Msg("posture scan failed")
		return summary, scanErr
	}

	if s.locker != nil {
		if err := s.locker.InvalidateGapReport(ctx, account.OrgID.String()); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate gap report cache")
		}
	}

	log.Info().
		Int("findings", summary.FindingCount).
		Int("assets", summary.AssetCount).
		Dur("duration", summary.Duration).
		Msg("posture scan completed")
	return summary, nil
}

func (s *ScanService) run(ctx context.Context, account *models.Account, startedAt time.Time, log *logger.Logger) (*models.ScanSummary, error) {
	material, err := s.vault.Fetch(ctx, account.CredentialRef)
	if err != nil {
		return nil, err
	}
	resolved, err := credentials.Resolve(ctx, material, s.provider)
	if err != nil {
		return nil, err
	}

	api := s.provider.WithCredentials(resolved)
	signal, areaStatuses := s.collector.Collect(ctx, api, account.Regions)

	result := s.registry.EvaluateAll(signal, time.Now())

	stored, stats, err := s.reconciler.Reconcile(ctx, account, result)
	if err != nil {
		return nil, err
	}

	// Driver failures are recovered per finding inside the drivers
	s.controlDriver.Apply(ctx, account.OrgID, stored)
	s.risks.Apply(ctx, account.OrgID, stored)

	completedAt := time.Now()
	return &models.ScanSummary{
		AccountID:    account.ID,
		StartedAt:    startedAt,
		CompletedAt:  completedAt,
		Duration:     completedAt.Sub(startedAt),
		AssetCount:   stats.Assets,
		FindingCount: len(stored),
		Findings:     stored,
		AreaStatuses: areaStatuses,
	}, nil
}
