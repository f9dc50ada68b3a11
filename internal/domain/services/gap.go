package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/mapping"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// Urgency weights per gap reason. Flags are independent and additive.
const (
	urgencyHasFinding = 8
	urgencyNoEvidence = 4
	urgencyNoPolicy   = 2
	urgencyNotStarted = 1
)

// ControlReader is the slice of control persistence gap computation needs
type ControlReader interface {
	ListForOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Control, error)
	StatusesForOrg(ctx context.Context, orgID uuid.UUID) (map[string]*models.ControlStatus, error)
}

// PolicyReader reports which controls are covered by an approved policy
type PolicyReader interface {
	ApprovedControls(ctx context.Context, orgID uuid.UUID) (map[string]bool, error)
}

// ActiveFindingReader lists the ACTIVE findings across an organization
type ActiveFindingReader interface {
	ListActiveByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Finding, error)
}

// GapCache caches computed reports. Nil disables caching.
type GapCache interface {
	GetCachedGapReport(ctx context.Context, orgID string, dest any) error
	CacheGapReport(ctx context.Context, orgID string, report any, ttl time.Duration) error
}

// GapService is the read-side aggregation ranking unsatisfied controls by
// urgency. It is pure over committed state and safe to run concurrently
// with an in-flight scan.
type GapService struct {
	controls ControlReader
	policies PolicyReader
	findings ActiveFindingReader
	cache    GapCache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewGapService creates a GapService
func NewGapService(controls ControlReader, policies PolicyReader, findings ActiveFindingReader, cache GapCache, cacheTTL time.Duration, log *logger.Logger) *GapService {
	return &GapService{
		controls: controls,
		policies: policies,
		findings: findings,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log.WithComponent("gap"),
	}
}

// Report returns the gap report for an organization, served from cache
// when available unless refresh is set.
func (s *GapService) Report(ctx context.Context, orgID uuid.UUID, refresh bool) (*models.GapReport, error) {
	if s.cache != nil && !refresh {
		var cached models.GapReport
		err := s.cache.GetCachedGapReport(ctx, orgID.String(), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("gap report cache read failed, computing")
		}
	}

	report, err := s.Compute(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheGapReport(ctx, orgID.String(), report, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache gap report")
		}
	}
	return report, nil
}

// Compute aggregates control definitions, control statuses, approved
// policy coverage, and active findings into a ranked gap report.
func (s *GapService) Compute(ctx context.Context, orgID uuid.UUID) (*models.GapReport, error) {
	controls, err := s.controls.ListForOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	statuses, err := s.controls.StatusesForOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	approved, err := s.policies.ApprovedControls(ctx, orgID)
	if err != nil {
		return nil, err
	}
	active, err := s.findings.ListActiveByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}

	// Active finding titles per mapped control
	findingTitles := make(map[string][]string)
	for _, f := range active {
		for _, controlID := range mapping.ControlsForRule(f.RuleID) {
			findingTitles[controlID] = append(findingTitles[controlID], f.Title)
		}
	}

	report := &models.GapReport{TotalControls: len(controls)}
	for _, c := range controls {
		status := models.ControlNotStarted
		evidenceCount := 0
		if cs, ok := statuses[c.ControlID]; ok {
			status = cs.Status
			evidenceCount = cs.EvidenceCount
		}
		if status.Terminal() {
			report.SatisfiedControls++
			continue
		}

		item := models.GapItem{
			ControlID:      c.ControlID,
			Framework:      c.Framework,
			Title:          c.Title,
			Status:         status,
			ActiveFindings: findingTitles[c.ControlID],
		}
		if status == models.ControlNotStarted {
			item.Reasons = append(item.Reasons, models.GapReasonNotStarted)
			item.Urgency += urgencyNotStarted
		}
		if evidenceCount == 0 {
			item.Reasons = append(item.Reasons, models.GapReasonNoEvidence)
			item.Urgency += urgencyNoEvidence
		}
		if !approved[c.ControlID] {
			item.Reasons = append(item.Reasons, models.GapReasonNoPolicy)
			item.Urgency += urgencyNoPolicy
		}
		if len(findingTitles[c.ControlID]) > 0 {
			item.Reasons = append(item.Reasons, models.GapReasonHasFinding)
			item.Urgency += urgencyHasFinding
		}
		report.Items = append(report.Items, item)
	}

	// Ties retain encounter order
	sort.SliceStable(report.Items, func(i, j int) bool {
		return report.Items[i].Urgency > report.Items[j].Urgency
	})

	if report.TotalControls > 0 {
		report.CompliancePercent = int(math.Round(float64(report.SatisfiedControls) / float64(report.TotalControls) * 100))
	} else {
		report.CompliancePercent = 100
	}
	return report, nil
}
