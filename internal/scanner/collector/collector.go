// Package collector gathers raw posture signal from a cloud account. Each
// service area is collected independently: one area failing is logged and
// recorded in its AreaStatus, contributing empty signal rather than
// aborting the scan.
package collector

import (
	"context"
	"sync"
	"time"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/config"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// ProviderAPI is the set of read-only query capabilities the collector
// needs from a cloud provider.
type ProviderAPI interface {
	Identity(ctx context.Context, regions []string) (models.IdentitySignal, error)
	Compute(ctx context.Context, regions []string) (models.ComputeSignal, error)
	Network(ctx context.Context, regions []string) (models.NetworkSignal, error)
	Storage(ctx context.Context, regions []string) (models.StorageSignal, error)
	AuditTrail(ctx context.Context, regions []string) (models.AuditTrailSignal, error)
	SecurityFeed(ctx context.Context, regions []string) (models.SecurityFeedSignal, error)
}

// Collector runs all service-area collections for one scan
type Collector struct {
	cfg    config.ScannerConfig
	logger *logger.Logger
}

// New creates a collector
func New(cfg config.ScannerConfig, log *logger.Logger) *Collector {
	// A zero capacity would leave every area goroutine blocked on the
	// semaphore send
	if cfg.MaxConcurrentAreas < 1 {
		cfg.MaxConcurrentAreas = 1
	}
	return &Collector{
		cfg:    cfg,
		logger: log.WithComponent("collector"),
	}
}

// areaJob binds one service area to the closure that collects it into the
// shared signal. Writes into sig are disjoint per area, guarded by mu only
// because AreaStatus appends share a slice.
type areaJob struct {
	area models.ServiceArea
	run  func(ctx context.Context) error
}

// Collect gathers signal from every service area concurrently and returns
// the aggregate plus a per-area status list. It never returns an error:
// area failures degrade to empty signal by design.
func (c *Collector) Collect(ctx context.Context, api ProviderAPI, regions []string) (*models.CloudSignal, []models.AreaStatus) {
	sig := &models.CloudSignal{}

	jobs := []areaJob{
		{models.AreaIdentity, func(ctx context.Context) error {
			out, err := api.Identity(ctx, regions)
			if err != nil {
				return err
			}
			sig.Identity = out
			return nil
		}},
		{models.AreaCompute, func(ctx context.Context) error {
			out, err := api.Compute(ctx, regions)
			if err != nil {
				return err
			}
			sig.Compute = out
			return nil
		}},
		{models.AreaNetwork, func(ctx context.Context) error {
			out, err := api.Network(ctx, regions)
			if err != nil {
				return err
			}
			sig.Network = out
			return nil
		}},
		{models.AreaStorage, func(ctx context.Context) error {
			out, err := api.Storage(ctx, regions)
			if err != nil {
				return err
			}
			sig.Storage = out
			return nil
		}},
		{models.AreaAuditTrail, func(ctx context.Context) error {
			out, err := api.AuditTrail(ctx, regions)
			if err != nil {
				return err
			}
			sig.AuditTrail = out
			return nil
		}},
	}

	if c.cfg.SecurityFeed {
		jobs = append(jobs, areaJob{models.AreaSecurityFeed, func(ctx context.Context) error {
			out, err := api.SecurityFeed(ctx, regions)
			if err != nil {
				return err
			}
			sig.SecurityFeed = out
			return nil
		}})
	}

	statuses := make([]models.AreaStatus, 0, len(jobs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	sem := make(chan struct{}, c.cfg.MaxConcurrentAreas)
	for _, job := range jobs {
		wg.Add(1)
		go func(job areaJob) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			err := job.run(ctx)
			status := models.AreaStatus{
				Area:     job.area,
				OK:       err == nil,
				Duration: time.Since(start),
			}
			if err != nil {
				status.Error = err.Error()
				c.logger.Warn().
					Str("area", string(job.area)).
					Err(err).
					Msg("service area collection failed, treating as empty signal")
			} else {
				c.logger.Debug().
					Str("area", string(job.area)).
					Dur("duration", status.Duration).
					Msg("service area collected")
			}

			mu.Lock()
			statuses = append(statuses, status)
			mu.Unlock()
		}(job)
	}
	wg.Wait()

	// Stable order for callers and logs
	ordered := make([]models.AreaStatus, 0, len(statuses))
	for _, job := range jobs {
		for _, st := range statuses {
			if st.Area == job.area {
				ordered = append(ordered, st)
				break
			}
		}
	}

	return sig, ordered
}
