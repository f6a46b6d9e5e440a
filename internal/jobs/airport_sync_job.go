package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"travelbook/airports/internal/logging"
	"travelbook/airports/internal/services"
)

// AirportSyncer is the part of the sync service the scheduled job drives.
type AirportSyncer interface {
	SyncRegion(ctx context.Context, regionCode string) *services.SyncResult
	RefreshStale(ctx context.Context, daysOld, batchSize int) services.StaleRefreshResult
}

// RunSummary records the outcome of one job run.
type RunSummary struct {
	StartedAt      time.Time                   `json:"startedAt"`
	Duration       time.Duration               `json:"duration"`
	RegionsSynced  int                         `json:"regionsSynced"`
	RegionsFailed  int                         `json:"regionsFailed"`
	AirportsSynced int                         `json:"airportsSynced"`
	Stale          services.StaleRefreshResult `json:"stale"`
}

// AirportSyncJob re-syncs the configured regions and then refreshes stale airports.
type AirportSyncJob struct {
	syncer    AirportSyncer
	regions   []string
	staleDays int
	batchSize int

	mu      sync.Mutex
	running bool
	last    *RunSummary
}

// NewAirportSyncJob creates a new airport sync job instance
func NewAirportSyncJob(syncer AirportSyncer, regions []string, staleDays, batchSize int) *AirportSyncJob {
	return &AirportSyncJob{
		syncer:    syncer,
		regions:   regions,
		staleDays: staleDays,
		batchSize: batchSize,
	}
}

var ErrJobRunning = errors.New("airport sync job already running")

// Run executes one pass. Overlapping runs are rejected with ErrJobRunning.
func (j *AirportSyncJob) Run(ctx context.Context) (*RunSummary, error) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return nil, ErrJobRunning
	}
	j.running = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	summary := &RunSummary{StartedAt: time.Now()}
	logging.Info("[AirportSyncJob] Starting airport sync", "regions", j.regions)

	for _, region := range j.regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := j.syncer.SyncRegion(ctx, region)
		if !result.Success {
			summary.RegionsFailed++
			logging.Warn("[AirportSyncJob] Region sync failed", "region", region, "error", result.Error)
			// Continue with other regions even if one fails
			continue
		}
		summary.RegionsSynced++
		summary.AirportsSynced += result.Total
	}

	summary.Stale = j.syncer.RefreshStale(ctx, j.staleDays, j.batchSize)
	summary.Duration = time.Since(summary.StartedAt)

	logging.Info("[AirportSyncJob] Completed airport sync",
		"regions_synced", summary.RegionsSynced,
		"regions_failed", summary.RegionsFailed,
		"airports", summary.AirportsSynced,
		"stale_updated", summary.Stale.Updated,
		"stale_errors", summary.Stale.Errors,
		"duration_ms", summary.Duration.Milliseconds())

	j.mu.Lock()
	j.last = summary
	j.mu.Unlock()
	return summary, nil
}

// LastRun returns the most recent completed run, or nil.
func (j *AirportSyncJob) LastRun() *RunSummary {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}

// RunScheduled runs the job immediately and then on every tick until ctx is done.
func (j *AirportSyncJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := j.Run(ctx); err != nil {
		logging.Error("[AirportSyncJob] Error in initial run", "error", err.Error())
	}

	for {
		select {
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil {
				logging.Error("[AirportSyncJob] Error in scheduled run", "error", err.Error())
			}
		case <-ctx.Done():
			logging.Info("[AirportSyncJob] Shutting down scheduled sync")
			return
		}
	}
}
