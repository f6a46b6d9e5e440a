package jobs

import (
	"context"

	"travelbook/airports/internal/config"
)

// InitializeJobs initializes and starts all background jobs
func InitializeJobs(ctx context.Context, syncer AirportSyncer, cfg config.SyncConfig) *AirportSyncJob {
	job := NewAirportSyncJob(syncer, cfg.Regions, cfg.StaleDays, cfg.BatchSize)

	if cfg.Interval > 0 {
		go job.RunScheduled(ctx, cfg.Interval)
	}

	return job
}
