package services

import (
	"context"
	"errors"
	"time"

	"travelbook/airports/internal/common"
	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/db/repositories"
	"travelbook/airports/internal/logging"
	"travelbook/airports/internal/metrics"
	"travelbook/airports/internal/models/dtos"
	"travelbook/airports/internal/models/gorm"
	"travelbook/airports/internal/providers"
)

// AirportProvider is the subset of the travel provider client used for syncing.
type AirportProvider interface {
	SearchAirports(ctx context.Context, keyword string, limit int) ([]dtos.Location, error)
	SearchAirportsByCountry(ctx context.Context, countryCode string, limit int) ([]dtos.AirportSummary, error)
	GetAirportDetails(ctx context.Context, code string) (*dtos.Location, error)
	GetKnownRegionAirports(ctx context.Context, regionCode string) (*dtos.RegionAirports, error)
}

// AirportStore is the persistence surface the services depend on.
type AirportStore interface {
	BulkUpsert(ctx context.Context, airports []gorm.Airport) (*repositories.BulkUpsertResult, error)
	FindByCode(ctx context.Context, code string) (*gorm.Airport, error)
	Search(ctx context.Context, term string, opts repositories.SearchOptions) ([]gorm.Airport, error)
	FindByCountry(ctx context.Context, country string, opts repositories.CountryOptions) ([]gorm.Airport, error)
	GetPopular(ctx context.Context, limit int) ([]gorm.Airport, error)
	GetStale(ctx context.Context, daysOld int) ([]gorm.Airport, error)
	IncrementSearchCount(ctx context.Context, ids []string) error
	Deactivate(ctx context.Context, code string) (bool, error)
	Stats(ctx context.Context, countryCode string) (*repositories.AirportStats, error)
}

var _ AirportStore = (*repositories.AirportRepository)(nil)
var _ AirportProvider = (*providers.TravelProvider)(nil)

// SyncResult summarizes a region or country sync. Failures are reported through
// Success/Error and never returned as Go errors.
type SyncResult struct {
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	ErrorCode string         `json:"errorCode,omitempty"`
	Region    string         `json:"region,omitempty"`
	Country   string         `json:"country,omitempty"`
	Source    string         `json:"source,omitempty"`
	Degraded  bool           `json:"degraded,omitempty"`
	Total     int            `json:"total"`
	Upserted  int            `json:"upserted"`
	Modified  int            `json:"modified"`
	Matched   int            `json:"matched"`
	Skipped   int            `json:"skipped"`
	Airports  []gorm.Airport `json:"airports,omitempty"`
}

// RefreshResult is the outcome of refreshing one airport.
type RefreshResult struct {
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	ErrorCode string        `json:"errorCode,omitempty"`
	Created   bool          `json:"created"`
	Airport   *gorm.Airport `json:"airport,omitempty"`
}

// StaleRefreshResult aggregates a stale refresh run.
type StaleRefreshResult struct {
	Updated int    `json:"updated"`
	Errors  int    `json:"errors"`
	Total   int    `json:"total"`
	Error   string `json:"error,omitempty"`
}

// SyncOptions tunes batch behavior of stale refreshes.
type SyncOptions struct {
	StaleDays  int
	BatchSize  int
	BatchDelay time.Duration
}

// AirportSyncService moves provider data into the airports table and exposes
// the local search surface.
type AirportSyncService struct {
	repo     AirportStore
	provider AirportProvider
	metrics  *metrics.MetricsRegistry
	opts     SyncOptions
}

func NewAirportSyncService(repo AirportStore, provider AirportProvider, m *metrics.MetricsRegistry, opts SyncOptions) *AirportSyncService {
	if opts.StaleDays <= 0 {
		opts.StaleDays = constants.DefaultStaleDays
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = constants.DefaultBatchSize
	}
	return &AirportSyncService{repo: repo, provider: provider, metrics: m, opts: opts}
}

// SyncRegion fetches a known region through the hybrid provider strategy and
// upserts every provider-sourced record. Static fallback records are not
// persisted so they never look freshly synced.
func (s *AirportSyncService) SyncRegion(ctx context.Context, regionCode string) *SyncResult {
	start := time.Now()

	region, err := s.provider.GetKnownRegionAirports(ctx, regionCode)
	if err != nil {
		logging.Error("[AirportSync] Region fetch failed", "region", regionCode, "error", err.Error())
		return failedSync(err, regionCode, "")
	}

	result := &SyncResult{
		Region:   region.Region,
		Country:  region.CountryCode,
		Source:   region.Source,
		Degraded: region.Degraded,
	}

	if region.Degraded {
		logging.Warn("[AirportSync] Provider unavailable, static region list not persisted", "region", region.Region)
		result.Error = constants.GetErrorMessage(constants.ErrCodeProviderUnavailable)
		result.ErrorCode = constants.ErrCodeProviderUnavailable
		result.Skipped = len(region.Airports)
		s.metrics.ObserveSync(constants.SyncEventRegion, time.Since(start), 0, len(region.Airports))
		return result
	}

	records := make([]gorm.Airport, 0, len(region.Airports))
	for _, a := range region.Airports {
		if a.Source == constants.SourceStaticFallback {
			result.Skipped++
			continue
		}
		records = append(records, SummaryToAirport(a, region.CountryCode))
	}

	s.persist(ctx, constants.SyncEventRegion, records, result, start)
	return result
}

// SyncCountry upserts the results of a country-scoped provider search.
func (s *AirportSyncService) SyncCountry(ctx context.Context, countryCode string, limit int) *SyncResult {
	start := time.Now()

	summaries, err := s.provider.SearchAirportsByCountry(ctx, countryCode, limit)
	if err != nil {
		logging.Error("[AirportSync] Country search failed", "country", countryCode, "error", err.Error())
		return failedSync(err, "", countryCode)
	}

	result := &SyncResult{Country: countryCode, Source: string(constants.ResponseSourceProvider)}
	records := make([]gorm.Airport, 0, len(summaries))
	for _, a := range summaries {
		records = append(records, SummaryToAirport(a, countryCode))
	}

	s.persist(ctx, constants.SyncEventCountry, records, result, start)
	return result
}

func (s *AirportSyncService) persist(ctx context.Context, event string, records []gorm.Airport, result *SyncResult, start time.Time) {
	summary, err := s.repo.BulkUpsert(ctx, records)
	if err != nil {
		logging.Error("[AirportSync] Bulk upsert failed", "event", event, "records", len(records), "error", err.Error())
		result.Success = false
		result.Error = err.Error()
		result.ErrorCode = constants.ErrCodeInternal
		s.metrics.ObserveSync(event, time.Since(start), 0, len(records))
		return
	}

	result.Success = true
	result.Total = summary.Total
	result.Upserted = summary.Upserted
	result.Modified = summary.Modified
	result.Matched = summary.Matched
	result.Skipped += summary.Skipped
	result.Airports = records

	s.metrics.ObserveSync(event, time.Since(start), summary.Total, summary.Skipped)
	logging.Info("[AirportSync] Sync complete",
		"event", event,
		"region", result.Region,
		"country", result.Country,
		"total", summary.Total,
		"upserted", summary.Upserted,
		"matched", summary.Matched,
		"duration_ms", time.Since(start).Milliseconds())
}

// RefreshAirport re-fetches one airport. Existing records are merged (only
// non-empty provider fields overwrite) and restamped; unknown codes are created.
func (s *AirportSyncService) RefreshAirport(ctx context.Context, code string) *RefreshResult {
	loc, err := s.provider.GetAirportDetails(ctx, code)
	if err != nil {
		logging.Warn("[AirportSync] Airport refresh failed", "code", code, "error", err.Error())
		return &RefreshResult{Error: err.Error(), ErrorCode: providers.ErrorCode(err)}
	}
	if loc == nil {
		return &RefreshResult{
			Error:     constants.MsgAirportNotFound,
			ErrorCode: constants.ErrCodeNotFound,
		}
	}

	existing, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return &RefreshResult{Error: err.Error(), ErrorCode: constants.ErrCodeInternal}
	}

	record := SummaryToAirport(providers.ToSummary(*loc, constants.SourceProviderDirect), "")
	if existing != nil {
		if record.CountryCode == "" {
			record.CountryCode = existing.CountryCode
		}
		// a refresh never clears a known international flag
		record.IsInternational = record.IsInternational || existing.IsInternational
	}

	if _, err := s.repo.BulkUpsert(ctx, []gorm.Airport{record}); err != nil {
		logging.Error("[AirportSync] Airport upsert failed", "code", code, "error", err.Error())
		return &RefreshResult{Error: err.Error(), ErrorCode: constants.ErrCodeInternal}
	}

	stored, err := s.repo.FindByCode(ctx, record.Code)
	if err != nil || stored == nil {
		if err == nil {
			err = errors.New(constants.MsgAirportNotFound)
		}
		return &RefreshResult{Error: err.Error(), ErrorCode: constants.ErrCodeInternal}
	}

	return &RefreshResult{Success: true, Created: existing == nil, Airport: stored}
}

// SearchLocal searches the airports table and counts one search hit per
// returned record.
func (s *AirportSyncService) SearchLocal(ctx context.Context, term string, opts repositories.SearchOptions) ([]gorm.Airport, error) {
	airports, err := s.repo.Search(ctx, term, opts)
	if err != nil {
		return nil, err
	}
	if len(airports) == 0 {
		return airports, nil
	}

	ids := make([]string, len(airports))
	for i := range airports {
		ids[i] = airports[i].ID
	}
	if err := s.repo.IncrementSearchCount(ctx, ids); err != nil {
		logging.Warn("[AirportSync] Failed to increment search counts", "error", err.Error())
		return airports, nil
	}
	for i := range airports {
		airports[i].SearchCount++
	}
	return airports, nil
}

// RefreshStale refreshes every airport older than daysOld in batches of
// batchSize. Individual failures are counted, never returned.
func (s *AirportSyncService) RefreshStale(ctx context.Context, daysOld, batchSize int) StaleRefreshResult {
	start := time.Now()
	if daysOld <= 0 {
		daysOld = s.opts.StaleDays
	}
	if batchSize <= 0 {
		batchSize = s.opts.BatchSize
	}

	stale, err := s.repo.GetStale(ctx, daysOld)
	if err != nil {
		logging.Error("[AirportSync] Failed to load stale airports", "error", err.Error())
		return StaleRefreshResult{Error: err.Error()}
	}

	codes := make([]string, len(stale))
	for i, a := range stale {
		codes[i] = a.Code
	}

	outcome := common.RunInBatches(ctx, codes, batchSize, s.opts.BatchDelay, func(ctx context.Context, code string) error {
		if r := s.RefreshAirport(ctx, code); !r.Success {
			return errors.New(r.Error)
		}
		return nil
	})

	s.metrics.ObserveSync(constants.SyncEventStale, time.Since(start), outcome.Succeeded, outcome.Failed)
	logging.Info("[AirportSync] Stale refresh complete",
		"days_old", daysOld,
		"updated", outcome.Succeeded,
		"errors", outcome.Failed,
		"total", outcome.Total,
		"duration_ms", time.Since(start).Milliseconds())

	return StaleRefreshResult{Updated: outcome.Succeeded, Errors: outcome.Failed, Total: outcome.Total}
}

// GetStats returns table aggregates, optionally with a per-country count.
func (s *AirportSyncService) GetStats(ctx context.Context, countryCode string) (*repositories.AirportStats, error) {
	return s.repo.Stats(ctx, countryCode)
}

// FindByCode returns the stored record in any state, nil when the code was never stored.
func (s *AirportSyncService) FindByCode(ctx context.Context, code string) (*gorm.Airport, error) {
	return s.repo.FindByCode(ctx, code)
}

func (s *AirportSyncService) FindByCountry(ctx context.Context, country string, opts repositories.CountryOptions) ([]gorm.Airport, error) {
	return s.repo.FindByCountry(ctx, country, opts)
}

func (s *AirportSyncService) GetPopular(ctx context.Context, limit int) ([]gorm.Airport, error) {
	return s.repo.GetPopular(ctx, limit)
}

// Deactivate hides an airport; returns false when the code is unknown.
func (s *AirportSyncService) Deactivate(ctx context.Context, code string) (bool, error) {
	ok, err := s.repo.Deactivate(ctx, code)
	if err == nil && ok {
		logging.Info("[AirportSync] Airport deactivated", "code", code)
	}
	return ok, err
}

func failedSync(err error, region, country string) *SyncResult {
	return &SyncResult{
		Success:   false,
		Error:     err.Error(),
		ErrorCode: providers.ErrorCode(err),
		Region:    region,
		Country:   country,
	}
}
