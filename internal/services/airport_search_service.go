package services

import (
	"context"
	"strings"
	"time"

	"travelbook/airports/internal/common"
	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/db/repositories"
	"travelbook/airports/internal/logging"
	"travelbook/airports/internal/metrics"
	"travelbook/airports/internal/models/dtos"
	"travelbook/airports/internal/providers"
)

const (
	searchCacheName   = "airport_search"
	regionCacheName   = "airport_region"
	responseCacheName = "airport_response"
)

// SearchResult is the body of a live airport search.
type SearchResult struct {
	Airports []dtos.AirportSummary `json:"airports"`
	Total    int                   `json:"total"`
	Source   string                `json:"source"`
	Cached   bool                  `json:"cached"`
}

// AirportSearchService answers free-text lookups from the provider, ranked by
// relevance and cached, falling back to the local table when the provider fails.
type AirportSearchService struct {
	provider AirportProvider
	local    *AirportSyncService
	cache    common.CacheInterface
	ttl      time.Duration
	metrics  *metrics.MetricsRegistry
}

func NewAirportSearchService(provider AirportProvider, local *AirportSyncService, cache common.CacheInterface, ttl time.Duration, m *metrics.MetricsRegistry) *AirportSearchService {
	return &AirportSearchService{provider: provider, local: local, cache: cache, ttl: ttl, metrics: m}
}

// Search runs a live provider search for query, optionally limited to a country.
func (s *AirportSearchService) Search(ctx context.Context, query, country string, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}
	key := common.SearchCacheKey(query, country, limit)

	var cached SearchResult
	if s.cache.Get(key, &cached) {
		s.metrics.CacheLookup(searchCacheName, true)
		cached.Cached = true
		return &cached, nil
	}
	s.metrics.CacheLookup(searchCacheName, false)

	locations, err := s.provider.SearchAirports(ctx, query, limit*2)
	if err != nil {
		if providers.IsConfigurationError(err) {
			logging.Error("[AirportSearch] Provider credentials missing, using local data", "error", err.Error())
		} else {
			logging.Warn("[AirportSearch] Provider search failed, using local data", "query", query, "error", err.Error())
		}
		return s.searchLocal(ctx, query, country, limit, err)
	}

	seen := make(map[string]bool, len(locations))
	airports := make([]dtos.AirportSummary, 0, len(locations))
	for _, loc := range locations {
		summary := providers.ToSummary(loc, constants.SourceProviderSearch)
		if summary.Code == "" || !matchesCountry(summary, country) {
			continue
		}
		dedupeKey := summary.Code + "|" + string(summary.Type)
		if seen[dedupeKey] {
			continue
		}
		seen[dedupeKey] = true
		airports = append(airports, summary)
	}

	airports = RankByRelevance(query, airports)
	if len(airports) > limit {
		airports = airports[:limit]
	}

	result := &SearchResult{
		Airports: airports,
		Total:    len(airports),
		Source:   string(constants.ResponseSourceProvider),
	}
	s.cache.Set(key, result, s.ttl)
	return result, nil
}

// Region returns a known region's airports, cached per region.
func (s *AirportSearchService) Region(ctx context.Context, region string) (*dtos.RegionAirports, bool, error) {
	key := common.RegionCacheKey(region)

	var cached dtos.RegionAirports
	if s.cache.Get(key, &cached) {
		s.metrics.CacheLookup(regionCacheName, true)
		return &cached, true, nil
	}
	s.metrics.CacheLookup(regionCacheName, false)

	result, err := s.provider.GetKnownRegionAirports(ctx, region)
	if err != nil {
		return nil, false, err
	}
	// degraded answers are never cached
	if !result.Degraded {
		s.cache.Set(key, result, s.ttl)
	}
	return result, false, nil
}

// SampleCacheSize publishes the cache entry count every interval until ctx is done.
// Len is a keyspace scan on redis, so it stays off the request path.
func (s *AirportSearchService) SampleCacheSize(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		s.metrics.CacheSize(responseCacheName, s.cache.Len())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *AirportSearchService) searchLocal(ctx context.Context, query, country string, limit int, providerErr error) (*SearchResult, error) {
	if s.local == nil {
		return nil, providerErr
	}

	records, err := s.local.SearchLocal(ctx, query, repositories.SearchOptions{Country: country, Limit: limit})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, providerErr
	}

	airports := make([]dtos.AirportSummary, len(records))
	for i, r := range records {
		airports[i] = AirportToSummary(r)
	}
	return &SearchResult{
		Airports: airports,
		Total:    len(airports),
		Source:   string(constants.ResponseSourceDatabase),
	}, nil
}

func matchesCountry(a dtos.AirportSummary, country string) bool {
	country = strings.TrimSpace(country)
	if country == "" {
		return true
	}
	if strings.EqualFold(a.CountryCode, country) {
		return true
	}
	return strings.Contains(strings.ToLower(a.Country), strings.ToLower(country))
}
