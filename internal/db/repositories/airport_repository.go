package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/logging"
	"travelbook/airports/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertBatchSize bounds the number of rows per INSERT ... ON CONFLICT statement.
const upsertBatchSize = 100

// AirportRepository handles airports table operations
type AirportRepository struct {
	db  *gormlib.DB
	now func() time.Time
}

// NewAirportRepository creates a new airport repository
func NewAirportRepository(db *gormlib.DB) *AirportRepository {
	return &AirportRepository{db: db, now: time.Now}
}

// WithClock overrides the time source used for sync and search stamps.
func (r *AirportRepository) WithClock(now func() time.Time) *AirportRepository {
	r.now = now
	return r
}

// SearchOptions narrows Search results.
type SearchOptions struct {
	Country string // country code or country-name substring
	Limit   int
}

// CountryOptions narrows FindByCountry results.
type CountryOptions struct {
	International *bool
	Limit         int
}

// BulkUpsertResult summarizes one BulkUpsert call.
type BulkUpsertResult struct {
	Total    int `json:"total"`
	Upserted int `json:"upserted"`
	Modified int `json:"modified"`
	Matched  int `json:"matched"`
	Skipped  int `json:"skipped"`
}

// AirportStats is the aggregate view returned by Stats.
type AirportStats struct {
	TotalAirports         int64   `gorm:"column:total_airports" json:"totalAirports"`
	ActiveAirports        int64   `gorm:"column:active_airports" json:"activeAirports"`
	InternationalAirports int64   `gorm:"column:international_airports" json:"internationalAirports"`
	CountriesCount        int64   `gorm:"column:countries_count" json:"countriesCount"`
	TotalSearches         int64   `gorm:"column:total_searches" json:"totalSearches"`
	AvgSearchCount        float64 `gorm:"column:avg_search_count" json:"avgSearchCount"`
	CountryCode           string  `gorm:"-" json:"countryCode,omitempty"`
	CountryAirports       int64   `gorm:"-" json:"countryAirports"`
}

// mergeAssignments only lets non-empty incoming values overwrite stored ones.
// Popularity counters, id and created_at are never touched by a sync.
var mergeAssignments = clause.Assignments(map[string]interface{}{
	"name":                     gormlib.Expr("COALESCE(NULLIF(excluded.name, ''), airports.name)"),
	"detailed_name":            gormlib.Expr("COALESCE(NULLIF(excluded.detailed_name, ''), airports.detailed_name)"),
	"city":                     gormlib.Expr("COALESCE(NULLIF(excluded.city, ''), airports.city)"),
	"country":                  gormlib.Expr("COALESCE(NULLIF(excluded.country, ''), airports.country)"),
	"country_code":             gormlib.Expr("COALESCE(NULLIF(excluded.country_code, ''), airports.country_code)"),
	"icao_code":                gormlib.Expr("COALESCE(excluded.icao_code, airports.icao_code)"),
	"latitude":                 gormlib.Expr("COALESCE(excluded.latitude, airports.latitude)"),
	"longitude":                gormlib.Expr("COALESCE(excluded.longitude, airports.longitude)"),
	"type":                     gormlib.Expr("COALESCE(NULLIF(excluded.type, ''), airports.type)"),
	"provider_sub_type":        gormlib.Expr("COALESCE(NULLIF(excluded.provider_sub_type, ''), airports.provider_sub_type)"),
	"provider_analytics_score": gormlib.Expr("COALESCE(excluded.provider_analytics_score, airports.provider_analytics_score)"),
	"aliases":                  gormlib.Expr("COALESCE(excluded.aliases, airports.aliases)"),
	"tags":                     gormlib.Expr("COALESCE(excluded.tags, airports.tags)"),
	"is_international":         gormlib.Expr("excluded.is_international"),
	"is_active":                gormlib.Expr("excluded.is_active"),
	"source":                   gormlib.Expr("excluded.source"),
	"provider_last_synced_at":  gormlib.Expr("excluded.provider_last_synced_at"),
	"updated_at":               gormlib.Expr("excluded.updated_at"),
})

// BulkUpsert writes records keyed by code in batched INSERT ... ON CONFLICT
// statements. Every written row is stamped with the same sync time and
// reactivated. Duplicate codes within one call collapse to the last occurrence.
func (r *AirportRepository) BulkUpsert(ctx context.Context, airports []gorm.Airport) (*BulkUpsertResult, error) {
	result := &BulkUpsertResult{}
	if len(airports) == 0 {
		return result, nil
	}

	now := r.now().UTC()
	rows := make([]gorm.Airport, 0, len(airports))
	position := make(map[string]int, len(airports))

	for _, a := range airports {
		if err := a.Validate(); err != nil {
			logging.Warn("[AirportRepository] Skipping invalid airport", "code", a.Code, "error", err.Error())
			result.Skipped++
			continue
		}
		a.ID = ""
		a.IsActive = true
		a.SearchCount = 0
		a.LastSearchedAt = nil
		a.Provider.LastSyncedAt = &now
		a.UpdatedAt = now
		if a.Source == "" {
			a.Source = constants.SourceProviderSearch
		}

		if idx, dup := position[a.Code]; dup {
			rows[idx] = a
			continue
		}
		position[a.Code] = len(rows)
		rows = append(rows, a)
	}

	result.Total = len(rows)
	if len(rows) == 0 {
		return result, nil
	}

	codes := make([]string, 0, len(rows))
	for _, a := range rows {
		codes = append(codes, a.Code)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		var existing int64
		if err := tx.Model(&gorm.Airport{}).Where("code IN ?", codes).Count(&existing).Error; err != nil {
			return err
		}
		result.Matched = int(existing)

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: mergeAssignments,
		}).CreateInBatches(&rows, upsertBatchSize).Error
	})
	if err != nil {
		return nil, err
	}

	result.Modified = result.Matched
	result.Upserted = result.Total - result.Matched
	return result, nil
}

// FindByCode finds an airport by code regardless of active state. Returns nil when absent.
func (r *AirportRepository) FindByCode(ctx context.Context, code string) (*gorm.Airport, error) {
	var airport gorm.Airport

	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&airport).Error

	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &airport, nil
}

const countryFilter = `(country_code = ? OR LOWER(country) LIKE ? ESCAPE '\')`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user input into a LIKE substring pattern with wildcards taken literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// Search does a case-insensitive partial match over code, name, city and country.
func (r *AirportRepository) Search(ctx context.Context, term string, opts SearchOptions) ([]gorm.Airport, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}

	q := r.db.WithContext(ctx).Where("is_active = ?", true)

	if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
		like := containsPattern(term)
		q = q.Where(`(LOWER(code) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\' OR LOWER(city) LIKE ? ESCAPE '\' OR LOWER(country) LIKE ? ESCAPE '\')`,
			like, like, like, like)
	}

	if country := strings.TrimSpace(opts.Country); country != "" {
		q = q.Where(countryFilter, strings.ToUpper(country), containsPattern(strings.ToLower(country)))
	}

	var airports []gorm.Airport
	err := q.Order("search_count DESC").
		Order("is_international DESC").
		Limit(limit).
		Find(&airports).Error
	return airports, err
}

// FindByCountry lists active airports of a country, international first.
func (r *AirportRepository) FindByCountry(ctx context.Context, country string, opts CountryOptions) ([]gorm.Airport, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = constants.DefaultCountryLimit
	}

	country = strings.TrimSpace(country)
	q := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where(countryFilter, strings.ToUpper(country), containsPattern(strings.ToLower(country)))

	if opts.International != nil {
		q = q.Where("is_international = ?", *opts.International)
	}

	var airports []gorm.Airport
	err := q.Order("is_international DESC").
		Order("search_count DESC").
		Order("city ASC").
		Limit(limit).
		Find(&airports).Error
	return airports, err
}

// GetPopular returns active airports ordered by search popularity.
func (r *AirportRepository) GetPopular(ctx context.Context, limit int) ([]gorm.Airport, error) {
	if limit <= 0 {
		limit = constants.DefaultPopularLimit
	}

	var airports []gorm.Airport
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("search_count DESC").
		Order("is_international DESC").
		Limit(limit).
		Find(&airports).Error
	return airports, err
}

// GetStale returns active airports never synced or last synced before now - daysOld.
func (r *AirportRepository) GetStale(ctx context.Context, daysOld int) ([]gorm.Airport, error) {
	if daysOld <= 0 {
		daysOld = constants.DefaultStaleDays
	}
	cutoff := r.now().UTC().Add(-time.Duration(daysOld) * 24 * time.Hour)

	var airports []gorm.Airport
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("(provider_last_synced_at IS NULL OR provider_last_synced_at < ?)", cutoff).
		Order("code ASC").
		Find(&airports).Error
	return airports, err
}

// IncrementSearchCount bumps search_count once for each id in a single statement.
func (r *AirportRepository) IncrementSearchCount(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Model(&gorm.Airport{}).
		Where("id IN ?", ids).
		UpdateColumns(map[string]interface{}{
			"search_count":     gormlib.Expr("search_count + ?", 1),
			"last_searched_at": r.now().UTC(),
		}).Error
}

// Deactivate hides an airport from every listing without deleting it.
func (r *AirportRepository) Deactivate(ctx context.Context, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&gorm.Airport{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		UpdateColumns(map[string]interface{}{
			"is_active":  false,
			"updated_at": r.now().UTC(),
		})
	return res.RowsAffected > 0, res.Error
}

// Count returns total number of airports
func (r *AirportRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&gorm.Airport{}).Count(&count).Error
	return count, err
}

// Stats aggregates counters over the table; countryCode adds a per-country active count.
func (r *AirportRepository) Stats(ctx context.Context, countryCode string) (*AirportStats, error) {
	var stats AirportStats
	if err := r.db.WithContext(ctx).Raw(constants.AirportStatsQuery).Scan(&stats).Error; err != nil {
		return nil, err
	}

	if countryCode = strings.ToUpper(strings.TrimSpace(countryCode)); countryCode != "" {
		stats.CountryCode = countryCode
		if err := r.db.WithContext(ctx).
			Raw(constants.AirportCountryCountQuery, countryCode).
			Scan(&stats.CountryAirports).Error; err != nil {
			return nil, err
		}
	}

	return &stats, nil
}
