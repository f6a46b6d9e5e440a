package constants

const (
	AirportStatsQuery = `
	SELECT
		COUNT(*) AS total_airports,
		COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) AS active_airports,
		COALESCE(SUM(CASE WHEN is_active AND is_international THEN 1 ELSE 0 END), 0) AS international_airports,
		COUNT(DISTINCT CASE WHEN is_active THEN country_code END) AS countries_count,
		COALESCE(SUM(search_count), 0) AS total_searches,
		COALESCE(AVG(search_count), 0) AS avg_search_count
	FROM airports
	`

	AirportCountryCountQuery = `
	SELECT COUNT(*) FROM airports WHERE is_active AND country_code = ?
	`
)
