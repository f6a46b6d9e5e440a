package constants

type (
	AirportSource  string
	AirportType    string
	CachePrefix    string
	ResponseSource string
)

// How an airport record was populated.
const (
	SourceProviderSearch AirportSource = "provider_search"
	SourceProviderDirect AirportSource = "provider_direct"
	SourceStaticFallback AirportSource = "static_fallback"
	SourceManual         AirportSource = "manual"
)

const (
	TypeAirport     AirportType = "AIRPORT"
	TypeCity        AirportType = "CITY"
	TypeHeliport    AirportType = "HELIPORT"
	TypeRailStation AirportType = "RAIL_STATION"
	TypeBusStation  AirportType = "BUS_STATION"
)

// Where an HTTP response body came from.
const (
	ResponseSourceProvider ResponseSource = "provider"
	ResponseSourceDatabase ResponseSource = "database"
	ResponseSourceStatic   ResponseSource = "static_fallback"
)

const (
	CachePrefixAirportSearch CachePrefix = "AIRPORT_SEARCH_"
	CachePrefixRegion        CachePrefix = "AIRPORT_REGION_"
)

const (
	DefaultSearchLimit   = 15
	DefaultCountryLimit  = 50
	DefaultPopularLimit  = 20
	DefaultStaleDays     = 30
	DefaultBatchSize     = 5
	MinQueryLength       = 2
	TokenExpiryMarginSec = 60
	TokenFetchTimeoutSec = 30
)

// Valid reports whether s names a known airport source.
func (s AirportSource) Valid() bool {
	switch s {
	case SourceProviderSearch, SourceProviderDirect, SourceStaticFallback, SourceManual:
		return true
	}
	return false
}

// ParseAirportType maps a provider subType onto a classification, defaulting to AIRPORT.
func ParseAirportType(subType string) AirportType {
	switch AirportType(subType) {
	case TypeCity, TypeHeliport, TypeRailStation, TypeBusStation:
		return AirportType(subType)
	}
	return TypeAirport
}
