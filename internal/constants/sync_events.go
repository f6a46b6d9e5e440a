package constants

// Job names used for sync metrics and logs
const (
	SyncEventRegion  = "REGION_SYNC"
	SyncEventCountry = "COUNTRY_SYNC"
	SyncEventStale   = "STALE_REFRESH"
)
