package constants

const (
	MsgQueryTooShort      = "Search query must be at least 2 characters"
	MsgInvalidLimit       = "limit must be a positive integer"
	MsgInvalidCountryCode = "country code must be 2 letters"
	MsgInvalidAirportCode = "airport code must be 3 letters"
	MsgUnknownRegion      = "Unknown region"
	MsgAirportNotFound    = "Airport not found"
	MsgSearchFailed       = "Failed to search airports"
	MsgSyncFailed         = "Airport sync failed"
	MsgMissingSearchParam = "Missing required search parameters"
)

const (
	MsgUnauthorized        = "Missing or invalid admin token"
	MsgForbidden           = "Role is not allowed to perform this action"
	MsgRateLimited         = "Too many requests. Please try again later"
	MsgProviderUnavailable = "Airport data is temporarily unavailable"
)
