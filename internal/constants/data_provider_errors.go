package constants

// Travel data provider error codes

// Credential-related errors
const (
	ErrCodeMissingCredentials   = "MISSING_CREDENTIALS"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeRateLimited          = "RATE_LIMITED"
)

// Transport errors
const (
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodeRequestFailed       = "PROVIDER_REQUEST_FAILED"
	ErrCodeInvalidResponse     = "INVALID_RESPONSE"
	ErrCodeNotFound            = "NOT_FOUND"
)

// Caller input errors
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

var DataProviderErrorMessages = map[string]string{
	ErrCodeMissingCredentials:   "Travel data provider credentials are not configured",
	ErrCodeAuthenticationFailed: "Authentication with the travel data provider failed",
	ErrCodeRateLimited:          "Rate limit exceeded. Please try again later",

	ErrCodeProviderUnavailable: "The travel data provider is unavailable or timed out",
	ErrCodeRequestFailed:       "The travel data provider rejected the request",
	ErrCodeInvalidResponse:     "The travel data provider returned a malformed response",
	ErrCodeNotFound:            "The requested location was not found",

	ErrCodeValidation: "The request parameters are invalid",
	ErrCodeInternal:   "An internal error occurred",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := DataProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
