package providers

import (
	"errors"
	"fmt"

	"travelbook/airports/internal/constants"
)

// ErrMissingCredentials is returned before any network call when the client id
// or secret is not configured.
var ErrMissingCredentials = &ProviderError{
	Code:    constants.ErrCodeMissingCredentials,
	Message: constants.GetErrorMessage(constants.ErrCodeMissingCredentials),
}

// ProviderError describes a failed call to the travel data provider
type ProviderError struct {
	Code    string
	Message string
	Status  int
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches provider errors by code so callers can compare against ErrMissingCredentials.
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// IsConfigurationError reports whether err stems from missing provider credentials.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingCredentials)
}

// ErrorCode extracts the provider error code, or ErrCodeInternal for foreign errors.
func ErrorCode(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return constants.ErrCodeInternal
}
