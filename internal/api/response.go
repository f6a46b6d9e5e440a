package api

import (
	"errors"
	"net/http"
	"time"

	"travelbook/airports/internal/auth"
	"travelbook/airports/internal/common"
	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/logging"
	"travelbook/airports/internal/providers"
)

// ValidationError is malformed caller input, always answered with 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// statusForError maps provider error codes onto HTTP statuses.
func statusForError(err error) int {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest
	}

	switch providers.ErrorCode(err) {
	case constants.ErrCodeValidation:
		return http.StatusBadRequest
	case constants.ErrCodeNotFound:
		return http.StatusNotFound
	case constants.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case constants.ErrCodeMissingCredentials, constants.ErrCodeProviderUnavailable:
		return http.StatusServiceUnavailable
	case constants.ErrCodeAuthenticationFailed, constants.ErrCodeRequestFailed, constants.ErrCodeInvalidResponse:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handlers) respondValidation(w http.ResponseWriter, initTime time.Time, err *ValidationError) {
	common.RespondError(w, initTime, err, err.Message, h.deps.ExposeErrors, http.StatusBadRequest)
}

// respondFailure answers with the status derived from err and logs server-side failures.
func (h *Handlers) respondFailure(w http.ResponseWriter, r *http.Request, initTime time.Time, err error, message string) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.WithRequest(auth.GetRequestID(r.Context()), r.URL.Path).
			Errorw(message, "status", status, "error", err.Error())
	}

	var pErr *providers.ProviderError
	if errors.As(err, &pErr) && status != http.StatusInternalServerError {
		message = pErr.Message
		if status == http.StatusServiceUnavailable {
			message = constants.MsgProviderUnavailable
		}
	}
	common.RespondError(w, initTime, err, message, h.deps.ExposeErrors, status)
}
