package common

import (
	"encoding/json"
	"net/http"
	"time"

	"travelbook/airports/internal/logging"
	"travelbook/airports/internal/models/dtos/responses"
)

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, body responses.APIResponse, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	body.Success = true
	body.ResponseTime = GetResponseTime(initTime)
	writeJSON(w, code, body)
}

// RespondError sends a standardized JSON error response. Internal error text is
// only attached when exposeDetail is set (non-production).
func RespondError(w http.ResponseWriter, initTime time.Time, err error, message string, exposeDetail bool, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	body := responses.APIResponse{
		Success:      false,
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
	}
	if exposeDetail && err != nil {
		body.Error = err.Error()
	}

	writeJSON(w, code, body)
}

// writeJSON marshals data and writes it to the HTTP response.
func writeJSON(w http.ResponseWriter, code int, body responses.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err.Error())
	}
}
