package api

import (
	"net/http"
	"strings"
	"time"

	"travelbook/airports/internal/auth"
	"travelbook/airports/internal/common"
	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/logging"
	"travelbook/airports/internal/models/dtos/responses"
	"travelbook/airports/internal/providers"

	"github.com/go-chi/chi/v5"
)

func adminSubject(r *http.Request) string {
	if claims := auth.GetAdminClaims(r.Context()); claims != nil {
		return claims.Subject
	}
	return ""
}

// SyncRegion handles POST /api/v1/admin/airports/sync/region/{region}
func (h *Handlers) SyncRegion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		region := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "region")))

		logging.Info("Admin region sync requested", "region", region, "subject", adminSubject(r))
		result := h.deps.Services.Sync.SyncRegion(r.Context(), region)
		if !result.Success {
			status := statusForError(&providers.ProviderError{Code: result.ErrorCode})
			common.RespondError(w, initTime, nil, constants.MsgSyncFailed+": "+result.Error, false, status)
			return
		}

		common.RespondSuccess(w, initTime, responses.APIResponse{
			Message: "Region synced",
			Data:    result,
			Total:   common.IntPtr(result.Total),
			Source:  result.Source,
		})
	}
}

// SyncCountry handles POST /api/v1/admin/airports/sync/country/{countryCode}?limit=
func (h *Handlers) SyncCountry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		countryCode := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "countryCode")))
		if !isLetters(countryCode, 2) {
			h.respondValidation(w, initTime, newValidationError("countryCode", constants.MsgInvalidCountryCode))
			return
		}
		limit := common.ParseLimit(r.URL.Query().Get("limit"), constants.DefaultCountryLimit, 200)

		logging.Info("Admin country sync requested", "country", countryCode, "subject", adminSubject(r))
		result := h.deps.Services.Sync.SyncCountry(r.Context(), countryCode, limit)
		if !result.Success {
			status := statusForError(&providers.ProviderError{Code: result.ErrorCode})
			common.RespondError(w, initTime, nil, constants.MsgSyncFailed+": "+result.Error, false, status)
			return
		}

		common.RespondSuccess(w, initTime, responses.APIResponse{
			Message: "Country synced",
			Data:    result,
			Total:   common.IntPtr(result.Total),
			Country: countryCode,
		})
	}
}

// RefreshAirport handles POST /api/v1/admin/airports/refresh/{code}
func (h *Handlers) RefreshAirport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		code, vErr := airportCodeParam(r)
		if vErr != nil {
			h.respondValidation(w, initTime, vErr)
			return
		}

		result := h.deps.Services.Sync.RefreshAirport(r.Context(), code)
		if !result.Success {
			status := statusForError(&providers.ProviderError{Code: result.ErrorCode})
			common.RespondError(w, initTime, nil, result.Error, false, status)
			return
		}

		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		common.RespondSuccess(w, initTime, responses.APIResponse{
			Message: "Airport refreshed",
			Data:    result,
		}, status)
	}
}

// RefreshStale handles POST /api/v1/admin/airports/refresh-stale?days=&batchSize=
func (h *Handlers) RefreshStale() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		days := common.ParseLimit(r.URL.Query().Get("days"), constants.DefaultStaleDays, 365)
		batchSize := common.ParseLimit(r.URL.Query().Get("batchSize"), constants.DefaultBatchSize, 50)

		result := h.deps.Services.Sync.RefreshStale(r.Context(), days, batchSize)
		if result.Error != "" {
			common.RespondError(w, initTime, nil, constants.MsgSyncFailed+": "+result.Error, false, http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, responses.APIResponse{
			Message: "Stale airports refreshed",
			Data:    result,
			Total:   common.IntPtr(result.Total),
		})
	}
}

// AirportStats handles GET /api/v1/admin/airports/stats?country=
func (h *Handlers) AirportStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		country := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("country")))

		stats, err := h.deps.Services.Sync.GetStats(r.Context(), country)
		if err != nil {
			h.respondFailure(w, r, initTime, err, "Failed to load airport stats")
			return
		}

		common.RespondSuccess(w, initTime, responses.APIResponse{Data: stats, Country: country})
	}
}

// DeactivateAirport handles POST /api/v1/admin/airports/{code}/deactivate
func (h *Handlers) DeactivateAirport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		code, vErr := airportCodeParam(r)
		if vErr != nil {
			h.respondValidation(w, initTime, vErr)
			return
		}

		ok, err := h.deps.Services.Sync.Deactivate(r.Context(), code)
		if err != nil {
			h.respondFailure(w, r, initTime, err, "Failed to deactivate airport")
			return
		}
		if !ok {
			common.RespondError(w, initTime, nil, constants.MsgAirportNotFound, false, http.StatusNotFound)
			return
		}

		logging.Info("Airport deactivated by admin", "code", code, "subject", adminSubject(r))
		common.RespondSuccess(w, initTime, responses.APIResponse{Message: "Airport deactivated"})
	}
}
