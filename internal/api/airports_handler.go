package api

import (
	"net/http"
	"strings"
	"time"

	"travelbook/airports/internal/common"
	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/db/repositories"
	"travelbook/airports/internal/models/dtos"
	"travelbook/airports/internal/models/dtos/responses"
	"travelbook/airports/internal/models/gorm"
	"travelbook/airports/internal/providers"
	"travelbook/airports/internal/services"

	"github.com/go-chi/chi/v5"
)

const maxSearchLimit = 50

// SearchAirports handles GET /api/v1/airports?query=&limit=&country=
func (h *Handlers) SearchAirports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		query := strings.TrimSpace(r.URL.Query().Get("query"))
		if len([]rune(query)) < constants.MinQueryLength {
			h.respondValidation(w, initTime, newValidationError("query", constants.MsgQueryTooShort))
			return
		}
		limit := common.ParseLimit(r.URL.Query().Get("limit"), constants.DefaultSearchLimit, maxSearchLimit)
		country := r.URL.Query().Get("country")

		result, err := h.deps.Services.Search.Search(r.Context(), query, country, limit)
		if err != nil {
			h.respondFailure(w, r, initTime, err, constants.MsgSearchFailed)
			return
		}

		common.RespondSuccess(w, initTime, responses.APIResponse{
			Data:   result.Airports,
			Total:  common.IntPtr(result.Total),
			Source: result.Source,
			Cached: common.BoolPtr(result.Cached),
		})
	}
}

// BangladeshAirports handles GET /api/v1/airports/bangladesh
func (h *Handlers) BangladeshAirports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respondRegion(w, r, time.Now(), "BD")
	}
}

// RegionAirports handles GET /api/v1/airports/region/{region}
func (h *Handlers) RegionAirports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respondRegion(w, r, time.Now(), chi.URLParam(r, "region"))
	}
}

func (h *Handlers) respondRegion(w http.ResponseWriter, r *http.Request, initTime time.Time, region string) {
	result, cached, err := h.deps.Services.Search.Region(r.Context(), region)
	if err != nil {
		message := constants.MsgSearchFailed
		if providers.ErrorCode(err) == constants.ErrCodeNotFound {
			message = constants.MsgUnknownRegion
		}
		h.respondFailure(w, r, initTime, err, message)
		return
	}

	common.RespondSuccess(w, initTime, responses.APIResponse{
		Data:     result.Airports,
		Total:    common.IntPtr(len(result.Airports)),
		Country:  result.Country,
		Source:   result.Source,
		Cached:   common.BoolPtr(cached),
		Degraded: result.Degraded,
	})
}

// GetAirport handles GET /api/v1/airports/{code}. Codes never stored are
// fetched from the provider; deactivated codes answer 404.
func (h *Handlers) GetAirport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		code, vErr := airportCodeParam(r)
		if vErr != nil {
			h.respondValidation(w, initTime, vErr)
			return
		}

		airport, err := h.deps.Services.Sync.FindByCode(r.Context(), code)
		if err != nil {
			h.respondFailure(w, r, initTime, err, constants.MsgSearchFailed)
			return
		}
		if airport != nil && !airport.IsActive {
			common.RespondError(w, initTime, nil, constants.MsgAirportNotFound, false, http.StatusNotFound)
			return
		}
		if airport != nil {
			common.RespondSuccess(w, initTime, responses.APIResponse{
				Data:   services.AirportToSummary(*airport),
				Source: string(constants.ResponseSourceDatabase),
			})
			return
		}

		refreshed := h.deps.Services.Sync.RefreshAirport(r.Context(), code)
		if !refreshed.Success {
			if refreshed.ErrorCode == constants.ErrCodeNotFound {
				common.RespondError(w, initTime, nil, constants.MsgAirportNotFound, false, http.StatusNotFound)
				return
			}
			h.respondFailure(w, r, initTime, &providers.ProviderError{Code: refreshed.ErrorCode, Message: refreshed.Error}, constants.MsgSearchFailed)
			return
		}

		common.RespondSuccess(w, initTime, responses.APIResponse{
			Data:   services.AirportToSummary(*refreshed.Airport),
			Source: string(constants.ResponseSourceProvider),
		})
	}
}

// PopularAirports handles GET /api/v1/airports/popular?limit=
func (h *Handlers) PopularAirports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		limit := common.ParseLimit(r.URL.Query().Get("limit"), constants.DefaultPopularLimit, maxSearchLimit)

		airports, err := h.deps.Services.Sync.GetPopular(r.Context(), limit)
		if err != nil {
			h.respondFailure(w, r, initTime, err, constants.MsgSearchFailed)
			return
		}
		h.respondRecords(w, initTime, airports, "")
	}
}

// LocalAirports handles GET /api/v1/airports/local?query=&country=&limit=
func (h *Handlers) LocalAirports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		query := strings.TrimSpace(r.URL.Query().Get("query"))
		if len([]rune(query)) < constants.MinQueryLength {
			h.respondValidation(w, initTime, newValidationError("query", constants.MsgQueryTooShort))
			return
		}

		airports, err := h.deps.Services.Sync.SearchLocal(r.Context(), query, repositories.SearchOptions{
			Country: r.URL.Query().Get("country"),
			Limit:   common.ParseLimit(r.URL.Query().Get("limit"), constants.DefaultSearchLimit, maxSearchLimit),
		})
		if err != nil {
			h.respondFailure(w, r, initTime, err, constants.MsgSearchFailed)
			return
		}
		h.respondRecords(w, initTime, airports, "")
	}
}

// CountryAirports handles GET /api/v1/airports/country/{countryCode}?international=&limit=
func (h *Handlers) CountryAirports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		countryCode := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "countryCode")))
		if !isLetters(countryCode, 2) {
			h.respondValidation(w, initTime, newValidationError("countryCode", constants.MsgInvalidCountryCode))
			return
		}

		opts := repositories.CountryOptions{
			Limit: common.ParseLimit(r.URL.Query().Get("limit"), constants.DefaultCountryLimit, 200),
		}
		switch r.URL.Query().Get("international") {
		case "true":
			opts.International = common.BoolPtr(true)
		case "false":
			opts.International = common.BoolPtr(false)
		}

		airports, err := h.deps.Services.Sync.FindByCountry(r.Context(), countryCode, opts)
		if err != nil {
			h.respondFailure(w, r, initTime, err, constants.MsgSearchFailed)
			return
		}
		h.respondRecords(w, initTime, airports, countryCode)
	}
}

func (h *Handlers) respondRecords(w http.ResponseWriter, initTime time.Time, airports []gorm.Airport, country string) {
	data := make([]dtos.AirportSummary, len(airports))
	for i, a := range airports {
		data[i] = services.AirportToSummary(a)
	}
	common.RespondSuccess(w, initTime, responses.APIResponse{
		Data:    data,
		Total:   common.IntPtr(len(data)),
		Country: country,
		Source:  string(constants.ResponseSourceDatabase),
	})
}

func airportCodeParam(r *http.Request) (string, *ValidationError) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	if !isLetters(code, 3) {
		return "", newValidationError("code", constants.MsgInvalidAirportCode)
	}
	return code, nil
}

func isLetters(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
