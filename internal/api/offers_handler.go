package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travelbook/airports/internal/common"
	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/models/dtos/responses"
)

var (
	flightSearchParams = []string{"originLocationCode", "destinationLocationCode", "departureDate", "adults"}
	hotelSearchParams  = []string{"hotelIds"}
)

type offerSearch func(ctx context.Context, params url.Values) (json.RawMessage, error)

// SearchFlights handles GET /api/v1/flights/search
func (h *Handlers) SearchFlights() http.HandlerFunc {
	return h.offers(flightSearchParams, func(ctx context.Context, params url.Values) (json.RawMessage, error) {
		return h.deps.Services.Offers.SearchFlightOffers(ctx, params)
	})
}

// SearchHotels handles GET /api/v1/hotels/search
func (h *Handlers) SearchHotels() http.HandlerFunc {
	return h.offers(hotelSearchParams, func(ctx context.Context, params url.Values) (json.RawMessage, error) {
		return h.deps.Services.Offers.SearchHotelOffers(ctx, params)
	})
}

func (h *Handlers) offers(required []string, search offerSearch) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		params := r.URL.Query()
		var missing []string
		for _, name := range required {
			if strings.TrimSpace(params.Get(name)) == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			h.respondValidation(w, initTime, newValidationError(strings.Join(missing, ","),
				constants.MsgMissingSearchParam+": "+strings.Join(missing, ", ")))
			return
		}

		body, err := search(r.Context(), params)
		if err != nil {
			h.respondFailure(w, r, initTime, err, constants.MsgSearchFailed)
			return
		}

		common.RespondSuccess(w, initTime, responses.APIResponse{
			Data:   body,
			Source: string(constants.ResponseSourceProvider),
		})
	}
}
