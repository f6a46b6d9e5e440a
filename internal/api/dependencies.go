package api

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"travelbook/airports/internal/common"
	"travelbook/airports/internal/services"

	"github.com/jmoiron/sqlx"
)

// OfferProvider proxies the provider's flight and hotel searches.
type OfferProvider interface {
	SearchFlightOffers(ctx context.Context, params url.Values) (json.RawMessage, error)
	SearchHotelOffers(ctx context.Context, params url.Values) (json.RawMessage, error)
}

type Services struct {
	Sync   *services.AirportSyncService
	Search *services.AirportSearchService
	Offers OfferProvider
	Signer *common.AdminTokenSigner
}

type Dependencies struct {
	Services *Services
	DB       *sqlx.DB
	UpSince  time.Time
	// ExposeErrors attaches internal error text to failure bodies outside production.
	ExposeErrors bool
}
