package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"travelbook/airports/internal/common"
	"travelbook/airports/internal/config"
	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/logging"
	"travelbook/airports/internal/metrics"
	"travelbook/airports/internal/models/dtos"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://test.api.amadeus.com"
	defaultTimeout     = 15 * time.Second
	regionSearchLimit  = 50
	defaultLookupDelay = 250 * time.Millisecond

	tokenPath     = "/v1/security/oauth2/token"
	locationsPath = "/v1/reference-data/locations"
	flightsPath   = "/v2/shopping/flight-offers"
	hotelsPath    = "/v3/shopping/hotel-offers"
)

// TravelProvider is the client for the travel data provider. All calls share one
// token cache and one outbound rate limiter.
type TravelProvider struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Client       *http.Client

	tokens      *TokenCache
	limiter     *rate.Limiter
	metrics     *metrics.MetricsRegistry
	lookupSize  int
	lookupDelay time.Duration
}

// NewTravelProvider creates a provider client from configuration. m may be nil.
func NewTravelProvider(cfg config.ProviderConfig, m *metrics.MetricsRegistry) *TravelProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := rate.Inf
	if cfg.RequestsPerS > 0 {
		limit = rate.Limit(cfg.RequestsPerS)
	}

	p := &TravelProvider{
		BaseURL:      baseURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Client:       &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(limit, int(math.Max(1, math.Ceil(cfg.RequestsPerS)))),
		metrics:      m,
		lookupSize:   constants.DefaultBatchSize,
		lookupDelay:  defaultLookupDelay,
	}
	p.tokens = NewTokenCache(p.requestToken)
	return p
}

// WithLookupBatching sets how many per-code lookups run together and the pause between groups.
func (p *TravelProvider) WithLookupBatching(size int, delay time.Duration) *TravelProvider {
	p.lookupSize = size
	p.lookupDelay = delay
	return p
}

// ============================================================================
// Location Methods
// ============================================================================

// SearchAirports runs a keyword location search over airports and cities and
// returns the provider records untouched.
func (p *TravelProvider) SearchAirports(ctx context.Context, keyword string, limit int) ([]dtos.Location, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeValidation,
			Message: "Search keyword cannot be empty",
		}
	}
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("subType", "AIRPORT,CITY")
	params.Set("keyword", strings.ToUpper(keyword))
	params.Set("page[limit]", strconv.Itoa(limit))
	params.Set("view", "FULL")

	var resp dtos.LocationsResponse
	if _, err := p.doGET(ctx, "locations", locationsPath, params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SearchAirportsByCountry searches airports scoped to one country and maps them
// to the display shape.
func (p *TravelProvider) SearchAirportsByCountry(ctx context.Context, countryCode string, limit int) ([]dtos.AirportSummary, error) {
	countryCode = strings.ToUpper(strings.TrimSpace(countryCode))
	if len(countryCode) != 2 {
		return nil, &ProviderError{
			Code:    constants.ErrCodeValidation,
			Message: fmt.Sprintf("Invalid country code %q", countryCode),
		}
	}
	if limit <= 0 {
		limit = constants.DefaultCountryLimit
	}

	keyword := countryCode
	if region, ok := LookupRegion(countryCode); ok {
		keyword = region.Name
	}

	params := url.Values{}
	params.Set("subType", "AIRPORT")
	params.Set("keyword", strings.ToUpper(keyword))
	params.Set("countryCode", countryCode)
	params.Set("page[limit]", strconv.Itoa(limit))
	params.Set("view", "FULL")

	var resp dtos.LocationsResponse
	if _, err := p.doGET(ctx, "locations_country", locationsPath, params, &resp); err != nil {
		return nil, err
	}

	out := make([]dtos.AirportSummary, 0, len(resp.Data))
	for _, loc := range resp.Data {
		if loc.Address.CountryCode != "" && !strings.EqualFold(loc.Address.CountryCode, countryCode) {
			continue
		}
		s := ToSummary(loc, constants.SourceProviderSearch)
		if s.Code == "" {
			continue
		}
		if s.CountryCode == "" {
			s.CountryCode = countryCode
		}
		out = append(out, s)
	}
	return out, nil
}

// GetAirportDetails looks up one airport by IATA code. A missing airport
// yields (nil, nil).
func (p *TravelProvider) GetAirportDetails(ctx context.Context, code string) (*dtos.Location, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return nil, &ProviderError{
			Code:    constants.ErrCodeValidation,
			Message: fmt.Sprintf("Invalid airport code %q", code),
		}
	}

	var resp dtos.LocationResponse
	status, err := p.doGET(ctx, "location", locationsPath+"/A"+code, url.Values{"view": {"FULL"}}, &resp)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if resp.Data.IataCode == "" {
		return nil, nil
	}
	return &resp.Data, nil
}

// GetKnownRegionAirports combines a region keyword search with direct lookups
// for static airports the search missed. When the provider yields nothing at
// all the static list is returned with Degraded set.
func (p *TravelProvider) GetKnownRegionAirports(ctx context.Context, regionCode string) (*dtos.RegionAirports, error) {
	region, ok := LookupRegion(regionCode)
	if !ok {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNotFound,
			Message: fmt.Sprintf("Unknown region %q, expected one of %s", regionCode, strings.Join(KnownRegionCodes(), ", ")),
		}
	}

	found := make(map[string]dtos.AirportSummary)
	var ordered []dtos.AirportSummary
	fromProvider := 0

	locations, searchErr := p.SearchAirports(ctx, region.Name, regionSearchLimit)
	if searchErr != nil {
		logging.Warn("[TravelProvider] Region search failed, falling back to direct lookups",
			"region", region.Code, "error", searchErr.Error())
	}
	for _, loc := range locations {
		if !matchesRegion(loc, region) || loc.SubType == string(constants.TypeCity) {
			continue
		}
		s := ToSummary(loc, constants.SourceProviderSearch)
		if _, dup := found[s.Code]; dup || s.Code == "" {
			continue
		}
		fillRegionDefaults(&s, region)
		found[s.Code] = s
		ordered = append(ordered, s)
		fromProvider++
	}

	var missing []string
	for _, a := range region.Airports {
		if _, ok := found[a.Code]; !ok {
			missing = append(missing, a.Code)
		}
	}

	var mu sync.Mutex
	direct := make(map[string]dtos.AirportSummary, len(missing))
	outcome := common.RunInBatches(ctx, missing, p.lookupSize, p.lookupDelay, func(ctx context.Context, code string) error {
		loc, err := p.GetAirportDetails(ctx, code)
		if err == nil && loc == nil {
			err = &ProviderError{Code: constants.ErrCodeNotFound, Message: "Airport not found", Status: http.StatusNotFound}
		}
		if err != nil {
			logging.Warn("[TravelProvider] Direct lookup failed, using static record", "code", code, "error", err.Error())
			if fb, ok := StaticFallbackAirport(code); ok {
				mu.Lock()
				direct[code] = fb
				mu.Unlock()
			}
			return err
		}

		s := ToSummary(*loc, constants.SourceProviderDirect)
		fillRegionDefaults(&s, region)
		mu.Lock()
		direct[code] = s
		mu.Unlock()
		return nil
	})
	fromProvider += outcome.Succeeded

	if fromProvider == 0 {
		logging.Warn("[TravelProvider] Provider unavailable for region, serving static list",
			"region", region.Code, "lookups_failed", outcome.Failed)
		p.metrics.FallbackServed(region.Code)
		return &dtos.RegionAirports{
			Region:      region.Code,
			Country:     region.Name,
			CountryCode: region.CountryCode,
			Airports:    StaticRegionAirports(region),
			Source:      string(constants.ResponseSourceStatic),
			Degraded:    true,
		}, nil
	}

	for _, code := range missing {
		if s, ok := direct[code]; ok {
			ordered = append(ordered, s)
		}
	}
	sortRegionAirports(ordered)

	return &dtos.RegionAirports{
		Region:      region.Code,
		Country:     region.Name,
		CountryCode: region.CountryCode,
		Airports:    ordered,
		Source:      string(constants.ResponseSourceProvider),
	}, nil
}

// ============================================================================
// Offer Search Methods
// ============================================================================

// SearchFlightOffers proxies a flight-offer search and returns the provider body as-is.
func (p *TravelProvider) SearchFlightOffers(ctx context.Context, params url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if _, err := p.doGET(ctx, "flight_offers", flightsPath, params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// SearchHotelOffers proxies a hotel-offer search and returns the provider body as-is.
func (p *TravelProvider) SearchHotelOffers(ctx context.Context, params url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if _, err := p.doGET(ctx, "hotel_offers", hotelsPath, params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ============================================================================
// Mapping
// ============================================================================

// ToSummary maps a provider location into the internal display shape.
func ToSummary(loc dtos.Location, source constants.AirportSource) dtos.AirportSummary {
	name := titleCase(loc.Name)
	city := titleCase(loc.Address.CityName)
	country := titleCase(loc.Address.CountryName)
	code := strings.ToUpper(loc.IataCode)

	s := dtos.AirportSummary{
		Code:        code,
		Name:        name,
		City:        city,
		Country:     country,
		CountryCode: strings.ToUpper(loc.Address.CountryCode),
		Type:        constants.ParseAirportType(loc.SubType),
		SubType:     loc.SubType,
		Source:      source,
	}

	if loc.GeoCode != nil {
		s.Coordinates = &dtos.GeoCode{Latitude: loc.GeoCode.Latitude, Longitude: loc.GeoCode.Longitude}
	}
	if loc.Analytics != nil {
		score := int(loc.Analytics.Travelers.Score)
		s.AnalyticsScore = &score
	}

	s.IsInternational = isInternationalName(loc.Name)
	if entry, ok := staticByCode[code]; ok && entry.airport.International {
		s.IsInternational = true
	}

	s.DetailedName = loc.DetailedName
	if s.DetailedName == "" {
		s.DetailedName = joinNonEmpty(", ", name, city)
	}
	s.CityCountry = joinNonEmpty(", ", city, country)
	return s
}

func fillRegionDefaults(s *dtos.AirportSummary, region KnownRegion) {
	if s.CountryCode == "" {
		s.CountryCode = region.CountryCode
	}
	if s.Country == "" {
		s.Country = region.Name
		s.CityCountry = joinNonEmpty(", ", s.City, s.Country)
	}
}

func matchesRegion(loc dtos.Location, region KnownRegion) bool {
	if strings.EqualFold(loc.Address.CountryCode, region.CountryCode) {
		return true
	}
	return strings.Contains(strings.ToLower(loc.Address.CountryName), strings.ToLower(region.Name))
}

func isInternationalName(name string) bool {
	upper := strings.ToUpper(name)
	return strings.Contains(upper, "INTL") || strings.Contains(upper, "INTERNATIONAL")
}

func titleCase(s string) string {
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// ============================================================================
// HTTP Helper Methods
// ============================================================================

// requestToken performs the client-credentials exchange used by the token cache.
func (p *TravelProvider) requestToken(ctx context.Context) (string, time.Duration, error) {
	if p.ClientID == "" || p.ClientSecret == "" {
		return "", 0, ErrMissingCredentials
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.ClientID)
	form.Set("client_secret", p.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, &ProviderError{
			Code:    constants.ErrCodeInternal,
			Message: "Failed to create token request",
			Err:     err,
		}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := p.Client.Do(req)
	if err != nil {
		p.metrics.ObserveProvider("token", "unavailable", time.Since(start))
		return "", 0, transportError(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.metrics.ObserveProvider("token", "auth_failed", time.Since(start))
		return "", 0, &ProviderError{
			Code:    constants.ErrCodeAuthenticationFailed,
			Message: constants.GetErrorMessage(constants.ErrCodeAuthenticationFailed),
			Status:  resp.StatusCode,
			Details: string(body),
		}
	}

	var token dtos.TokenResponse
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		p.metrics.ObserveProvider("token", "invalid_response", time.Since(start))
		return "", 0, &ProviderError{
			Code:    constants.ErrCodeInvalidResponse,
			Message: "Token response missing access_token",
			Status:  resp.StatusCode,
			Details: string(body),
			Err:     err,
		}
	}

	p.metrics.ObserveProvider("token", "ok", time.Since(start))
	p.metrics.TokenRefreshed()
	return token.AccessToken, time.Duration(token.ExpiresIn) * time.Second, nil
}

// doGET performs an authenticated GET. A 401 drops the cached token and retries once.
func (p *TravelProvider) doGET(ctx context.Context, label, path string, params url.Values, result interface{}) (int, error) {
	status, err := p.getOnce(ctx, label, path, params, result)
	if status == http.StatusUnauthorized {
		p.tokens.Invalidate()
		status, err = p.getOnce(ctx, label, path, params, result)
	}
	return status, err
}

func (p *TravelProvider) getOnce(ctx context.Context, label, path string, params url.Values, result interface{}) (int, error) {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return 0, err
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return 0, transportError(err)
	}

	endpoint := p.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeInternal,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.Client.Do(req)
	if err != nil {
		p.metrics.ObserveProvider(label, "unavailable", time.Since(start))
		logging.Warn("[TravelProvider] Request failed", "endpoint", label, "error", err.Error())
		return 0, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		pe := buildHTTPError(resp.StatusCode, label, string(body))
		p.metrics.ObserveProvider(label, strings.ToLower(pe.Code), time.Since(start))
		if resp.StatusCode != http.StatusNotFound {
			logging.Warn("[TravelProvider] Non-2xx response", "endpoint", label, "status", resp.StatusCode)
		}
		return resp.StatusCode, pe
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		p.metrics.ObserveProvider(label, "invalid_response", time.Since(start))
		return resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeInvalidResponse,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidResponse),
			Status:  resp.StatusCode,
			Err:     err,
		}
	}

	p.metrics.ObserveProvider(label, "ok", time.Since(start))
	return resp.StatusCode, nil
}

// transportError maps timeouts, cancellations and dial failures to PROVIDER_UNAVAILABLE.
func transportError(err error) *ProviderError {
	msg := constants.GetErrorMessage(constants.ErrCodeProviderUnavailable)
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		msg = "The travel data provider timed out"
	}
	return &ProviderError{
		Code:    constants.ErrCodeProviderUnavailable,
		Message: msg,
		Err:     err,
	}
}

// buildHTTPError creates appropriate error based on status code
func buildHTTPError(statusCode int, label, body string) *ProviderError {
	code := constants.ErrCodeRequestFailed
	switch {
	case statusCode == http.StatusUnauthorized:
		code = constants.ErrCodeAuthenticationFailed
	case statusCode == http.StatusNotFound:
		code = constants.ErrCodeNotFound
	case statusCode == http.StatusTooManyRequests:
		code = constants.ErrCodeRateLimited
	case statusCode >= 500:
		code = constants.ErrCodeProviderUnavailable
	}

	return &ProviderError{
		Code:    code,
		Message: fmt.Sprintf("%s (%s)", constants.GetErrorMessage(code), label),
		Status:  statusCode,
		Details: body,
	}
}
