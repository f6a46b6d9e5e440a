package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"travelbook/airports/internal/config"
	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/models/dtos"
)

// fakeProvider is a minimal stand-in for the provider's token and location endpoints.
type fakeProvider struct {
	tokenCalls    atomic.Int32
	requests      atomic.Int32
	searchResults []dtos.Location
	searchStatus  int
	details       map[string]dtos.Location
	failCodes     map[string]bool
	rejectFirst   bool // answer the first authorized call with 401
	delay         time.Duration

	mu       sync.Mutex
	rejected bool
	keywords []string
}

func (f *fakeProvider) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)

		if r.URL.Path == tokenPath {
			if r.Method != http.MethodPost {
				t.Errorf("Expected POST for token, got %s", r.Method)
			}
			_ = r.ParseForm()
			if r.PostForm.Get("grant_type") != "client_credentials" {
				t.Errorf("Expected client_credentials grant, got %q", r.PostForm.Get("grant_type"))
			}
			n := f.tokenCalls.Add(1)
			json.NewEncoder(w).Encode(dtos.TokenResponse{
				AccessToken: "token-" + string(rune('0'+n)),
				TokenType:   "Bearer",
				ExpiresIn:   1799,
			})
			return
		}

		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer token-") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		f.mu.Lock()
		if f.rejectFirst && !f.rejected {
			f.rejected = true
			f.mu.Unlock()
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Unlock()

		if f.delay > 0 {
			time.Sleep(f.delay)
		}

		switch {
		case r.URL.Path == locationsPath:
			f.mu.Lock()
			f.keywords = append(f.keywords, r.URL.Query().Get("keyword"))
			f.mu.Unlock()
			if f.searchStatus != 0 {
				w.WriteHeader(f.searchStatus)
				return
			}
			json.NewEncoder(w).Encode(dtos.LocationsResponse{Data: f.searchResults})

		case strings.HasPrefix(r.URL.Path, locationsPath+"/A"):
			code := strings.TrimPrefix(r.URL.Path, locationsPath+"/A")
			if f.failCodes[code] {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			loc, ok := f.details[code]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"errors":[{"status":404,"title":"RESOURCE NOT FOUND"}]}`))
				return
			}
			json.NewEncoder(w).Encode(dtos.LocationResponse{Data: loc})

		case r.URL.Path == flightsPath:
			w.Write([]byte(`{"meta":{"count":1},"data":[{"id":"1"}]}`))

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestProvider(t *testing.T, fake *fakeProvider) *TravelProvider {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	return NewTravelProvider(config.ProviderConfig{
		BaseURL:      server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Timeout:      2 * time.Second,
	}, nil).WithLookupBatching(2, 0)
}

func bdLocation(code, name, city string) dtos.Location {
	return dtos.Location{
		Type:     "location",
		SubType:  "AIRPORT",
		Name:     name,
		IataCode: code,
		GeoCode:  &dtos.GeoCode{Latitude: 23.8, Longitude: 90.4},
		Address: dtos.LocationAddress{
			CityName:    city,
			CountryName: "BANGLADESH",
			CountryCode: "BD",
		},
	}
}

func TestTravelProvider_TokenReuse(t *testing.T) {
	fake := &fakeProvider{searchResults: []dtos.Location{bdLocation("DAC", "HAZRAT SHAHJALAL INTL", "DHAKA")}}
	provider := newTestProvider(t, fake)

	ctx := context.Background()
	if _, err := provider.SearchAirports(ctx, "dhaka", 5); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := provider.SearchAirports(ctx, "chittagong", 5); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := fake.tokenCalls.Load(); got != 1 {
		t.Errorf("Expected 1 token request, got %d", got)
	}
}

func TestTravelProvider_MissingCredentialsFailsFast(t *testing.T) {
	fake := &fakeProvider{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	provider := NewTravelProvider(config.ProviderConfig{BaseURL: server.URL}, nil)

	_, err := provider.SearchAirports(context.Background(), "dhaka", 5)
	if !IsConfigurationError(err) {
		t.Fatalf("Expected configuration error, got %v", err)
	}
	if got := fake.requests.Load(); got != 0 {
		t.Errorf("Expected no network calls, got %d", got)
	}
}

func TestTravelProvider_SearchAirportsReturnsRawRecords(t *testing.T) {
	fake := &fakeProvider{searchResults: []dtos.Location{
		bdLocation("DAC", "HAZRAT SHAHJALAL INTL", "DHAKA"),
		{SubType: "CITY", Name: "DHAKA", IataCode: "DAC", Address: dtos.LocationAddress{CountryCode: "BD"}},
	}}
	provider := newTestProvider(t, fake)

	results, err := provider.SearchAirports(context.Background(), "dha", 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 raw results, got %d", len(results))
	}
	if results[0].Name != "HAZRAT SHAHJALAL INTL" {
		t.Errorf("Expected untouched provider name, got %q", results[0].Name)
	}
	if fake.keywords[0] != "DHA" {
		t.Errorf("Expected upper-cased keyword, got %q", fake.keywords[0])
	}
}

func TestTravelProvider_SearchAirportsEmptyKeyword(t *testing.T) {
	provider := newTestProvider(t, &fakeProvider{})

	_, err := provider.SearchAirports(context.Background(), "  ", 5)
	if ErrorCode(err) != constants.ErrCodeValidation {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestTravelProvider_SearchAirportsByCountry(t *testing.T) {
	fake := &fakeProvider{searchResults: []dtos.Location{
		bdLocation("DAC", "HAZRAT SHAHJALAL INTL", "DHAKA"),
		bdLocation("CXB", "COXS BAZAR", "COXS BAZAR"),
		{SubType: "AIRPORT", Name: "TRIBHUVAN INTL", IataCode: "KTM", Address: dtos.LocationAddress{CityName: "KATHMANDU", CountryName: "NEPAL", CountryCode: "NP"}},
	}}
	provider := newTestProvider(t, fake)

	results, err := provider.SearchAirportsByCountry(context.Background(), "bd", 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected foreign airport to be filtered, got %d results", len(results))
	}

	dac := results[0]
	if dac.Name != "Hazrat Shahjalal Intl" || dac.City != "Dhaka" || dac.Country != "Bangladesh" {
		t.Errorf("Unexpected display names: %+v", dac)
	}
	if dac.CityCountry != "Dhaka, Bangladesh" {
		t.Errorf("Expected cityCountry 'Dhaka, Bangladesh', got %q", dac.CityCountry)
	}
	if !dac.IsInternational {
		t.Error("Expected DAC to be international")
	}
	if dac.Source != constants.SourceProviderSearch {
		t.Errorf("Expected provider_search source, got %s", dac.Source)
	}
	if dac.Coordinates == nil || dac.Coordinates.Latitude != 23.8 {
		t.Errorf("Expected coordinates to be mapped, got %+v", dac.Coordinates)
	}
	if fake.keywords[0] != "BANGLADESH" {
		t.Errorf("Expected known region name as keyword, got %q", fake.keywords[0])
	}
}

func TestTravelProvider_GetAirportDetails(t *testing.T) {
	fake := &fakeProvider{details: map[string]dtos.Location{
		"DAC": bdLocation("DAC", "HAZRAT SHAHJALAL INTL", "DHAKA"),
	}}
	provider := newTestProvider(t, fake)
	ctx := context.Background()

	loc, err := provider.GetAirportDetails(ctx, "dac")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if loc == nil || loc.IataCode != "DAC" {
		t.Fatalf("Expected DAC, got %+v", loc)
	}

	missing, err := provider.GetAirportDetails(ctx, "XXX")
	if err != nil {
		t.Fatalf("Expected not-found to be nil error, got %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil location for unknown code, got %+v", missing)
	}
}

func TestTravelProvider_TimeoutIsProviderUnavailable(t *testing.T) {
	fake := &fakeProvider{delay: 200 * time.Millisecond}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	provider := NewTravelProvider(config.ProviderConfig{
		BaseURL:      server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Timeout:      50 * time.Millisecond,
	}, nil)

	_, err := provider.SearchAirports(context.Background(), "dhaka", 5)
	if ErrorCode(err) != constants.ErrCodeProviderUnavailable {
		t.Fatalf("Expected PROVIDER_UNAVAILABLE, got %v", err)
	}
}

func TestTravelProvider_RetriesOnceAfterUnauthorized(t *testing.T) {
	fake := &fakeProvider{rejectFirst: true}
	provider := newTestProvider(t, fake)

	if _, err := provider.SearchAirports(context.Background(), "dhaka", 5); err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if got := fake.tokenCalls.Load(); got != 2 {
		t.Errorf("Expected a fresh token after 401, got %d token calls", got)
	}
}

func TestTravelProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusTooManyRequests, constants.ErrCodeRateLimited},
		{http.StatusBadRequest, constants.ErrCodeRequestFailed},
		{http.StatusBadGateway, constants.ErrCodeProviderUnavailable},
	}

	for _, tt := range tests {
		provider := newTestProvider(t, &fakeProvider{searchStatus: tt.status})
		_, err := provider.SearchAirports(context.Background(), "dhaka", 5)

		var pe *ProviderError
		if !errors.As(err, &pe) {
			t.Fatalf("Expected ProviderError for %d, got %v", tt.status, err)
		}
		if pe.Code != tt.code || pe.Status != tt.status {
			t.Errorf("Status %d: expected code %s, got %s (status %d)", tt.status, tt.code, pe.Code, pe.Status)
		}
	}
}

func TestTravelProvider_GetKnownRegionAirports_Hybrid(t *testing.T) {
	fake := &fakeProvider{
		searchResults: []dtos.Location{
			bdLocation("DAC", "HAZRAT SHAHJALAL INTL", "DHAKA"),
			bdLocation("CGP", "SHAH AMANAT INTL", "CHITTAGONG"),
			{SubType: "CITY", Name: "DHAKA", IataCode: "DAC", Address: dtos.LocationAddress{CountryCode: "BD"}},
			{SubType: "AIRPORT", Name: "TRIBHUVAN INTL", IataCode: "KTM", Address: dtos.LocationAddress{CountryName: "NEPAL", CountryCode: "NP"}},
		},
		details: map[string]dtos.Location{
			"ZYL": bdLocation("ZYL", "OSMANI INTL", "SYLHET"),
		},
		failCodes: map[string]bool{"CXB": true},
	}
	provider := newTestProvider(t, fake)

	result, err := provider.GetKnownRegionAirports(context.Background(), "BD")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Degraded {
		t.Error("Expected a non-degraded result")
	}
	if len(result.Airports) != 8 {
		t.Fatalf("Expected 8 airports, got %d", len(result.Airports))
	}

	wantOrder := []string{"CGP", "DAC", "ZYL", "BZL", "CXB", "JSR", "RJH", "SPD"}
	for i, code := range wantOrder {
		if result.Airports[i].Code != code {
			t.Errorf("Position %d: expected %s, got %s", i, code, result.Airports[i].Code)
		}
	}

	sources := map[string]constants.AirportSource{}
	for _, a := range result.Airports {
		sources[a.Code] = a.Source
	}
	if sources["DAC"] != constants.SourceProviderSearch {
		t.Errorf("Expected DAC from search, got %s", sources["DAC"])
	}
	if sources["ZYL"] != constants.SourceProviderDirect {
		t.Errorf("Expected ZYL from direct lookup, got %s", sources["ZYL"])
	}
	if sources["CXB"] != constants.SourceStaticFallback {
		t.Errorf("Expected CXB static fallback after lookup failure, got %s", sources["CXB"])
	}
	if _, ok := sources["KTM"]; ok {
		t.Error("Expected foreign airport to be filtered out")
	}
}

func TestTravelProvider_GetKnownRegionAirports_TotalFailure(t *testing.T) {
	fake := &fakeProvider{
		searchStatus: http.StatusServiceUnavailable,
		failCodes:    map[string]bool{"DAC": true, "CGP": true, "ZYL": true, "CXB": true, "JSR": true, "RJH": true, "SPD": true, "BZL": true},
	}
	provider := newTestProvider(t, fake)

	result, err := provider.GetKnownRegionAirports(context.Background(), "bangladesh")
	if err != nil {
		t.Fatalf("Expected static fallback instead of error, got %v", err)
	}
	if !result.Degraded || result.Source != string(constants.ResponseSourceStatic) {
		t.Errorf("Expected degraded static response, got source=%s degraded=%v", result.Source, result.Degraded)
	}
	if len(result.Airports) != 8 {
		t.Fatalf("Expected full static list, got %d", len(result.Airports))
	}
	if result.Airports[0].Code != "CGP" || !result.Airports[0].IsInternational {
		t.Errorf("Expected international airports first, got %+v", result.Airports[0])
	}
}

func TestTravelProvider_GetKnownRegionAirports_UnknownRegion(t *testing.T) {
	provider := newTestProvider(t, &fakeProvider{})

	_, err := provider.GetKnownRegionAirports(context.Background(), "ZZ")
	if ErrorCode(err) != constants.ErrCodeNotFound {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}
	if !strings.Contains(err.Error(), "BD, LK, NP") {
		t.Errorf("Expected known region codes in message, got %q", err.Error())
	}
}

func TestTravelProvider_SearchFlightOffersPassthrough(t *testing.T) {
	provider := newTestProvider(t, &fakeProvider{})

	params := url.Values{}
	params.Set("originLocationCode", "DAC")
	params.Set("destinationLocationCode", "CGP")

	raw, err := provider.SearchFlightOffers(context.Background(), params)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(string(raw), `"count":1`) {
		t.Errorf("Expected provider body to pass through, got %s", raw)
	}
}
