package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"travelbook/airports/internal/auth"
	"travelbook/airports/internal/common"
	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/db/repositories"
	"travelbook/airports/internal/logging"
	"travelbook/airports/internal/models/dtos"
	gormModels "travelbook/airports/internal/models/gorm"
	"travelbook/airports/internal/providers"
	"travelbook/airports/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeProvider struct {
	searchFunc  func(ctx context.Context, keyword string, limit int) ([]dtos.Location, error)
	countryFunc func(ctx context.Context, countryCode string, limit int) ([]dtos.AirportSummary, error)
	detailsFunc func(ctx context.Context, code string) (*dtos.Location, error)
	regionFunc  func(ctx context.Context, regionCode string) (*dtos.RegionAirports, error)
	flightsFunc func(ctx context.Context, params url.Values) (json.RawMessage, error)
}

func (f *fakeProvider) SearchAirports(ctx context.Context, keyword string, limit int) ([]dtos.Location, error) {
	return f.searchFunc(ctx, keyword, limit)
}

func (f *fakeProvider) SearchAirportsByCountry(ctx context.Context, countryCode string, limit int) ([]dtos.AirportSummary, error) {
	return f.countryFunc(ctx, countryCode, limit)
}

func (f *fakeProvider) GetAirportDetails(ctx context.Context, code string) (*dtos.Location, error) {
	return f.detailsFunc(ctx, code)
}

func (f *fakeProvider) GetKnownRegionAirports(ctx context.Context, regionCode string) (*dtos.RegionAirports, error) {
	return f.regionFunc(ctx, regionCode)
}

func (f *fakeProvider) SearchFlightOffers(ctx context.Context, params url.Values) (json.RawMessage, error) {
	return f.flightsFunc(ctx, params)
}

func (f *fakeProvider) SearchHotelOffers(ctx context.Context, params url.Values) (json.RawMessage, error) {
	return json.RawMessage(`{"data":[]}`), nil
}

type testBody struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	Total    *int            `json:"total"`
	Country  string          `json:"country"`
	Source   string          `json:"source"`
	Cached   *bool           `json:"cached"`
	Degraded bool            `json:"degraded"`
	Error    string          `json:"error"`
}

type testEnv struct {
	router   http.Handler
	repo     *repositories.AirportRepository
	provider *fakeProvider
}

func setupHandlers(t *testing.T, provider *fakeProvider) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to unwrap database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&gormModels.Airport{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	repo := repositories.NewAirportRepository(db)
	syncSvc := services.NewAirportSyncService(repo, provider, nil, services.SyncOptions{BatchSize: 2})
	searchSvc := services.NewAirportSearchService(provider, syncSvc, common.NewCacheService(time.Hour, 100), time.Hour, nil)

	h := NewHandlers(&Dependencies{
		Services: &Services{Sync: syncSvc, Search: searchSvc, Offers: provider},
		DB:       sqlx.NewDb(sqlDB, "sqlite3"),
		UpSince:  time.Now().Add(-time.Minute),
	})

	r := chi.NewRouter()
	r.Get("/healthCheck", h.HealthCheckHandler())
	r.Get("/airports", h.SearchAirports())
	r.Get("/airports/bangladesh", h.BangladeshAirports())
	r.Get("/airports/region/{region}", h.RegionAirports())
	r.Get("/airports/popular", h.PopularAirports())
	r.Get("/airports/local", h.LocalAirports())
	r.Get("/airports/country/{countryCode}", h.CountryAirports())
	r.Get("/airports/{code}", h.GetAirport())
	r.Get("/flights/search", h.SearchFlights())
	r.Post("/admin/sync/country/{countryCode}", h.SyncCountry())
	r.Post("/admin/refresh-stale", h.RefreshStale())
	r.Post("/admin/{code}/deactivate", h.DeactivateAirport())
	r.Get("/admin/stats", h.AirportStats())

	return &testEnv{router: r, repo: repo, provider: provider}
}

func (e *testEnv) do(t *testing.T, method, target string) (*httptest.ResponseRecorder, testBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body testBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func bdProvider() *fakeProvider {
	return &fakeProvider{
		searchFunc: func(ctx context.Context, keyword string, limit int) ([]dtos.Location, error) {
			return []dtos.Location{
				{SubType: "AIRPORT", IataCode: "CGP", Name: "SHAH AMANAT INTL", Address: dtos.LocationAddress{CityName: "CHITTAGONG", CountryName: "BANGLADESH", CountryCode: "BD"}},
				{SubType: "AIRPORT", IataCode: "DAC", Name: "HAZRAT SHAHJALAL INTL", Address: dtos.LocationAddress{CityName: "DHAKA", CountryName: "BANGLADESH", CountryCode: "BD"}},
			}, nil
		},
		countryFunc: func(ctx context.Context, countryCode string, limit int) ([]dtos.AirportSummary, error) {
			return []dtos.AirportSummary{
				{Code: "DAC", Name: "Hazrat Shahjalal International Airport", City: "Dhaka", Country: "Bangladesh", CountryCode: "BD", IsInternational: true},
				{Code: "CGP", Name: "Shah Amanat International Airport", City: "Chittagong", Country: "Bangladesh", CountryCode: "BD", IsInternational: true},
				{Code: "CXB", Name: "Cox's Bazar Airport", City: "Cox's Bazar", Country: "Bangladesh", CountryCode: "BD"},
			}, nil
		},
		detailsFunc: func(ctx context.Context, code string) (*dtos.Location, error) {
			return nil, nil
		},
		regionFunc: func(ctx context.Context, regionCode string) (*dtos.RegionAirports, error) {
			if regionCode != "BD" {
				return nil, &providers.ProviderError{Code: constants.ErrCodeNotFound, Message: "unknown region"}
			}
			return &dtos.RegionAirports{
				Region:   "BD",
				Country:  "Bangladesh",
				Source:   string(constants.ResponseSourceProvider),
				Airports: []dtos.AirportSummary{{Code: "DAC"}, {Code: "CGP"}},
			}, nil
		},
		flightsFunc: func(ctx context.Context, params url.Values) (json.RawMessage, error) {
			return json.RawMessage(`{"data":[{"id":"1"}]}`), nil
		},
	}
}

func TestSearchAirports_QueryTooShort(t *testing.T) {
	env := setupHandlers(t, bdProvider())

	for _, target := range []string{"/airports", "/airports?query=d", "/airports?query=%20d%20"} {
		rec, body := env.do(t, http.MethodGet, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
		if body.Success || body.Message != constants.MsgQueryTooShort {
			t.Errorf("%s: unexpected body %+v", target, body)
		}
	}
}

func TestSearchAirports_RankedAndCached(t *testing.T) {
	env := setupHandlers(t, bdProvider())

	rec, body := env.do(t, http.MethodGet, "/airports?query=dhaka&limit=5")
	if rec.Code != http.StatusOK || !body.Success {
		t.Fatalf("Expected 200 success, got %d %+v", rec.Code, body)
	}
	if body.Total == nil || *body.Total != 2 || body.Source != "provider" {
		t.Errorf("Unexpected envelope %+v", body)
	}
	if body.Cached == nil || *body.Cached {
		t.Error("Expected cached=false on first call")
	}

	var airports []dtos.AirportSummary
	if err := json.Unmarshal(body.Data, &airports); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
	if airports[0].Code != "DAC" || !airports[0].IsInternational {
		t.Errorf("Expected DAC first and international, got %+v", airports[0])
	}

	_, body = env.do(t, http.MethodGet, "/airports?query=DHAKA&limit=5")
	if body.Cached == nil || !*body.Cached {
		t.Error("Expected cached=true on repeat call")
	}
}

func TestSearchAirports_ProviderDownWithoutLocalData(t *testing.T) {
	provider := bdProvider()
	provider.searchFunc = func(ctx context.Context, keyword string, limit int) ([]dtos.Location, error) {
		return nil, &providers.ProviderError{Code: constants.ErrCodeProviderUnavailable, Message: "timeout"}
	}
	env := setupHandlers(t, provider)

	rec, body := env.do(t, http.MethodGet, "/airports?query=dhaka")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
	if body.Success || body.Message != constants.MsgProviderUnavailable || body.Error != "" {
		t.Errorf("Unexpected failure body %+v", body)
	}
}

func TestRespondFailure_LogsRequestScope(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logging.SetLogger(zap.New(core))
	defer logging.SetLogger(zap.NewNop())

	provider := bdProvider()
	provider.searchFunc = func(ctx context.Context, keyword string, limit int) ([]dtos.Location, error) {
		return nil, &providers.ProviderError{Code: constants.ErrCodeProviderUnavailable, Message: "timeout"}
	}
	env := setupHandlers(t, provider)

	req := httptest.NewRequest(http.MethodGet, "/airports?query=dhaka", nil)
	req = req.WithContext(auth.SetRequestID(req.Context(), "req-42"))
	env.router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterField(zap.String("request_id", "req-42")).All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 request-scoped error entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["endpoint"] != "/airports" {
		t.Errorf("Expected endpoint field, got %v", entries[0].ContextMap())
	}
}

func TestBangladeshAirports(t *testing.T) {
	env := setupHandlers(t, bdProvider())

	rec, body := env.do(t, http.MethodGet, "/airports/bangladesh")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body.Country != "Bangladesh" || body.Source != "provider" || *body.Total != 2 {
		t.Errorf("Unexpected envelope %+v", body)
	}

	rec, body = env.do(t, http.MethodGet, "/airports/region/zz")
	if rec.Code != http.StatusNotFound || body.Message != "unknown region" {
		t.Errorf("Expected 404 for unknown region, got %d %+v", rec.Code, body)
	}
}

func TestLocalEndpointsAfterCountrySync(t *testing.T) {
	env := setupHandlers(t, bdProvider())

	rec, body := env.do(t, http.MethodPost, "/admin/sync/country/bd")
	if rec.Code != http.StatusOK || *body.Total != 3 {
		t.Fatalf("Expected sync of 3 airports, got %d %+v", rec.Code, body)
	}

	_, body = env.do(t, http.MethodGet, "/airports/country/BD?international=true")
	if *body.Total != 2 || body.Country != "BD" || body.Source != "database" {
		t.Errorf("Expected 2 international BD airports, got %+v", body)
	}

	_, body = env.do(t, http.MethodGet, "/airports/local?query=dhaka")
	if *body.Total != 1 {
		t.Errorf("Expected 1 local match, got %+v", body)
	}

	_, body = env.do(t, http.MethodGet, "/airports/popular")
	var popular []dtos.AirportSummary
	json.Unmarshal(body.Data, &popular)
	if len(popular) != 3 || popular[0].Code != "DAC" {
		t.Errorf("Expected DAC most searched, got %+v", popular)
	}

	rec, body = env.do(t, http.MethodGet, "/airports/dac")
	if rec.Code != http.StatusOK || body.Source != "database" {
		t.Errorf("Expected local hit for DAC, got %d %+v", rec.Code, body)
	}

	rec, _ = env.do(t, http.MethodPost, "/admin/cxb/deactivate")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected deactivate 200, got %d", rec.Code)
	}
	rec, _ = env.do(t, http.MethodPost, "/admin/zzz/deactivate")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected deactivate of unknown code to 404, got %d", rec.Code)
	}

	_, body = env.do(t, http.MethodGet, "/admin/stats?country=bd")
	var stats repositories.AirportStats
	json.Unmarshal(body.Data, &stats)
	if stats.TotalAirports != 3 || stats.ActiveAirports != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestGetAirport_DeactivatedStaysHidden(t *testing.T) {
	provider := bdProvider()
	lookups := 0
	provider.detailsFunc = func(ctx context.Context, code string) (*dtos.Location, error) {
		lookups++
		return &dtos.Location{
			SubType:  "AIRPORT",
			IataCode: code,
			Name:     "HAZRAT SHAHJALAL INTL",
			Address:  dtos.LocationAddress{CityName: "DHAKA", CountryName: "BANGLADESH", CountryCode: "BD"},
		}, nil
	}
	env := setupHandlers(t, provider)

	env.do(t, http.MethodPost, "/admin/sync/country/bd")
	if rec, _ := env.do(t, http.MethodPost, "/admin/dac/deactivate"); rec.Code != http.StatusOK {
		t.Fatalf("Expected deactivate 200, got %d", rec.Code)
	}

	rec, _ := env.do(t, http.MethodGet, "/airports/DAC")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for deactivated airport, got %d", rec.Code)
	}
	if lookups != 0 {
		t.Errorf("Expected no provider lookup, got %d", lookups)
	}
	if stored, _ := env.repo.FindByCode(context.Background(), "DAC"); stored == nil || stored.IsActive {
		t.Errorf("Expected DAC to remain inactive, got %+v", stored)
	}

	_, body := env.do(t, http.MethodGet, "/airports/country/BD")
	var listed []dtos.AirportSummary
	json.Unmarshal(body.Data, &listed)
	for _, a := range listed {
		if a.Code == "DAC" {
			t.Error("Expected DAC absent from country listing")
		}
	}
}

func TestGetAirport_FallsBackToProvider(t *testing.T) {
	provider := bdProvider()
	provider.detailsFunc = func(ctx context.Context, code string) (*dtos.Location, error) {
		if code != "ZYL" {
			return nil, nil
		}
		return &dtos.Location{
			SubType:  "AIRPORT",
			IataCode: "ZYL",
			Name:     "OSMANI INTL",
			Address:  dtos.LocationAddress{CityName: "SYLHET", CountryName: "BANGLADESH", CountryCode: "BD"},
		}, nil
	}
	env := setupHandlers(t, provider)

	rec, body := env.do(t, http.MethodGet, "/airports/ZYL")
	if rec.Code != http.StatusOK || body.Source != "provider" {
		t.Fatalf("Expected provider fallback, got %d %+v", rec.Code, body)
	}
	if stored, _ := env.repo.FindByCode(context.Background(), "ZYL"); stored == nil {
		t.Error("Expected fetched airport to be stored")
	}

	rec, _ = env.do(t, http.MethodGet, "/airports/QQQ")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}

	rec, _ = env.do(t, http.MethodGet, "/airports/D4C")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed code, got %d", rec.Code)
	}
}

func TestSearchFlights_RequiredParams(t *testing.T) {
	env := setupHandlers(t, bdProvider())

	rec, body := env.do(t, http.MethodGet, "/flights/search?originLocationCode=DAC")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if !strings.Contains(body.Message, "destinationLocationCode") || !strings.Contains(body.Message, "adults") {
		t.Errorf("Expected missing params listed, got %q", body.Message)
	}

	rec, body = env.do(t, http.MethodGet, "/flights/search?originLocationCode=DAC&destinationLocationCode=CGP&departureDate=2026-11-01&adults=1")
	if rec.Code != http.StatusOK || string(body.Data) != `{"data":[{"id":"1"}]}` {
		t.Errorf("Expected passthrough body, got %d %s", rec.Code, body.Data)
	}
}

func TestRefreshStale_EmptyTable(t *testing.T) {
	env := setupHandlers(t, bdProvider())

	rec, body := env.do(t, http.MethodPost, "/admin/refresh-stale?days=30")
	if rec.Code != http.StatusOK || *body.Total != 0 {
		t.Errorf("Expected empty refresh, got %d %+v", rec.Code, body)
	}
}

func TestHealthCheck(t *testing.T) {
	env := setupHandlers(t, bdProvider())

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("Expected healthy response, got %d %s", rec.Code, rec.Body.String())
	}
}
