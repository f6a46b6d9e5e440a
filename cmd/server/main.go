package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travelbook/airports/internal/api"
	"travelbook/airports/internal/common"
	"travelbook/airports/internal/config"
	"travelbook/airports/internal/db"
	"travelbook/airports/internal/db/repositories"
	"travelbook/airports/internal/jobs"
	"travelbook/airports/internal/logging"
	"travelbook/airports/internal/metrics"
	"travelbook/airports/internal/middleware"
	"travelbook/airports/internal/providers"
	"travelbook/airports/internal/routes"
	"travelbook/airports/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const cacheSampleInterval = 30 * time.Second

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Airports service starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to DB with GORM
	orm, err := db.Open(cfg.Database)
	if err != nil {
		logging.Fatal("Failed to connect to database (GORM)", "error", err.Error())
	}
	if err := db.Migrate(orm); err != nil {
		logging.Fatal("Failed to migrate database", "error", err.Error())
	}

	// Connect to DB with sqlx for health checks
	sqlxDB, err := db.Connect(cfg.Database, orm)
	if err != nil {
		logging.Fatal("Failed to connect to database (sqlx)", "error", err.Error())
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsReg := metrics.NewMetricsRegistry(promReg)

	cache, err := newResponseCache(cfg)
	if err != nil {
		logging.Fatal("Failed to initialize response cache", "backend", cfg.Cache.Backend, "error", err.Error())
	}
	defer cache.Close()

	provider := providers.NewTravelProvider(cfg.Provider, metricsReg).
		WithLookupBatching(cfg.Sync.BatchSize, cfg.Sync.BatchDelay)
	if cfg.Provider.ClientID == "" || cfg.Provider.ClientSecret == "" {
		logging.Warn("Provider credentials are not configured; live lookups will fail until they are set")
	}

	repo := repositories.NewAirportRepository(orm)
	syncSvc := services.NewAirportSyncService(repo, provider, metricsReg, services.SyncOptions{
		StaleDays:  cfg.Sync.StaleDays,
		BatchSize:  cfg.Sync.BatchSize,
		BatchDelay: cfg.Sync.BatchDelay,
	})
	searchSvc := services.NewAirportSearchService(provider, syncSvc, cache, cfg.Cache.TTL, metricsReg)
	go searchSvc.SampleCacheSize(ctx, cacheSampleInterval)

	if cfg.AdminTokenSecret == "" {
		logging.Warn("ADMIN_TOKEN_SECRET is empty; admin routes will reject every token")
	}
	signer := common.NewAdminTokenSigner([]byte(cfg.AdminTokenSecret))

	syncJob := jobs.InitializeJobs(ctx, syncSvc, cfg.Sync)

	deps := &api.Dependencies{
		Services: &api.Services{
			Sync:   syncSvc,
			Search: searchSvc,
			Offers: provider,
			Signer: signer,
		},
		DB:           sqlxDB,
		UpSince:      time.Now(),
		ExposeErrors: !cfg.IsProduction(),
	}

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerS, cfg.RateLimit.Burst, cfg.RateLimit.Whitelist...)
	router := routes.RegisterRoutes(deps, syncJob, metricsReg, promReg, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server failed", "error", err.Error())
		}
	}()

	<-ctx.Done()
	logging.Info("Shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err.Error())
	}
	if err := sqlxDB.Close(); err != nil {
		logging.Warn("Failed to close sqlx pool", "error", err.Error())
	}
}

func newResponseCache(cfg *config.Config) (common.CacheInterface, error) {
	if cfg.Cache.Backend == "redis" {
		return common.NewRedisCacheService(cfg.Redis)
	}
	return common.NewCacheService(cfg.Cache.TTL, cfg.Cache.MaxEntries), nil
}
