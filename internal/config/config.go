package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	Driver     string
	URL        string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// DSN returns the postgres connection string, preferring DATABASE_URL when set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type ProviderConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	RequestsPerS float64
}

type SyncConfig struct {
	StaleDays  int
	BatchSize  int
	BatchDelay time.Duration
	Interval   time.Duration
	Regions    []string
}

type CacheConfig struct {
	Backend    string
	TTL        time.Duration
	MaxEntries int
}

// RateLimitConfig bounds inbound requests per client IP.
type RateLimitConfig struct {
	RequestsPerS float64
	Burst        int
	Whitelist    []string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type Config struct {
	AppEnv           string
	Port             string
	Database         DatabaseConfig
	Provider         ProviderConfig
	Sync             SyncConfig
	Cache            CacheConfig
	Redis            RedisConfig
	RateLimit        RateLimitConfig
	AdminTokenSecret string
}

// IsProduction reports whether internal error detail must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads an optional .env file and then the process environment.
// Provider credentials are deliberately optional here; the provider client
// reports their absence on first use.
func Load() (*Config, error) {
	var errs []error

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.New("failed load cfg: " + err.Error())
	}

	cfg := &Config{
		AppEnv: envOr("APP_ENV", "development"),
		Port:   envOr("PORT", "8080"),
		Database: DatabaseConfig{
			Driver:     envOr("DB_DRIVER", "postgres"),
			URL:        os.Getenv("DATABASE_URL"),
			Host:       envOr("PG_HOST", "localhost"),
			Port:       envOr("PG_PORT", "5432"),
			User:       os.Getenv("PG_USER"),
			Password:   os.Getenv("PG_PASSWORD"),
			Name:       os.Getenv("PG_DB"),
			SSLMode:    envOr("PG_SSLMODE", "disable"),
			SQLitePath: envOr("SQLITE_PATH", "airports.db"),
		},
		Provider: ProviderConfig{
			BaseURL:      envOr("PROVIDER_BASE_URL", "https://test.api.amadeus.com"),
			ClientID:     os.Getenv("PROVIDER_CLIENT_ID"),
			ClientSecret: os.Getenv("PROVIDER_CLIENT_SECRET"),
			Timeout:      time.Duration(intEnv("PROVIDER_TIMEOUT_SECONDS", 15, &errs)) * time.Second,
			RequestsPerS: float64(intEnv("PROVIDER_RPS", 5, &errs)),
		},
		Sync: SyncConfig{
			StaleDays:  intEnv("SYNC_STALE_DAYS", 30, &errs),
			BatchSize:  intEnv("SYNC_BATCH_SIZE", 5, &errs),
			BatchDelay: time.Duration(intEnv("SYNC_BATCH_DELAY_MS", 1000, &errs)) * time.Millisecond,
			Interval:   time.Duration(intEnv("SYNC_INTERVAL_MINUTES", 1440, &errs)) * time.Minute,
			Regions:    listEnv("SYNC_REGIONS", []string{"BD"}),
		},
		Cache: CacheConfig{
			Backend:    envOr("CACHE_BACKEND", "memory"),
			TTL:        time.Duration(intEnv("CACHE_TTL_MINUTES", 60, &errs)) * time.Minute,
			MaxEntries: intEnv("CACHE_MAX_ENTRIES", 1000, &errs),
		},
		Redis: RedisConfig{
			Host:     envOr("REDIS_HOST", "localhost"),
			Port:     envOr("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerS: float64(intEnv("RATE_LIMIT_RPS", 10, &errs)),
			Burst:        intEnv("RATE_LIMIT_BURST", 20, &errs),
			Whitelist:    rawListEnv("RATE_LIMIT_WHITELIST"),
		},
		AdminTokenSecret: os.Getenv("ADMIN_TOKEN_SECRET"),
	}

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.URL == "" {
			mustSet("PG_USER", cfg.Database.User, &errs)
			mustSet("PG_DB", cfg.Database.Name, &errs)
		}
	case "sqlite":
	default:
		errs = append(errs, errors.New("unsupported DB_DRIVER: "+cfg.Database.Driver))
	}

	if cfg.Cache.Backend != "memory" && cfg.Cache.Backend != "redis" {
		errs = append(errs, errors.New("unsupported CACHE_BACKEND: "+cfg.Cache.Backend))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func mustSet(key, value string, errs *[]error) {
	if value == "" {
		*errs = append(*errs, errors.New("missing env: "+key))
	}
}

func intEnv(key string, fallback int, errs *[]error) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return n
}

func listEnv(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func rawListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
