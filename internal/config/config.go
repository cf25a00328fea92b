package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/eco-ops-dashboard/internal/external"
)

type AppConfig struct {
	AppName  string
	Env      string
	Port     string
	LogLevel string

	// MockData serves fallback data without calling upstreams or the alert sink.
	MockData bool

	// DatabasePath selects the SQLite store. Empty means a seeded in-memory store.
	DatabasePath string

	FormEndpoint string

	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string
	UtilityAPIURL     string
	UtilityAPIToken   string

	Sources         []external.SourceID
	DefaultLocation string
	UpstreamTimeout time.Duration

	// SyncInterval controls the background sync job; 0 disables it.
	SyncInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisStream   string
}

// Load reads .env (if present) and the environment, with defaults.
// The returned note is non-empty when .env could not be read.
func Load() (*AppConfig, string, error) {
	var note string
	if err := godotenv.Load(); err != nil {
		note = fmt.Sprintf("no .env file loaded: %v", err)
	}

	cfg := &AppConfig{
		AppName:  getenvDefault("APP_NAME", "eco-ops-manager"),
		Env:      getenvDefault("APP_ENV", "development"),
		Port:     getenvDefault("PORT", "3000"),
		LogLevel: getenvDefault("LOG_LEVEL", "info"),
		// anything but an explicit "false" keeps mock data on
		MockData: os.Getenv("USE_MOCK_DATA") != "false",

		DatabasePath: os.Getenv("DATABASE_PATH"),
		FormEndpoint: os.Getenv("FORM_ENDPOINT"),

		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:     os.Getenv("WEATHERAPI_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
		UtilityAPIURL:     os.Getenv("UTILITY_API_URL"),
		UtilityAPIToken:   os.Getenv("UTILITY_API_TOKEN"),

		Sources:         parseSources(getenvDefault("EXTERNAL_SOURCES", "openweather,utility_api")),
		DefaultLocation: getenvDefault("DEFAULT_LOCATION", "London,UK"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		RedisStream:   getenvDefault("REDIS_STREAM", "eco_ops_sync"),
	}

	var err error
	if cfg.UpstreamTimeout, err = getenvDuration("UPSTREAM_TIMEOUT", "5s"); err != nil {
		return nil, note, err
	}
	if cfg.SyncInterval, err = getenvDuration("SYNC_INTERVAL", "15m"); err != nil {
		return nil, note, err
	}
	if cfg.UpstreamTimeout <= 0 {
		return nil, note, fmt.Errorf("invalid UPSTREAM_TIMEOUT: must be positive")
	}

	return cfg, note, nil
}

// MissingRecommended lists production keys that are unset. Every consumer has
// a fallback, so these are warnings rather than errors.
func (c *AppConfig) MissingRecommended() []string {
	if c.MockData {
		return nil
	}
	var missing []string
	if c.DatabasePath == "" {
		missing = append(missing, "DATABASE_PATH")
	}
	if c.FormEndpoint == "" {
		missing = append(missing, "FORM_ENDPOINT")
	}
	if c.OpenWeatherAPIKey == "" {
		missing = append(missing, "OPENWEATHER_API_KEY")
	}
	return missing
}

func parseSources(s string) []external.SourceID {
	var ids []external.SourceID
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			ids = append(ids, external.SourceID(p))
		}
	}
	return ids
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	raw := getenvDefault(key, def)
	// bare "0" is accepted by ParseDuration, other unitless numbers are not
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
