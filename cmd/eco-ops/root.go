package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/i474232898/eco-ops-dashboard/internal/alert"
	"github.com/i474232898/eco-ops-dashboard/internal/config"
	"github.com/i474232898/eco-ops-dashboard/internal/dashboard"
	"github.com/i474232898/eco-ops-dashboard/internal/external"
	"github.com/i474232898/eco-ops-dashboard/internal/external/sources"
	"github.com/i474232898/eco-ops-dashboard/internal/hours"
	"github.com/i474232898/eco-ops-dashboard/internal/logger"
	"github.com/i474232898/eco-ops-dashboard/internal/store"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "eco-ops",
	Short: "Eco-ops dashboard server and tools",
	Long: `eco-ops cross-references staff hours, outdoor temperature and electricity
cost into efficiency statistics. Without a subcommand it runs the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database file (overrides DATABASE_PATH)")
}

// app holds the wired components shared by all commands.
type app struct {
	cfg        *config.AppConfig
	log        *logger.Logger
	db         *sql.DB
	hours      hours.Store
	fetcher    *external.Fetcher
	notifier   *alert.FormNotifier
	aggregator *dashboard.Aggregator
}

func bootstrap() (*app, error) {
	cfg, note, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}

	log := logger.New(cfg.LogLevel, cfg.AppName)
	if note != "" {
		log.Infow(note)
	}
	for _, key := range cfg.MissingRecommended() {
		log.Warnw("missing_recommended_config", "key", key)
	}

	a := &app{cfg: cfg, log: log}

	if cfg.DatabasePath != "" {
		if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := store.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.hours = store.NewSQLiteStore(db)
		log.Infow("hour_store_ready", "backend", "sqlite", "path", cfg.DatabasePath)
	} else {
		a.hours = store.NewMemoryStore(hours.SeedEntries())
		log.Infow("hour_store_ready", "backend", "memory")
	}

	client := &http.Client{Timeout: cfg.UpstreamTimeout}
	var resolve sources.Resolver
	if cfg.GeocoderAPIKey != "" {
		resolve = sources.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}
	a.fetcher = external.NewFetcher(external.FetcherConfig{
		Sources: cfg.Sources,
		Timeout: cfg.UpstreamTimeout,
		Mock:    cfg.MockData,
	}, log,
		sources.NewOpenWeather(client, cfg.OpenWeatherAPIKey),
		sources.NewWeatherAPI(client, cfg.WeatherAPIKey),
		sources.NewOpenMeteo(client, resolve),
		sources.NewUtility(client, cfg.UtilityAPIURL, cfg.UtilityAPIToken),
	)

	a.notifier = alert.NewFormNotifier(alert.FormConfig{
		Endpoint:    cfg.FormEndpoint,
		App:         cfg.AppName,
		Environment: cfg.Env,
		Mock:        cfg.MockData,
	}, log)

	a.aggregator = dashboard.NewAggregator(a.hours, a.fetcher, a.notifier, dashboard.Options{
		Logger:          log,
		DefaultLocation: cfg.DefaultLocation,
		Mock:            cfg.MockData,
	})

	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warnw("database_close_failed", "error", err)
		}
	}
	_ = a.log.Sync()
}
