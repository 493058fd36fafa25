// Package config loads the stockweather configuration from a YAML file,
// applies environment overrides, and fills in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration shared by the server, the daily
// analysis command, and the terminal client.
type Config struct {
	Server   Server   `yaml:"server"`
	Storage  Storage  `yaml:"storage"`
	Fetch    Fetch    `yaml:"fetch"`
	Analysis Analysis `yaml:"analysis"`
	Schedule Schedule `yaml:"schedule"`
	Client   Client   `yaml:"client"`
	Logging  Logging  `yaml:"logging"`
}

// Server holds the HTTP listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address in host:port form.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir   string `yaml:"data_dir"`   // parquet snapshot root
	CachePath string `yaml:"cache_path"` // sqlite TTL cache file
}

// Fetch configures upstream market-data access.
type Fetch struct {
	Alpaca          Alpaca `yaml:"alpaca"`
	YahooRatePerMin int    `yaml:"yahoo_rate_per_min"`
	RetryAttempts   int    `yaml:"retry_attempts"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// Alpaca holds market-data API credentials. Optional: without them US bars
// fall back to the Yahoo chart API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// Analysis tunes the rankings pipeline.
type Analysis struct {
	Workers            int `yaml:"workers"`              // concurrent per-ticker analyses
	RankingLimit       int `yaml:"ranking_limit"`        // default top-N per side
	RankingsTTLSeconds int `yaml:"rankings_ttl_seconds"` // rankings cache lifetime
	DetailTTLSeconds   int `yaml:"detail_ttl_seconds"`   // per-stock detail cache lifetime
	FullTTLSeconds     int `yaml:"full_ttl_seconds"`     // full-market result cache lifetime
}

// Schedule holds cron expressions (with a seconds field) for background jobs.
type Schedule struct {
	RefreshCron string `yaml:"refresh_cron"` // rankings precompute
	CleanupCron string `yaml:"cleanup_cron"` // cache expiry sweep
	FullCron    string `yaml:"full_cron"`    // daily full-market analysis
}

// Client configures the terminal dashboard and SDK defaults.
type Client struct {
	APIURL        string `yaml:"api_url"`
	RefreshMS     int    `yaml:"refresh_ms"` // ranking auto-refresh interval
	NewsSentiment bool   `yaml:"news_sentiment"`
	SectorMap     bool   `yaml:"sector_map"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
	File   string `yaml:"file"`   // optional log file, teed with stdout
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, applies
// environment overrides, and fills defaults. A missing file is fine since
// everything has a default. Callers should Validate() the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("CACHE_PATH"); v != "" {
		cfg.Storage.CachePath = v
	}

	if v := os.Getenv("STOCKWEATHER_API_URL"); v != "" {
		cfg.Client.APIURL = v
	}
	if v := os.Getenv("STOCKWEATHER_REFRESH_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Client.RefreshMS = n
		}
	}
	if v := os.Getenv("STOCKWEATHER_NEWS_SENTIMENT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Client.NewsSentiment = b
		}
	}
	if v := os.Getenv("STOCKWEATHER_SECTOR_MAP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Client.SectorMap = b
		}
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Fetch.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Fetch.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Fetch.Alpaca.DataURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Canonical Alpaca env vars win over the STOCKWEATHER-prefixed ones.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Fetch.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Fetch.Alpaca.APISecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.CachePath == "" {
		cfg.Storage.CachePath = "data/cache.db"
	}
	if cfg.Fetch.YahooRatePerMin == 0 {
		cfg.Fetch.YahooRatePerMin = 120
	}
	if cfg.Fetch.RetryAttempts == 0 {
		cfg.Fetch.RetryAttempts = 3
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = 10
	}
	if cfg.Analysis.Workers == 0 {
		cfg.Analysis.Workers = 32
	}
	if cfg.Analysis.RankingLimit == 0 {
		cfg.Analysis.RankingLimit = 10
	}
	if cfg.Analysis.RankingsTTLSeconds == 0 {
		cfg.Analysis.RankingsTTLSeconds = 3600
	}
	if cfg.Analysis.DetailTTLSeconds == 0 {
		cfg.Analysis.DetailTTLSeconds = 3600
	}
	if cfg.Analysis.FullTTLSeconds == 0 {
		cfg.Analysis.FullTTLSeconds = 10800
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 */5 * * * *"
	}
	if cfg.Schedule.CleanupCron == "" {
		cfg.Schedule.CleanupCron = "0 0 * * * *"
	}
	if cfg.Schedule.FullCron == "" {
		cfg.Schedule.FullCron = "0 0 6 * * *"
	}
	if cfg.Client.APIURL == "" {
		cfg.Client.APIURL = "http://localhost:8000"
	}
	if cfg.Client.RefreshMS == 0 {
		cfg.Client.RefreshMS = 300000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be positive")
	}
	if c.Analysis.RankingLimit < 1 || c.Analysis.RankingLimit > 50 {
		return fmt.Errorf("analysis.ranking_limit %d out of range [1,50]", c.Analysis.RankingLimit)
	}
	if c.Client.RefreshMS < 1000 {
		return fmt.Errorf("client.refresh_ms %d below 1000", c.Client.RefreshMS)
	}
	if c.Client.APIURL == "" {
		return fmt.Errorf("client.api_url is required")
	}
	return nil
}
