package config

import (
	"os"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "stockweather-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}
	return tmpFile.Name()
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATA_DIR", "CACHE_PATH", "LOG_LEVEL",
		"STOCKWEATHER_API_URL", "STOCKWEATHER_REFRESH_MS",
		"STOCKWEATHER_NEWS_SENTIMENT", "STOCKWEATHER_SECTOR_MAP",
		"ALPACA_API_KEY", "ALPACA_API_SECRET", "ALPACA_DATA_URL",
		"APCA_API_KEY_ID", "APCA_API_SECRET_KEY",
	} {
		os.Unsetenv(k)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `
server:
  host: "0.0.0.0"
  port: 9000
storage:
  data_dir: "/tmp/sw/data"
  cache_path: "/tmp/sw/cache.db"
fetch:
  alpaca:
    api_key: "test-key"
    api_secret: "test-secret"
  yahoo_rate_per_min: 60
  retry_attempts: 2
analysis:
  workers: 8
  ranking_limit: 20
  rankings_ttl_seconds: 600
client:
  api_url: "http://example:9000"
  refresh_ms: 60000
  news_sentiment: true
logging:
  level: "debug"
  format: "text"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:9000" {
		t.Errorf("Server.Addr() = %q, want %q", cfg.Server.Addr(), "0.0.0.0:9000")
	}
	if cfg.Storage.DataDir != "/tmp/sw/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/sw/data")
	}
	if cfg.Fetch.Alpaca.APIKey != "test-key" {
		t.Errorf("Fetch.Alpaca.APIKey = %q, want %q", cfg.Fetch.Alpaca.APIKey, "test-key")
	}
	if cfg.Fetch.YahooRatePerMin != 60 {
		t.Errorf("Fetch.YahooRatePerMin = %d, want 60", cfg.Fetch.YahooRatePerMin)
	}
	if cfg.Analysis.Workers != 8 {
		t.Errorf("Analysis.Workers = %d, want 8", cfg.Analysis.Workers)
	}
	if cfg.Analysis.RankingsTTLSeconds != 600 {
		t.Errorf("Analysis.RankingsTTLSeconds = %d, want 600", cfg.Analysis.RankingsTTLSeconds)
	}
	if !cfg.Client.NewsSentiment {
		t.Error("Client.NewsSentiment = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}

	// Unset fields still get defaults.
	if cfg.Analysis.DetailTTLSeconds != 3600 {
		t.Errorf("Analysis.DetailTTLSeconds = %d, want default 3600", cfg.Analysis.DetailTTLSeconds)
	}
	if cfg.Schedule.CleanupCron != "0 0 * * * *" {
		t.Errorf("Schedule.CleanupCron = %q, want default hourly", cfg.Schedule.CleanupCron)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("/nonexistent/stockweather.yaml")
	if err != nil {
		t.Fatalf("Load() on missing file returned error: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want default 8000", cfg.Server.Port)
	}
	if cfg.Client.APIURL != "http://localhost:8000" {
		t.Errorf("Client.APIURL = %q, want default", cfg.Client.APIURL)
	}
	if cfg.Client.RefreshMS != 300000 {
		t.Errorf("Client.RefreshMS = %d, want default 300000", cfg.Client.RefreshMS)
	}
	if cfg.Analysis.Workers != 32 {
		t.Errorf("Analysis.Workers = %d, want default 32", cfg.Analysis.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOCKWEATHER_API_URL", "http://override:1234")
	t.Setenv("STOCKWEATHER_REFRESH_MS", "45000")
	t.Setenv("STOCKWEATHER_SECTOR_MAP", "true")
	t.Setenv("APCA_API_KEY_ID", "canonical-key")
	t.Setenv("ALPACA_API_KEY", "legacy-key")

	cfg, err := Load("/nonexistent/stockweather.yaml")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Client.APIURL != "http://override:1234" {
		t.Errorf("Client.APIURL = %q, want env override", cfg.Client.APIURL)
	}
	if cfg.Client.RefreshMS != 45000 {
		t.Errorf("Client.RefreshMS = %d, want 45000", cfg.Client.RefreshMS)
	}
	if !cfg.Client.SectorMap {
		t.Error("Client.SectorMap = false, want true from env")
	}
	// Canonical APCA var wins over the legacy name.
	if cfg.Fetch.Alpaca.APIKey != "canonical-key" {
		t.Errorf("Fetch.Alpaca.APIKey = %q, want %q", cfg.Fetch.Alpaca.APIKey, "canonical-key")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"zero workers", func(c *Config) { c.Analysis.Workers = 0 }, true},
		{"limit too high", func(c *Config) { c.Analysis.RankingLimit = 100 }, true},
		{"refresh too fast", func(c *Config) { c.Client.RefreshMS = 100 }, true},
		{"missing api url", func(c *Config) { c.Client.APIURL = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load("/nonexistent/stockweather.yaml")
			if err != nil {
				t.Fatalf("Load() returned error: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}
