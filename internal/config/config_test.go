package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	withServer := func(s ServerConfig) *Config {
		cfg := DefaultConfig()
		cfg.Server = s
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "default config should be valid",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "invalid http port",
			config:  withServer(ServerConfig{HTTPPort: 0, BodyLimitMB: 1}),
			wantErr: true,
		},
		{
			name:    "zero body limit",
			config:  withServer(ServerConfig{HTTPPort: 8080}),
			wantErr: true,
		},
		{
			name: "mysql source without dsn",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Source = SourceConfig{Type: "mysql", Table: "sales"}
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "mysql source with query",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Source = SourceConfig{Type: "mysql", DSN: "mysql://u:p@localhost:3306/db", Query: "SELECT 1"}
				return cfg
			}(),
			wantErr: false,
		},
		{
			name: "unknown source type",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Source.Type = "parquet"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "invalid timezone",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Source.Timezone = "Mars/Olympus"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "invalid default granularity",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Dashboard.DefaultGranularity = "hourly"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "redis cache without url",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Cache.Type = "redis"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "kafka events without brokers",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Events.Type = "kafka"
				return cfg
			}(),
			wantErr: true,
		},
		{
			name: "invalid logging level",
			config: func() *Config {
				cfg := DefaultConfig()
				cfg.Logging = LoggingConfig{Level: "invalid", Format: "json"}
				return cfg
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.HTTPPort != 5580 {
		t.Errorf("expected HTTPPort 5580, got %d", cfg.Server.HTTPPort)
	}

	if cfg.Dashboard.DefaultGranularity != "auto" {
		t.Errorf("expected default granularity auto, got %s", cfg.Dashboard.DefaultGranularity)
	}

	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("expected cache TTL 10m, got %v", cfg.Cache.TTL)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  http_port: 6000
source:
  type: csv
  paths:
    - /data/sales.csv
dashboard:
  default_granularity: monthly
cache:
  ttl: 30s
logging:
  level: debug
  format: console
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TSEXPLORER_SERVER_BODY_LIMIT_MB", "8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPPort != 6000 {
		t.Errorf("expected HTTPPort 6000, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.BodyLimitMB != 8 {
		t.Errorf("expected env override body_limit_mb 8, got %d", cfg.Server.BodyLimitMB)
	}
	if len(cfg.Source.Paths) != 1 || cfg.Source.Paths[0] != "/data/sales.csv" {
		t.Errorf("unexpected source paths %v", cfg.Source.Paths)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("expected cache TTL 30s, got %v", cfg.Cache.TTL)
	}
	if cfg.Source.FileName != "RetailSalesHealthPersonalCare.csv" {
		t.Errorf("expected default file name, got %s", cfg.Source.FileName)
	}
	if !cfg.IsDevelopment() {
		t.Error("config with debug/console should be development mode")
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("dashboard:\n  default_granularity: hourly\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}

	cfg := LoadOrDefault(path)
	if cfg.Dashboard.DefaultGranularity != "auto" {
		t.Errorf("LoadOrDefault should fall back to defaults, got %s", cfg.Dashboard.DefaultGranularity)
	}
}

func TestSourceLocation(t *testing.T) {
	tests := []struct {
		tz     string
		offset int
	}{
		{"", 0},
		{"UTC", 0},
		{"+09:00", 9 * 3600},
		{"-05:30", -(5*3600 + 30*60)},
		{"garbage", 0},
	}

	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.tz, func(t *testing.T) {
			cfg := SourceConfig{Timezone: tt.tz}
			_, offset := ref.In(cfg.Location()).Zone()
			if offset != tt.offset {
				t.Errorf("timezone %q: expected offset %d, got %d", tt.tz, tt.offset, offset)
			}
		})
	}
}

func TestGetServerAddress(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetServerAddress(); got != "0.0.0.0:5580" {
		t.Errorf("expected 0.0.0.0:5580, got %s", got)
	}
	if got := cfg.Server.BodyLimit(); got != 64*1024*1024 {
		t.Errorf("unexpected body limit %d", got)
	}
}
