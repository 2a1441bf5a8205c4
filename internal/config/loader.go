package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. TSEXPLORER_SERVER_HTTP_PORT
const EnvPrefix = "TSEXPLORER"

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/tsexplorer")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.body_limit_mb", d.Server.BodyLimitMB)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_keys", []string{})

	v.SetDefault("source.type", d.Source.Type)
	v.SetDefault("source.file_name", d.Source.FileName)
	v.SetDefault("source.paths", []string{})
	v.SetDefault("source.timezone", d.Source.Timezone)

	v.SetDefault("dashboard.default_granularity", d.Dashboard.DefaultGranularity)
	v.SetDefault("dashboard.max_table_rows", d.Dashboard.MaxTableRows)

	v.SetDefault("cache.type", d.Cache.Type)
	v.SetDefault("cache.prefix", d.Cache.Prefix)
	v.SetDefault("cache.ttl", d.Cache.TTL.String())

	v.SetDefault("events.type", d.Events.Type)
	v.SetDefault("events.subject_prefix", d.Events.SubjectPrefix)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			HTTPPort:    5580,
			BodyLimitMB: 64,
		},
		Source: SourceConfig{
			Type:     "csv",
			FileName: "RetailSalesHealthPersonalCare.csv",
			Timezone: "UTC",
		},
		Dashboard: DashboardConfig{
			DefaultGranularity: "auto",
			MaxTableRows:       10000,
		},
		Cache: CacheConfig{
			Type:   "memory",
			Prefix: "tsexplorer",
			TTL:    10 * time.Minute,
		},
		Events: EventsConfig{
			Type:          "none",
			SubjectPrefix: "tsexplorer",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
