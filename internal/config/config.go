package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`

	SentryEnabled bool `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus metrics server
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// daily reset sweep anchor timezone, e.g. "Europe/London"
	ResetTimezone string `toml:"reset_timezone"`

	// max duration of a single metric store operation, in seconds
	StoreTimeoutSeconds int `toml:"store_timeout_seconds"`

	UpdateRateLimitAllowedPerMin int `toml:"update_rate_limit_allowed_per_min"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development", "ddev", "dockerdev":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env %s is empty", env)
	}

	cfg.Environment = env

	if cfg.ResetTimezone == "" {
		cfg.ResetTimezone = "Europe/London"
	}
	if cfg.StoreTimeoutSeconds <= 0 {
		cfg.StoreTimeoutSeconds = 5
	}
	if cfg.UpdateRateLimitAllowedPerMin <= 0 {
		cfg.UpdateRateLimitAllowedPerMin = 60
	}

	return cfg, nil
}
