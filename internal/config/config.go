// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"opendaoc/internal/common"
	"opendaoc/internal/registry"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Discord DiscordConfig    `yaml:"discord"`
	Store   StoreConfig      `yaml:"store"`
	Fetch   FetchConfig      `yaml:"fetch"`
	Servers []registry.Entry `yaml:"servers"`
	Log     LogConfig        `yaml:"log"`
	Metrics MetricsConfig    `yaml:"metrics"`
}

type DiscordConfig struct {
	Token  string `yaml:"token"`
	Prefix string `yaml:"prefix"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite | yaml
	Path   string `yaml:"path"`
}

type FetchConfig struct {
	TimeoutMs           int                 `yaml:"timeout_ms"` // 0 disables the timeout
	Concurrency         int                 `yaml:"concurrency"`
	RateLimitCooldownMs int                 `yaml:"rate_limit_cooldown_ms"`
	Restrictions        []RestrictionConfig `yaml:"restrictions"`
}

type RestrictionConfig struct {
	Requests int `yaml:"requests"`
	PeriodMs int `yaml:"period_ms"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty disables the listener
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Discord: DiscordConfig{Prefix: "!"},
		Store:   StoreConfig{Driver: registry.DriverSQLite, Path: "./data/opendaoc.db"},
		Fetch: FetchConfig{
			TimeoutMs:           10000,
			Concurrency:         4,
			RateLimitCooldownMs: 30000,
			Restrictions:        []RestrictionConfig{{Requests: 20, PeriodMs: 10000}},
		},
		Servers: registry.DefaultEntries(),
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads the file at path over the defaults, then applies the
// environment overrides. An empty path only uses defaults and environment
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Discord.Token = envOr("OPENDAOC_DISCORD_TOKEN", cfg.Discord.Token)
	cfg.Store.Path = envOr("OPENDAOC_STORE_PATH", cfg.Store.Path)
	cfg.Log.Level = envOr("OPENDAOC_LOG_LEVEL", cfg.Log.Level)
	cfg.Metrics.Listen = envOr("OPENDAOC_METRICS_LISTEN", cfg.Metrics.Listen)

	return cfg, nil
}

func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutMs) * time.Millisecond
}

func (f FetchConfig) Cooldown() time.Duration {
	return time.Duration(f.RateLimitCooldownMs) * time.Millisecond
}

func (f FetchConfig) RateRestrictions() []common.Restriction {
	restrictions := make([]common.Restriction, 0, len(f.Restrictions))
	for _, r := range f.Restrictions {
		restrictions = append(restrictions, common.Restriction{
			Requests: r.Requests,
			Duration: time.Duration(r.PeriodMs) * time.Millisecond,
		})
	}
	return restrictions
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
