// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"opendaoc/internal/registry"

	"github.com/rs/zerolog"
)

// Validate checks configuration correctness.
// It does not check the discord token, which is only needed to connect
func Validate(cfg *Config) error {

	// ---- discord ----
	if cfg.Discord.Prefix == "" {
		return fmt.Errorf("discord.prefix must not be empty")
	}
	if strings.ContainsAny(cfg.Discord.Prefix, " \t\n") {
		return fmt.Errorf("discord.prefix %q must not contain whitespace", cfg.Discord.Prefix)
	}

	// ---- store ----
	switch cfg.Store.Driver {
	case registry.DriverSQLite, registry.DriverYAML:
	default:
		return fmt.Errorf("store.driver %q is not one of %s, %s", cfg.Store.Driver, registry.DriverSQLite, registry.DriverYAML)
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}

	// ---- fetch ----
	if cfg.Fetch.TimeoutMs < 0 {
		return fmt.Errorf("fetch.timeout_ms must not be negative")
	}
	if cfg.Fetch.RateLimitCooldownMs < 0 {
		return fmt.Errorf("fetch.rate_limit_cooldown_ms must not be negative")
	}
	if cfg.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch.concurrency must be at least 1")
	}
	for i, r := range cfg.Fetch.Restrictions {
		if r.Requests <= 0 || r.PeriodMs <= 0 {
			return fmt.Errorf("fetch.restrictions[%d]: requests and period_ms must be positive", i)
		}
	}

	// ---- default servers ----
	seen := make(map[string]struct{}, len(cfg.Servers))
	for i, s := range cfg.Servers {
		name := registry.Normalize(s.Name)
		if name == "" || s.URL == "" {
			return fmt.Errorf("servers[%d]: name and url are required", i)
		}
		if !registry.ValidName(name) {
			return fmt.Errorf("servers[%d]: %w", i, &registry.InvalidNameError{Name: s.Name})
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("servers[%d]: duplicate server name %q", i, name)
		}
		seen[name] = struct{}{}
	}

	// ---- log ----
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil || cfg.Log.Level == "" {
		return fmt.Errorf("log.level %q is not a valid level", cfg.Log.Level)
	}

	return nil
}
