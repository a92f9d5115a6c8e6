// Package config defines service configuration and its loading order:
// defaults, then an optional YAML file, then VARYFLY_* environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RedisURL points at the session store.
	RedisURL string `koanf:"redis_url"`

	// AmadeusBaseURL is the upstream travel-data API, scheme included.
	AmadeusBaseURL string `koanf:"amadeus_base_url"`

	// AmadeusClientID and AmadeusClientSecret are the OAuth client
	// credentials for the upstream token endpoint.
	AmadeusClientID     string `koanf:"amadeus_client_id"`
	AmadeusClientSecret string `koanf:"amadeus_client_secret"`

	// RequestTimeoutMS bounds each aggregation operation end to end.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// MaxPages bounds cursor-following pagination per request.
	MaxPages int `koanf:"max_pages"`

	// PageLimit is the page[limit] parameter sent on paginated endpoints.
	PageLimit int `koanf:"page_limit"`

	// SessionTTLHours is how long saved home cities and preferences live.
	SessionTTLHours int `koanf:"session_ttl_hours"`

	// RateLimitPerMinute caps requests per client IP.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8080",
		RedisURL:           "redis://localhost:6379",
		AmadeusBaseURL:     "https://test.api.amadeus.com",
		RequestTimeoutMS:   30_000,
		MaxPages:           50,
		PageLimit:          10_000,
		SessionTTLHours:    24,
		RateLimitPerMinute: 60,
	}
}

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if VARYFLY_CONFIG is set
//  3. env (prefix VARYFLY_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("VARYFLY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Map env keys like VARYFLY_MAX_PAGES -> max_pages (flat keys,
	// underscores preserved to match the koanf tags).
	envProvider := env.Provider("VARYFLY_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "varyfly_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.AmadeusBaseURL == "" {
		return nil, errors.New("amadeus_base_url must not be empty")
	}
	if cfg.AmadeusClientID == "" || cfg.AmadeusClientSecret == "" {
		return nil, errors.New("amadeus_client_id and amadeus_client_secret must be set")
	}
	return &cfg, nil
}

// RequestTimeout returns the per-operation timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// SessionTTL returns the session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}
