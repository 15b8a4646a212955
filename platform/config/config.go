// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gsr_locator/platform/phone"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// UpstreamConfig provides the base URLs and limits of the two geo endpoints.
type UpstreamConfig interface {
	GetPlaceSearchURL() string
	GetIntersectionURL() string
	GetUpstreamTimeout() time.Duration
	GetSearchPartitionLimit() int
}

// SessionConfig provides the timing knobs of a lookup session.
type SessionConfig interface {
	GetQueryMinLength() int
	GetQueryDebounce() time.Duration
	GetBlurGrace() time.Duration
	GetSessionIdleTTL() time.Duration
	GetSessionSweepInterval() time.Duration
	GetSessionMax() int
}

// SupportConfig provides the contact details shown when a lookup fails.
type SupportConfig interface {
	GetSupportPhone() string
	GetPhoneRegion() string
}

// RedisConfig provides settings for the optional UiState channel.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisStateChannelPrefix() string
	IsRedisEnabled() bool
}

// RateLimitConfig provides per-IP limits for the event endpoints.
type RateLimitConfig interface {
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	PlaceSearchURL          string
	IntersectionURL         string
	UpstreamTimeout         time.Duration
	SearchPartitionLimit    int
	QueryMinLength          int
	QueryDebounce           time.Duration
	BlurGrace               time.Duration
	SessionIdleTTL          time.Duration
	SessionSweepInterval    time.Duration
	SessionMax              int
	SupportPhone            string
	PhoneRegion             string
	RedisURL                string
	RedisStateChannelPrefix string
	RateLimitRPS            float64
	RateLimitBurst          int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// UpstreamConfig implementation
func (c *Config) GetPlaceSearchURL() string         { return c.PlaceSearchURL }
func (c *Config) GetIntersectionURL() string        { return c.IntersectionURL }
func (c *Config) GetUpstreamTimeout() time.Duration { return c.UpstreamTimeout }
func (c *Config) GetSearchPartitionLimit() int      { return c.SearchPartitionLimit }

// SessionConfig implementation
func (c *Config) GetQueryMinLength() int                 { return c.QueryMinLength }
func (c *Config) GetQueryDebounce() time.Duration        { return c.QueryDebounce }
func (c *Config) GetBlurGrace() time.Duration            { return c.BlurGrace }
func (c *Config) GetSessionIdleTTL() time.Duration       { return c.SessionIdleTTL }
func (c *Config) GetSessionSweepInterval() time.Duration { return c.SessionSweepInterval }
func (c *Config) GetSessionMax() int                     { return c.SessionMax }

// SupportConfig implementation
func (c *Config) GetSupportPhone() string { return c.SupportPhone }
func (c *Config) GetPhoneRegion() string  { return c.PhoneRegion }

// RedisConfig implementation
func (c *Config) GetRedisURL() string                { return c.RedisURL }
func (c *Config) GetRedisStateChannelPrefix() string { return c.RedisStateChannelPrefix }
func (c *Config) IsRedisEnabled() bool               { return c.RedisURL != "" }

// RateLimitConfig implementation
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		PlaceSearchURL:          strings.TrimRight(getEnv("PLACE_SEARCH_URL", ""), "/"),
		IntersectionURL:         strings.TrimRight(getEnv("INTERSECTION_URL", ""), "/"),
		UpstreamTimeout:         mustDuration(getEnv("UPSTREAM_TIMEOUT", "10s")),
		SearchPartitionLimit:    mustInt(getEnv("SEARCH_PARTITION_LIMIT", "2")),
		QueryMinLength:          mustInt(getEnv("QUERY_MIN_LENGTH", "3")),
		QueryDebounce:           mustDuration(getEnv("QUERY_DEBOUNCE", "300ms")),
		BlurGrace:               mustDuration(getEnv("BLUR_GRACE", "200ms")),
		SessionIdleTTL:          mustDuration(getEnv("SESSION_IDLE_TTL", "30m")),
		SessionSweepInterval:    mustDuration(getEnv("SESSION_SWEEP_INTERVAL", "1m")),
		SessionMax:              mustInt(getEnv("SESSION_MAX", "5000")),
		SupportPhone:            getEnv("SUPPORT_PHONE", "8002-8080"),
		PhoneRegion:             strings.ToUpper(getEnv("PHONE_REGION", phone.DefaultRegion)),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisStateChannelPrefix: getEnv("REDIS_STATE_CHANNEL_PREFIX", "gsr:session:"),
		RateLimitRPS:            mustFloat(getEnv("RATE_LIMIT_RPS", "20")),
		RateLimitBurst:          mustInt(getEnv("RATE_LIMIT_BURST", "40")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if err := requireHTTPURL("PLACE_SEARCH_URL", c.PlaceSearchURL); err != nil {
		return err
	}
	if err := requireHTTPURL("INTERSECTION_URL", c.IntersectionURL); err != nil {
		return err
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be a positive duration")
	}
	if c.SearchPartitionLimit < 1 {
		return fmt.Errorf("SEARCH_PARTITION_LIMIT must be at least 1")
	}
	if c.QueryMinLength < 1 {
		return fmt.Errorf("QUERY_MIN_LENGTH must be at least 1")
	}
	if c.QueryDebounce <= 0 || c.BlurGrace <= 0 {
		return fmt.Errorf("QUERY_DEBOUNCE and BLUR_GRACE must be positive durations")
	}
	if c.SessionIdleTTL <= 0 || c.SessionSweepInterval <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL and SESSION_SWEEP_INTERVAL must be positive durations")
	}
	if c.SessionMax < 1 {
		return fmt.Errorf("SESSION_MAX must be at least 1")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if !c.CORSAllowAll && len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin unless CORS_ALLOW_ALL is true")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	return nil
}

func requireHTTPURL(key, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", key)
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) URL", key)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
