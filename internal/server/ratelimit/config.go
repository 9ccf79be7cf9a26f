package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket survives cleanup.
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Defaults applied by NewConfig and NewLimiter.
const (
	DefaultLimit           = 300
	DefaultWindow          = time.Minute
	DefaultCleanupInterval = 5 * time.Minute
	DefaultIdleTTL         = time.Hour
)

// NewConfig builds a configuration with the interview endpoint tiers.
// Non-positive limit or window select the package defaults.
func NewConfig(enabled bool, limit int, window time.Duration, whitelist, blacklist string) *Config {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Config{
		Enabled:         enabled,
		DefaultLimit:    limit,
		DefaultWindow:   window,
		CleanupInterval: DefaultCleanupInterval,
		IdleTTL:         DefaultIdleTTL,
		Whitelist:       ParseIPList(whitelist),
		Blacklist:       ParseIPList(blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
// Routes that call the language model share the process-wide admission gate,
// so each client gets a small budget on them.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: document ingestion (two fetches plus a model call)
		{Path: "/chat/interview-data", Method: http.MethodPost, Limit: 10, Window: time.Hour, Burst: 3},

		// Tier 2: conversational turns and reports
		{Path: "/chat/complete", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/chat/report", Method: http.MethodPost, Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/chat/ws", Method: http.MethodGet, Limit: 20, Window: time.Hour, Burst: 3},

		// Tier 3: rendering only
		{Path: "/pdf/", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},

		// Tier 4: health check (unlimited) - handled by special case in matcher
	}
}

// ParseIPList parses a comma-separated list of IP addresses into a set.
func ParseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}
