package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited marks requests that never consume a token.
var unlimited = &EndpointConfig{}

// MatchEndpoint returns the configuration governing a request, or nil when
// the default bucket applies. Health checks and CORS preflights are never
// limited. A config whose Path ends in "/" covers every path below it, and an
// empty Method matches any method. Exact paths win over prefixes, and longer
// prefixes win over shorter ones.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodOptions {
		return unlimited
	}
	if path == "/health" && (method == http.MethodGet || method == http.MethodHead) {
		return unlimited
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	var best *EndpointConfig
	for i := range configs {
		cfg := &configs[i]
		if cfg.Method != "" && cfg.Method != method {
			continue
		}
		if cfg.Path == path {
			return cfg
		}
		if strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(path, cfg.Path) {
			if best == nil || len(cfg.Path) > len(best.Path) {
				best = cfg
			}
		}
	}
	return best
}
