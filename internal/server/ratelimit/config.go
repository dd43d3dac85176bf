package ratelimit

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/contract-review/internal/config"
)

// Review creation runs one model call per clause, so it gets a tight default budget.
const (
	DefaultReviewLimit  = 30
	DefaultReviewWindow = time.Hour
	DefaultReviewBurst  = 3
)

// EndpointConfig is the budget of one method on a path. A Path ending in "/"
// also covers every path below it.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int // requests per Window
	Window time.Duration
	Burst  int // defaults to Limit
}

func (e EndpointConfig) covers(path, method string) bool {
	if e.Method != method {
		return false
	}
	if strings.HasSuffix(e.Path, "/") {
		return strings.HasPrefix(path, e.Path)
	}
	return e.Path == path
}

// MatchEndpoint returns the most specific configuration covering path and
// method, or nil. GET /health is never limited.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if !c.covers(path, method) {
			continue
		}
		if c.Path == path {
			return c
		}
		if best == nil || len(c.Path) > len(best.Path) {
			best = c
		}
	}
	return best
}

// ReviewEndpoints returns the budgets for review creation (sync, stream and async)
func ReviewEndpoints(limit int, window time.Duration, burst int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/api/v1/reviews", Method: "POST", Limit: limit, Window: window, Burst: burst},
		{Path: "/api/v1/reviews/", Method: "POST", Limit: limit, Window: window, Burst: burst},
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return append(ReviewEndpoints(DefaultReviewLimit, DefaultReviewWindow, DefaultReviewBurst),
		EndpointConfig{Path: "/api/v1/search", Method: "GET", Limit: 300, Window: time.Minute, Burst: 20},
		EndpointConfig{Path: "/api/v1/reviews/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
	)
}

// envReader reads typed environment variables and keeps the first parse error
type envReader struct {
	err error
}

func (r *envReader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s=%q: %v", key, value, err)
	}
}

func (r *envReader) getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *envReader) getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *envReader) getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := config.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}

func (r *envReader) getSet(key string) map[string]bool {
	result := make(map[string]bool)
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			result[item] = true
		}
	}
	return result
}

// LoadConfig builds the rate limiting configuration from RATE_LIMIT_* variables.
// Malformed values are reported rather than silently replaced by defaults.
func LoadConfig() (*Config, error) {
	var env envReader

	enabled := env.getBool("RATE_LIMIT_ENABLED", true)
	if env.err != nil {
		return nil, env.err
	}
	if !enabled {
		return &Config{Enabled: false}, nil
	}

	reviewLimit := env.getInt("RATE_LIMIT_REVIEW_LIMIT", DefaultReviewLimit)
	reviewWindow := env.getDuration("RATE_LIMIT_REVIEW_WINDOW", DefaultReviewWindow)
	reviewBurst := env.getInt("RATE_LIMIT_REVIEW_BURST", DefaultReviewBurst)

	cfg := &Config{
		Enabled:         true,
		DefaultLimit:    env.getInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   env.getDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.getDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTimeout:     env.getDuration("RATE_LIMIT_IDLE_TIMEOUT", time.Hour),
		Whitelist:       env.getSet("RATE_LIMIT_WHITELIST"),
		Blacklist:       env.getSet("RATE_LIMIT_BLACKLIST"),
	}
	cfg.EndpointConfigs = DefaultEndpointConfigs()
	copy(cfg.EndpointConfigs, ReviewEndpoints(reviewLimit, reviewWindow, reviewBurst))

	if env.err != nil {
		return nil, env.err
	}
	return cfg, nil
}
