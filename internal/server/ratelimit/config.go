package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one route to Limit requests per Window, allowing bursts of up
// to Burst. A Limit of 0 means unlimited.
type Rule struct {
	Method string
	// Path is an exact route, or a prefix when it ends in "/".
	Path   string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	// Default applies to routes no rule matches.
	Default Rule
	Rules   []Rule
	// Exempt lists client ids that are never limited.
	Exempt map[string]bool
	// IdleTTL is how long an unused bucket survives; sweeps run every IdleTTL.
	IdleTTL time.Duration
}

const (
	defaultSearchPerMinute = 60
	defaultIdleTTL         = time.Hour
)

// FromEnv reads the RATE_LIMIT_* environment variables.
func FromEnv() *Config {
	if !envBool("RATE_LIMIT_ENABLED", true) {
		return &Config{}
	}
	return &Config{
		Enabled: true,
		Default: Rule{
			Limit:  envInt("RATE_LIMIT_DEFAULT_LIMIT", 300),
			Window: envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		},
		Rules:   SearchRules(envInt("RATE_LIMIT_SEARCH_LIMIT", defaultSearchPerMinute)),
		Exempt:  splitList(os.Getenv("RATE_LIMIT_EXEMPT")),
		IdleTTL: envDuration("RATE_LIMIT_IDLE_TTL", defaultIdleTTL),
	}
}

// SearchRules returns the per-route rules. perMinute bounds the routes that
// spend provider credits; lookups get twice that. Bursts are a sixth of the
// per-minute limit.
func SearchRules(perMinute int) []Rule {
	if perMinute <= 0 {
		perMinute = defaultSearchPerMinute
	}
	burst := max(1, perMinute/6)
	return []Rule{
		{Method: "GET", Path: "/developers/search", Limit: perMinute, Window: time.Minute, Burst: burst},
		{Method: "GET", Path: "/developers/", Limit: perMinute * 2, Window: time.Minute, Burst: burst * 2},
		{Method: "GET", Path: "/repos/search", Limit: perMinute, Window: time.Minute, Burst: burst},

		{Method: "POST", Path: "/pipeline", Limit: 100, Window: time.Minute, Burst: 10},
		{Method: "PATCH", Path: "/pipeline/", Limit: 100, Window: time.Minute, Burst: 10},
		{Method: "DELETE", Path: "/pipeline/", Limit: 100, Window: time.Minute, Burst: 10},
		{Method: "GET", Path: "/pipeline/export.csv", Limit: 20, Window: time.Minute, Burst: 5},
	}
}

// match finds the rule for a request. Exact paths win over prefixes, and the
// longest prefix wins among prefixes. Preflights and health checks report
// ok=false: they are never limited.
func (c *Config) match(method, path string) (rule Rule, ok bool) {
	if method == "OPTIONS" || (method == "GET" && path == "/health") {
		return Rule{}, false
	}

	best := -1
	for i, r := range c.Rules {
		if r.Method != method {
			continue
		}
		if r.Path == path {
			return r, true
		}
		if strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			if best < 0 || len(r.Path) > len(c.Rules[best].Path) {
				best = i
			}
		}
	}
	if best >= 0 {
		return c.Rules[best], true
	}
	return c.Default, true
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) map[string]bool {
	out := make(map[string]bool)
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out[item] = true
		}
	}
	return out
}
