package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Target  TargetConfig
	Browser BrowserConfig
	Crawl   CrawlConfig
	Captcha CaptchaConfig
	Log     LogConfig
}

// TargetConfig identifies the registry portal endpoints.
type TargetConfig struct {
	// BaseURL is the portal origin.
	BaseURL string

	// SearchPagePath is the page that hosts the verification challenge.
	SearchPagePath string // default: "/search"

	// SearchAPIPath is the paged search endpoint.
	SearchAPIPath string // default: "/api/search"

	// BusinessPath is the detail-page path prefix (id is appended).
	BusinessPath string // default: "/business"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// Proxy is the proxy URL passed to the browser launcher.
	Proxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// NavigationTimeout is the max time for a single page navigation.
	NavigationTimeout time.Duration // default: 30s

	// BlockedResourceTypes lists resource types to block on detail-page
	// navigations. Never applied to the challenge page.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// CrawlConfig controls crawl pacing and retry budgets.
type CrawlConfig struct {
	// RequestDelay is the politeness interval between page requests.
	RequestDelay time.Duration // default: 1s

	// DetailDelay is the politeness interval before each detail fetch.
	DetailDelay time.Duration // default: 500ms

	// ChallengeAttempts is the challenge/session retry budget in
	// single-query mode.
	ChallengeAttempts int // default: 3

	// FullCrawlChallengeAttempts is the per-query retry budget in
	// full-crawl mode.
	FullCrawlChallengeAttempts int // default: 5

	// BackoffBase is the initial backoff delay after a rate-limited
	// challenge attempt. Doubles per attempt up to BackoffMax.
	BackoffBase time.Duration // default: 1s
	BackoffMax  time.Duration // default: 60s

	// Queries is the full-crawl query list: common entity-type suffixes.
	// The list is a coverage heuristic, not a guarantee.
	Queries []string
}

// CaptchaConfig controls the challenge solver.
type CaptchaConfig struct {
	// ManualWait is the maximum wall-clock wait for a human to solve the
	// challenge in headed mode.
	ManualWait time.Duration // default: 300s

	// PollInterval is how often the solver checks for a completed token.
	PollInterval time.Duration // default: 2s
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// DefaultQueries are the entity-type suffixes used in full-crawl mode.
var DefaultQueries = []string{
	"llc",
	"inc",
	"corp",
	"company",
	"limited",
	"enterprises",
	"holdings",
	"group",
	"services",
	"solutions",
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Target: TargetConfig{
			BaseURL:        envOr("VIABLEVIEW_BASE_URL", "https://scraping-trial-test.vercel.app"),
			SearchPagePath: envOr("VIABLEVIEW_SEARCH_PAGE", "/search"),
			SearchAPIPath:  envOr("VIABLEVIEW_SEARCH_API", "/api/search"),
			BusinessPath:   envOr("VIABLEVIEW_BUSINESS_PATH", "/business"),
		},
		Browser: BrowserConfig{
			Headless:          envBoolOr("VIABLEVIEW_HEADLESS", true),
			Proxy:             os.Getenv("VIABLEVIEW_PROXY"),
			NoSandbox:         envBoolOr("VIABLEVIEW_NO_SANDBOX", false),
			BrowserBin:        os.Getenv("VIABLEVIEW_BROWSER_BIN"),
			NavigationTimeout: envDurationOr("VIABLEVIEW_NAV_TIMEOUT", 30*time.Second),
			BlockedResourceTypes: envSliceOr("VIABLEVIEW_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
		},
		Crawl: CrawlConfig{
			RequestDelay:               envDurationOr("VIABLEVIEW_REQUEST_DELAY", time.Second),
			DetailDelay:                envDurationOr("VIABLEVIEW_DETAIL_DELAY", 500*time.Millisecond),
			ChallengeAttempts:          envIntOr("VIABLEVIEW_CHALLENGE_ATTEMPTS", 3),
			FullCrawlChallengeAttempts: envIntOr("VIABLEVIEW_FULL_CHALLENGE_ATTEMPTS", 5),
			BackoffBase:                envDurationOr("VIABLEVIEW_BACKOFF_BASE", time.Second),
			BackoffMax:                 envDurationOr("VIABLEVIEW_BACKOFF_MAX", 60*time.Second),
			Queries:                    envSliceOr("VIABLEVIEW_QUERIES", DefaultQueries),
		},
		Captcha: CaptchaConfig{
			ManualWait:   envDurationOr("VIABLEVIEW_MANUAL_WAIT", 300*time.Second),
			PollInterval: envDurationOr("VIABLEVIEW_POLL_INTERVAL", 2*time.Second),
		},
		Log: LogConfig{
			Level:  envOr("VIABLEVIEW_LOG_LEVEL", "info"),
			Format: envOr("VIABLEVIEW_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
