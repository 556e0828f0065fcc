package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Scraper   ScraperConfig
	Fetcher   FetcherConfig
	Browser   BrowserConfig
	LLM       LLMConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// RequestTimeout is the hard deadline applied per scrape request at the
	// API layer. The core imposes no timeout of its own.
	RequestTimeout time.Duration // default: 30s
}

// ScraperConfig controls the extraction policy.
type ScraperConfig struct {
	// AIEnabled is the process-wide default for the AI fallback. A per-request
	// flag is OR-ed with this value.
	AIEnabled bool // default: false

	// ConfidenceThreshold is the score below which a primary result escalates
	// to the AI fallback (when AI is enabled).
	ConfidenceThreshold float64 // default: 0.55

	// MaxImages caps the number of images in a result.
	MaxImages int // default: 12

	// ImageExtensions lists the recognized image file extensions.
	// default: [".jpg", ".jpeg", ".png", ".webp", ".avif"]
	ImageExtensions []string

	// ImageBlocklist lists substrings that mark a URL as non-product imagery.
	// default: ["sprite", "logo", "icon", "banner", "placeholder", "avatar", "generic", "thumb"]
	ImageBlocklist []string
}

// FetcherConfig controls the raw-HTML fetcher used for AI input.
type FetcherConfig struct {
	// MaxRetries is the number of additional attempts after the first
	// (2 retries = 3 total attempts).
	MaxRetries int // default: 2

	// BackoffBase is the base delay; attempt n waits BackoffBase * 2^n.
	BackoffBase time.Duration // default: 500ms
}

// BrowserConfig controls the optional headless-Chromium render fallback used
// by the primary extractor for SPA shells.
type BrowserConfig struct {
	// Enabled toggles the render fallback entirely.
	Enabled bool // default: false

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 4

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// Bin overrides the Chromium binary path.
	Bin string
}

// LLMConfig controls the AI fallback extractor. An empty APIKey silently
// disables the fallback rather than erroring.
type LLMConfig struct {
	APIKey  string
	Model   string // default: "gpt-4o-mini"
	BaseURL string // default: "https://api.openai.com/v1"

	// HTMLLimit is the maximum number of characters of page content sent to
	// the model (token-budget guard).
	HTMLLimit int // default: 150000

	// CleanInput reduces raw HTML to readable Markdown before prompting,
	// trading a little fidelity for a large token saving.
	CleanInput bool // default: false
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the scrape result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           envOr("SHELFSCAN_HOST", "0.0.0.0"),
			Port:           envIntOr("SHELFSCAN_PORT", 8080),
			Mode:           envOr("SHELFSCAN_MODE", "release"),
			RequestTimeout: envDurationOr("SHELFSCAN_REQUEST_TIMEOUT", 30*time.Second),
		},
		Scraper: ScraperConfig{
			AIEnabled:           envBoolOr("SHELFSCAN_AI_ENABLED", false),
			ConfidenceThreshold: envFloatOr("SHELFSCAN_CONFIDENCE_THRESHOLD", 0.55),
			MaxImages:           envIntOr("SHELFSCAN_MAX_IMAGES", 12),
			ImageExtensions: envSliceOr("SHELFSCAN_IMAGE_EXTENSIONS", []string{
				".jpg", ".jpeg", ".png", ".webp", ".avif",
			}),
			ImageBlocklist: envSliceOr("SHELFSCAN_IMAGE_BLOCKLIST", []string{
				"sprite", "logo", "icon", "banner", "placeholder", "avatar", "generic", "thumb",
			}),
		},
		Fetcher: FetcherConfig{
			MaxRetries:  envIntOr("SHELFSCAN_FETCH_RETRIES", 2),
			BackoffBase: envDurationOr("SHELFSCAN_FETCH_BACKOFF", 500*time.Millisecond),
		},
		Browser: BrowserConfig{
			Enabled:   envBoolOr("SHELFSCAN_BROWSER_ENABLED", false),
			Headless:  envBoolOr("SHELFSCAN_HEADLESS", true),
			MaxPages:  envIntOr("SHELFSCAN_MAX_PAGES", 4),
			NoSandbox: envBoolOr("SHELFSCAN_NO_SANDBOX", false),
			Bin:       os.Getenv("SHELFSCAN_BROWSER_BIN"),
		},
		LLM: LLMConfig{
			APIKey:     os.Getenv("SHELFSCAN_LLM_API_KEY"),
			Model:      envOr("SHELFSCAN_LLM_MODEL", "gpt-4o-mini"),
			BaseURL:    envOr("SHELFSCAN_LLM_BASE_URL", "https://api.openai.com/v1"),
			HTMLLimit:  envIntOr("SHELFSCAN_LLM_HTML_LIMIT", 150000),
			CleanInput: envBoolOr("SHELFSCAN_LLM_CLEAN_INPUT", false),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SHELFSCAN_AUTH_ENABLED", true),
			APIKeys: envSliceOr("SHELFSCAN_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SHELFSCAN_RATE_RPS", 5.0),
			Burst:             envIntOr("SHELFSCAN_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SHELFSCAN_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("SHELFSCAN_LOG_LEVEL", "info"),
			Format: envOr("SHELFSCAN_LOG_FORMAT", "json"),
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

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
