// ABOUTME: Configuration loader for backend service
// ABOUTME: Loads settings from environment variables with defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Server
	Port               string
	CacheTTL           int      // seconds, default for general cache
	SessionTTL         int      // seconds, lifetime of a browser session
	AuthMode           string   // disabled, optional, required (default: optional)
	CORSAllowedOrigins []string // allowed CORS origins (empty = block all cross-origin)
	CookieSecure       bool     // Set Secure flag on session cookies (default: true)

	// Upstream resource API
	APIBaseURL           string
	APILoginPath         string
	APIRefreshPath       string
	APISkipSSLValidation bool   // explicit opt-in for insecure connections
	APIAllProxy          string // ssh+socks5://user@host:port?private-key=/path
	APITimeout           int    // seconds, per-request timeout
	APITotalField        string // meta key carrying the list total

	// Token refresh
	TokenRefreshLookahead int // seconds before access expiry to refresh

	// Request coalescing
	DedupWindowMS int // milliseconds identical reads share one call
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		CacheTTL:           getEnvInt("CACHE_TTL", 300),
		SessionTTL:         getEnvInt("SESSION_TTL", 28800),
		AuthMode:           getEnv("AUTH_MODE", "optional"),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),
		CookieSecure:       getEnvBool("COOKIE_SECURE", true),

		APIBaseURL:           ensureScheme(os.Getenv("API_BASE_URL")),
		APILoginPath:         getEnv("API_LOGIN_PATH", "auth/login"),
		APIRefreshPath:       getEnv("API_REFRESH_PATH", "auth/refresh"),
		APISkipSSLValidation: getEnvBool("API_SKIP_SSL_VALIDATION", false),
		APIAllProxy:          os.Getenv("API_ALL_PROXY"),
		APITimeout:           getEnvInt("API_TIMEOUT", 30),
		APITotalField:        getEnv("API_TOTAL_FIELD", "total"),

		TokenRefreshLookahead: getEnvInt("TOKEN_REFRESH_LOOKAHEAD", 300),

		DedupWindowMS: getEnvInt("DEDUP_WINDOW_MS", 100),
	}

	// Validate required fields
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}

	switch cfg.AuthMode {
	case "disabled", "optional", "required":
	default:
		return nil, fmt.Errorf("AUTH_MODE must be disabled, optional, or required, got %q", cfg.AuthMode)
	}

	if cfg.APITimeout < 1 || cfg.APITimeout > 600 {
		return nil, fmt.Errorf("API_TIMEOUT must be between 1 and 600 seconds, got %d", cfg.APITimeout)
	}
	if cfg.DedupWindowMS < 0 || cfg.DedupWindowMS > 60000 {
		return nil, fmt.Errorf("DEDUP_WINDOW_MS must be between 0 and 60000, got %d", cfg.DedupWindowMS)
	}
	if cfg.TokenRefreshLookahead < 0 {
		return nil, fmt.Errorf("TOKEN_REFRESH_LOOKAHEAD must not be negative, got %d", cfg.TokenRefreshLookahead)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
