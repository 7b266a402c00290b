// ABOUTME: Tests for configuration loading
// ABOUTME: Verifies defaults, required fields, and validation rules

package config

import (
	"testing"
)

func TestLoad_RequiresAPIBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("Load should fail without API_BASE_URL")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.internal.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.AuthMode != "optional" {
		t.Errorf("AuthMode = %s, want optional", cfg.AuthMode)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure should default to true")
	}
	if cfg.APITimeout != 30 {
		t.Errorf("APITimeout = %d, want 30", cfg.APITimeout)
	}
	if cfg.APITotalField != "total" {
		t.Errorf("APITotalField = %s, want total", cfg.APITotalField)
	}
	if cfg.TokenRefreshLookahead != 300 {
		t.Errorf("TokenRefreshLookahead = %d, want 300", cfg.TokenRefreshLookahead)
	}
	if cfg.DedupWindowMS != 100 {
		t.Errorf("DedupWindowMS = %d, want 100", cfg.DedupWindowMS)
	}
	if cfg.APILoginPath != "auth/login" {
		t.Errorf("APILoginPath = %s, want auth/login", cfg.APILoginPath)
	}
	if cfg.APIRefreshPath != "auth/refresh" {
		t.Errorf("APIRefreshPath = %s, want auth/refresh", cfg.APIRefreshPath)
	}
}

func TestLoad_AddsSchemeToBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "api.internal.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIBaseURL != "https://api.internal.example.com" {
		t.Errorf("APIBaseURL = %s, want https scheme added", cfg.APIBaseURL)
	}
}

func TestLoad_RejectsInvalidAuthMode(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("AUTH_MODE", "sometimes")

	if _, err := Load(); err == nil {
		t.Error("Load should reject invalid AUTH_MODE")
	}
}

func TestLoad_RejectsOutOfRangeTimeout(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("API_TIMEOUT", "0")

	if _, err := Load(); err == nil {
		t.Error("Load should reject API_TIMEOUT of 0")
	}
}

func TestLoad_ParsesCORSOriginList(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://console.example.com, http://localhost:5173")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("origins length = %d, want 2", len(cfg.CORSAllowedOrigins))
	}
	if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
		t.Errorf("origins[1] = %s, want trimmed localhost origin", cfg.CORSAllowedOrigins[1])
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BOOL", "false")
	t.Setenv("TEST_BAD_INT", "abc")

	if got := getEnvInt("TEST_INT", 7); got != 42 {
		t.Errorf("getEnvInt = %d, want 42", got)
	}
	if got := getEnvInt("TEST_BAD_INT", 7); got != 7 {
		t.Errorf("getEnvInt with bad value = %d, want default 7", got)
	}
	if got := getEnvBool("TEST_BOOL", true); got {
		t.Error("getEnvBool = true, want false")
	}
	if got := getEnv("TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnv = %s, want fallback", got)
	}
}
