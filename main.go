// ABOUTME: Entry point for the ops console backend service
// ABOUTME: Wires the resource-access layer and serves the console HTTP API

package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/calvora/ops-console/backend/cache"
	"github.com/calvora/ops-console/backend/config"
	"github.com/calvora/ops-console/backend/handlers"
	"github.com/calvora/ops-console/backend/logger"
	"github.com/calvora/ops-console/backend/middleware"
	"github.com/calvora/ops-console/backend/services"
)

func main() {
	// Initialize structured logging
	logger.Init()

	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting Ops Console Backend")
	slog.Info("Upstream API configured", "url", cfg.APIBaseURL)

	// Initialize cache
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	c := cache.New(cacheTTL)
	slog.Info("Cache initialized", "ttl", cacheTTL)

	// Token storage and auth-failure fan-out
	tokens := services.NewTokenStore(services.NewMemoryKeyValue())
	notifier := services.NewAuthFailureNotifier()
	notifier.Subscribe(func(f services.AuthFailure) {
		slog.Warn("Upstream auth failure, invalidating sessions", "status", f.Status)
		c.Flush()
	})

	// Upstream requester with classified errors and refresh preflight
	classifier := services.NewClassifier(tokens, notifier)
	requester := services.NewRequester(services.RequesterConfig{
		BaseURL:           cfg.APIBaseURL,
		SkipSSLValidation: cfg.APISkipSSLValidation,
		AllProxy:          cfg.APIAllProxy,
		Timeout:           time.Duration(cfg.APITimeout) * time.Second,
	}, tokens, nil, classifier)

	refreshURL := requester.BaseURL() + "/" + cfg.APIRefreshPath
	coordinator := services.NewTokenRefreshCoordinator(
		requester.Client(),
		tokens,
		refreshURL,
		time.Duration(cfg.TokenRefreshLookahead)*time.Second,
	)
	requester.SetCoordinator(coordinator)

	// Data and auth services
	coalescer := services.NewRequestCoalescer(time.Duration(cfg.DedupWindowMS) * time.Millisecond)
	resources := services.NewResourceService(requester, coalescer, cfg.APITotalField)
	auth := services.NewAuthService(requester, tokens, cfg.APILoginPath)
	sessions := services.NewSessionService(c, time.Duration(cfg.SessionTTL)*time.Second)

	h := handlers.NewHandler(cfg, c, resources, auth, sessions)

	// Middleware stack
	authMode, err := middleware.ValidateAuthMode(cfg.AuthMode)
	if err != nil {
		slog.Error("Invalid AUTH_MODE", "error", err)
		os.Exit(1)
	}
	sessionAuth := middleware.Auth(middleware.AuthConfig{
		Mode: authMode,
		SessionValidator: func(sessionID string) *middleware.UserClaims {
			session, err := sessions.Get(sessionID)
			if err != nil {
				return nil
			}
			return &middleware.UserClaims{
				Username: session.Username,
				UserID:   session.UserID,
			}
		},
	})

	cors := middleware.CORS
	if len(cfg.CORSAllowedOrigins) > 0 {
		cors = middleware.CORSWithConfig(cfg.CORSAllowedOrigins)
	}

	// Auth endpoints skip the session check so login can happen
	open := map[string]bool{
		"/api/v1/health":      true,
		"/api/v1/auth/login":  true,
		"/api/v1/auth/logout": true,
		"/api/v1/auth/me":     true,
	}

	mux := http.NewServeMux()
	for _, route := range h.Routes() {
		chain := []func(http.HandlerFunc) http.HandlerFunc{middleware.LogRequest, cors}
		if !open[route.Path] {
			chain = append(chain, sessionAuth)
		}
		mux.HandleFunc(route.Method+" "+route.Path, middleware.Chain(route.Handler, chain...))
	}

	// Browser preflights arrive as OPTIONS and never reach the method
	// patterns above, so they get their own catch-all.
	mux.HandleFunc("OPTIONS /api/", middleware.Chain(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, middleware.LogRequest, cors))

	// Start server
	addr := ":" + cfg.Port
	slog.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
