package api

import (
	"net/http"

	"go.uber.org/zap"
)

// RouterOption configures the behaviour of NewRouter.
type RouterOption func(*routerConfig)

// WithLogging controls whether access logs are emitted.
func WithLogging(enabled bool) RouterOption {
	return func(cfg *routerConfig) {
		cfg.enableLogging = enabled
	}
}

// WithRateLimiter overrides the per-client limiter (primarily for tests).
func WithRateLimiter(limiter rateLimiter) RouterOption {
	return func(cfg *routerConfig) {
		cfg.rateLimiter = limiter
	}
}

type routerConfig struct {
	enableLogging bool
	rateLimiter   rateLimiter
}

// NewRouter serves the read-only settings API. Requests pass, outermost
// first, through request tagging, rate limiting, the access log, panic
// recovery and the read-only method guard before reaching the routes.
func NewRouter(handler *Handler, logger *zap.Logger, opts ...RouterOption) http.Handler {
	cfg := routerConfig{
		enableLogging: true,
		rateLimiter:   newClientLimiter(25, 50),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handler.handleHealth)
	mux.HandleFunc("GET /api/settings", handler.handleListSettings)
	mux.HandleFunc("GET /api/settings/{key}", handler.handleGetSetting)

	source := handler.settings.Path()
	logger = logger.With(zap.String("config_source", source))

	var root http.Handler = readOnlyMiddleware(source, mux)
	root = recoveryMiddleware(logger, root)
	if cfg.enableLogging {
		root = accessLogMiddleware(logger, handler.settings, root)
	}
	root = rateLimitMiddleware(cfg.rateLimiter, root)
	return requestIDMiddleware(root)
}
