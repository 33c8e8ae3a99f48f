package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/dwbft/internal/api"
	"github.com/eugenenazirov/dwbft/internal/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	settings *config.Resolved
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application with all dependencies from the resolved configuration.
func New(settings *config.Resolved, logger *zap.Logger) (*App, error) {
	srv, err := settings.Server()
	if err != nil {
		return nil, fmt.Errorf("failed to read server settings: %w", err)
	}

	handler := api.NewHandler(settings, api.WithPageSize(srv.PageSize))
	router := api.NewRouter(handler, logger,
		api.WithRateLimit(float64(srv.RateLimitRPS), srv.RateLimitBurst),
	)

	return &App{
		settings: settings,
		handler:  handler,
		router:   router,
		logger:   logger,
		server:   NewServer(srv, router),
	}, nil
}

// NewServer creates and configures an HTTP server from the provided settings.
func NewServer(srv config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              srv.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
			zap.String("config", a.settings.Path()),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown drains in-flight settings requests until ctx expires, then closes
// whatever connections remain.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("stopping settings server",
		zap.String("addr", a.server.Addr),
		zap.String("config", a.settings.Path()),
	)
	err := a.server.Shutdown(ctx)
	if err == nil {
		return nil
	}
	a.logger.Warn("graceful shutdown failed, closing connections", zap.Error(err))
	if closeErr := a.server.Close(); closeErr != nil {
		return errors.Join(err, fmt.Errorf("close server: %w", closeErr))
	}
	return err
}

// Server returns the underlying HTTP server.
func (a *App) Server() *http.Server {
	return a.server
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}
