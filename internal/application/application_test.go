package application

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/dwbft/internal/config"
)

func newSettings(t *testing.T, overrides config.Mapping) *config.Resolved {
	t.Helper()

	store := config.NewOverrideStore()
	if _, err := store.Merge(overrides); err != nil {
		t.Fatalf("merge overrides: %v", err)
	}
	return config.NewResolved("config.yml", store, config.NewDefaults(t.TempDir()))
}

func TestNewInitializesDependencies(t *testing.T) {
	settings := newSettings(t, config.Mapping{"HTTP_BIND_HOST": "127.0.0.1", "HTTP_LISTEN_PORT": 8085})
	logger := zaptest.NewLogger(t)

	app, err := New(settings, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if app.server == nil || app.router == nil || app.handler == nil {
		t.Fatalf("expected server, router, and handler to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
	if app.server.Addr != "127.0.0.1:8085" {
		t.Fatalf("expected address 127.0.0.1:8085, got %s", app.server.Addr)
	}
}

func TestNewServerAppliesSettings(t *testing.T) {
	srv := config.Server{BindHost: "0.0.0.0", ListenPort: 9090}
	handler := http.NewServeMux()

	server := NewServer(srv, handler)
	if server.Addr != "0.0.0.0:9090" {
		t.Fatalf("expected address 0.0.0.0:9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != readHeaderTimeout ||
		server.WriteTimeout != writeTimeout ||
		server.IdleTimeout != idleTimeout {
		t.Fatalf("server timeouts do not match defaults")
	}
}

func TestNewReturnsErrorForInvalidServerSettings(t *testing.T) {
	settings := newSettings(t, config.Mapping{"HTTP_LISTEN_PORT": "http"})

	if _, err := New(settings, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for invalid listen port")
	}
}

func TestHandlerServesSettings(t *testing.T) {
	app, err := New(newSettings(t, nil), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/settings/SITE_URL", nil)
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestShutdownDrainsRunningServer(t *testing.T) {
	app, err := New(newSettings(t, config.Mapping{"HTTP_BIND_HOST": "127.0.0.1", "HTTP_LISTEN_PORT": 0}), zap.NewNop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
}
