package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/dwbft/internal/application"
	"github.com/eugenenazirov/dwbft/internal/config"
)

const userConfig = `# local overrides
DEBUG: true
DB_HOST: db.internal
db_host: ignored
DB_PASSWORD: hunter2
SESSION_COOKIE_DOMAIN: ~
DISPLAY_PER_PAGE: 5
`

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "config.yaml"), []byte(userConfig), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	logger := zaptest.NewLogger(t)
	cfg, err := config.LoadUserConfig(root, config.WithLogger(logger))
	if err != nil {
		t.Fatalf("LoadUserConfig: %v", err)
	}

	app, err := application.New(cfg, logger)
	if err != nil {
		t.Fatalf("application.New: %v", err)
	}
	return app.Handler()
}

func performRequest(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

type setting struct {
	Key        string `json:"key"`
	Value      any    `json:"value"`
	Overridden bool   `json:"overridden"`
}

func getSetting(t *testing.T, handler http.Handler, key string) setting {
	t.Helper()

	rec := performRequest(t, handler, "/api/settings/"+key)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for %s, got %d", key, rec.Code)
	}
	var s setting
	if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
		t.Fatalf("decode %s: %v", key, err)
	}
	return s
}

func TestIntegrationFlow(t *testing.T) {
	handler := newRouter(t)

	rec := performRequest(t, handler, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	if s := getSetting(t, handler, "DB_HOST"); s.Value != "db.internal" || !s.Overridden {
		t.Fatalf("expected DB_HOST override, got %+v", s)
	}
	if s := getSetting(t, handler, "DB_PASSWORD"); s.Value != "******" {
		t.Fatalf("expected masked password, got %+v", s)
	}
	if s := getSetting(t, handler, "DB_PORT"); s.Value != float64(3306) || s.Overridden {
		t.Fatalf("expected default DB_PORT, got %+v", s)
	}
	if s := getSetting(t, handler, "SESSION_COOKIE_DOMAIN"); s.Value != nil || s.Overridden {
		t.Fatalf("expected null override to fall back to null default, got %+v", s)
	}

	rec = performRequest(t, handler, "/api/settings/db_host")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected lowercase key to be dropped, got %d", rec.Code)
	}

	rec = performRequest(t, handler, "/api/settings")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from settings, got %d", rec.Code)
	}
	var page struct {
		PageSize int       `json:"pageSize"`
		Settings []setting `json:"settings"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if page.PageSize != 5 || len(page.Settings) != 5 {
		t.Fatalf("expected DISPLAY_PER_PAGE to size the page, got %d/%d", page.PageSize, len(page.Settings))
	}
}
