package main

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/dwbft/internal/config"
)

func testSettings(t *testing.T, overrides config.Mapping) *config.Resolved {
	t.Helper()

	store := config.NewOverrideStore()
	if _, err := store.Merge(overrides); err != nil {
		t.Fatalf("merge overrides: %v", err)
	}
	return config.NewResolved("/srv/dwbft/config.yml", store, config.NewDefaults("/srv/dwbft"))
}

func TestPrintSettingsMasksSecrets(t *testing.T) {
	cfg := testSettings(t, config.Mapping{"SECRET_KEY": "topsecret", "DB_HOST": "db.internal"})

	var buf bytes.Buffer
	if err := printSettings(&buf, cfg); err != nil {
		t.Fatalf("printSettings returned error: %v", err)
	}
	if strings.Contains(buf.String(), "topsecret") {
		t.Fatalf("secret leaked into output:\n%s", buf.String())
	}

	var out struct {
		Source   string         `yaml:"source"`
		Settings map[string]any `yaml:"settings"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if out.Source != "/srv/dwbft/config.yml" {
		t.Fatalf("unexpected source %q", out.Source)
	}
	if out.Settings["DB_HOST"] != "db.internal" {
		t.Fatalf("expected overridden DB_HOST, got %v", out.Settings["DB_HOST"])
	}
	if out.Settings["DB_PORT"] != 3306 {
		t.Fatalf("expected default DB_PORT, got %v", out.Settings["DB_PORT"])
	}
}

func TestNewLoggerUsesSettings(t *testing.T) {
	cfg := testSettings(t, config.Mapping{"LOG_LEVEL": "ERROR", "LOG_DIR": ""})

	logger, err := newLogger(cfg)
	if err != nil {
		t.Fatalf("newLogger returned error: %v", err)
	}
	if logger.Core().Enabled(zap.WarnLevel) {
		t.Fatalf("expected warn level to be disabled at ERROR")
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	cfg := testSettings(t, config.Mapping{"LOG_LEVEL": "LOUD", "LOG_DIR": ""})

	if _, err := newLogger(cfg); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
}

func TestNewLoggerAcceptsWarning(t *testing.T) {
	cfg := testSettings(t, config.Mapping{"LOG_LEVEL": "WARNING", "LOG_DIR": ""})

	logger, err := newLogger(cfg)
	if err != nil {
		t.Fatalf("newLogger returned error: %v", err)
	}
	if logger.Core().Enabled(zap.InfoLevel) || !logger.Core().Enabled(zap.WarnLevel) {
		t.Fatalf("expected WARNING to map to the warn level")
	}
}
