package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/dwbft/internal/application"
	"github.com/eugenenazirov/dwbft/internal/config"
	"github.com/eugenenazirov/dwbft/internal/logging"
)

const shutdownGracePeriod = 10 * time.Second

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("dwbft", "dwbft server - resolves settings from config.yml over built-in defaults")
	root := kingpinApp.Flag("root", "Directory searched for config.yml / config.yaml (defaults to the working directory when it holds one, else the executable's directory)").String()
	serveCmd := kingpinApp.Command("serve", "Load configuration and start the HTTP server").Default()
	checkCmd := kingpinApp.Command("check", "Load configuration and print the effective settings")

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	bootstrap, err := logging.New(logging.Options{Level: "info"})
	if err != nil {
		kingpinApp.Fatalf("failed to initialize logger: %v", err)
	}

	cfg, err := config.LoadUserConfig(*root, config.WithLogger(bootstrap))
	if err != nil {
		kingpinApp.Fatalf("failed to load configuration: %v", err)
	}

	switch command {
	case checkCmd.FullCommand():
		if err := printSettings(os.Stdout, cfg); err != nil {
			kingpinApp.Fatalf("failed to print settings: %v", err)
		}
	case serveCmd.FullCommand():
		serve(kingpinApp, cfg)
	}
}

func serve(kingpinApp *kingpin.Application, cfg *config.Resolved) {
	logger, err := newLogger(cfg)
	if err != nil {
		kingpinApp.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if db, err := cfg.Database(); err == nil {
		logger.Info("configuration loaded",
			zap.String("path", cfg.Path()),
			zap.String("database", db.DSNMasked()),
		)
	} else {
		logger.Warn("invalid database settings", zap.Error(err))
	}

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	if err := waitForShutdown(app, shutdownGracePeriod, logger); err != nil {
		logger.Error("shutdown incomplete", zap.Error(err))
	}
}

func newLogger(cfg *config.Resolved) (*zap.Logger, error) {
	level, err := cfg.GetString(config.KeyLogLevel)
	if err != nil {
		return nil, err
	}
	dir, err := cfg.GetOptionalString(config.KeyLogDir)
	if err != nil {
		return nil, err
	}
	debug, err := cfg.GetBool(config.KeyDebug)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{Level: level, Dir: dir, Debug: debug})
}

func printSettings(w io.Writer, cfg *config.Resolved) error {
	out := struct {
		Source   string                      `yaml:"source"`
		Settings map[config.Key]config.Value `yaml:"settings"`
	}{
		Source:   cfg.Path(),
		Settings: cfg.Masked(),
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return enc.Close()
}

// waitForShutdown blocks until SIGINT or SIGTERM, then gives the server
// timeout to finish serving before it is closed.
func waitForShutdown(app *application.App, timeout time.Duration, logger *zap.Logger) error {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGTERM)

	sig := <-quit
	logger.Info("signal received", zap.Stringer("signal", sig))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return app.Shutdown(ctx)
}
