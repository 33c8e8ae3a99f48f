package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the log file written inside Options.Dir.
const FileName = "dwbft.log"

// Options selects the level and sinks of the application logger.
type Options struct {
	// Level is a zap level name such as "DEBUG" or "info", or one of the
	// WARNING, CRITICAL and NOTSET names older config files carry. Empty
	// means info.
	Level string
	// Dir, when set, adds a JSON log file in that directory.
	Dir string
	// Debug switches to the human-readable development encoder.
	Debug bool
}

// levelAliases maps level names zap does not know onto its own levels.
var levelAliases = map[string]zapcore.Level{
	"notset":   zapcore.DebugLevel,
	"warning":  zapcore.WarnLevel,
	"critical": zapcore.FatalLevel,
}

// ParseLevel resolves a level name case-insensitively, accepting the
// aliases above in addition to zap's own names.
func ParseLevel(name string) (zapcore.Level, error) {
	if level, ok := levelAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level, nil
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return level, fmt.Errorf("parse log level: %w", err)
	}
	return level, nil
}

// New creates a production-ready structured logger configured for JSON output.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	cfg := zap.NewProductionConfig()
	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.StacktraceKey = "stacktrace"
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = false

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, filepath.Join(opts.Dir, FileName))
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
