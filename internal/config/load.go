package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option configures LoadUserConfig.
type Option func(*loader)

// WithLogger sets the logger used to report which file was loaded.
func WithLogger(logger *zap.Logger) Option {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithFs reads candidate files from fsys instead of the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(l *loader) {
		l.fs = fsys
	}
}

// WithCandidates replaces the candidate file names.
func WithCandidates(names ...string) Option {
	return func(l *loader) {
		l.candidates = names
	}
}

// WithDefaults replaces the defaults table.
func WithDefaults(defaults *Defaults) Option {
	return func(l *loader) {
		l.defaults = defaults
	}
}

type loader struct {
	logger     *zap.Logger
	fs         afero.Fs
	candidates []string
	defaults   *Defaults
}

// LoadUserConfig resolves the configuration rooted at root, which defaults
// to DefaultRoot when empty. The first candidate file found supplies the
// overrides; if none exists a *NoConfigFileError is returned.
func LoadUserConfig(root string, opts ...Option) (*Resolved, error) {
	l := loader{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&l)
	}

	locator := NewLocator(l.fs, l.candidates...)
	if root == "" {
		root = defaultRoot(locator.fs, locator.Candidates())
	}
	if l.defaults == nil {
		l.defaults = NewDefaults(root)
	}

	doc, err := locator.Locate(root)
	if err != nil {
		if errors.Is(err, ErrNoConfigFile) {
			return nil, &NoConfigFileError{Root: root, Candidates: locator.Candidates()}
		}
		return nil, err
	}

	store := NewOverrideStore()
	dropped, err := store.Merge(doc.Source)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", doc.Path, err)
	}

	l.logger.Info("configuration loaded",
		zap.String("path", doc.Path),
		zap.Int("overrides", store.Len()),
		zap.Int("ignored_keys", dropped),
	)

	return NewResolved(doc.Path, store, l.defaults), nil
}

// DefaultRoot returns the working directory when it holds a config file,
// otherwise the directory containing the running executable. The working
// directory is the last resort when the executable cannot be located.
func DefaultRoot() string {
	return defaultRoot(afero.NewOsFs(), DefaultCandidates)
}

func defaultRoot(fsys afero.Fs, candidates []string) string {
	wd, wdErr := os.Getwd()
	if wdErr == nil && hasCandidate(fsys, wd, candidates) {
		return wd
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wdErr == nil {
		return wd
	}
	return "."
}

func hasCandidate(fsys afero.Fs, dir string, candidates []string) bool {
	for _, name := range candidates {
		if info, err := fsys.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
