package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultCandidates lists the file names tried, in order, inside the root directory.
var DefaultCandidates = []string{"config.yml", "config.yaml"}

// Document is the parsed content of the first candidate file found.
type Document struct {
	Path   string
	Source Source
}

// Locator finds and parses the first existing candidate file.
type Locator struct {
	fs         afero.Fs
	candidates []string
}

// NewLocator returns a Locator reading from fsys. A nil fsys means the OS
// filesystem; empty candidates means DefaultCandidates.
func NewLocator(fsys afero.Fs, candidates ...string) *Locator {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	return &Locator{
		fs:         fsys,
		candidates: append([]string(nil), candidates...),
	}
}

// Candidates returns the file names tried by Locate.
func (l *Locator) Candidates() []string {
	return append([]string(nil), l.candidates...)
}

// Locate returns the parsed content of the first candidate under root that
// exists and is a regular file. Missing files and directories are skipped;
// any other failure stops the search. An empty file is a successful load of
// zero entries. ErrNoConfigFile is returned when no candidate exists.
func (l *Locator) Locate(root string) (*Document, error) {
	for _, name := range l.candidates {
		path := filepath.Join(root, name)
		src, found, err := l.load(path)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		return &Document{Path: path, Source: src}, nil
	}
	return nil, ErrNoConfigFile
}

func (l *Locator) load(path string) (src Source, found bool, err error) {
	f, err := l.fs.Open(path)
	if err != nil {
		if skippable(err) {
			return nil, false, nil
		}
		return nil, false, &LoadError{Path: path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, false, &LoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, false, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		if skippable(err) {
			return nil, false, nil
		}
		return nil, false, &LoadError{Path: path, Err: err}
	}

	src, err = parseDocument(data)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return src, true, nil
}

func skippable(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.EISDIR)
}

// parseDocument decodes a YAML document into a Source. Empty documents
// yield an empty Mapping.
func parseDocument(data []byte) (Source, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	switch v := doc.(type) {
	case nil:
		return Mapping{}, nil
	case map[string]any:
		return Mapping(v), nil
	case map[any]any:
		m := make(Mapping, len(v))
		for k, val := range v {
			if key, ok := k.(string); ok {
				m[key] = val
			}
		}
		return m, nil
	case []any:
		return parsePairs(v)
	default:
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedDocument, doc)
	}
}

func parsePairs(items []any) (Pairs, error) {
	pairs := make(Pairs, 0, len(items))
	for i, item := range items {
		entry, ok := item.([]any)
		if !ok || len(entry) != 2 {
			return nil, fmt.Errorf("%w: item %d is not a [key, value] pair", ErrUnsupportedDocument, i)
		}
		key, ok := entry[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: item %d has a non-string key", ErrUnsupportedDocument, i)
		}
		pairs = append(pairs, Pair{Key: key, Value: entry[1]})
	}
	return pairs, nil
}
