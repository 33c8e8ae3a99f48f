package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoConfigFile is returned when none of the candidate files exist in the root directory.
	ErrNoConfigFile = errors.New("no config file found")
	// ErrTooManySources is returned when Merge is called with more than one source.
	ErrTooManySources = errors.New("too many merge sources")
	// ErrUnsupportedDocument is returned when the top level of a config file is neither a mapping nor a list of pairs.
	ErrUnsupportedDocument = errors.New("config document must be a mapping or a list of key/value pairs")
	// ErrUnset is returned by typed accessors when a key resolves to no value.
	ErrUnset = errors.New("setting has no value")
	// ErrType is returned by typed accessors when a value cannot be converted to the requested type.
	ErrType = errors.New("setting has unexpected type")
)

// LoadError reports an existing candidate file that could not be read.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unable to load configuration file (%v)", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NoConfigFileError is the user-facing setup failure raised when no candidate exists.
type NoConfigFileError struct {
	Root       string
	Candidates []string
}

func (e *NoConfigFileError) Error() string {
	return fmt.Sprintf("no config file found in %s (tried %s); run `cp config_example.yaml config.yaml` and edit it",
		e.Root, strings.Join(e.Candidates, ", "))
}

func (e *NoConfigFileError) Is(target error) bool {
	return target == ErrNoConfigFile
}
