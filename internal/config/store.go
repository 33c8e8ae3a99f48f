package config

import (
	"fmt"
	"sort"
	"unicode"
)

// OverrideStore holds the values explicitly supplied by the user. It is
// written only while loading and treated as read-only afterwards, so reads
// take no lock.
type OverrideStore struct {
	values map[Key]Value
}

// NewOverrideStore returns an empty store.
func NewOverrideStore() *OverrideStore {
	return &OverrideStore{values: make(map[Key]Value)}
}

// Set stores value under key when key is uppercase and reports whether it did.
// Other keys, and any key on a nil store, are dropped silently.
func (s *OverrideStore) Set(key Key, value Value) bool {
	if s == nil || !isUpper(key) {
		return false
	}
	s.values[key] = value
	return true
}

// Get returns the stored override for key.
func (s *OverrideStore) Get(key Key) (Value, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

// Merge copies qualifying entries from at most one source into the store and
// returns how many were dropped by the uppercase filter. Passing more than
// one source is an error and leaves the store untouched.
func (s *OverrideStore) Merge(sources ...Source) (int, error) {
	if len(sources) > 1 {
		return 0, fmt.Errorf("%w: expected at most 1 source, got %d", ErrTooManySources, len(sources))
	}

	dropped := 0
	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, entry := range src.entries() {
			if !s.Set(entry.Key, entry.Value) {
				dropped++
			}
		}
	}
	return dropped, nil
}

// Len returns the number of stored overrides.
func (s *OverrideStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Keys returns the stored keys in lexical order.
func (s *OverrideStore) Keys() []Key {
	if s == nil {
		return nil
	}
	keys := make([]Key, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the stored overrides.
func (s *OverrideStore) Snapshot() map[Key]Value {
	out := make(map[Key]Value, s.Len())
	if s == nil {
		return out
	}
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// isUpper reports whether key has at least one cased rune and no lowercase
// or titlecase runes. Digits and punctuation are uncased.
func isUpper(key string) bool {
	cased := false
	for _, r := range key {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}
