package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

const maskedValue = "******"

// Resolved is the effective configuration: user overrides with the defaults
// table as fallback. It is built once by LoadUserConfig and is read-only.
type Resolved struct {
	path      string
	overrides *OverrideStore
	defaults  *Defaults
}

// NewResolved composes an override store over a defaults table. path records
// the file the overrides came from and may be empty.
func NewResolved(path string, overrides *OverrideStore, defaults *Defaults) *Resolved {
	if overrides == nil {
		overrides = NewOverrideStore()
	}
	return &Resolved{
		path:      path,
		overrides: overrides,
		defaults:  defaults,
	}
}

// Path returns the config file the overrides were read from.
func (r *Resolved) Path() string {
	return r.path
}

// Lookup returns the override for key when it is present and non-null,
// otherwise the default. ok is false when the result is nil, including for
// keys unknown to both layers.
func (r *Resolved) Lookup(key Key) (Value, bool) {
	if v, ok := r.overrides.Get(key); ok && v != nil {
		return v, true
	}
	v := r.defaults.Get(key)
	return v, v != nil
}

// Get returns the resolved value for key, or nil.
func (r *Resolved) Get(key Key) Value {
	v, _ := r.Lookup(key)
	return v
}

// Overridden reports whether key resolves to a user-supplied value.
func (r *Resolved) Overridden(key Key) bool {
	v, ok := r.overrides.Get(key)
	return ok && v != nil
}

// Known reports whether either layer has an entry for key.
func (r *Resolved) Known(key Key) bool {
	if _, ok := r.overrides.Get(key); ok {
		return true
	}
	_, ok := r.defaults.Lookup(key)
	return ok
}

// Keys returns the union of default and override keys in lexical order.
func (r *Resolved) Keys() []Key {
	seen := make(map[Key]struct{})
	for _, k := range r.defaults.Keys() {
		seen[k] = struct{}{}
	}
	for _, k := range r.overrides.Keys() {
		seen[k] = struct{}{}
	}
	keys := make([]Key, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Effective returns every known key mapped to its resolved value.
func (r *Resolved) Effective() map[Key]Value {
	out := make(map[Key]Value)
	for _, k := range r.Keys() {
		out[k] = r.Get(k)
	}
	return out
}

// Masked is Effective with non-empty secret values replaced.
func (r *Resolved) Masked() map[Key]Value {
	out := r.Effective()
	for k, v := range out {
		out[k] = MaskValue(k, v)
	}
	return out
}

// IsSecret reports whether values of key must not be displayed.
func IsSecret(key Key) bool {
	switch key {
	case KeySecretKey, KeyBootstrapToken:
		return true
	}
	return strings.Contains(key, "PASSWORD") || strings.HasSuffix(key, "_TOKEN") || strings.HasSuffix(key, "_SECRET")
}

// MaskValue hides v when key is secret and v is set.
func MaskValue(key Key, v Value) Value {
	if !IsSecret(key) || v == nil || v == "" {
		return v
	}
	return maskedValue
}

// GetString returns the value of key as a string. Scalars are formatted;
// structured values are rejected.
func (r *Resolved) GetString(key Key) (string, error) {
	v, ok := r.Lookup(key)
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrUnset)
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(val), nil
	default:
		return "", fmt.Errorf("%s: %w: %T", key, ErrType, v)
	}
}

// GetOptionalString is GetString with a missing value reported as "".
func (r *Resolved) GetOptionalString(key Key) (string, error) {
	if _, ok := r.Lookup(key); !ok {
		return "", nil
	}
	return r.GetString(key)
}

// GetInt returns the value of key as an int. Numeric strings and integral
// floats are accepted.
func (r *Resolved) GetInt(key Key) (int, error) {
	v, ok := r.Lookup(key)
	if !ok {
		return 0, fmt.Errorf("%s: %w", key, ErrUnset)
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		if val < math.MinInt || val > math.MaxInt {
			return 0, fmt.Errorf("%s: %w: %d overflows int", key, ErrType, val)
		}
		return int(val), nil
	case uint64:
		if val > math.MaxInt {
			return 0, fmt.Errorf("%s: %w: %d overflows int", key, ErrType, val)
		}
		return int(val), nil
	case float64:
		if val != math.Trunc(val) || val < math.MinInt || val > math.MaxInt {
			return 0, fmt.Errorf("%s: %w: %v is not an integer", key, ErrType, val)
		}
		return int(val), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("%s: %w: %q is not an integer", key, ErrType, val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s: %w: %T", key, ErrType, v)
	}
}

// GetBool returns the value of key as a bool. Strings accepted by
// strconv.ParseBool are converted.
func (r *Resolved) GetBool(key Key) (bool, error) {
	v, ok := r.Lookup(key)
	if !ok {
		return false, fmt.Errorf("%s: %w", key, ErrUnset)
	}
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return false, fmt.Errorf("%s: %w: %q is not a boolean", key, ErrType, val)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%s: %w: %T", key, ErrType, v)
	}
}

// GetSeconds interprets an integer setting as a number of seconds.
func (r *Resolved) GetSeconds(key Key) (time.Duration, error) {
	n, err := r.GetInt(key)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
