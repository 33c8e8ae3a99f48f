package config

import "sort"

// Source is an input to OverrideStore.Merge. It is either a Mapping or Pairs.
type Source interface {
	entries() []Pair
}

// Pair is a single key/value entry.
type Pair struct {
	Key   Key
	Value Value
}

// Mapping is a source backed by a key/value map.
type Mapping map[Key]Value

// Pairs is an ordered source; when a key repeats, the later pair wins.
type Pairs []Pair

func (m Mapping) entries() []Pair {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Pair, 0, len(keys))
	for _, k := range keys {
		out = append(out, Pair{Key: k, Value: m[k]})
	}
	return out
}

func (p Pairs) entries() []Pair {
	return p
}
