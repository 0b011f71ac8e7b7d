// Package normalization maps free-form configuration strings onto closed
// enum sets. Input is lowercased and trimmed before lookup; unknown values
// either fall back to a caller-chosen default or fail, depending on the
// entry point.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer resolves raw strings to values of a closed enum set.
type Normalizer[T comparable] struct {
	byName   map[string]T
	fallback T
	names    []string
}

// New builds a normalizer over the given name/value pairs. Names are
// canonicalized the same way raw input is, so callers may list them in any
// case.
func New[T comparable](values map[string]T, fallback T) *Normalizer[T] {
	byName := make(map[string]T, len(values))
	names := make([]string, 0, len(values))
	for name, value := range values {
		c := canonical(name)
		byName[c] = value
		names = append(names, c)
	}
	sort.Strings(names)

	return &Normalizer[T]{byName: byName, fallback: fallback, names: names}
}

// Normalize resolves raw input, falling back to the default for values
// outside the set.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, ok := n.byName[canonical(raw)]; ok {
		return value
	}
	return n.fallback
}

// Parse resolves raw input strictly: values outside the set are an error
// naming the accepted options.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	if value, ok := n.byName[canonical(raw)]; ok {
		return value, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %s", raw, strings.Join(n.names, ", "))
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
