package broadcast

import (
	"encoding/json"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// ValueSet is an append-only set of decoded JSON values. Values are compared
// by their canonical encoding, so structurally equal values collapse even when
// their original text differed (e.g. 1 and 1.0, or reordered object keys).
//
// ValueSet is not safe for concurrent use.
type ValueSet struct {
	keys   mapset.Set[string]
	values []any
}

// NewValueSet returns an empty set.
func NewValueSet() *ValueSet {
	return &ValueSet{keys: mapset.NewThreadUnsafeSet[string]()}
}

// Add inserts v. Returns true if v was not already present.
func (s *ValueSet) Add(v any) (bool, error) {
	key, err := canonicalKey(v)
	if err != nil {
		return false, err
	}
	if !s.keys.Add(key) {
		return false, nil
	}
	s.values = append(s.values, v)
	return true, nil
}

// Union inserts every value in vs and returns how many were new.
func (s *ValueSet) Union(vs []any) (int, error) {
	var added int
	for _, v := range vs {
		ok, err := s.Add(v)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

// Values returns a copy of the set's contents in first-seen order. The result
// is never nil.
func (s *ValueSet) Values() []any {
	return append(make([]any, 0, len(s.values)), s.values...)
}

// Len returns the number of values in the set.
func (s *ValueSet) Len() int {
	return len(s.values)
}

// canonicalKey encodes v with sorted object keys. Decoded JSON numbers are
// float64, so equal numbers encode identically.
func canonicalKey(v any) (string, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	return string(buf), nil
}
