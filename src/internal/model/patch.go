package model

import (
	"encoding/json"
	"fmt"
)

// Patch is a set of top-level JSON fields to overwrite on a record.
type Patch map[string]any

// Has reports whether the patch sets key.
func (p Patch) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Without returns a copy of p minus the given keys.
func (p Patch) Without(keys ...string) Patch {
	out := make(Patch, len(p))
	for k, v := range p {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Merge shallow-merges p onto item through its JSON form. Keys that are not
// fields of T are ignored.
func Merge[T any](item T, p Patch) (T, error) {
	var zero T
	if len(p) == 0 {
		return item, nil
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return zero, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return zero, err
	}
	for k, v := range p {
		b, err := json.Marshal(v)
		if err != nil {
			return zero, fmt.Errorf("%w: field %s: %v", ErrValidation, k, err)
		}
		fields[k] = b
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return out, nil
}
