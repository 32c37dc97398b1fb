package model

import (
	"bytes"
	"encoding/json"
)

// Optional holds a value that may be absent. It is used for dataset paths
// (absent = the dataset is a single object) and for metadata update values
// (absent = delete the key), so an empty string is never overloaded.
type Optional[T any] struct {
	value T
	valid bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, valid: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr converts a nil-able pointer into an Optional.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Valid reports whether a value is present.
func (o Optional[T]) Valid() bool {
	return o.valid
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.valid
}

// OrElse returns the value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if !o.valid {
		return def
	}
	return o.value
}

// Ptr returns a pointer to a copy of the value, or nil when absent.
func (o Optional[T]) Ptr() *T {
	if !o.valid {
		return nil
	}
	v := o.value
	return &v
}

// MarshalJSON encodes an absent value as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as an absent value.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Strings wraps every element of paths as a present Optional.
func Strings(paths []string) []Optional[string] {
	out := make([]Optional[string], len(paths))
	for i, p := range paths {
		out[i] = Some(p)
	}
	return out
}
