// Package metadata holds the ordered key-value metadata persisted in a
// dataset footer and the update rules applied to it.
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sort"

	"parquet-dataset/internal/model"
)

// SchemaKey is the reserved key holding the schema description written by
// pandas-compatible writers. Updates never touch it.
const SchemaKey = "pandas"

// Entry is one persisted key-value pair.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store is an immutable ordered string mapping. A nil *Store is empty.
type Store struct {
	entries []Entry
}

// New builds a Store from entries in order. A repeated key keeps its first
// position and its last value.
func New(entries ...Entry) *Store {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if i := indexOf(out, e.Key); i >= 0 {
			out[i].Value = e.Value
			continue
		}
		out = append(out, e)
	}
	return &Store{entries: out}
}

func indexOf(entries []Entry, key string) int {
	return slices.IndexFunc(entries, func(e Entry) bool { return e.Key == key })
}

// Entries returns a copy of the pairs in order.
func (s *Store) Entries() []Entry {
	if s == nil {
		return []Entry{}
	}
	return slices.Clone(s.entries)
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

func (s *Store) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	if i := indexOf(s.entries, key); i >= 0 {
		return s.entries[i].Value, true
	}
	return "", false
}

func (s *Store) Keys() []string {
	keys := make([]string, 0, s.Len())
	for _, e := range s.Entries() {
		keys = append(keys, e.Key)
	}
	return keys
}

// Map returns the pairs as an unordered map.
func (s *Store) Map() map[string]string {
	m := make(map[string]string, s.Len())
	for _, e := range s.Entries() {
		m[e.Key] = e.Value
	}
	return m
}

// Without returns a Store lacking key.
func (s *Store) Without(key string) *Store {
	out := s.Entries()
	if i := indexOf(out, key); i >= 0 {
		out = slices.Delete(out, i, i+1)
	}
	return &Store{entries: out}
}

// Custom returns the caller-owned metadata, excluding SchemaKey.
func (s *Store) Custom() *Store {
	return s.Without(SchemaKey)
}

// Equal reports whether both stores hold the same pairs in the same order.
func (s *Store) Equal(o *Store) bool {
	return slices.Equal(s.Entries(), o.Entries())
}

// MarshalJSON encodes the store as a JSON object in entry order.
func (s *Store) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Change sets Key to Value, or deletes Key when Value is absent.
type Change struct {
	Key   string                 `json:"key"`
	Value model.Optional[string] `json:"value"`
}

// Set returns a change that stores value under key.
func Set(key, value string) Change {
	return Change{Key: key, Value: model.Some(value)}
}

// Delete returns a change that removes key.
func Delete(key string) Change {
	return Change{Key: key, Value: model.None[string]()}
}

// Request is an ordered list of changes applied in sequence.
type Request []Change

// RequestFromMap converts a JSON-style mapping, where nil means delete, into
// a Request with keys in sorted order.
func RequestFromMap(m map[string]*string) Request {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	req := make(Request, len(keys))
	for i, k := range keys {
		req[i] = Change{Key: k, Value: model.FromPtr(m[k])}
	}
	return req
}

// RequestFromStore returns a Request that sets every pair of s in order.
func RequestFromStore(s *Store) Request {
	entries := s.Entries()
	req := make(Request, len(entries))
	for i, e := range entries {
		req[i] = Set(e.Key, e.Value)
	}
	return req
}

// Update applies req to s with SchemaKey reserved.
func (s *Store) Update(req Request) *Store {
	return s.UpdateReserved(req, SchemaKey)
}

// UpdateReserved returns a new Store with req applied: absent values delete
// their key, present values overwrite in place or append in request order,
// and untouched keys are carried over. Changes to reserved are ignored. The
// receiver is not modified and applying the same request twice yields the
// same result.
func (s *Store) UpdateReserved(req Request, reserved string) *Store {
	out := s.Entries()
	for _, c := range req {
		if reserved != "" && c.Key == reserved {
			slog.Warn("ignoring update to reserved metadata key", "key", c.Key)
			continue
		}
		i := indexOf(out, c.Key)
		v, ok := c.Value.Get()
		switch {
		case !ok && i >= 0:
			out = slices.Delete(out, i, i+1)
		case !ok:
		case i >= 0:
			out[i].Value = v
		default:
			out = append(out, Entry{Key: c.Key, Value: v})
		}
	}
	return &Store{entries: out}
}

// Persister flushes a store to durable storage.
type Persister interface {
	Persist(ctx context.Context, s *Store) error
}
