package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestUpdate(t *testing.T) {
	current := New(Entry{"a", "x"}, Entry{"b", "y"})
	req := RequestFromMap(map[string]*string{
		"a": nil,
		"b": strp("y2"),
		"c": strp("z"),
		"d": nil,
	})

	got := current.Update(req)
	assert.Equal(t, map[string]string{"b": "y2", "c": "z"}, got.Map())
	assert.Equal(t, []string{"b", "c"}, got.Keys())

	again := got.Update(req)
	assert.True(t, got.Equal(again), "update must be idempotent")

	assert.Equal(t, map[string]string{"a": "x", "b": "y"}, current.Map(), "receiver must not change")
}

func TestUpdatePreservesOrder(t *testing.T) {
	current := New(Entry{"k1", "1"}, Entry{"k2", "2"}, Entry{"k3", "3"})
	got := current.Update(Request{Set("new", "n"), Set("k2", "two"), Delete("k1")})
	assert.Equal(t, []Entry{{"k2", "two"}, {"k3", "3"}, {"new", "n"}}, got.Entries())
}

func TestUpdateEmptyStringIsNotDelete(t *testing.T) {
	got := New(Entry{"a", "x"}).Update(Request{Set("a", "")})
	v, ok := got.Get("a")
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestUpdateNeverTouchesSchemaKey(t *testing.T) {
	current := New(Entry{SchemaKey, `{"columns":[]}`}, Entry{"a", "x"})
	got := current.Update(Request{Delete(SchemaKey), Set("a", "y")})
	v, ok := got.Get(SchemaKey)
	require.True(t, ok)
	assert.Equal(t, `{"columns":[]}`, v)

	got = New().Update(Request{Set(SchemaKey, "forged")})
	_, ok = got.Get(SchemaKey)
	assert.False(t, ok)

	assert.Equal(t, map[string]string{"a": "y"}, current.Update(Request{Set("a", "y")}).Custom().Map())
}

func TestUpdateReservedCustomKey(t *testing.T) {
	current := New(Entry{"schema", "s"})
	got := current.UpdateReserved(Request{Delete("schema"), Delete(SchemaKey)}, "schema")
	assert.Equal(t, []string{"schema"}, got.Keys())
}

func TestNilStore(t *testing.T) {
	var s *Store
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Entries())
	got := s.Update(Request{Set("a", "1")})
	assert.Equal(t, map[string]string{"a": "1"}, got.Map())
}

func TestNewKeepsFirstPositionLastValue(t *testing.T) {
	s := New(Entry{"a", "1"}, Entry{"b", "2"}, Entry{"a", "3"})
	assert.Equal(t, []Entry{{"a", "3"}, {"b", "2"}}, s.Entries())
}

func TestStoreJSONKeepsOrder(t *testing.T) {
	data, err := json.Marshal(New(Entry{"z", "1"}, Entry{"a", "2"}))
	require.NoError(t, err)
	assert.Equal(t, `{"z":"1","a":"2"}`, string(data))
}

func TestChangeJSON(t *testing.T) {
	var req Request
	require.NoError(t, json.Unmarshal([]byte(`[{"key":"a","value":null},{"key":"b","value":""}]`), &req))
	require.Len(t, req, 2)
	assert.False(t, req[0].Value.Valid())
	v, ok := req[1].Value.Get()
	assert.True(t, ok)
	assert.Equal(t, "", v)
}
