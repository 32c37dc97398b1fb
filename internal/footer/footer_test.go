package footer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go/parquet"

	"parquet-dataset/internal/metadata"
	"parquet-dataset/internal/utils"
)

const testSchema = `{
  "Tag": "name=parquet_go_root, repetitiontype=REQUIRED",
  "Fields": [
    {"Tag": "name=name, inname=Name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"},
    {"Tag": "name=age, inname=Age, type=INT32, repetitiontype=OPTIONAL"}
  ]
}`

func newTestFooter(t *testing.T, kv *metadata.Store) *parquet.FileMetaData {
	t.Helper()
	fmd, err := NewFileMetaData(testSchema, kv)
	require.NoError(t, err)
	return fmd
}

func TestEncodeReadRoundTrip(t *testing.T) {
	kv := metadata.New(metadata.Entry{Key: metadata.SchemaKey, Value: "{}"}, metadata.Entry{Key: "owner", Value: "etl"})
	data, err := Encode(newTestFooter(t, kv))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte(Magic)))
	assert.True(t, bytes.HasSuffix(data, []byte(Magic)))

	fmd, err := Read("_metadata", data)
	require.NoError(t, err)
	assert.True(t, kv.Equal(KeyValues(fmd)))
	assert.Len(t, fmd.Schema, 3)
	assert.Empty(t, fmd.RowGroups)
	require.NotNil(t, fmd.CreatedBy)
	assert.Equal(t, CreatedBy, *fmd.CreatedBy)
}

func TestEncodeIsDeterministic(t *testing.T) {
	kv := metadata.New(metadata.Entry{Key: "a", Value: "1"}, metadata.Entry{Key: "b", Value: "2"})
	first, err := Encode(newTestFooter(t, kv))
	require.NoError(t, err)
	second, err := Encode(newTestFooter(t, kv))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReplaceKeepsRowGroupBytes(t *testing.T) {
	original, err := Encode(newTestFooter(t, metadata.New(metadata.Entry{Key: "a", Value: "1"})))
	require.NoError(t, err)

	// Splice fake row-group bytes between the leading magic and the footer.
	rowGroups := []byte("row-group-bytes")
	start, _, err := footerBounds("f", original)
	require.NoError(t, err)
	withData := append(append([]byte(Magic), rowGroups...), original[start:]...)

	fmd, err := Read("f", withData)
	require.NoError(t, err)
	SetKeyValues(fmd, metadata.New(metadata.Entry{Key: "b", Value: "2"}))

	replaced, err := Replace("f", withData, fmd)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(replaced, append([]byte(Magic), rowGroups...)))

	reread, err := Read("f", replaced)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"b": "2"}, KeyValues(reread).Map())
}

func TestReadRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("PAR1"), []byte("not a parquet file at all"), []byte("PAR1\xff\xff\xff\x7fPAR1")} {
		_, err := Read("bad", data)
		require.Error(t, err)
		assert.True(t, utils.IsErrorType(err, utils.ErrCodeFooterError))
		assert.ErrorIs(t, err, ErrNotParquet)
	}
}

func TestKeyValuesNilValueReadsEmpty(t *testing.T) {
	fmd := parquet.NewFileMetaData()
	fmd.KeyValueMetadata = []*parquet.KeyValue{{Key: "k"}}
	v, ok := KeyValues(fmd).Get("k")
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestCommonStripsRowGroups(t *testing.T) {
	fmd := newTestFooter(t, nil)
	fmd.RowGroups = []*parquet.RowGroup{{NumRows: 10}}
	fmd.NumRows = 10
	c := Common(fmd)
	assert.Empty(t, c.RowGroups)
	assert.Zero(t, c.NumRows)
	assert.Len(t, fmd.RowGroups, 1, "input must not change")
}

func TestMemFileOpenIsIndependent(t *testing.T) {
	f := newMemFile("x", []byte("abcdef"))
	_, err := f.Seek(-2, 2)
	require.NoError(t, err)
	g, err := f.Open("")
	require.NoError(t, err)
	buf := make([]byte, 3)
	n, err := g.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))
}
