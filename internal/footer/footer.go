// Package footer reads and writes the Parquet file footer (the thrift
// encoded FileMetaData) and converts its key-value metadata.
package footer

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/schema"

	"parquet-dataset/internal/metadata"
	"parquet-dataset/internal/utils"
)

const (
	// Magic opens and closes every Parquet file.
	Magic = "PAR1"
	// CreatedBy is recorded in footers written by this package.
	CreatedBy = "parquet-dataset"

	trailerLen = 8
)

var ErrNotParquet = errors.New("not a parquet file")

// footerBounds validates the file framing and returns the offset at which
// the thrift encoded footer starts and its length.
func footerBounds(name string, data []byte) (int, int, error) {
	if len(data) < len(Magic)+trailerLen ||
		string(data[:len(Magic)]) != Magic ||
		string(data[len(data)-len(Magic):]) != Magic {
		return 0, 0, utils.NewFooterError(ErrNotParquet, name)
	}
	size := int(binary.LittleEndian.Uint32(data[len(data)-trailerLen:]))
	start := len(data) - trailerLen - size
	if size == 0 || start < len(Magic) {
		return 0, 0, utils.NewFooterError(ErrNotParquet,
			fmt.Sprintf("%s: footer length %d exceeds file size %d", name, size, len(data)))
	}
	return start, size, nil
}

// Read decodes the footer of a complete Parquet file held in memory.
func Read(name string, data []byte) (*parquet.FileMetaData, error) {
	if _, _, err := footerBounds(name, data); err != nil {
		return nil, err
	}
	pr := &reader.ParquetReader{PFile: newMemFile(name, data)}
	if err := pr.ReadFooter(); err != nil {
		return nil, utils.NewFooterError(err, name)
	}
	return pr.Footer, nil
}

func serialize(fmd *parquet.FileMetaData) ([]byte, error) {
	ts := thrift.NewTSerializer()
	ts.Protocol = thrift.NewTCompactProtocolFactoryConf(&thrift.TConfiguration{}).GetProtocol(ts.Transport)
	body, err := ts.Write(context.Background(), fmd)
	if err != nil {
		return nil, utils.NewFooterError(err, "serialize file metadata")
	}
	return body, nil
}

func assemble(prefix []byte, fmd *parquet.FileMetaData) ([]byte, error) {
	body, err := serialize(fmd)
	if err != nil {
		return nil, err
	}
	f := newMemFile("", nil)
	f.Write(prefix)
	f.Write(body)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(body)))
	f.Write(size[:])
	f.Write([]byte(Magic))
	return f.Bytes(), nil
}

// Encode returns a Parquet file that holds no row data, only fmd. This is
// the layout of _metadata and _common_metadata files. The output is
// byte-identical for identical input.
func Encode(fmd *parquet.FileMetaData) ([]byte, error) {
	return assemble([]byte(Magic), fmd)
}

// Replace swaps the footer of an existing Parquet file, keeping the bytes of
// its row groups. Offsets in fmd must refer to the same row groups.
func Replace(name string, data []byte, fmd *parquet.FileMetaData) ([]byte, error) {
	start, _, err := footerBounds(name, data)
	if err != nil {
		return nil, err
	}
	return assemble(data[:start], fmd)
}

// NewFileMetaData builds an empty-row-group footer from a JSON schema in the
// parquet-go schema format.
func NewFileMetaData(schemaJSON string, kv *metadata.Store) (*parquet.FileMetaData, error) {
	sh, err := schema.NewSchemaHandlerFromJSON(schemaJSON)
	if err != nil {
		return nil, utils.NewFooterError(err, "parse json schema")
	}
	fmd := parquet.NewFileMetaData()
	fmd.Version = 1
	fmd.Schema = sh.SchemaElements
	fmd.RowGroups = []*parquet.RowGroup{}
	createdBy := CreatedBy
	fmd.CreatedBy = &createdBy
	SetKeyValues(fmd, kv)
	return fmd, nil
}

// Common returns a shallow copy of fmd with row groups stripped, as written
// to _common_metadata.
func Common(fmd *parquet.FileMetaData) *parquet.FileMetaData {
	c := *fmd
	c.RowGroups = []*parquet.RowGroup{}
	c.NumRows = 0
	return &c
}

// KeyValues returns the footer key-value metadata in order. A pair
// persisted without a value reads as the empty string.
func KeyValues(fmd *parquet.FileMetaData) *metadata.Store {
	entries := make([]metadata.Entry, 0, len(fmd.KeyValueMetadata))
	for _, kv := range fmd.KeyValueMetadata {
		if kv == nil {
			continue
		}
		e := metadata.Entry{Key: kv.Key}
		if kv.Value != nil {
			e.Value = *kv.Value
		}
		entries = append(entries, e)
	}
	return metadata.New(entries...)
}

// SetKeyValues replaces the footer key-value metadata with s.
func SetKeyValues(fmd *parquet.FileMetaData, s *metadata.Store) {
	entries := s.Entries()
	kvs := make([]*parquet.KeyValue, len(entries))
	for i, e := range entries {
		v := e.Value
		kvs[i] = &parquet.KeyValue{Key: e.Key, Value: &v}
	}
	fmd.KeyValueMetadata = kvs
}
