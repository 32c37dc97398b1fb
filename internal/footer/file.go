package footer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/source"
)

// memFile implements source.ParquetFile over a byte slice so the parquet
// reader can decode footers fetched whole from any storage backend.
type memFile struct {
	name     string
	data     []byte
	position int64
	buffer   *bytes.Buffer
}

var _ source.ParquetFile = (*memFile)(nil)

func newMemFile(name string, data []byte) *memFile {
	return &memFile{name: name, data: data}
}

// Read implements io.Reader interface
func (f *memFile) Read(p []byte) (int, error) {
	if f.position >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.position:])
	f.position += int64(n)
	return n, nil
}

// Seek implements io.Seeker interface
func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = f.position + offset
	case io.SeekEnd:
		pos = int64(len(f.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("seek before start of %s: %d", f.name, pos)
	}
	f.position = pos
	return pos, nil
}

// Write appends to a buffer that Bytes returns.
func (f *memFile) Write(p []byte) (int, error) {
	if f.buffer == nil {
		f.buffer = new(bytes.Buffer)
	}
	return f.buffer.Write(p)
}

func (f *memFile) Close() error {
	return nil
}

// Open returns an independent reader over the same bytes.
func (f *memFile) Open(name string) (source.ParquetFile, error) {
	if name == "" {
		name = f.name
	}
	return newMemFile(name, f.data), nil
}

// Create returns an empty writable file.
func (f *memFile) Create(name string) (source.ParquetFile, error) {
	return newMemFile(name, nil), nil
}

// Bytes returns everything written so far.
func (f *memFile) Bytes() []byte {
	if f.buffer == nil {
		return nil
	}
	return f.buffer.Bytes()
}
