package storage

import (
	"context"
	"slices"
	"sync"

	"parquet-dataset/internal/pathutil"
)

// MemFS is an in-process FileSystem keyed by normalized path.
type MemFS struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) List(ctx context.Context, root string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root = pathutil.Normalize(root)

	m.mu.RLock()
	keys := make([]string, 0, len(m.files))
	for k := range m.files {
		keys = append(keys, k)
	}
	m.mu.RUnlock()

	out := underRoot(root, keys)
	if len(out) == 0 {
		return nil, notExist(root)
	}
	return out, nil
}

func (m *MemFS) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[pathutil.Normalize(p)]
	if !ok {
		return nil, notExist(p)
	}
	return slices.Clone(data), nil
}

func (m *MemFS) WriteFile(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[pathutil.Normalize(p)] = slices.Clone(data)
	return nil
}
