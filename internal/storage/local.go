package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"parquet-dataset/internal/pathutil"
)

// LocalFS reads and writes the local file system. Relative paths resolve
// against Root.
type LocalFS struct {
	Root string
}

func NewLocalFS(root string) *LocalFS {
	return &LocalFS{Root: root}
}

func (l *LocalFS) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) || l.Root == "" {
		return p
	}
	return filepath.Join(l.Root, p)
}

func (l *LocalFS) List(ctx context.Context, root string) ([]string, error) {
	base := l.resolve(root)
	info, err := os.Stat(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notExist(root)
		}
		return nil, storageError(err, "stat", root)
	}
	if !info.IsDir() {
		return []string{pathutil.Normalize(root)}, nil
	}

	var files []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		files = append(files, pathutil.Join(root, filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, storageError(err, "walk", root)
	}
	return underRoot(pathutil.Normalize(root), files), nil
}

func (l *LocalFS) ReadFile(ctx context.Context, p string) ([]byte, error) {
	data, err := os.ReadFile(l.resolve(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notExist(p)
		}
		return nil, storageError(err, "read", p)
	}
	return data, nil
}

// WriteFile writes to a temporary file in the target directory and renames
// it into place so readers never observe a partial footer.
func (l *LocalFS) WriteFile(ctx context.Context, p string, data []byte) error {
	target := l.resolve(p)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return storageError(err, "mkdir", p)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return storageError(err, "create", p)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return storageError(err, "write", p)
	}
	if err := tmp.Close(); err != nil {
		return storageError(err, "close", p)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return storageError(err, "rename", p)
	}
	return nil
}
