// Package storage lists dataset files and moves footer bytes on the
// supported backends. Paths are '/' separated strings; object store keys
// carry no leading separator.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"parquet-dataset/internal/config"
	"parquet-dataset/internal/model"
	"parquet-dataset/internal/pathutil"
	"parquet-dataset/internal/utils"
)

// ErrNotExist is returned, possibly wrapped, when a path is missing.
var ErrNotExist = errors.New("file does not exist")

// FileSystem is the listing and byte-moving collaborator of a dataset.
type FileSystem interface {
	// List returns every file at or below root, sorted. A root naming a
	// single file yields just that file.
	List(ctx context.Context, root string) ([]string, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// WriteFile replaces path with data, creating parents as needed.
	WriteFile(ctx context.Context, path string, data []byte) error
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (FileSystem, error) {
	switch model.StorageBackend(cfg.Backend) {
	case model.StorageBackendMemory:
		return NewMemFS(), nil
	case model.StorageBackendLocal:
		return NewLocalFS(cfg.Local.Root), nil
	case model.StorageBackendHDFS:
		return NewHDFSFS(cfg.HDFS)
	case model.StorageBackendS3:
		return NewS3FSFromConfig(ctx, cfg.S3)
	case model.StorageBackendMinIO:
		return NewMinIOFS(cfg.MinIO)
	case model.StorageBackendAzure:
		return NewAzureFS(cfg.Azure)
	case model.StorageBackendOSS:
		return NewOSSFS(cfg.OSS)
	case model.StorageBackendCOS:
		return NewCOSFS(cfg.COS)
	default:
		return nil, utils.NewErrorBuilder(utils.ErrCodeUnsupportedBackend).
			WithDetails(fmt.Sprintf("backend %q", cfg.Backend)).
			Build()
	}
}

// objectKey converts a path into an object store key.
func objectKey(p string) string {
	return strings.TrimPrefix(pathutil.Normalize(p), pathutil.Sep)
}

// underRoot keeps the keys at or below root, dropping directory
// placeholders, and returns them sorted.
func underRoot(root string, keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" || strings.HasSuffix(k, pathutil.Sep) {
			continue
		}
		k = pathutil.Normalize(k)
		if _, ok := pathutil.Split(root, k); ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func notExist(p string) error {
	return fmt.Errorf("%s: %w", p, ErrNotExist)
}

func storageError(err error, op, p string) error {
	return utils.NewStorageError(err, fmt.Sprintf("%s %s", op, p))
}
