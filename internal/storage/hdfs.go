package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/colinmarc/hdfs/v2"

	"parquet-dataset/internal/config"
	"parquet-dataset/internal/pathutil"
)

// HDFSFS lists and rewrites dataset files on HDFS.
type HDFSFS struct {
	client *hdfs.Client
}

// NewHDFSFS connects to the configured NameNodes.
func NewHDFSFS(cfg config.HDFSConfig) (*HDFSFS, error) {
	if len(cfg.NameNodes) == 0 {
		return nil, fmt.Errorf("at least one NameNode is required")
	}

	client, err := hdfs.NewClient(hdfs.ClientOptions{
		Addresses: cfg.NameNodes,
		User:      cfg.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HDFS client: %w", err)
	}
	return &HDFSFS{client: client}, nil
}

// Close closes the HDFS client
func (h *HDFSFS) Close() error {
	return h.client.Close()
}

func (h *HDFSFS) List(ctx context.Context, root string) ([]string, error) {
	root = pathutil.Normalize(root)
	info, err := h.client.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notExist(root)
		}
		return nil, storageError(err, "stat", root)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = h.client.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "walk", root)
	}
	return underRoot(root, files), nil
}

func (h *HDFSFS) ReadFile(ctx context.Context, p string) ([]byte, error) {
	data, err := h.client.ReadFile(pathutil.Normalize(p))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notExist(p)
		}
		return nil, storageError(err, "read", p)
	}
	return data, nil
}

// WriteFile writes a sibling temporary file and renames it over the target.
func (h *HDFSFS) WriteFile(ctx context.Context, p string, data []byte) error {
	target := pathutil.Normalize(p)
	if err := h.client.MkdirAll(path.Dir(target), 0o755); err != nil {
		return storageError(err, "mkdir", p)
	}

	tmp := path.Join(path.Dir(target), "."+path.Base(target)+".tmp")
	_ = h.client.Remove(tmp)
	w, err := h.client.Create(tmp)
	if err != nil {
		return storageError(err, "create", p)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return storageError(err, "write", p)
	}
	if err := w.Close(); err != nil {
		return storageError(err, "close", p)
	}
	if err := h.client.Rename(tmp, target); err != nil {
		return storageError(err, "rename", p)
	}
	return nil
}
