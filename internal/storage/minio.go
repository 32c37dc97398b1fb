package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"parquet-dataset/internal/config"
)

// MinIOFS maps dataset paths to keys in one MinIO bucket.
type MinIOFS struct {
	client *minio.Client
	bucket string
}

func NewMinIOFS(cfg config.MinIOConfig) (*MinIOFS, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return &MinIOFS{client: client, bucket: cfg.Bucket}, nil
}

func (m *MinIOFS) List(ctx context.Context, root string) ([]string, error) {
	prefix := objectKey(root)
	objectCh := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var keys []string
	for object := range objectCh {
		if object.Err != nil {
			return nil, storageError(object.Err, "list", root)
		}
		keys = append(keys, object.Key)
	}

	files := underRoot(prefix, keys)
	if len(files) == 0 {
		return nil, notExist(root)
	}
	return files, nil
}

func (m *MinIOFS) ReadFile(ctx context.Context, p string) ([]byte, error) {
	object, err := m.client.GetObject(ctx, m.bucket, objectKey(p), minio.GetObjectOptions{})
	if err != nil {
		return nil, m.readError(err, p)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, m.readError(err, p)
	}
	return data, nil
}

func (m *MinIOFS) readError(err error, p string) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return notExist(p)
	}
	return storageError(err, "get", p)
}

func (m *MinIOFS) WriteFile(ctx context.Context, p string, data []byte) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectKey(p), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return storageError(err, "put", p)
	}
	return nil
}
