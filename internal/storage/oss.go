package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"parquet-dataset/internal/config"
)

// OSSFS maps dataset paths to keys in one Alibaba Cloud OSS bucket.
type OSSFS struct {
	bucket *oss.Bucket
}

func NewOSSFS(cfg config.OSSConfig) (*OSSFS, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return nil, fmt.Errorf("access key ID and secret are required")
	}

	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}
	return &OSSFS{bucket: bucket}, nil
}

// The OSS SDK takes no context; ctx is checked between pages.
func (o *OSSFS) List(ctx context.Context, root string) ([]string, error) {
	prefix := objectKey(root)

	var keys []string
	token := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		options := []oss.Option{oss.Prefix(prefix)}
		if token != "" {
			options = append(options, oss.ContinuationToken(token))
		}
		result, err := o.bucket.ListObjectsV2(options...)
		if err != nil {
			return nil, storageError(err, "list", root)
		}
		for _, obj := range result.Objects {
			keys = append(keys, obj.Key)
		}
		if !result.IsTruncated {
			break
		}
		token = result.NextContinuationToken
	}

	files := underRoot(prefix, keys)
	if len(files) == 0 {
		return nil, notExist(root)
	}
	return files, nil
}

func (o *OSSFS) ReadFile(ctx context.Context, p string) ([]byte, error) {
	reader, err := o.bucket.GetObject(objectKey(p))
	if err != nil {
		var serviceErr oss.ServiceError
		if errors.As(err, &serviceErr) && serviceErr.StatusCode == http.StatusNotFound {
			return nil, notExist(p)
		}
		return nil, storageError(err, "get", p)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, storageError(err, "read", p)
	}
	return data, nil
}

func (o *OSSFS) WriteFile(ctx context.Context, p string, data []byte) error {
	if err := o.bucket.PutObject(objectKey(p), bytes.NewReader(data)); err != nil {
		return storageError(err, "put", p)
	}
	return nil
}
