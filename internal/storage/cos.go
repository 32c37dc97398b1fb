package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tencentyun/cos-go-sdk-v5"

	"parquet-dataset/internal/config"
)

// COSFS maps dataset paths to keys in one Tencent Cloud COS bucket.
type COSFS struct {
	client *cos.Client
}

func NewCOSFS(cfg config.COSConfig) (*COSFS, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("secret ID and secret key are required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required")
	}

	bucketURL, err := cos.NewBucketURL(cfg.Bucket, cfg.Region, cfg.HTTPS)
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket URL: %w", err)
	}
	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Timeout: 30 * time.Second,
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
		},
	})
	return &COSFS{client: client}, nil
}

func (c *COSFS) List(ctx context.Context, root string) ([]string, error) {
	prefix := objectKey(root)

	var keys []string
	marker := ""
	for {
		result, _, err := c.client.Bucket.Get(ctx, &cos.BucketGetOptions{
			Prefix:  prefix,
			Marker:  marker,
			MaxKeys: 1000,
		})
		if err != nil {
			return nil, storageError(err, "list", root)
		}
		for _, obj := range result.Contents {
			keys = append(keys, obj.Key)
		}
		if !result.IsTruncated {
			break
		}
		marker = result.NextMarker
	}

	files := underRoot(prefix, keys)
	if len(files) == 0 {
		return nil, notExist(root)
	}
	return files, nil
}

func (c *COSFS) ReadFile(ctx context.Context, p string) ([]byte, error) {
	resp, err := c.client.Object.Get(ctx, objectKey(p), nil)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return nil, notExist(p)
		}
		return nil, storageError(err, "get", p)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, storageError(err, "read", p)
	}
	return data, nil
}

func (c *COSFS) WriteFile(ctx context.Context, p string, data []byte) error {
	if _, err := c.client.Object.Put(ctx, objectKey(p), bytes.NewReader(data), nil); err != nil {
		return storageError(err, "put", p)
	}
	return nil
}
