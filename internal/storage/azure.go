package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"parquet-dataset/internal/config"
)

// AzureFS maps dataset paths to blob names in one container.
type AzureFS struct {
	client    *azblob.Client
	container string
}

func NewAzureFS(cfg config.AzureConfig) (*AzureFS, error) {
	if cfg.AccountName == "" {
		return nil, fmt.Errorf("account name is required")
	}
	if cfg.Container == "" {
		return nil, fmt.Errorf("container is required")
	}

	// Build blob service URL
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
	if cfg.Endpoint != "" {
		serviceURL = cfg.Endpoint
	}

	credential, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure Blob client: %w", err)
	}
	return &AzureFS{client: client, container: cfg.Container}, nil
}

func (a *AzureFS) List(ctx context.Context, root string) ([]string, error) {
	prefix := objectKey(root)
	opts := &azblob.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = &prefix
	}

	var keys []string
	pager := a.client.NewListBlobsFlatPager(a.container, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, storageError(err, "list", root)
		}
		for _, blob := range page.Segment.BlobItems {
			if blob.Name != nil {
				keys = append(keys, *blob.Name)
			}
		}
	}

	files := underRoot(prefix, keys)
	if len(files) == 0 {
		return nil, notExist(root)
	}
	return files, nil
}

func (a *AzureFS) ReadFile(ctx context.Context, p string) ([]byte, error) {
	resp, err := a.client.DownloadStream(ctx, a.container, objectKey(p), nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, notExist(p)
		}
		return nil, storageError(err, "download", p)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, storageError(err, "read", p)
	}
	return data, nil
}

func (a *AzureFS) WriteFile(ctx context.Context, p string, data []byte) error {
	if _, err := a.client.UploadBuffer(ctx, a.container, objectKey(p), data, nil); err != nil {
		return storageError(err, "upload", p)
	}
	return nil
}
