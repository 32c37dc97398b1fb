// Package dataset opens partitioned Parquet datasets: it discovers their
// layout, types partition values and keeps the footer key-value metadata in
// sync with storage.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/google/uuid"
	"github.com/xitongsys/parquet-go/parquet"

	"parquet-dataset/internal/footer"
	"parquet-dataset/internal/metadata"
	"parquet-dataset/internal/metrics"
	"parquet-dataset/internal/model"
	"parquet-dataset/internal/partition"
	"parquet-dataset/internal/pathutil"
	"parquet-dataset/internal/scheme"
	"parquet-dataset/internal/storage"
	"parquet-dataset/internal/utils"
)

// Summary file names written next to the data files of a directory dataset.
const (
	MetadataFile       = "_metadata"
	CommonMetadataFile = "_common_metadata"
)

type Options struct {
	// SchemaKey is the reserved metadata key; defaults to metadata.SchemaKey.
	SchemaKey string
	// DisableInference keeps every partition column as strings.
	DisableInference bool
	Metrics          *metrics.Metrics
	Logger           *slog.Logger
}

func (o Options) schemaKey() string {
	if o.SchemaKey == "" {
		return metadata.SchemaKey
	}
	return o.SchemaKey
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Dataset is an opened dataset. Layout fields are fixed at Open; the
// metadata is guarded by a mutex and replaced wholesale on update.
type Dataset struct {
	ID      string
	Root    string
	Base    string
	Files   []string
	Paths   []model.Optional[string]
	Scheme  scheme.Tag
	Columns []*partition.Column

	fs           storage.FileSystem
	opts         Options
	metadataPath string

	mu     sync.RWMutex
	footer *parquet.FileMetaData
	kv     *metadata.Store
}

var _ metadata.Persister = (*Dataset)(nil)

// IsHidden reports whether a file name is skipped as a data file: summary
// files, _SUCCESS markers and dot files such as checksums.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// Open lists root, classifies its layout, builds partition columns and
// loads the footer metadata from _metadata, else _common_metadata, else the
// first data file.
func Open(ctx context.Context, fs storage.FileSystem, root string, opts Options) (*Dataset, error) {
	start := time.Now()
	logger := opts.logger()

	listed, err := fs.List(ctx, root)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, utils.NewDatasetNotFoundError(err, root)
		}
		return nil, err
	}

	d := &Dataset{
		ID:   uuid.New().String(),
		Root: listingForm(root, listed),
		fs:   fs,
		opts: opts,
	}

	var commonPath string
	if len(listed) == 1 && listed[0] == d.Root {
		d.Files = listed
		d.Base = d.Root
		d.Paths = []model.Optional[string]{model.None[string]()}
	} else {
		for _, f := range listed {
			name := pathutil.Base(f)
			switch name {
			case MetadataFile:
				d.metadataPath = f
			case CommonMetadataFile:
				commonPath = f
			}
			if !IsHidden(name) {
				d.Files = append(d.Files, f)
			}
		}
		base, rel, err := pathutil.AnalyseWithRoot(d.Files, d.Root)
		if err != nil {
			return nil, err
		}
		d.Base = base
		d.Paths = model.Strings(rel)
	}
	d.Scheme = scheme.Classify(d.Paths)

	if d.Scheme.Partitioned() {
		rel := make([]string, len(d.Paths))
		for i, p := range d.Paths {
			rel[i] = p.OrElse("")
		}
		d.Columns, err = partition.BuildColumns(d.Scheme, rel, partition.Options{
			Infer: !opts.DisableInference,
			OnFallback: func(column, reason string) {
				logger.Debug("partition column falls back to string",
					"root", d.Root, "column", column, "reason", reason)
				opts.Metrics.RecordFallback(reason)
			},
		})
		if err != nil {
			return nil, err
		}
	}

	source := d.metadataPath
	if source == "" {
		source = commonPath
	}
	if source == "" && len(d.Files) > 0 {
		source = d.Files[0]
	}
	d.kv = metadata.New()
	if source != "" {
		fmd, err := readFooter(ctx, fs, source)
		if err != nil {
			return nil, err
		}
		d.footer = fmd
		d.kv = footer.KeyValues(fmd)
	}

	opts.Metrics.RecordClassification(d.Scheme.String())
	opts.Metrics.ObserveOpen(time.Since(start))
	logger.Info("opened dataset",
		"dataset_id", d.ID,
		"root", d.Root,
		"scheme", d.Scheme.String(),
		"files", len(d.Files),
		"partitions", len(d.Columns),
		"metadata_source", source)
	return d, nil
}

// listingForm matches root to the form the backend lists paths in: object
// stores return keys without a leading separator.
func listingForm(root string, listed []string) string {
	root = pathutil.Normalize(root)
	if len(listed) > 0 && !strings.HasPrefix(listed[0], pathutil.Sep) {
		return strings.TrimPrefix(root, pathutil.Sep)
	}
	return root
}

func readFooter(ctx context.Context, fs storage.FileSystem, p string) (*parquet.FileMetaData, error) {
	data, err := fs.ReadFile(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("read footer: %w", err)
	}
	return footer.Read(p, data)
}

// KeyValueMetadata returns all footer metadata, including the reserved key.
func (d *Dataset) KeyValueMetadata() *metadata.Store {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.kv
}

// CustomMetadata returns the footer metadata without the reserved key.
func (d *Dataset) CustomMetadata() *metadata.Store {
	return d.KeyValueMetadata().Without(d.opts.schemaKey())
}

// UpdateCustomMetadata applies req to the in-memory metadata and returns the
// resulting custom metadata. Nothing is written until Persist or
// WriteCommonMetadata.
func (d *Dataset) UpdateCustomMetadata(req metadata.Request) *metadata.Store {
	d.mu.Lock()
	d.kv = d.kv.UpdateReserved(req, d.opts.schemaKey())
	kv := d.kv
	d.mu.Unlock()

	d.opts.Metrics.RecordUpdate()
	d.opts.logger().Debug("updated custom metadata", "dataset_id", d.ID, "changes", len(req))
	return kv.Without(d.opts.schemaKey())
}

// WriteCommonMetadata flushes the current metadata to storage.
func (d *Dataset) WriteCommonMetadata(ctx context.Context) error {
	return d.Persist(ctx, d.KeyValueMetadata())
}

// Persist writes s as the footer metadata. The reserved key keeps its
// current value whatever s holds for it. A single-file dataset has its
// footer replaced in place; a directory dataset gets a fresh
// _common_metadata and, if one exists, a rewritten _metadata.
func (d *Dataset) Persist(ctx context.Context, s *metadata.Store) error {
	err := d.persist(ctx, s)
	d.opts.Metrics.RecordPersist(err)
	if err != nil {
		d.opts.logger().Error("failed to persist metadata", "dataset_id", d.ID, "error", err)
		return err
	}
	d.opts.logger().Info("persisted metadata", "dataset_id", d.ID, "keys", d.KeyValueMetadata().Len())
	return nil
}

func (d *Dataset) persist(ctx context.Context, s *metadata.Store) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.footer == nil {
		return utils.NewFooterError(errors.New("dataset has no footer"), d.Root)
	}
	s = withReserved(d.kv, s, d.opts.schemaKey())
	fmd := *d.footer
	footer.SetKeyValues(&fmd, s)

	if d.Scheme == scheme.Simple {
		data, err := d.fs.ReadFile(ctx, d.Files[0])
		if err != nil {
			return err
		}
		out, err := footer.Replace(d.Files[0], data, &fmd)
		if err != nil {
			return err
		}
		if err := d.fs.WriteFile(ctx, d.Files[0], out); err != nil {
			return err
		}
	} else {
		common, err := footer.Encode(footer.Common(&fmd))
		if err != nil {
			return err
		}
		if err := d.fs.WriteFile(ctx, pathutil.Join(d.Root, CommonMetadataFile), common); err != nil {
			return err
		}
		if d.metadataPath != "" {
			full, err := footer.Encode(&fmd)
			if err != nil {
				return err
			}
			if err := d.fs.WriteFile(ctx, d.metadataPath, full); err != nil {
				return err
			}
		}
	}

	d.footer = &fmd
	d.kv = s
	return nil
}

// withReserved returns s with the reserved key taken from cur: first when
// cur holds it, absent otherwise. Whatever s holds under key is dropped.
func withReserved(cur, s *metadata.Store, key string) *metadata.Store {
	var entries []metadata.Entry
	if v, ok := cur.Get(key); ok {
		entries = append(entries, metadata.Entry{Key: key, Value: v})
	}
	entries = append(entries, s.Without(key).Entries()...)
	return metadata.New(entries...)
}

// Schema returns the flattened schema elements of the loaded footer.
func (d *Dataset) Schema() []*parquet.SchemaElement {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.footer == nil {
		return nil
	}
	return d.footer.Schema
}

// PartitionRecord returns the partition columns as an Arrow record with one
// row per data file. The caller must Release it.
func (d *Dataset) PartitionRecord(mem memory.Allocator) arrow.Record {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return partition.Record(mem, d.Columns)
}

// CreateOptions describes an empty dataset to write.
type CreateOptions struct {
	Options
	// SchemaJSON is the column schema in the parquet-go JSON format.
	SchemaJSON string
	// SchemaDescription is stored under the reserved key when non-empty.
	SchemaDescription string
	CustomMetadata    *metadata.Store
}

// Create writes _metadata and _common_metadata for a dataset with no row
// groups yet, then opens it.
func Create(ctx context.Context, fs storage.FileSystem, root string, opts CreateOptions) (*Dataset, error) {
	key := opts.schemaKey()
	kv := metadata.New()
	if opts.SchemaDescription != "" {
		kv = metadata.New(metadata.Entry{Key: key, Value: opts.SchemaDescription})
	}
	kv = kv.UpdateReserved(metadata.RequestFromStore(opts.CustomMetadata), key)

	fmd, err := footer.NewFileMetaData(opts.SchemaJSON, kv)
	if err != nil {
		return nil, err
	}
	data, err := footer.Encode(fmd)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{MetadataFile, CommonMetadataFile} {
		if err := fs.WriteFile(ctx, pathutil.Join(root, name), data); err != nil {
			return nil, err
		}
	}
	return Open(ctx, fs, root, opts.Options)
}
