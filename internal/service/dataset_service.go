package service

import (
	"context"
	"log/slog"

	"parquet-dataset/internal/config"
	"parquet-dataset/internal/dataset"
	"parquet-dataset/internal/metadata"
	"parquet-dataset/internal/metrics"
	"parquet-dataset/internal/model"
	"parquet-dataset/internal/partition"
	"parquet-dataset/internal/pathutil"
	"parquet-dataset/internal/scheme"
	"parquet-dataset/internal/storage"
	"parquet-dataset/internal/typer"
)

type DatasetService interface {
	AnalysePaths(ctx context.Context, req *AnalysePathsRequest) (*AnalysePathsResponse, error)
	InferValues(ctx context.Context, req *InferValuesRequest) (*InferValuesResponse, error)
	InspectDataset(ctx context.Context, req *DatasetRequest) (*DatasetInfo, error)
	GetMetadata(ctx context.Context, req *DatasetRequest) (*MetadataResponse, error)
	UpdateMetadata(ctx context.Context, req *UpdateMetadataRequest) (*MetadataResponse, error)
}

type AnalysePathsRequest struct {
	Paths []string `json:"paths" validate:"required,min=1,dive,required"`
	// Root, when set, replaces the computed common base.
	Root string `json:"root,omitempty"`
	// Infer types partition values; strings are kept otherwise.
	Infer *bool `json:"infer,omitempty"`
}

type AnalysePathsResponse struct {
	Base       string          `json:"base"`
	Relative   []string        `json:"relative"`
	Scheme     scheme.Tag      `json:"scheme"`
	Partitions []PartitionInfo `json:"partitions"`
}

type PartitionInfo struct {
	Name       string        `json:"name"`
	Kind       typer.Kind    `json:"kind"`
	Values     []typer.Value `json:"values"`
	Categories []typer.Value `json:"categories"`
}

type InferValuesRequest struct {
	Tokens []string `json:"tokens" validate:"required,min=1"`
}

type InferValuesResponse struct {
	Values []typer.Value           `json:"values"`
	Groups map[typer.Kind][]string `json:"groups"`
}

type DatasetRequest struct {
	Root string `json:"root" form:"root" validate:"required"`
}

type DatasetInfo struct {
	ID             string                   `json:"id"`
	Root           string                   `json:"root"`
	Base           string                   `json:"base"`
	Scheme         scheme.Tag               `json:"scheme"`
	Files          int                      `json:"files"`
	Paths          []model.Optional[string] `json:"paths"`
	Partitions     []PartitionInfo          `json:"partitions"`
	Columns        []string                 `json:"columns"`
	CustomMetadata *metadata.Store          `json:"customMetadata"`
	StorageBackend model.StorageBackend     `json:"storageBackend"`
	AtomicMetadata bool                     `json:"atomicMetadata"`
}

type UpdateMetadataRequest struct {
	Root string `json:"root" validate:"required"`
	// Changes maps keys to new values; null deletes the key.
	Changes map[string]*string `json:"changes" validate:"required"`
}

type MetadataResponse struct {
	ID             string          `json:"id"`
	Root           string          `json:"root"`
	CustomMetadata *metadata.Store `json:"customMetadata"`
}

type datasetService struct {
	fs      storage.FileSystem
	backend model.StorageBackend
	cfg     config.DatasetConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewDatasetService creates a DatasetService reading datasets from fs.
func NewDatasetService(fs storage.FileSystem, backend model.StorageBackend, cfg config.DatasetConfig, m *metrics.Metrics, logger *slog.Logger) DatasetService {
	return &datasetService{
		fs:      fs,
		backend: backend,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
	}
}

func (s *datasetService) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (s *datasetService) options() dataset.Options {
	return dataset.Options{
		SchemaKey:        s.cfg.SchemaKey,
		DisableInference: !s.cfg.InferPartitions,
		Metrics:          s.metrics,
		Logger:           s.logger,
	}
}

func (s *datasetService) AnalysePaths(ctx context.Context, req *AnalysePathsRequest) (*AnalysePathsResponse, error) {
	var (
		base string
		rel  []string
	)
	if req.Root != "" {
		var err error
		base, rel, err = pathutil.AnalyseWithRoot(req.Paths, req.Root)
		if err != nil {
			return nil, err
		}
	} else {
		base, rel = pathutil.Analyse(req.Paths)
	}

	tag := scheme.ClassifyStrings(rel)
	infer := s.cfg.InferPartitions
	if req.Infer != nil {
		infer = *req.Infer
	}
	cols, err := partition.BuildColumns(tag, rel, partition.Options{
		Infer: infer,
		OnFallback: func(column, reason string) {
			s.log().Debug("partition column falls back to string", "column", column, "reason", reason)
			s.metrics.RecordFallback(reason)
		},
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordClassification(tag.String())

	return &AnalysePathsResponse{
		Base:       base,
		Relative:   rel,
		Scheme:     tag,
		Partitions: partitionInfos(cols),
	}, nil
}

func (s *datasetService) InferValues(ctx context.Context, req *InferValuesRequest) (*InferValuesResponse, error) {
	values := make([]typer.Value, len(req.Tokens))
	for i, t := range req.Tokens {
		values[i] = typer.Infer(t)
	}
	return &InferValuesResponse{
		Values: values,
		Groups: typer.GroupTokens(req.Tokens),
	}, nil
}

func (s *datasetService) InspectDataset(ctx context.Context, req *DatasetRequest) (*DatasetInfo, error) {
	d, err := dataset.Open(ctx, s.fs, req.Root, s.options())
	if err != nil {
		return nil, err
	}

	var columns []string
	for _, el := range d.Schema() {
		if el.GetNumChildren() == 0 {
			columns = append(columns, el.GetName())
		}
	}

	return &DatasetInfo{
		ID:             d.ID,
		Root:           d.Root,
		Base:           d.Base,
		Scheme:         d.Scheme,
		Files:          len(d.Files),
		Paths:          d.Paths,
		Partitions:     partitionInfos(d.Columns),
		Columns:        columns,
		CustomMetadata: d.CustomMetadata(),
		StorageBackend: s.backend,
		AtomicMetadata: model.HasAtomicRename(s.backend),
	}, nil
}

func (s *datasetService) GetMetadata(ctx context.Context, req *DatasetRequest) (*MetadataResponse, error) {
	d, err := dataset.Open(ctx, s.fs, req.Root, s.options())
	if err != nil {
		return nil, err
	}
	return &MetadataResponse{ID: d.ID, Root: d.Root, CustomMetadata: d.CustomMetadata()}, nil
}

func (s *datasetService) UpdateMetadata(ctx context.Context, req *UpdateMetadataRequest) (*MetadataResponse, error) {
	d, err := dataset.Open(ctx, s.fs, req.Root, s.options())
	if err != nil {
		return nil, err
	}
	custom := d.UpdateCustomMetadata(metadata.RequestFromMap(req.Changes))
	if err := d.WriteCommonMetadata(ctx); err != nil {
		return nil, err
	}
	return &MetadataResponse{ID: d.ID, Root: d.Root, CustomMetadata: custom}, nil
}

func partitionInfos(cols []*partition.Column) []PartitionInfo {
	out := make([]PartitionInfo, len(cols))
	for i, c := range cols {
		out[i] = PartitionInfo{
			Name:       c.Name,
			Kind:       c.Kind,
			Values:     c.Values,
			Categories: c.Categories(),
		}
	}
	return out
}
