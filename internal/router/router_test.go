package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parquet-dataset/internal/config"
	"parquet-dataset/internal/controller"
	"parquet-dataset/internal/footer"
	"parquet-dataset/internal/metadata"
	"parquet-dataset/internal/metrics"
	"parquet-dataset/internal/middleware"
	"parquet-dataset/internal/model"
	"parquet-dataset/internal/service"
	"parquet-dataset/internal/storage"
)

const testSchema = `{
  "Tag": "name=parquet_go_root, repetitiontype=REQUIRED",
  "Fields": [
    {"Tag": "name=name, inname=Name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"}
  ]
}`

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error"`
	CorrelationID string `json:"correlationId"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *storage.MemFS) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fs := storage.NewMemFS()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := service.NewDatasetService(fs, model.StorageBackendMemory,
		config.DatasetConfig{SchemaKey: metadata.SchemaKey, InferPartitions: true}, m, nil)

	return New(Deps{
		Metrics:  m,
		Gatherer: reg,
		Health:   controller.NewHealthController(model.StorageBackendMemory),
		Dataset:  controller.NewDatasetController(svc),
	}), fs
}

func writeDataFile(t *testing.T, fs storage.FileSystem, p string, kv *metadata.Store) {
	t.Helper()
	fmd, err := footer.NewFileMetaData(testSchema, kv)
	require.NoError(t, err)
	data, err := footer.Encode(fmd)
	require.NoError(t, err)
	require.NoError(t, fs.WriteFile(context.Background(), p, data))
}

func do(t *testing.T, r http.Handler, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(target, "/api/v1/") && target != "/api/v1/health" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w, _ := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body controller.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, model.StorageBackendMemory, body.Storage.Backend)
	assert.NotEmpty(t, w.Header().Get(middleware.CorrelationIDHeader))
}

func TestAnalysePaths(t *testing.T) {
	r, _ := newTestRouter(t)
	w, env := do(t, r, http.MethodPost, "/api/v1/paths/analyse", map[string]any{
		"paths": []string{"/data/y=2020/a.parquet", "/data/y=2021/b.parquet"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)

	var res struct {
		Base       string   `json:"base"`
		Relative   []string `json:"relative"`
		Scheme     string   `json:"scheme"`
		Partitions []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"partitions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "/data", res.Base)
	assert.Equal(t, []string{"y=2020/a.parquet", "y=2021/b.parquet"}, res.Relative)
	assert.Equal(t, "hive", res.Scheme)
	require.Len(t, res.Partitions, 1)
	assert.Equal(t, "integer", res.Partitions[0].Kind)
}

func TestAnalysePathsRejectsEmptyList(t *testing.T) {
	r, _ := newTestRouter(t)
	w, env := do(t, r, http.MethodPost, "/api/v1/paths/analyse", map[string]any{"paths": []string{}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "Paths")
}

func TestAnalysePathsMalformedBody(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/paths/analyse", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.NotEmpty(t, env.Error.Details)
}

func TestAnalysePathsOutsideRoot(t *testing.T) {
	r, _ := newTestRouter(t)
	w, env := do(t, r, http.MethodPost, "/api/v1/paths/analyse", map[string]any{
		"paths": []string{"/a/x", "/b/y"},
		"root":  "/a",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_PATH", env.Error.Code)
}

func TestInferValues(t *testing.T) {
	r, _ := newTestRouter(t)
	w, env := do(t, r, http.MethodPost, "/api/v1/values/infer", map[string]any{
		"tokens": []string{"1", "1.5", "true", "abc"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Values []struct {
			Kind string `json:"kind"`
		} `json:"values"`
		Groups map[string][]string `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Len(t, res.Values, 4)
	assert.Equal(t, "integer", res.Values[0].Kind)
	assert.Equal(t, "float", res.Values[1].Kind)
	assert.Equal(t, "boolean", res.Values[2].Kind)
	assert.Equal(t, []string{"abc"}, res.Groups["string"])
}

func TestInspectMissingDataset(t *testing.T) {
	r, _ := newTestRouter(t)
	w, env := do(t, r, http.MethodPost, "/api/v1/datasets/inspect", map[string]any{"root": "/missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DATASET_NOT_FOUND", env.Error.Code)
}

func TestInspectAndUpdateMetadata(t *testing.T) {
	r, fs := newTestRouter(t)
	kv := metadata.New(
		metadata.Entry{Key: metadata.SchemaKey, Value: "{}"},
		metadata.Entry{Key: "owner", Value: "etl"},
	)
	writeDataFile(t, fs, "/lake/t/k=a/part.0.parquet", kv)
	writeDataFile(t, fs, "/lake/t/k=b/part.0.parquet", kv)

	w, env := do(t, r, http.MethodPost, "/api/v1/datasets/inspect", map[string]any{"root": "/lake/t"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var info struct {
		Scheme         string            `json:"scheme"`
		Files          int               `json:"files"`
		Columns        []string          `json:"columns"`
		CustomMetadata map[string]string `json:"customMetadata"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "hive", info.Scheme)
	assert.Equal(t, 2, info.Files)
	assert.Equal(t, []string{"name"}, info.Columns)
	assert.Equal(t, map[string]string{"owner": "etl"}, info.CustomMetadata)

	w, _ = do(t, r, http.MethodPatch, "/api/v1/datasets/metadata", map[string]any{
		"root":    "/lake/t",
		"changes": map[string]any{"owner": nil, "team": "data", metadata.SchemaKey: "x"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = do(t, r, http.MethodGet, "/api/v1/datasets/metadata?root=/lake/t", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		CustomMetadata map[string]string `json:"customMetadata"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, map[string]string{"team": "data"}, res.CustomMetadata)

	data, err := fs.ReadFile(context.Background(), "/lake/t/_common_metadata")
	require.NoError(t, err)
	fmd, err := footer.Read("_common_metadata", data)
	require.NoError(t, err)
	desc, _ := footer.KeyValues(fmd).Get(metadata.SchemaKey)
	assert.Equal(t, "{}", desc)
}

func TestGetMetadataRequiresRoot(t *testing.T) {
	r, _ := newTestRouter(t)
	w, env := do(t, r, http.MethodGet, "/api/v1/datasets/metadata", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	do(t, r, http.MethodGet, "/health", nil)
	w, _ := do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dataset_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	r, _ := newTestRouter(t)
	w, env := do(t, r, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.NotEmpty(t, env.CorrelationID)
}
