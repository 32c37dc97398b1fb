package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, "server:\n  port: \"9090\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "pandas", cfg.Dataset.SchemaKey)
	assert.True(t, cfg.Dataset.InferPartitions)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromReadsStorageBlock(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, `
storage:
  backend: s3
  s3:
    bucket: lake
    region: eu-west-1
    force_path_style: true
dataset:
  schema_key: arrow_schema
`))
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "lake", cfg.Storage.S3.Bucket)
	assert.Equal(t, "eu-west-1", cfg.Storage.S3.Region)
	assert.True(t, cfg.Storage.S3.ForcePathStyle)
	assert.Equal(t, "arrow_schema", cfg.Dataset.SchemaKey)
}

func TestLoadFromRejectsInvalid(t *testing.T) {
	_, err := LoadFrom(writeConfig(t, "storage:\n  backend: ftp\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = LoadFrom(writeConfig(t, "logging:\n  level: loud\n"))
	require.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	cfg, err := LoadFrom(writeConfig(t, "server:\n  mode: release\n"))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "release", cfg.Server.Mode)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LoggingConfig{Level: "warn", Format: "json"})
	logger.Info("hidden")
	logger.Warn("shown", "key", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"key":"v"`)

	buf.Reset()
	NewLogger(&buf, LoggingConfig{Level: "debug", Format: "text"}).Debug("dbg")
	assert.Contains(t, buf.String(), "msg=dbg")
}
