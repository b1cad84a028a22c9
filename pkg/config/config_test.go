package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultSearchConfig(), cfg.Search)
	assert.Equal(t, 23, cfg.Search.MaxResults())
	assert.Equal(t, 100, cfg.Search.SnippetMaxLen)
	assert.False(t, cfg.Kafka.Enabled)
	assert.True(t, cfg.Catalog.ReloadOnUpload)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9999
  readTimeout: 5s
search:
  categoryLimit: 2
  snippetMaxLen: 0
catalog:
  documentPath: /data/userdef.json
redis:
  enabled: true
  cacheTTL: 2m
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 2, cfg.Search.CategoryLimit)
	assert.Equal(t, 8, cfg.Search.DefinitionLimit)
	assert.Equal(t, 100, cfg.Search.SnippetMaxLen, "non-positive values fall back to defaults")
	assert.Equal(t, "/data/userdef.json", cfg.Catalog.DocumentPath)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Redis.CacheTTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SP_SERVER_PORT", "7070")
	t.Setenv("SP_SEARCH_CONTENT_LIMIT", "3")
	t.Setenv("SP_KAFKA_ENABLED", "true")
	t.Setenv("SP_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("SP_POSTGRES_PORT", "not-a-number")
	t.Setenv("SP_SERVER_CORS_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("SP_INGESTION_UPLOADS_PER_MINUTE", "12")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Search.ContentLimit)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5432, cfg.Postgres.Port, "unparsable values are ignored")
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 12, cfg.Ingestion.UploadsPerMinute)
	assert.Equal(t, 5, cfg.Ingestion.UploadBurst)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
