package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("SCHEMA_CACHE_URLS", "http://a/schemas/x, http://b/schemas/y,")
	t.Setenv("SCHEMA_CACHE_FETCH_TIMEOUT", "3s")
	t.Setenv("SCHEMA_CACHE_FETCH_RETRIES", "2")
	t.Setenv("SCHEMA_CACHE_CACHE_AUTO_REFRESH", "true")
	t.Setenv("SCHEMA_CACHE_CACHE_TTL", "15m")
	t.Setenv("SCHEMA_CACHE_REFRESH_STRATEGY", "version_based")
	t.Setenv("SCHEMA_CACHE_FETCH_AUTH_BEARER_TOKEN", "token")

	cfg, err := NewConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a/schemas/x", "http://b/schemas/y"}, cfg.URLs)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2, cfg.FetchRetries)
	assert.True(t, cfg.CacheAutoRefresh)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "version_based", cfg.RefreshStrategy)
	assert.Equal(t, "token", cfg.FetchAuthBearerToken)
}

func TestNewConfigFromEnvObjectStore(t *testing.T) {
	t.Setenv("SCHEMA_CACHE_URLS", "s3://schemas/events")
	t.Setenv("SCHEMA_CACHE_S3_ENDPOINT", "minio:9000")
	t.Setenv("SCHEMA_CACHE_S3_BUCKET", "fallback")
	t.Setenv("SCHEMA_CACHE_S3_USE_SSL", "true")

	cfg, err := NewConfigFromEnv()
	require.NoError(t, err)
	require.NotNil(t, cfg.ObjectStore)
	assert.Equal(t, "minio:9000", cfg.ObjectStore.Endpoint)
	assert.Equal(t, "fallback", cfg.ObjectStore.Bucket)
	assert.True(t, cfg.ObjectStore.UseSSL)

	t.Setenv("SCHEMA_CACHE_S3_USE_SSL", "maybe")
	_, err = NewConfigFromEnv()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewConfigFromEnvInvalid(t *testing.T) {
	t.Setenv("SCHEMA_CACHE_CACHE_TTL", "soon")
	_, err := NewConfigFromEnv()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemacache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
urls:
  - https://registry.internal/schemas/events
  - s3://schemas/core/orders
fetch_timeout: 5s
fetch_retries: 3
fetch_backoff_min: 250ms
fetch_headers:
  X-Namespace: core
cache_auto_refresh: true
cache_ttl: 45m
refresh_strategy: long_polling
refresh_workers: 4
object_store:
  endpoint: minio:9000
  bucket: schemas
`), 0o600))

	t.Setenv("SCHEMA_CACHE_REFRESH_WORKERS", "8")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Len(t, cfg.URLs, 2)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.FetchBackoffMin)
	assert.Equal(t, "core", cfg.FetchHeaders["X-Namespace"])
	assert.Equal(t, 45*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 8, cfg.RefreshWorkers)
	require.NotNil(t, cfg.ObjectStore)
	assert.Equal(t, "minio:9000", cfg.ObjectStore.Endpoint)
	assert.Equal(t, "schemas", cfg.ObjectStore.Bucket)
}

func TestLoadConfigFileErrors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("refresh_strategy: push\n"), 0o600))
	_, err = LoadConfigFile(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultFetchTimeout, cfg.FetchTimeout)
	assert.Equal(t, DefaultFetchRetries, cfg.FetchRetries)
	assert.Equal(t, DefaultRefreshWorkers, cfg.RefreshWorkers)
	assert.GreaterOrEqual(t, cfg.CacheTTL, 30*time.Minute)
	assert.Less(t, cfg.CacheTTL, 60*time.Minute)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative timeout", Config{FetchTimeout: -time.Second}},
		{"negative backoff", Config{FetchBackoffMin: -time.Second}},
		{"negative ttl", Config{CacheTTL: -time.Second}},
		{"negative workers", Config{RefreshWorkers: -1}},
		{"unknown strategy", Config{RefreshStrategy: "push"}},
		{"blank url", Config{URLs: []string{" "}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), ErrInvalidConfig)
		})
	}
	assert.NoError(t, Config{}.Validate())
}
