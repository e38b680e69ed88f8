package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
  format: json
database:
  dsn: "file:test.db"
  slow_threshold: 1s
events:
  transport: redis
  redis:
    addr: "redis:6379"
    stream_prefix: "cat:"
`), 0o600))

	t.Setenv("CATALOG_EVENTS_REDIS_ADDR", "other:6380")
	t.Setenv("CATALOG_DB_MAX_OPEN_CONNS", "9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "file:test.db", cfg.Database.DSN)
	assert.Equal(t, time.Second, cfg.Database.SlowThreshold)
	assert.Equal(t, 9, cfg.Database.MaxOpenConns)
	assert.Equal(t, TransportRedis, cfg.Events.Transport)
	assert.Equal(t, "other:6380", cfg.Events.Redis.Addr)
	assert.Equal(t, "cat:", cfg.Events.Redis.StreamPrefix)
	// 文件未设置的字段保留默认值
	assert.Equal(t, "catalog-admin", cfg.Events.Redis.Group)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("CATALOG_EVENTS_TRANSPORT", "kafka")
	t.Setenv("CATALOG_LOG_FORMAT", "xml")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events.transport")
	assert.Contains(t, err.Error(), "log.format")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [unterminated"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}
