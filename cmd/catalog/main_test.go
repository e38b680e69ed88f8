package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out
	err := cmd.Run(context.Background(), append([]string{"catalog"}, args...))
	return out.String(), err
}

func TestCheckConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("events:\n  transport: redis\n  redis:\n    password: secret\n"), 0o600))

	out, err := run(t, "--config", path, "check-config")
	require.NoError(t, err)
	assert.Contains(t, out, "transport: redis")
	assert.Contains(t, out, "******")
	assert.NotContains(t, out, "secret")
}

func TestCheckConfig_Invalid(t *testing.T) {
	t.Setenv("CATALOG_EVENTS_TRANSPORT", "kafka")
	_, err := run(t, "check-config")
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	t.Setenv("CATALOG_DB_DSN", filepath.Join(t.TempDir(), "catalog.sqlite"))

	out, err := run(t, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 0")

	out, err = run(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 1")

	out, err = run(t, "migrate", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 0")
}
