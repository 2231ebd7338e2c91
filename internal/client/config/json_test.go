package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"database_dsn":   "/tmp/state.db",
		"primary_device": false,
		"local_pni":      "PNI:3f0b0a52-0c39-4a4f-9d37-1b0a36b0f0d1",
		"s3_prefix":      "acct-1",
		"sync_timeout":   "10s",
	})

	t.Run("loads from flags", func(t *testing.T) {
		cfg := &Config{IsPrimaryDevice: true}
		require.NoError(t, parseJson(cfg, []string{"-config", pathFlag}))

		assert.Equal(t, "/tmp/state.db", cfg.DatabaseDSN)
		assert.False(t, cfg.IsPrimaryDevice)
		assert.Equal(t, "PNI:3f0b0a52-0c39-4a4f-9d37-1b0a36b0f0d1", cfg.LocalPNI)
		assert.Equal(t, "acct-1", cfg.S3Prefix)
		assert.Equal(t, 10*time.Second, cfg.SyncTimeout)
	})

	t.Run("short flag with equals", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-c=" + pathFlag}))
		assert.Equal(t, "acct-1", cfg.S3Prefix)
	})

	t.Run("absent keys keep earlier values", func(t *testing.T) {
		cfg := &Config{LogLevel: "debug", IsPrimaryDevice: true}
		require.NoError(t, parseJson(cfg, []string{"-c", writeTempJSON(t, dir, "partial.json", map[string]any{"s3_bucket": "b"})}))

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.True(t, cfg.IsPrimaryDevice)
		assert.Equal(t, "b", cfg.S3Bucket)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		cfg := &Config{
			DatabaseDSN: "defaults.db",
			SyncTimeout: 42 * time.Second,
		}
		require.NoError(t, parseJson(cfg, nil))

		assert.Equal(t, "defaults.db", cfg.DatabaseDSN)
		assert.Equal(t, 42*time.Second, cfg.SyncTimeout)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		err := parseJson(&Config{}, []string{"-config", bad})
		require.Error(t, err)
	})

	t.Run("missing file → error", func(t *testing.T) {
		err := parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")})
		require.Error(t, err)
	})
}
