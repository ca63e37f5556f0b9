package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
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
	path := writeTempJSON(t, dir, "flag.json", map[string]any{
		"feed_url":       "http://feed.example/api",
		"fetch_timeout":  "4s",
		"sync_interval":  0,
		"feed_cache_ttl": int64(90 * time.Second),
		"feed_cache_mb":  2,
		"log_format":     "json",
	})

	t.Run("loads from -config", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-config", path})

		assert.Equal(t, "http://feed.example/api", cfg.FeedURL)
		assert.Equal(t, 4*time.Second, cfg.FetchTimeout)
		assert.Equal(t, time.Duration(0), cfg.SyncInterval)
		assert.Equal(t, 90*time.Second, cfg.FeedCacheTTL)
		assert.Equal(t, 2, cfg.FeedCacheMB)
		assert.Equal(t, "jobkeeper.db", cfg.DBPath, "absent keys keep their values")
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		cfg := &Config{DBPath: "defaults.db", SyncInterval: 42 * time.Second}
		parseJson(cfg, nil)

		assert.Equal(t, "defaults.db", cfg.DBPath)
		assert.Equal(t, 42*time.Second, cfg.SyncInterval)
	})

	t.Run("missing file → panics", func(t *testing.T) {
		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")}) })
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", bad}) })
	})
}
