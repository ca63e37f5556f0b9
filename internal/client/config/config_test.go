package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "https://empllo.com/api/v1", c.FeedURL)
	assert.Equal(t, "jobkeeper.db", c.DBPath)
	assert.Equal(t, 10*time.Second, c.FetchTimeout)
	assert.Equal(t, 2*time.Second, c.SyncInterval)
	assert.Equal(t, 60*time.Second, c.FeedCacheTTL)
	assert.Equal(t, 8, c.FeedCacheMB)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "console", c.LogFormat)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"jobkeeper"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "jobkeeper.db", cfg.DBPath)
	assert.Equal(t, 2*time.Second, cfg.SyncInterval)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"db_path":       "from-json.db",
		"sync_interval": "5s",
	})
	os.Args = []string{"jobkeeper", "-c", path, "-d", "from-flag.db"}

	cfg := LoadConfig()
	assert.Equal(t, "from-flag.db", cfg.DBPath)
	assert.Equal(t, 5*time.Second, cfg.SyncInterval)
}
