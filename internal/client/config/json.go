package config

import (
	"os"

	"github.com/dmitrijs2005/jobkeeper/internal/flagx"
	"github.com/dmitrijs2005/jobkeeper/internal/timex"
	"github.com/goccy/go-json"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. Pointer fields tell an
// explicit zero apart from an absent key.
type JsonConfig struct {
	FeedURL      string          `json:"feed_url"`
	DBPath       string          `json:"db_path"`
	FetchTimeout *timex.Duration `json:"fetch_timeout"`
	SyncInterval *timex.Duration `json:"sync_interval"`
	FeedCacheTTL *timex.Duration `json:"feed_cache_ttl"`
	FeedCacheMB  *int            `json:"feed_cache_mb"`
	LogLevel     string          `json:"log_level"`
	LogFormat    string          `json:"log_format"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config in args. Keys missing from the file keep their current
// values. It panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.FeedURL != "" {
		cfg.FeedURL = jc.FeedURL
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.FetchTimeout != nil {
		cfg.FetchTimeout = jc.FetchTimeout.Duration
	}
	if jc.SyncInterval != nil {
		cfg.SyncInterval = jc.SyncInterval.Duration
	}
	if jc.FeedCacheTTL != nil {
		cfg.FeedCacheTTL = jc.FeedCacheTTL.Duration
	}
	if jc.FeedCacheMB != nil {
		cfg.FeedCacheMB = *jc.FeedCacheMB
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
}
