package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the jobkeeper CLI.
//
// Fields:
//   - FeedURL: endpoint of the remote job feed.
//   - DBPath: SQLite file holding users, session, saved jobs and applications.
//   - FetchTimeout: per-request timeout of feed fetches.
//   - SyncInterval: how often the ledger re-reads the store; 0 disables polling.
//   - FeedCacheTTL: how long a fetched feed body is reused; 0 disables caching.
//   - FeedCacheMB: size of the in-memory feed cache.
//   - LogLevel: debug, info, warn or error.
//   - LogFormat: console (human readable) or json.
type Config struct {
	FeedURL      string
	DBPath       string
	FetchTimeout time.Duration
	SyncInterval time.Duration
	FeedCacheTTL time.Duration
	FeedCacheMB  int
	LogLevel     string
	LogFormat    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.FeedURL = "https://empllo.com/api/v1"
	c.DBPath = "jobkeeper.db"
	c.FetchTimeout = 10 * time.Second
	c.SyncInterval = 2 * time.Second
	c.FeedCacheTTL = 60 * time.Second
	c.FeedCacheMB = 8
	c.LogLevel = "info"
	c.LogFormat = "console"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones. It panics on unreadable input.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
