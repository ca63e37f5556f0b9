// Package config loads runtime configuration for the jobkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-u string   job feed URL
//	-d string   database file path
//	-t int      feed fetch timeout (seconds)
//	-s int      store sync interval (seconds)
//	-k int      feed cache TTL (seconds)
//	-m int      feed cache size (MB)
//	-l string   log level
//	-f string   log format (console or json)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "feed_url": "https://empllo.com/api/v1",
//	  "db_path": "jobkeeper.db",
//	  "fetch_timeout": "10s",
//	  "sync_interval": "2s",
//	  "feed_cache_ttl": "1m",
//	  "feed_cache_mb": 8,
//	  "log_level": "info",
//	  "log_format": "console"
//	}
//
// This package does not read environment variables.
package config
