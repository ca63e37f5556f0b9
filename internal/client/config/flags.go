package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/jobkeeper/internal/flagx"
)

var knownFlags = []string{"-u", "-d", "-t", "-s", "-k", "-m", "-l", "-f"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-u string   job feed URL
//	-d string   database file path
//	-t int      feed fetch timeout (seconds)
//	-s int      store sync interval (seconds, 0 disables polling)
//	-k int      feed cache TTL (seconds, 0 disables caching)
//	-m int      feed cache size (MB)
//	-l string   log level
//	-f string   log format: console or json
//
// Arguments not in the list above are filtered out with flagx.FilterArgs so
// that the -c config flag does not trip the parser.
func parseFlags(cfg *Config, osArgs []string) {
	args := flagx.FilterArgs(osArgs, knownFlags)

	fs := flag.NewFlagSet("jobkeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.FeedURL, "u", cfg.FeedURL, "job feed URL")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "database file path")
	fetchTimeout := fs.Int("t", int(cfg.FetchTimeout.Seconds()), "feed fetch timeout (in seconds)")
	syncInterval := fs.Int("s", int(cfg.SyncInterval.Seconds()), "store sync interval (in seconds)")
	cacheTTL := fs.Int("k", int(cfg.FeedCacheTTL.Seconds()), "feed cache TTL (in seconds)")
	fs.IntVar(&cfg.FeedCacheMB, "m", cfg.FeedCacheMB, "feed cache size (in MB)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format: console, json")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.FetchTimeout = time.Duration(*fetchTimeout) * time.Second
	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
	cfg.FeedCacheTTL = time.Duration(*cacheTTL) * time.Second
}
