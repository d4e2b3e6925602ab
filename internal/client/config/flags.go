package config

import (
	"flag"
	"os"
	"time"

	"github.com/sharmaronit/mindspend-labs/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-s string   base URL of the hosted service
//	-k string   public project key
//	-b string   base URL of the companion account backend
//	-d string   path to the local cache database
//	-t int      HTTP timeout in seconds
//	-l string   log level (debug, info, warn, error)
//
// os.Args is filtered to the flags handled here so other components' flags
// do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-k", "-b", "-d", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServiceURL, "s", cfg.ServiceURL, "base URL of the hosted service")
	fs.StringVar(&cfg.ServiceKey, "k", cfg.ServiceKey, "public project key")
	fs.StringVar(&cfg.AccountAPIURL, "b", cfg.AccountAPIURL, "base URL of the account backend")
	fs.StringVar(&cfg.CacheDBPath, "d", cfg.CacheDBPath, "path to the local cache database")
	timeout := fs.Int("t", int(cfg.HTTPTimeout.Seconds()), "HTTP timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return
	}

	cfg.HTTPTimeout = time.Duration(*timeout) * time.Second
}
