package config

import (
	"flag"
	"os"

	"github.com/askgita/askgita/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-d string   SQLite DSN for the local cache (default from Config)
//	-l string   default answer language (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the backend server")
	fs.StringVar(&cfg.CacheDSN, "d", cfg.CacheDSN, "SQLite DSN for the local session cache")
	fs.StringVar(&cfg.Language, "l", cfg.Language, "default answer language (english or hindi)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
