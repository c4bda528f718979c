package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/billboard/internal/flagx"
)

var knownFlags = []string{"-api", "-t", "-i", "-region", "-pool", "-client-id", "-endpoint", "-db", "-log"}

// parseFlags populates selected Config fields from command-line flags.
//
// args are filtered with flagx.FilterArgs first so flags owned by other
// components (e.g. -c) do not interfere. Panics on malformed values.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "base URL of the Bill Board API")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.CognitoRegion, "region", cfg.CognitoRegion, "Cognito region")
	fs.StringVar(&cfg.CognitoUserPoolID, "pool", cfg.CognitoUserPoolID, "Cognito user pool id")
	fs.StringVar(&cfg.CognitoClientID, "client-id", cfg.CognitoClientID, "Cognito app client id")
	fs.StringVar(&cfg.CognitoEndpoint, "endpoint", cfg.CognitoEndpoint, "Cognito endpoint override")
	fs.StringVar(&cfg.CatalogDSN, "db", cfg.CatalogDSN, "local catalog DSN")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
}
