package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the Bill Board client.
//
// Fields:
//   - APIBaseURL: root URL of the Bill Board HTTP API.
//   - RequestTimeout: upper bound for a single backend or identity request.
//   - OnlineCheckInterval: how often the CLI probes /health.
//   - Cognito*: user pool coordinates used by the identity client.
//   - CatalogDSN: SQLite DSN of the local bill catalog; empty means
//     "<user config dir>/billboard/catalog.db".
//   - RecommendationsLimit / SearchLimit: default result sizes.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration

	OnlineCheckInterval time.Duration

	CognitoRegion       string
	CognitoUserPoolID   string
	CognitoClientID     string
	CognitoClientSecret string
	CognitoEndpoint     string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string

	CatalogDSN string

	RecommendationsLimit int
	SearchLimit          int

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 30 * time.Second
	c.CognitoRegion = "ca-central-1"
	c.RecommendationsLimit = 5
	c.SearchLimit = 3
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
