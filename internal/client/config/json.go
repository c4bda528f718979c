package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/billboard/internal/flagx"
	"github.com/dmitrijs2005/billboard/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	APIBaseURL           string         `json:"api_base_url"`
	RequestTimeout       timex.Duration `json:"request_timeout"`
	OnlineCheckInterval  timex.Duration `json:"online_check_interval"`
	CognitoRegion        string         `json:"cognito_region"`
	CognitoUserPoolID    string         `json:"cognito_user_pool_id"`
	CognitoClientID      string         `json:"cognito_client_id"`
	CognitoClientSecret  string         `json:"cognito_client_secret"`
	CognitoEndpoint      string         `json:"cognito_endpoint"`
	AWSAccessKeyID       string         `json:"aws_access_key_id"`
	AWSSecretAccessKey   string         `json:"aws_secret_access_key"`
	CatalogDSN           string         `json:"catalog_dsn"`
	RecommendationsLimit int            `json:"recommendations_limit"`
	SearchLimit          int            `json:"search_limit"`
	LogLevel             string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c/-config. Zero values in the file leave the current setting untouched.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigFilePath(args)
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

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.CognitoRegion, jc.CognitoRegion)
	setString(&cfg.CognitoUserPoolID, jc.CognitoUserPoolID)
	setString(&cfg.CognitoClientID, jc.CognitoClientID)
	setString(&cfg.CognitoClientSecret, jc.CognitoClientSecret)
	setString(&cfg.CognitoEndpoint, jc.CognitoEndpoint)
	setString(&cfg.AWSAccessKeyID, jc.AWSAccessKeyID)
	setString(&cfg.AWSSecretAccessKey, jc.AWSSecretAccessKey)
	setString(&cfg.CatalogDSN, jc.CatalogDSN)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RecommendationsLimit > 0 {
		cfg.RecommendationsLimit = jc.RecommendationsLimit
	}
	if jc.SearchLimit > 0 {
		cfg.SearchLimit = jc.SearchLimit
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
