// Package config loads runtime configuration for the Bill Board client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-api string            base URL of the Bill Board API
//	-t int                 request timeout (seconds)
//	-region string         Cognito region
//	-pool string           Cognito user pool id
//	-client-id string      Cognito app client id
//	-endpoint string       Cognito endpoint override (local emulators)
//	-db string             local catalog DSN
//	-log string            log level
//
// # JSON schema
//
// Durations may be strings like "10s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://api.billboard.example",
//	  "request_timeout": "10s",
//	  "cognito_region": "ca-central-1",
//	  "cognito_user_pool_id": "ca-central-1_AbCdEf",
//	  "cognito_client_id": "3n4b5c6d7e",
//	  "cognito_client_secret": "",
//	  "cognito_endpoint": "",
//	  "aws_access_key_id": "",
//	  "aws_secret_access_key": "",
//	  "catalog_dsn": "",
//	  "recommendations_limit": 5,
//	  "search_limit": 3,
//	  "log_level": "info"
//	}
//
// Secrets (client secret, access keys) are accepted only from JSON so they do
// not end up in shell history.
package config
