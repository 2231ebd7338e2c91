// Package config loads runtime configuration for the storagesync binary.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. STORAGESYNC_* environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string          SQLite database path
//	-primary           run as the primary device
//	-aci string        local account ACI (required)
//	-pni string        local account PNI
//	-phone string      local phone number
//	-bucket string     S3 bucket; without it an in-memory store is used
//	-region string     S3 region
//	-endpoint string   custom S3 endpoint
//	-prefix string     object key prefix
//	-schedule string   cron expression for repeated passes
//	-timeout duration  timeout for one pass
//	-log-level string
//	-log-format string
//
// # JSON schema
//
// Durations use timex.Duration, so "90s" and integer nanoseconds both work:
//
//	{
//	  "database_dsn": "/var/lib/storagesync/state.db",
//	  "local_aci": "9d0652a3-dcc3-4d11-975f-74d61598733f",
//	  "s3_bucket": "storage-sync",
//	  "sync_schedule": "@every 5m",
//	  "sync_timeout": "90s"
//	}
//
// S3 credentials are best supplied through STORAGESYNC_S3_ACCESS_KEY and
// STORAGESYNC_S3_SECRET_KEY; there are no flags for them.
package config
