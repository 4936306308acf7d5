// Package config loads runtime configuration for the sharejoy CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-backend string       memory | sqlite | postgres | s3
//	-data-dir string      directory for the SQLite file
//	-sqlite-file string   SQLite file name (or :memory:)
//	-d string             Postgres DSN
//	-s3-bucket, -s3-region, -s3-endpoint, -s3-user, -s3-password, -s3-prefix
//	-passphrase string    encrypt stored values with this passphrase
//	-seed string          YAML file of accounts to create at start-up
//	-log-format string    text | json | zap
//	-log-level string     debug | info | warn | error
//	-t int                per-command timeout (seconds)
//
// # JSON schema
//
// Durations use timex.Duration, so "10s" and integer nanoseconds both work.
// Absent keys keep the default:
//
//	{
//	  "storage_backend": "sqlite",
//	  "data_dir": "/var/lib/sharejoy",
//	  "sqlite_file": "sharejoy.db",
//	  "operation_timeout": "10s"
//	}
//
// Environment variables are not read.
package config
