// Package config loads runtime configuration for the docvault CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional YAML file selected with -c or -config.
//  3. DOCVAULT_* environment variables.
//  4. Command-line flags (see parseFlags).
//
// Supported flags
//
//	-a string     base URL of the docvault API
//	-t duration   per-request timeout, e.g. 15s
//	-d string     path of the local secrets database
//	-l string     log level: debug, info, warn, error
//
// # YAML schema
//
//	server_url: http://127.0.0.1:8080
//	request_timeout: 15s
//	secrets_dsn: docvault.db
//	secrets_passphrase: ""
//	log_level: info
//
// The passphrase that seals the secrets database is deliberately not a flag;
// set it in the file or in DOCVAULT_SECRETS_PASSPHRASE.
package config
