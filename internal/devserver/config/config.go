// Package config loads settings for the docvault development server:
// defaults, then an optional YAML file (-c/-config), then DOCVAULT_DEV_*
// environment variables, then flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/docvault/internal/flagx"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds runtime settings for the dev server.
//
// Fields:
//   - Addr: HTTP listen address.
//   - SecretKey: HMAC secret for signing access tokens (HS256). Development only.
//   - AccessTokenTTL / RefreshTokenTTL: token lifetimes. The access lifetime
//     is short by default so clients exercise renewal.
type Config struct {
	Addr            string        `yaml:"addr" env:"DOCVAULT_DEV_ADDR"`
	SecretKey       string        `yaml:"secret_key" env:"DOCVAULT_DEV_SECRET_KEY"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"DOCVAULT_DEV_ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"DOCVAULT_DEV_REFRESH_TOKEN_TTL"`
	LogLevel        string        `yaml:"log_level" env:"DOCVAULT_DEV_LOG_LEVEL"`
}

// LoadDefaults populates c with development defaults.
// NOTE: the secret is public; never expose the dev server.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.SecretKey = "secretKey"
	c.AccessTokenTTL = 30 * time.Second
	c.RefreshTokenTTL = 24 * time.Hour
	c.LogLevel = "info"
}

// Load builds a Config from defaults, file, environment and args.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFileFlag(args); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("secret key must not be empty")
	}
	return cfg, nil
}
