package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/docvault/internal/flagx"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds runtime settings for the docvault CLI.
type Config struct {
	ServerURL         string        `yaml:"server_url" env:"DOCVAULT_SERVER_URL"`
	RequestTimeout    time.Duration `yaml:"request_timeout" env:"DOCVAULT_REQUEST_TIMEOUT"`
	SecretsDSN        string        `yaml:"secrets_dsn" env:"DOCVAULT_SECRETS_DSN"`
	SecretsPassphrase string        `yaml:"secrets_passphrase" env:"DOCVAULT_SECRETS_PASSPHRASE"`
	LogLevel          string        `yaml:"log_level" env:"DOCVAULT_LOG_LEVEL"`
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 15 * time.Second
	c.SecretsDSN = "docvault.db"
	c.SecretsPassphrase = ""
	c.LogLevel = "info"
}

// Load builds a Config from defaults, the optional YAML file, the
// environment and finally args (usually os.Args[1:]).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFileFlag(args); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
		// ReadConfig overlays the environment on top of the file.
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
