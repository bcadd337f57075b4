package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/docvault/internal/flagx"
)

// parseFlags overlays cfg with the flags it knows about; anything else in
// args is left for other components.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-d", "-l"})

	fs := flag.NewFlagSet("docvault", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the docvault API")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.SecretsDSN, "d", cfg.SecretsDSN, "path of the local secrets database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
