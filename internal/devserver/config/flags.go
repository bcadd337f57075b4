package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/docvault/internal/flagx"
)

// parseFlags overlays cfg with:
//
//	-a string     listen address (e.g. ":8080")
//	-s string     JWT HMAC secret key
//	-t duration   access token lifetime
//	-r duration   refresh token lifetime
//	-l string     log level
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-r", "-l"})

	fs := flag.NewFlagSet("devserver", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to run server")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	fs.DurationVar(&cfg.AccessTokenTTL, "t", cfg.AccessTokenTTL, "access token lifetime")
	fs.DurationVar(&cfg.RefreshTokenTTL, "r", cfg.RefreshTokenTTL, "refresh token lifetime")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
