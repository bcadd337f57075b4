package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/docvault/internal/devserver"
	"github.com/dmitrijs2005/docvault/internal/devserver/config"
	"github.com/dmitrijs2005/docvault/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	if err := devserver.New(cfg, logger).Run(ctx); err != nil {
		logger.Error(ctx, "dev server failed", "error", err)
		os.Exit(1)
	}

}
