package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/hamed0406/runnercheck/internal/app"
	"github.com/hamed0406/runnercheck/internal/config"
	"github.com/hamed0406/runnercheck/internal/logging"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	if err := c.Serve(ctx); err != nil {
		log.Fatal(err)
	}
}
