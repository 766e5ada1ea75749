package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/runnercheck/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and rescan on an interval",
	Long: `Start the runnercheck API.

The server rescans every SCAN_INTERVAL_MS (0 disables the loop), keeps
history in the configured store and notifies Slack on reachability changes.
It runs until interrupted (Ctrl+C) or SIGTERM.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default $API_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if cmd.Flags().Changed("addr") {
		cfg.Addr, _ = cmd.Flags().GetString("addr")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	logger.Info("serve_start",
		zap.String("addr", cfg.Addr),
		zap.Duration("scan_interval", cfg.ScanInterval),
	)
	return c.Serve(ctx)
}
