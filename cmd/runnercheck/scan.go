package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hamed0406/runnercheck/internal/app"
	"github.com/hamed0406/runnercheck/internal/domain"
	"github.com/hamed0406/runnercheck/internal/report"
)

// runScan is the default action. Unreachable endpoints do not change the
// exit status; only fatal errors do.
func runScan(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nChecking domain accessibility... Please wait...")

	color := report.ColorEnabled(os.Stdout, cfg.NoColor)
	c.Runner.OnReport = func(rep *domain.ScanReport) {
		text, _ := report.Render(rep, report.Options{Color: color})
		fmt.Fprintln(out, text)
	}
	res, err := c.Runner.Run(ctx)
	if err != nil {
		return err
	}

	if res.ArtifactPath != "" {
		fmt.Fprintf(out, "\nDetailed results saved to: %s\n", res.ArtifactPath)
	}
	if res.SinkErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", res.SinkErr)
	}
	return nil
}
