package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hamed0406/runnercheck/internal/app"
	"github.com/hamed0406/runnercheck/internal/domain"
)

var historyCmd = &cobra.Command{
	Use:          "history",
	Short:        "List stored scans, newest first",
	SilenceUsage: true,
	RunE:         runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of scans to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.DatabaseURL == "" && cfg.HistoryDB == "" {
		return fmt.Errorf("no history store configured: set HISTORY_DB or DATABASE_URL")
	}
	ctx := context.Background()
	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	list, err := c.Reports.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("list scans: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No scans recorded yet.")
		return nil
	}
	printHistory(cmd, list)
	return nil
}

func printHistory(cmd *cobra.Command, list []domain.Summary) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tWHEN\tDURATION\tSTATUS\tFAILURES")
	for _, s := range list {
		status := "✓ all reachable"
		if !s.AllReachable {
			status = "✗ unreachable"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s/%s\n",
			s.RunID,
			humanize.Time(s.StartedAt),
			s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond),
			status,
			humanize.Comma(int64(s.Failures)),
			humanize.Comma(int64(s.Total)),
		)
	}
	_ = tw.Flush()
}
