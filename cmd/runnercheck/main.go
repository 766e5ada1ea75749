// Package main is the runnercheck CLI.
//
// Running it with no subcommand probes every endpoint a self-hosted GitHub
// Actions runner needs, prints a per-category table and writes the results
// to domain_check_results_<timestamp>.json.
//
// Usage:
//
//	runnercheck                      # one scan
//	runnercheck serve                # HTTP API with periodic rescans
//	runnercheck history --limit 10   # stored scan summaries
//	runnercheck catalog              # endpoints that will be probed
//	runnercheck version
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/runnercheck/internal/config"
	"github.com/hamed0406/runnercheck/internal/logging"
)

// Set via ldflags: -X main.version=1.0.0
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "runnercheck",
	Short: "Check network access to GitHub Actions runner endpoints",
	Long: `runnercheck resolves and connects to every domain a self-hosted
GitHub Actions runner needs and reports which ones are reachable.

Configuration comes from environment variables, optionally overlaid by a
YAML file (--config), then by flags.`,
	SilenceUsage: true,
	RunE:         runScan,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "path to YAML config file")
	pf.String("log-dir", "", "directory for runnercheck.log (default $LOG_DIR or ./logs)")

	f := rootCmd.Flags()
	f.Duration("timeout", 0, "per-probe timeout, e.g. 5s")
	f.Int("workers", 0, "number of concurrent probes")
	f.String("output-dir", "", "where the JSON results file is written")
	f.Bool("no-color", false, "disable ANSI colors")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "runnercheck %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	},
}

// loadConfig resolves env, then the YAML file, then any flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Read(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-dir") {
		cfg.LogDir, _ = flags.GetString("log-dir")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("no-color") {
		cfg.NoColor, _ = flags.GetBool("no-color")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, nil, err
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Info("startup",
		zap.String("command", cmd.Name()),
		zap.String("version", version),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("workers", cfg.Workers),
		zap.Time("at", time.Now()),
	)
	return cfg, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
