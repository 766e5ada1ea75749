package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/runnercheck/internal/catalog"
	"github.com/hamed0406/runnercheck/internal/config"
	"github.com/hamed0406/runnercheck/internal/notify"
	"github.com/hamed0406/runnercheck/internal/probe"
	"github.com/hamed0406/runnercheck/internal/repo"
	"github.com/hamed0406/runnercheck/internal/repo/memory"
	pg "github.com/hamed0406/runnercheck/internal/repo/postgres"
	"github.com/hamed0406/runnercheck/internal/repo/sqlite"
	"github.com/hamed0406/runnercheck/internal/scheduler"
)

// Container wires the scan pipeline from configuration.
type Container struct {
	Config  config.Config
	Logger  *zap.Logger
	Catalog catalog.Catalog
	Prober  *probe.Prober
	Scanner *scheduler.Scanner
	Reports repo.ReportStore
	Alerts  repo.AlertStore
	Runner  *Runner

	closers []func()
}

// Build constructs the dependency graph. Postgres wins over SQLite; with
// neither configured history lives in memory for the life of the process.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Catalog: catalog.Default(),
		Prober:  probe.NewProber(cfg.Timeout),
	}
	c.Scanner = scheduler.NewScanner(logger, c.Prober, cfg.Workers)
	c.closers = append(c.closers, c.Prober.HTTPS.CloseIdle)

	switch {
	case cfg.DatabaseURL != "":
		s, err := pg.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		c.Reports, c.Alerts = s, s
		c.closers = append(c.closers, s.Close)
		logger.Info("store_selected", zap.String("kind", "postgres"))
	case cfg.HistoryDB != "":
		s, err := sqlite.Open(cfg.HistoryDB, logger)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		c.Reports, c.Alerts = s, s
		c.closers = append(c.closers, func() { _ = s.Close() })
		logger.Info("store_selected", zap.String("kind", "sqlite"), zap.String("path", s.Path()))
	default:
		s := memory.New()
		c.Reports, c.Alerts = s, s
		logger.Info("store_selected", zap.String("kind", "memory"))
	}

	c.Runner = &Runner{
		Logger:    logger,
		Scanner:   c.Scanner,
		Catalog:   c.Catalog,
		Store:     c.Reports,
		OutputDir: cfg.OutputDir,
	}
	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		c.Runner.Alerter = scheduler.NewAlerter(c.Alerts, notify.Multi{slack}, scheduler.AlerterConfig{
			AlertOnRecovery: cfg.AlertOnRecovery,
			Cooldown:        cfg.AlertCooldown,
		})
	}
	return c, nil
}

// Close releases stores and pooled connections in reverse order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
