package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/runnercheck/internal/catalog"
	"github.com/hamed0406/runnercheck/internal/domain"
	"github.com/hamed0406/runnercheck/internal/report"
	"github.com/hamed0406/runnercheck/internal/repo"
)

// Scanner is satisfied by scheduler.Scanner.
type Scanner interface {
	Scan(ctx context.Context, cat catalog.Catalog) *domain.ScanReport
}

// Evaluator is satisfied by scheduler.Alerter.
type Evaluator interface {
	Evaluate(ctx context.Context, rep *domain.ScanReport) error
}

// Runner performs one invocation: scan, write the artifact, then hand the
// report to history and alerting.
type Runner struct {
	Logger    *zap.Logger
	Scanner   Scanner
	Catalog   catalog.Catalog
	Store     repo.ReportStore // optional
	Alerter   Evaluator        // optional
	OutputDir string           // empty skips the artifact
	Now       func() time.Time

	// OnReport, if set, receives the report before it is persisted.
	OnReport func(*domain.ScanReport)
}

type Result struct {
	Report       *domain.ScanReport
	ArtifactPath string
	// SinkErr collects store/alert failures. They are logged and never
	// change the outcome of the run.
	SinkErr error
}

// Run returns an error when the scan was cancelled or the artifact could
// not be written. A cancelled scan is neither persisted nor alerted on.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	rep := r.Scanner.Scan(ctx, r.Catalog)
	res := Result{Report: rep}
	log := r.Logger.With(zap.String("run_id", string(rep.RunID)))

	if err := ctx.Err(); err != nil {
		log.Warn("scan_aborted", zap.Error(err))
		return res, fmt.Errorf("scan aborted: %w", err)
	}
	if r.OnReport != nil {
		r.OnReport(rep)
	}

	if r.OutputDir != "" {
		path, err := report.WriteJSON(r.OutputDir, rep, r.now())
		if err != nil {
			log.Error("artifact_write_error", zap.String("dir", r.OutputDir), zap.Error(err))
			return res, fmt.Errorf("write results: %w", err)
		}
		res.ArtifactPath = path
		log.Info("artifact_written", zap.String("path", path))
	}

	if r.Store != nil {
		if err := r.Store.Save(ctx, rep); err != nil {
			log.Warn("store_save_error", zap.Error(err))
			res.SinkErr = multierr.Append(res.SinkErr, fmt.Errorf("save report: %w", err))
		}
	}
	if r.Alerter != nil {
		if err := r.Alerter.Evaluate(ctx, rep); err != nil {
			log.Warn("notify_error", zap.Error(err))
			res.SinkErr = multierr.Append(res.SinkErr, err)
		}
	}
	return res, nil
}

// Pass adapts Run to scheduler.Pass for the serve loop.
func (r *Runner) Pass(ctx context.Context) error {
	res, err := r.Run(ctx)
	if err != nil {
		return err
	}
	return res.SinkErr
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
