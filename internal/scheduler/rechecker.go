package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pass is one full scan-and-persist cycle, usually app.Runner.Run.
type Pass func(ctx context.Context) error

// Rescanner repeats a Pass on an interval until ctx is cancelled.
type Rescanner struct {
	Logger   *zap.Logger
	Pass     Pass
	Interval time.Duration
}

func NewRescanner(logger *zap.Logger, pass Pass, interval time.Duration) *Rescanner {
	if interval < 0 {
		interval = 0
	}
	return &Rescanner{Logger: logger, Pass: pass, Interval: interval}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *Rescanner) Run(ctx context.Context) {
	if r.Interval == 0 {
		// disabled
		r.Logger.Info("rescanner_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	// immediate pass
	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("rescanner_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Rescanner) runOnce(ctx context.Context) {
	if err := r.Pass(ctx); err != nil {
		r.Logger.Warn("rescan_error", zap.Error(err))
	}
}
