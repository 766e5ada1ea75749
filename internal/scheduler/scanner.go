package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/runnercheck/internal/catalog"
	"github.com/hamed0406/runnercheck/internal/domain"
	"github.com/hamed0406/runnercheck/internal/probe"
)

const DefaultWorkers = 10

// Scanner probes every host of a catalog through a fixed-size worker pool.
type Scanner struct {
	Logger  *zap.Logger
	Checker probe.Checker
	Workers int
	Now     func() time.Time
}

func NewScanner(logger *zap.Logger, checker probe.Checker, workers int) *Scanner {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Scanner{
		Logger:  logger,
		Checker: checker,
		Workers: workers,
		Now:     time.Now,
	}
}

type job struct {
	cat, slot int
	category  string
	host      string
}

// Scan runs one full pass. Probes execute in any order; each writes only its
// own slot so the report comes out in catalog order with wildcard expansions
// in place. Every category is present and no failure stops the scan.
func (s *Scanner) Scan(ctx context.Context, cat catalog.Catalog) *domain.ScanReport {
	rep := &domain.ScanReport{
		RunID:      domain.RunID(uuid.NewString()),
		StartedAt:  s.Now(),
		Categories: make([]domain.CategoryResult, len(cat)),
	}

	var jobs []job
	for ci, c := range cat {
		hosts := c.Hosts()
		rep.Categories[ci] = domain.CategoryResult{
			Category: c.Name,
			Outcomes: make([]domain.Outcome, len(hosts)),
		}
		for hi, h := range hosts {
			jobs = append(jobs, job{cat: ci, slot: hi, category: c.Name, host: h})
		}
	}

	log := s.Logger.With(zap.String("run_id", string(rep.RunID)))
	log.Info("scan_started", zap.Int("categories", len(cat)), zap.Int("hosts", len(jobs)), zap.Int("workers", s.Workers))

	sem := make(chan struct{}, s.Workers)
	var wg sync.WaitGroup

	for _, j := range jobs {
		j := j
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()

			out := s.check(ctx, log, j.host)
			rep.Categories[j.cat].Outcomes[j.slot] = domain.Outcome{
				Domain:     j.host,
				Success:    out.Success,
				Message:    out.Message,
				IP:         out.IP,
				HTTPStatus: out.StatusCode,
				LatencyMS:  out.LatencyMS,
			}

			fields := []zap.Field{
				zap.String("category", j.category),
				zap.String("domain", j.host),
				zap.Bool("success", out.Success),
				zap.String("ip", out.IP),
				zap.Int("status", out.StatusCode),
				zap.String("dns_class", out.DNSClass),
				zap.Float64("latency_ms", out.LatencyMS),
				zap.String("message", out.Message),
			}
			if out.Success {
				log.Debug("probe_done", fields...)
			} else {
				log.Warn("probe_failed", fields...)
			}
		}()
	}

	wg.Wait()
	rep.FinishedAt = s.Now()

	log.Info("scan_finished",
		zap.Bool("all_reachable", rep.AllReachable()),
		zap.Duration("elapsed", rep.FinishedAt.Sub(rep.StartedAt)),
	)
	return rep
}

// check turns a panicking checker into an ordinary failed result so one
// host can't take the whole scan down.
func (s *Scanner) check(ctx context.Context, log *zap.Logger, host string) (res probe.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("probe_panic",
				zap.String("domain", host),
				zap.String("panic", fmt.Sprintf("%v", r)),
				zap.ByteString("stack", debug.Stack()),
			)
			res = probe.Result{Domain: host, Message: fmt.Sprintf("Error: %v", r)}
		}
	}()
	return s.Checker.Check(ctx, host)
}
