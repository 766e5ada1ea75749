package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/runnercheck/internal/catalog"
	"github.com/hamed0406/runnercheck/internal/config"
	"github.com/hamed0406/runnercheck/internal/domain"
	"github.com/hamed0406/runnercheck/internal/report"
	"github.com/hamed0406/runnercheck/internal/repo/memory"
)

// --- fakes ---

type fixedScanner struct{ rep *domain.ScanReport }

func (f *fixedScanner) Scan(ctx context.Context, cat catalog.Catalog) *domain.ScanReport {
	return f.rep
}

type failingStore struct{ *memory.Store }

func (failingStore) Save(context.Context, *domain.ScanReport) error { return errors.New("disk full") }

type evalFunc func(context.Context, *domain.ScanReport) error

func (f evalFunc) Evaluate(ctx context.Context, r *domain.ScanReport) error { return f(ctx, r) }

func fixedReport() *domain.ScanReport {
	return &domain.ScanReport{
		RunID:     "R1",
		StartedAt: time.Now(),
		Categories: []domain.CategoryResult{{
			Category: "Dependabot",
			Outcomes: []domain.Outcome{{Domain: "dependabot-actions.githubapp.com", Success: true, Message: "ok"}},
		}},
	}
}

// --- tests ---

func TestRunner_WritesArtifactAndSaves(t *testing.T) {
	dir := t.TempDir()
	store := memory.New()
	evaluated := false
	r := &Runner{
		Logger:    zap.NewNop(),
		Scanner:   &fixedScanner{rep: fixedReport()},
		Store:     store,
		Alerter:   evalFunc(func(context.Context, *domain.ScanReport) error { evaluated = true; return nil }),
		OutputDir: dir,
		Now:       func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) },
	}
	res, err := r.Run(context.Background())
	if err != nil || res.SinkErr != nil {
		t.Fatalf("Run: %v / %v", err, res.SinkErr)
	}
	if res.ArtifactPath != filepath.Join(dir, "domain_check_results_20250304_050607.json") {
		t.Fatalf("unexpected artifact path %q", res.ArtifactPath)
	}
	back, err := report.ReadJSON(res.ArtifactPath)
	if err != nil || len(back.Categories) != 1 {
		t.Fatalf("artifact unreadable: %v %+v", err, back)
	}
	latest, _ := store.Latest(context.Background())
	if latest == nil || latest.RunID != "R1" {
		t.Fatalf("report not saved: %+v", latest)
	}
	if !evaluated {
		t.Fatalf("alerter not called")
	}
}

func TestRunner_SinkErrorsAreNotFatal(t *testing.T) {
	r := &Runner{
		Logger:  zap.NewNop(),
		Scanner: &fixedScanner{rep: fixedReport()},
		Store:   failingStore{memory.New()},
		Alerter: evalFunc(func(context.Context, *domain.ScanReport) error { return errors.New("slack down") }),
	}
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("sink failures must not be fatal: %v", err)
	}
	if len(multierr.Errors(res.SinkErr)) != 2 {
		t.Fatalf("want both sink errors, got %v", res.SinkErr)
	}
	if res.Report == nil || res.ArtifactPath != "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if r.Pass(context.Background()) == nil {
		t.Fatalf("Pass should surface sink errors to the loop logger")
	}
}

func TestRunner_CancelledScanIsNotPersisted(t *testing.T) {
	dir := t.TempDir()
	store := memory.New()
	evaluated, reported := false, false
	r := &Runner{
		Logger:    zap.NewNop(),
		Scanner:   &fixedScanner{rep: fixedReport()},
		Store:     store,
		Alerter:   evalFunc(func(context.Context, *domain.ScanReport) error { evaluated = true; return nil }),
		OutputDir: dir,
		OnReport:  func(*domain.ScanReport) { reported = true },
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("artifact written for a cancelled scan: %v", entries)
	}
	if latest, _ := store.Latest(context.Background()); latest != nil {
		t.Fatalf("cancelled scan saved: %+v", latest)
	}
	if evaluated || reported {
		t.Fatalf("cancelled scan reached alerter=%v renderer=%v", evaluated, reported)
	}
}

func TestRunner_ArtifactFailureIsFatal(t *testing.T) {
	// a regular file where the output directory should be
	blocker := filepath.Join(t.TempDir(), "out")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := memory.New()
	var printed *domain.ScanReport
	r := &Runner{
		Logger:    zap.NewNop(),
		Scanner:   &fixedScanner{rep: fixedReport()},
		Store:     store,
		OutputDir: blocker,
		OnReport:  func(rep *domain.ScanReport) { printed = rep },
	}
	if _, err := r.Run(context.Background()); err == nil {
		t.Fatalf("expected artifact error")
	}
	if printed == nil || printed.RunID != "R1" {
		t.Fatalf("report should reach the console before the write fails")
	}
}

func TestBuild_DefaultsToMemoryStore(t *testing.T) {
	cfg := config.Config{Timeout: time.Second, Workers: 2, OutputDir: t.TempDir()}
	c, err := Build(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer c.Close()
	if _, ok := c.Reports.(*memory.Store); !ok {
		t.Fatalf("want memory store, got %T", c.Reports)
	}
	if c.Runner.Alerter != nil {
		t.Fatalf("alerter should be off without a webhook")
	}
	if c.Scanner.Workers != 2 || c.Prober.Timeout != time.Second {
		t.Fatalf("config not applied: workers=%d timeout=%s", c.Scanner.Workers, c.Prober.Timeout)
	}
}

func TestBuild_SQLiteWithSlack(t *testing.T) {
	cfg := config.Config{
		Timeout:      time.Second,
		Workers:      1,
		HistoryDB:    filepath.Join(t.TempDir(), "h.db"),
		SlackWebhook: "https://hooks.example/x",
	}
	c, err := Build(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer c.Close()
	if _, ok := c.Reports.(*memory.Store); ok {
		t.Fatalf("want sqlite store")
	}
	if c.Runner.Alerter == nil {
		t.Fatalf("alerter should be wired with a webhook")
	}
}

func TestContainer_HandlerServesLatestAfterScan(t *testing.T) {
	store := memory.New()
	c := &Container{
		Config:  config.Config{AdminAPIKeys: []string{"adm"}},
		Logger:  zap.NewNop(),
		Catalog: catalog.Default(),
		Reports: store,
		Runner: &Runner{
			Logger:  zap.NewNop(),
			Scanner: &fixedScanner{rep: fixedReport()},
			Store:   store,
		},
	}
	h := c.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/scans", nil)
	req.Header.Set("X-API-Key", "adm")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("scan: want 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/reports/latest", nil)
	req.Header.Set("X-API-Key", "adm")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("X-Run-ID") != "R1" {
		t.Fatalf("latest: %d %v", rec.Code, rec.Header())
	}
}
