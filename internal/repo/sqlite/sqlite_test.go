package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"

	"github.com/hamed0406/runnercheck/internal/domain"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history", "scans.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_SaveLatestList(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	if r, err := s.Latest(ctx); err != nil || r != nil {
		t.Fatalf("empty db: want nil,nil got %v,%v", r, err)
	}

	t0 := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	first := &domain.ScanReport{
		RunID: "R1", StartedAt: t0, FinishedAt: t0.Add(time.Second),
		Categories: []domain.CategoryResult{
			{Category: "Git LFS", Outcomes: []domain.Outcome{
				{Domain: "github-cloud.githubusercontent.com", Success: true, Message: "Accessible (HTTPS) - IP: 1.1.1.1"},
			}},
		},
	}
	second := &domain.ScanReport{
		RunID: "R2", StartedAt: t0.Add(time.Hour), FinishedAt: t0.Add(time.Hour + time.Second),
		Categories: []domain.CategoryResult{
			{Category: "Zeta", Outcomes: []domain.Outcome{{Domain: "z.example", Success: false, Message: "DNS resolution failed"}}},
			{Category: "Alpha", Outcomes: []domain.Outcome{{Domain: "a.example", Success: true, Message: "ok"}}},
		},
	}
	for _, r := range []*domain.ScanReport{first, second} {
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save %s: %v", r.RunID, err)
		}
	}

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	opt := cmpopts.IgnoreFields(domain.Outcome{}, "IP", "HTTPStatus", "LatencyMS")
	if diff := cmp.Diff(second, got, opt); diff != "" {
		t.Fatalf("Latest mismatch (-want +got):\n%s", diff)
	}

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].RunID != "R2" || list[1].RunID != "R1" {
		t.Fatalf("want newest first, got %+v", list)
	}
	if list[0].AllReachable || list[0].Failures != 1 || !list[1].AllReachable {
		t.Fatalf("summary flags wrong: %+v", list)
	}

	limited, _ := s.List(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("limit not applied: %+v", limited)
	}
}

func TestSQLiteStore_DuplicateRunIDFails(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	r := &domain.ScanReport{RunID: "dup", StartedAt: time.Now()}
	if err := s.Save(ctx, r); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.Save(ctx, r); err == nil {
		t.Fatalf("expected primary key violation on second save")
	}
}

func TestSQLiteStore_Alerts(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	rec, err := s.Get(ctx, "k")
	if err != nil || rec != nil {
		t.Fatalf("expected nil, got %+v err=%v", rec, err)
	}
	if err := s.Set(ctx, "k", false, time.Time{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	rec, err = s.Get(ctx, "k")
	if err != nil || rec == nil || rec.LastState || rec.LastSentAt != nil {
		t.Fatalf("unexpected: %+v err=%v", rec, err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	if err := s.Set(ctx, "k", true, now); err != nil {
		t.Fatalf("set2: %v", err)
	}
	rec, _ = s.Get(ctx, "k")
	if rec == nil || !rec.LastState || rec.LastSentAt == nil || !rec.LastSentAt.Equal(now) {
		t.Fatalf("unexpected2: %+v", rec)
	}
}
