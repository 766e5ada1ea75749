package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/runnercheck/internal/domain"
)

func TestPostgresStore_Save_Latest_List(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	defer store.Close()

	// unique run id per test run so reruns don't collide on the primary key
	runID := domain.RunID(fmt.Sprintf("test-%d", time.Now().UTC().UnixNano()))
	// far future so it sorts as latest regardless of existing rows
	started := time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC)
	want := &domain.ScanReport{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Categories: []domain.CategoryResult{
			{Category: "Runner Updates", Outcomes: []domain.Outcome{
				{Domain: "objects.githubusercontent.com", Success: true, Message: "Accessible (HTTPS) - IP: 1.2.3.4", IP: "1.2.3.4", HTTPStatus: 200, LatencyMS: 12},
			}},
			{Category: "Dependabot", Outcomes: []domain.Outcome{
				{Domain: "dependabot-actions.githubapp.com", Success: false, Message: "DNS resolution failed"},
			}},
		},
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	defer store.pool.Exec(ctx, `DELETE FROM scans WHERE run_id=$1`, string(runID))

	got, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got == nil || got.RunID != runID {
		t.Fatalf("latest is not our run: %+v", got)
	}
	if len(got.Categories) != 2 || got.Categories[0].Category != "Runner Updates" {
		t.Fatalf("category order not preserved: %+v", got.Categories)
	}
	if got.AllReachable() {
		t.Fatalf("expected a failure to survive the round-trip")
	}

	list, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].RunID != runID || list[0].Failures != 1 || list[0].Total != 2 {
		t.Fatalf("unexpected summary: %+v", list)
	}
}
