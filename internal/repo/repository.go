package repo

import (
	"context"

	"github.com/hamed0406/runnercheck/internal/domain"
)

// ReportStore keeps scan history. Any backend (memory, sqlite, postgres)
// satisfies it.
type ReportStore interface {
	Save(ctx context.Context, r *domain.ScanReport) error
	// Latest returns nil, nil when nothing was saved yet.
	Latest(ctx context.Context) (*domain.ScanReport, error)
	// List returns summaries newest first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]domain.Summary, error)
}
