package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/runnercheck/internal/domain"
	"github.com/hamed0406/runnercheck/internal/repo"
)

// Store keeps reports and alert state in process memory. It is the default
// when no database is configured.
type Store struct {
	mu      sync.RWMutex
	reports []*domain.ScanReport
	alerts  map[string]repo.AlertRecord
}

func New() *Store {
	return &Store{
		reports: make([]*domain.ScanReport, 0, 16),
		alerts:  make(map[string]repo.AlertRecord),
	}
}

// ---- ReportStore ----

func (m *Store) Save(ctx context.Context, r *domain.ScanReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

func (m *Store) Latest(ctx context.Context) (*domain.ScanReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.ScanReport
	for _, r := range m.reports {
		if latest == nil || !r.StartedAt.Before(latest.StartedAt) {
			latest = r
		}
	}
	return latest, nil
}

func (m *Store) List(ctx context.Context, limit int) ([]domain.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Summary, 0, len(m.reports))
	for i := len(m.reports) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, m.reports[i].Summary())
	}
	return out, nil
}

// ---- AlertStore ----

func (m *Store) Get(ctx context.Context, key string) (*repo.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.alerts[key]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Store) Set(ctx context.Context, key string, lastState bool, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	m.alerts[key] = repo.AlertRecord{Key: key, LastState: lastState, LastSentAt: ts}
	return nil
}
