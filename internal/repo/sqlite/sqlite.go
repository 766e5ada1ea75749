// Package sqlite is a file-backed scan history for single-host use.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/hamed0406/runnercheck/internal/domain"
	"github.com/hamed0406/runnercheck/internal/repo"
)

var _ repo.ReportStore = (*Store)(nil)
var _ repo.AlertStore = (*Store)(nil)

// fixed-width so TEXT ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS scans (
	run_id        TEXT PRIMARY KEY,
	started_at    TEXT NOT NULL,
	finished_at   TEXT NOT NULL,
	all_reachable INTEGER NOT NULL,
	total         INTEGER NOT NULL,
	failures      INTEGER NOT NULL,
	report        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scans_started_at ON scans (started_at DESC);
CREATE TABLE IF NOT EXISTS alerts (
	key          TEXT PRIMARY KEY,
	last_state   INTEGER NOT NULL,
	last_sent_at TEXT NULL
);`

// Store persists scan history in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
	log  *zap.Logger
	mu   sync.Mutex
}

// Open creates (or opens) the database at path and applies the schema.
func Open(path string, log *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// one writer; avoids SQLITE_BUSY between the scan loop and API handlers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, path: path, log: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Path returns the sqlite database path.
func (s *Store) Path() string { return s.path }

// ---- ReportStore ----

func (s *Store) Save(ctx context.Context, r *domain.ScanReport) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	sum := r.Summary()

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `INSERT INTO scans
		(run_id, started_at, finished_at, all_reachable, total, failures, report)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(r.RunID),
		r.StartedAt.UTC().Format(timeLayout),
		r.FinishedAt.UTC().Format(timeLayout),
		boolToInt(sum.AllReachable),
		sum.Total,
		sum.Failures,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	s.log.Debug("sqlite_scan_saved", zap.String("run_id", string(r.RunID)), zap.String("path", s.path))
	return nil
}

func (s *Store) Latest(ctx context.Context) (*domain.ScanReport, error) {
	var runID, started, finished, payload string
	err := s.db.QueryRowContext(ctx, `SELECT run_id, started_at, finished_at, report
		FROM scans ORDER BY started_at DESC, run_id DESC LIMIT 1`).
		Scan(&runID, &started, &finished, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest: %w", err)
	}
	var r domain.ScanReport
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", runID, err)
	}
	r.RunID = domain.RunID(runID)
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	return &r, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]domain.Summary, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT run_id, started_at, finished_at, all_reachable, total, failures FROM scans ORDER BY started_at DESC, run_id DESC")
	var args []interface{}
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var out []domain.Summary
	for rows.Next() {
		var (
			sum               domain.Summary
			runID             string
			started, finished string
			reachable         int
		)
		if err := rows.Scan(&runID, &started, &finished, &reachable, &sum.Total, &sum.Failures); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		sum.RunID = domain.RunID(runID)
		sum.StartedAt = parseTime(started)
		sum.FinishedAt = parseTime(finished)
		sum.AllReachable = reachable == 1
		out = append(out, sum)
	}
	return out, rows.Err()
}

// ---- AlertStore ----

func (s *Store) Get(ctx context.Context, key string) (*repo.AlertRecord, error) {
	var (
		state int
		sent  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT last_state, last_sent_at FROM alerts WHERE key = ?`, key).
		Scan(&state, &sent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec := &repo.AlertRecord{Key: key, LastState: state == 1}
	if sent.Valid {
		t := parseTime(sent.String)
		rec.LastSentAt = &t
	}
	return rec, nil
}

func (s *Store) Set(ctx context.Context, key string, lastState bool, sentAt time.Time) error {
	var sent sql.NullString
	if !sentAt.IsZero() {
		sent = sql.NullString{String: sentAt.UTC().Format(timeLayout), Valid: true}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `INSERT INTO alerts (key, last_state, last_sent_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET last_state = excluded.last_state, last_sent_at = excluded.last_sent_at`,
		key, boolToInt(lastState), sent)
	return err
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
