package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/runnercheck/internal/domain"
	"github.com/hamed0406/runnercheck/internal/repo"
)

var _ repo.ReportStore = (*Store)(nil)
var _ repo.AlertStore = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	s := &Store{pool: pool, log: log}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// ---- ReportStore ----

func (s *Store) Save(ctx context.Context, r *domain.ScanReport) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	sum := r.Summary()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO scans (run_id, started_at, finished_at, all_reachable, total, failures, report)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(r.RunID), r.StartedAt, r.FinishedAt, sum.AllReachable, sum.Total, sum.Failures, payload,
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}

	batch := &pgx.Batch{}
	for _, c := range r.Categories {
		for i, o := range c.Outcomes {
			var statusPtr *int
			if o.HTTPStatus != 0 {
				v := o.HTTPStatus
				statusPtr = &v
			}
			var ipPtr *string
			if o.IP != "" {
				v := o.IP
				ipPtr = &v
			}
			batch.Queue(
				`INSERT INTO outcomes (run_id, category, position, domain, success, message, ip, http_status, latency_ms)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				string(r.RunID), c.Category, i, o.Domain, o.Success, o.Message, ipPtr, statusPtr, o.LatencyMS,
			)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert outcomes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Debug("pg_scan_saved", zap.String("run_id", string(r.RunID)), zap.Int("outcomes", sum.Total))
	return nil
}

func (s *Store) Latest(ctx context.Context) (*domain.ScanReport, error) {
	var (
		runID      string
		startedAt  time.Time
		finishedAt time.Time
		payload    []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT run_id, started_at, finished_at, report
		   FROM scans
		  ORDER BY started_at DESC, run_id DESC
		  LIMIT 1`).Scan(&runID, &startedAt, &finishedAt, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest: %w", err)
	}

	var r domain.ScanReport
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", runID, err)
	}
	r.RunID = domain.RunID(runID)
	r.StartedAt = startedAt
	r.FinishedAt = finishedAt
	return &r, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]domain.Summary, error) {
	q := `SELECT run_id, started_at, finished_at, all_reachable, total, failures
	        FROM scans
	       ORDER BY started_at DESC, run_id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var out []domain.Summary
	for rows.Next() {
		var (
			sum   domain.Summary
			runID string
		)
		if err := rows.Scan(&runID, &sum.StartedAt, &sum.FinishedAt, &sum.AllReachable, &sum.Total, &sum.Failures); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		sum.RunID = domain.RunID(runID)
		out = append(out, sum)
	}
	return out, rows.Err()
}
