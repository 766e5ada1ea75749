package postgres

import (
	"context"
	"fmt"
)

// schemaSQL is applied on startup; every statement is idempotent.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS scans (
  run_id        TEXT PRIMARY KEY,
  started_at    TIMESTAMPTZ NOT NULL,
  finished_at   TIMESTAMPTZ NOT NULL,
  all_reachable BOOLEAN NOT NULL,
  total         INTEGER NOT NULL,
  failures      INTEGER NOT NULL,
  report        JSON NOT NULL -- not JSONB, which reorders keys
);

CREATE TABLE IF NOT EXISTS outcomes (
  id          BIGSERIAL PRIMARY KEY,
  run_id      TEXT NOT NULL REFERENCES scans(run_id) ON DELETE CASCADE,
  category    TEXT NOT NULL,
  position    INTEGER NOT NULL,
  domain      TEXT NOT NULL,
  success     BOOLEAN NOT NULL,
  message     TEXT NOT NULL,
  ip          TEXT NULL,
  http_status INTEGER NULL,
  latency_ms  DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
  key          TEXT PRIMARY KEY,
  last_state   BOOLEAN NOT NULL,
  last_sent_at TIMESTAMPTZ NULL
);

CREATE INDEX IF NOT EXISTS idx_scans_started_at ON scans (started_at DESC);
CREATE INDEX IF NOT EXISTS idx_outcomes_domain  ON outcomes (domain, run_id);
`

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
