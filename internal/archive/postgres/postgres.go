package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/netpulse/netpulse/internal/archive"
	"github.com/netpulse/netpulse/internal/domain"
)

// Store archives probe results in Postgres. Append-only: reads go
// through external reporting tools, not this process.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, err
	}
	s := &Store{pool: p}
	if err := s.ensureSchema(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS probe_results (
			id         BIGSERIAL PRIMARY KEY,
			target_id  TEXT             NOT NULL,
			outcome    TEXT             NOT NULL,
			latency_ms DOUBLE PRECISION NOT NULL,
			message    TEXT             NOT NULL DEFAULT '',
			checked_at TIMESTAMPTZ      NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_probe_results_target_checked
			ON probe_results (target_id, checked_at DESC);
	`)
	return err
}

func (s *Store) Append(ctx context.Context, r domain.ProbeResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO probe_results (target_id, outcome, latency_ms, message, checked_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		r.TargetID, r.Outcome, r.LatencyMS, r.Message, r.CheckedAt)
	return err
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

var _ archive.Writer = (*Store)(nil)
