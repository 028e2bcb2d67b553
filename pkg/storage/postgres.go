// Package storage persists verdict and alert history to Postgres.
// Persistence is optional: the gateway runs stateless without a DSN, and
// write failures are logged, never fatal to the scoring path.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shri-birje/Phishguard/pkg/ml"
)

const schema = `
CREATE TABLE IF NOT EXISTS verdicts (
	id              UUID PRIMARY KEY,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	url             TEXT NOT NULL,
	homoglyph_score DOUBLE PRECISION NOT NULL,
	behavior_score  DOUBLE PRECISION NOT NULL,
	phishing_score  DOUBLE PRECISION NOT NULL,
	risk_level      TEXT NOT NULL,
	action          TEXT NOT NULL,
	mode            TEXT NOT NULL,
	suspect         BOOLEAN NOT NULL,
	detail          JSONB
);

CREATE TABLE IF NOT EXISTS alerts (
	id         UUID PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	url        TEXT NOT NULL,
	risk_level TEXT NOT NULL,
	action     TEXT NOT NULL,
	score      DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS verdicts_created_at_idx ON verdicts (created_at DESC);
CREATE INDEX IF NOT EXISTS alerts_created_at_idx ON alerts (created_at DESC);
`

// AlertRecord is one persisted alert row.
type AlertRecord struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	URL       string       `json:"url"`
	RiskLevel ml.RiskLevel `json:"risk_level"`
	Action    ml.Action    `json:"action"`
	Score     float64      `json:"score"`
}

// Store is a Postgres-backed history of verdicts and alerts. Safe for
// concurrent use; the pool handles connection management.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// SaveVerdict writes one assessment to the history, returning the row id.
// The full assessment rides along as JSONB detail for analyst queries.
func (s *Store) SaveVerdict(ctx context.Context, a *ml.Assessment) (string, error) {
	detail, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode verdict detail: %w", err)
	}

	id := uuid.NewString()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO verdicts
			(id, url, homoglyph_score, behavior_score, phishing_score,
			 risk_level, action, mode, suspect, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, a.URL, a.HomoglyphScore, a.BehaviorScore, a.PhishingScore,
		string(a.RiskLevel), string(a.Action), string(a.Mode), a.Suspect, detail,
	)
	if err != nil {
		return "", fmt.Errorf("insert verdict: %w", err)
	}
	return id, nil
}

// SaveAlert records a raised alert.
func (s *Store) SaveAlert(ctx context.Context, a *ml.Assessment) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO alerts (id, url, risk_level, action, score)
		VALUES ($1, $2, $3, $4, $5)`,
		id, a.URL, string(a.RiskLevel), string(a.Action), a.PhishingScore,
	)
	if err != nil {
		return "", fmt.Errorf("insert alert: %w", err)
	}
	return id, nil
}

// RecentAlerts returns the newest alerts, most recent first.
func (s *Store) RecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, url, risk_level, action, score
		FROM alerts
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []AlertRecord
	for rows.Next() {
		var r AlertRecord
		var level, action string
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.URL, &level, &action, &r.Score); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		r.RiskLevel = ml.RiskLevel(level)
		r.Action = ml.Action(action)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}
