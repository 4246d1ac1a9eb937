// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking, plus the SQL for the stat vector store.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/gridline/fantasy-data/internal/config"
)

// Vector store SQL. These run through pgx's per-connection statement cache
// rather than AfterConnect registration because the table they reference is
// created lazily by SchemaSQL on first use.
const (
	// SchemaSQL creates the pgvector extension and the stat vector table.
	// Idempotent; safe to run on every startup.
	SchemaSQL = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS stat_vectors (
	id         text PRIMARY KEY,
	embedding  vector(128) NOT NULL,
	metadata   jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS stat_vectors_embedding_idx
	ON stat_vectors USING hnsw (embedding vector_cosine_ops);

CREATE INDEX IF NOT EXISTS stat_vectors_filter_idx
	ON stat_vectors ((metadata->>'position'), (metadata->>'season'));`

	// UpsertStatVectorSQL overwrites on conflict so re-storing the same
	// player/season/week never duplicates.
	UpsertStatVectorSQL = `
INSERT INTO stat_vectors (id, embedding, metadata, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (id) DO UPDATE
SET embedding = EXCLUDED.embedding,
    metadata = EXCLUDED.metadata,
    updated_at = now()`

	// QueryStatVectorsSQL returns cosine nearest neighbors under exact-match
	// position/season filters, with an optional week filter.
	QueryStatVectorsSQL = `
SELECT id, metadata, 1 - (embedding <=> $1) AS score
FROM stat_vectors
WHERE metadata->>'position' = $2
  AND metadata->>'season' = $3
  AND ($4::int IS NULL OR (metadata->>'week')::int = $4)
ORDER BY embedding <=> $1
LIMIT $5`
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool. Every connection registers
// the pgvector type codec and the shared prepared statements.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if err := pgxvec.RegisterTypes(ctx, conn); err != nil {
			return fmt.Errorf("register vector types: %w", err)
		}
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers statements that must exist on every
// connection regardless of schema state.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		"health_check": "SELECT 1",
	}
	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
