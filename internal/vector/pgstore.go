package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pgvector/pgvector-go"

	"github.com/gridline/fantasy-data/internal/db"
)

// PostgresIndex stores vectors in Postgres with the pgvector extension. It
// is the self-hosted alternative to the managed Pinecone backend and shares
// its ID and filter semantics.
type PostgresIndex struct {
	pool   *db.Pool
	logger *slog.Logger

	once      sync.Once
	schemaErr error
}

// NewPostgresIndex wraps an existing pool. Schema setup happens on
// EnsureReady.
func NewPostgresIndex(pool *db.Pool, logger *slog.Logger) *PostgresIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresIndex{pool: pool, logger: logger}
}

// EnsureReady applies the idempotent vector schema.
func (p *PostgresIndex) EnsureReady(ctx context.Context) error {
	p.once.Do(func() {
		if _, err := p.pool.Exec(ctx, db.SchemaSQL); err != nil {
			p.schemaErr = fmt.Errorf("apply vector schema: %w", err)
			return
		}
		p.logger.Info("vector schema ready")
	})
	return p.schemaErr
}

// Upsert writes one vector, overwriting any previous row under its ID.
func (p *PostgresIndex) Upsert(ctx context.Context, rec Record) error {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = p.pool.Exec(ctx, db.UpsertStatVectorSQL, rec.ID, pgvector.NewVector(rec.Values), meta)
	if err != nil {
		return fmt.Errorf("upsert stat vector: %w", err)
	}
	return nil
}

// Query returns cosine nearest neighbors under the exact-match filters.
func (p *PostgresIndex) Query(ctx context.Context, q Query) ([]Match, error) {
	rows, err := p.pool.Query(ctx, db.QueryStatVectorsSQL,
		pgvector.NewVector(q.Values), q.Position, q.Season, q.Week, q.TopK)
	if err != nil {
		return nil, fmt.Errorf("query stat vectors: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			id    string
			meta  []byte
			score float64
		)
		if err := rows.Scan(&id, &meta, &score); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m := Match{ID: id, Score: float32(score)}
		if err := json.Unmarshal(meta, &m.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", id, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
