package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gridline/fantasy-data/internal/metrics"
	"github.com/gridline/fantasy-data/internal/yahoo"
)

// Metadata is the flattened scalar map stored next to each vector. Values
// are strings, numbers, or booleans only; nested stats travel as a JSON
// string under raw_stats.
type Metadata map[string]any

// Record is one vector ready for upsert.
type Record struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

// Query selects nearest neighbors with exact-match metadata filters. Week
// nil means no week filter.
type Query struct {
	Values   []float32
	Position string
	Season   string
	Week     *int
	TopK     int
}

// Match is one query hit.
type Match struct {
	ID       string
	Score    float32
	Metadata Metadata
}

// Index is the similarity store behind the engine. Implementations exist for
// Pinecone and for Postgres with the pgvector extension.
type Index interface {
	// EnsureReady creates the index if needed and blocks until it accepts
	// reads and writes.
	EnsureReady(ctx context.Context) error
	Upsert(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Match, error)
}

// headlineStats maps metadata field names to the provider stat IDs they
// flatten. These are the persisted schema of the index and must not drift.
var headlineStats = []struct {
	field string
	id    string
}{
	{"receiving_yards", "12"},
	{"receiving_touchdowns", "13"},
	{"receiving_receptions", "11"},
	{"receiving_targets", "78"},
	{"rushing_yards", "9"},
	{"rushing_touchdowns", "10"},
	{"rushing_attempts", "8"},
	{"passing_yards", "4"},
	{"passing_touchdowns", "5"},
	{"passing_interceptions", "6"},
	{"passing_attempts", "1"},
	{"passing_completions", "2"},
}

// Engine embeds stat records and persists them into an Index. It satisfies
// the aggregator's sink contract, so every successful stats fetch flows
// through Store as a side effect.
type Engine struct {
	index  Index
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	ready bool
}

// NewEngine wraps an index. Readiness is established lazily on first use and
// retried on later calls if it failed.
func NewEngine(index Index, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{index: index, logger: logger, now: time.Now}
}

// EnsureReady makes sure the underlying index exists and is serving.
func (e *Engine) EnsureReady(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready {
		return nil
	}
	if err := e.index.EnsureReady(ctx); err != nil {
		return fmt.Errorf("vector index not ready: %w", err)
	}
	e.ready = true
	return nil
}

// Ready reports whether the index passed a readiness check. It does not
// trigger one.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// VectorID builds the deterministic storage key. Re-storing the same
// player/season/week overwrites rather than duplicates. Week 0 is the
// season-total line.
func VectorID(playerKey, season string, week int) string {
	suffix := "season"
	if week > 0 {
		suffix = strconv.Itoa(week)
	}
	return fmt.Sprintf("%s_%s_%s", playerKey, season, suffix)
}

// Store embeds one stat record and upserts it.
func (e *Engine) Store(ctx context.Context, rec yahoo.StatRecord) error {
	if err := e.EnsureReady(ctx); err != nil {
		return err
	}

	rawStats, err := json.Marshal(rec.Stats)
	if err != nil {
		return fmt.Errorf("encode raw stats: %w", err)
	}

	meta := Metadata{
		"player_key":     rec.PlayerKey,
		"player_name":    rec.PlayerName,
		"firstName":      rec.FirstName,
		"lastName":       rec.LastName,
		"team":           rec.Team,
		"position":       rec.Position,
		"season":         rec.Season,
		"status":         rec.Status,
		"raw_stats":      string(rawStats),
		"fantasy_points": rec.FantasyPoints,
		"timestamp":      e.now().UnixMilli(),
	}
	for _, hs := range headlineStats {
		meta[hs.field] = rec.Stats[hs.id]
	}
	if rec.Week > 0 {
		meta["week"] = rec.Week
	}
	if rec.LeagueKey != "" {
		meta["league_key"] = rec.LeagueKey
	}

	v := Record{
		ID:       VectorID(rec.PlayerKey, rec.Season, rec.Week),
		Values:   Embed(rec.Stats),
		Metadata: meta,
	}
	if err := e.index.Upsert(ctx, v); err != nil {
		return fmt.Errorf("upsert %s: %w", v.ID, err)
	}
	e.logger.Info("stored stat vector", "id", v.ID, "player", rec.PlayerName)
	return nil
}

// Predict embeds the query stats, pulls the 5 nearest stored performances
// matching position and season (and week when given), and returns the mean
// of their fantasy points. Returns 0 when no neighbors exist; callers must
// treat that as a low-confidence "no data" sentinel, not a score.
func (e *Engine) Predict(ctx context.Context, position string, stats map[string]float64, season string, week *int) (float64, error) {
	if err := e.EnsureReady(ctx); err != nil {
		return 0, err
	}

	matches, err := e.index.Query(ctx, Query{
		Values:   Embed(stats),
		Position: position,
		Season:   season,
		Week:     week,
		TopK:     5,
	})
	if err != nil {
		return 0, fmt.Errorf("query similar performances: %w", err)
	}
	if len(matches) == 0 {
		metrics.Predictions.WithLabelValues(metrics.OutcomeNoData).Inc()
		e.logger.Info("no similar performances found", "position", position, "season", season)
		return 0, nil
	}

	sum := 0.0
	for _, m := range matches {
		sum += metadataFloat(m.Metadata, "fantasy_points")
	}
	metrics.Predictions.WithLabelValues(metrics.OutcomeNeighbors).Inc()
	return sum / float64(len(matches)), nil
}

// metadataFloat reads a numeric metadata field, tolerating the scalar types
// different index backends hand back.
func metadataFloat(m Metadata, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
