package vector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gridline/fantasy-data/internal/yahoo"
)

// stubIndex records upserts and serves canned matches.
type stubIndex struct {
	readyCalls  int
	readyErr    error
	upserts     []Record
	matches     []Match
	lastQuery   Query
	queryCalled bool
}

func (s *stubIndex) EnsureReady(context.Context) error {
	s.readyCalls++
	return s.readyErr
}

func (s *stubIndex) Upsert(_ context.Context, rec Record) error {
	s.upserts = append(s.upserts, rec)
	return nil
}

func (s *stubIndex) Query(_ context.Context, q Query) ([]Match, error) {
	s.queryCalled = true
	s.lastQuery = q
	return s.matches, nil
}

func matchWithPoints(points float64) Match {
	return Match{ID: "m", Metadata: Metadata{"fantasy_points": points}}
}

func TestEngine_StoreBuildsVector(t *testing.T) {
	idx := &stubIndex{}
	eng := NewEngine(idx, nil)
	eng.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	rec := yahoo.StatRecord{
		PlayerKey:     "423.p.100",
		PlayerName:    "Pat Tester",
		FirstName:     "Pat",
		LastName:      "Tester",
		Team:          "KC",
		Position:      "QB",
		Status:        "Active",
		Season:        "2025",
		LeagueKey:     "423.l.1",
		Week:          7,
		Stats:         map[string]float64{"4": 300, "5": 2},
		FantasyPoints: 24.5,
	}
	if err := eng.Store(context.Background(), rec); err != nil {
		t.Fatalf("Store: %v", err)
	}

	if len(idx.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(idx.upserts))
	}
	v := idx.upserts[0]
	if v.ID != "423.p.100_2025_7" {
		t.Errorf("ID = %q", v.ID)
	}
	if len(v.Values) != Dimension {
		t.Errorf("vector length = %d", len(v.Values))
	}
	if v.Metadata["passing_yards"] != 300.0 {
		t.Errorf("passing_yards = %v", v.Metadata["passing_yards"])
	}
	if v.Metadata["receiving_yards"] != 0.0 {
		t.Errorf("absent headline stat must flatten to 0, got %v", v.Metadata["receiving_yards"])
	}
	if v.Metadata["fantasy_points"] != 24.5 {
		t.Errorf("fantasy_points = %v", v.Metadata["fantasy_points"])
	}
	if v.Metadata["week"] != 7 {
		t.Errorf("week = %v", v.Metadata["week"])
	}
	if v.Metadata["timestamp"] != int64(1_700_000_000_000) {
		t.Errorf("timestamp = %v", v.Metadata["timestamp"])
	}
}

func TestEngine_SeasonRecordOmitsWeek(t *testing.T) {
	idx := &stubIndex{}
	eng := NewEngine(idx, nil)

	rec := yahoo.StatRecord{PlayerKey: "423.p.100", Season: "2025", Stats: map[string]float64{"4": 1}}
	if err := eng.Store(context.Background(), rec); err != nil {
		t.Fatalf("Store: %v", err)
	}
	v := idx.upserts[0]
	if v.ID != "423.p.100_2025_season" {
		t.Errorf("ID = %q", v.ID)
	}
	if _, ok := v.Metadata["week"]; ok {
		t.Error("season record must not carry a week field")
	}
	if _, ok := v.Metadata["league_key"]; ok {
		t.Error("record without league context must not carry league_key")
	}
}

func TestEngine_ReadinessCachedAcrossCalls(t *testing.T) {
	idx := &stubIndex{}
	eng := NewEngine(idx, nil)

	for i := 0; i < 3; i++ {
		rec := yahoo.StatRecord{PlayerKey: "k", Season: "2025", Stats: map[string]float64{"4": 1}}
		if err := eng.Store(context.Background(), rec); err != nil {
			t.Fatalf("Store %d: %v", i, err)
		}
	}
	if idx.readyCalls != 1 {
		t.Errorf("EnsureReady called %d times, want 1", idx.readyCalls)
	}
}

func TestEngine_ReadinessRetriedAfterFailure(t *testing.T) {
	idx := &stubIndex{readyErr: errors.New("not yet")}
	eng := NewEngine(idx, nil)

	if err := eng.EnsureReady(context.Background()); err == nil {
		t.Fatal("first EnsureReady should fail")
	}
	idx.readyErr = nil
	if err := eng.EnsureReady(context.Background()); err != nil {
		t.Fatalf("second EnsureReady: %v", err)
	}
	if idx.readyCalls != 2 {
		t.Errorf("readyCalls = %d, want 2", idx.readyCalls)
	}
}

func TestEngine_PredictMeanOfNeighbors(t *testing.T) {
	idx := &stubIndex{matches: []Match{
		matchWithPoints(10), matchWithPoints(12), matchWithPoints(14),
		matchWithPoints(16), matchWithPoints(18),
	}}
	eng := NewEngine(idx, nil)

	week := 7
	got, err := eng.Predict(context.Background(), "QB", map[string]float64{"4": 300}, "2025", &week)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 14 {
		t.Errorf("prediction = %v, want mean 14", got)
	}
	if idx.lastQuery.TopK != 5 {
		t.Errorf("TopK = %d, want 5", idx.lastQuery.TopK)
	}
	if idx.lastQuery.Position != "QB" || idx.lastQuery.Season != "2025" {
		t.Errorf("filter = %+v", idx.lastQuery)
	}
	if idx.lastQuery.Week == nil || *idx.lastQuery.Week != 7 {
		t.Errorf("week filter = %v", idx.lastQuery.Week)
	}
}

func TestEngine_PredictNoNeighborsIsZero(t *testing.T) {
	idx := &stubIndex{}
	eng := NewEngine(idx, nil)

	got, err := eng.Predict(context.Background(), "QB", map[string]float64{"4": 300}, "2025", nil)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 0 {
		t.Errorf("prediction = %v, want the 0 no-data sentinel", got)
	}
	if !idx.queryCalled {
		t.Error("index must still be queried")
	}
	if idx.lastQuery.Week != nil {
		t.Error("no week filter expected")
	}
}

func TestEngine_PredictToleratesStringPoints(t *testing.T) {
	idx := &stubIndex{matches: []Match{
		{ID: "a", Metadata: Metadata{"fantasy_points": "20"}},
		{ID: "b", Metadata: Metadata{"fantasy_points": 10.0}},
	}}
	eng := NewEngine(idx, nil)

	got, err := eng.Predict(context.Background(), "WR", map[string]float64{"12": 90}, "2025", nil)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 15 {
		t.Errorf("prediction = %v, want 15", got)
	}
}
