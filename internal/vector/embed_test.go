package vector

import (
	"math"
	"strconv"
	"testing"
)

func TestEmbed_LengthAndFloor(t *testing.T) {
	emb := Embed(map[string]float64{"4": 300, "5": 2})
	if len(emb) != Dimension {
		t.Fatalf("len = %d, want %d", len(emb), Dimension)
	}
	for i, v := range emb {
		if v <= 0 {
			t.Errorf("slot %d = %v, every slot must be strictly positive", i, v)
		}
	}
}

func TestEmbed_EmptyStatsIsAllEpsilon(t *testing.T) {
	emb := Embed(nil)
	for i, v := range emb {
		if v != epsilon {
			t.Errorf("slot %d = %v, want epsilon floor", i, v)
		}
	}
}

func TestEmbed_Deterministic(t *testing.T) {
	stats := map[string]float64{"4": 300, "5": 2, "6": 1, "78": 0}
	a := Embed(stats)
	b := Embed(stats)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("slot %d differs between identical inputs", i)
		}
	}
}

func TestEmbed_NormalizedBySum(t *testing.T) {
	emb := Embed(map[string]float64{"1": 30, "2": 20, "4": 50})
	// Numeric ordering: 1, 2, 4.
	want := []float32{0.3, 0.2, 0.5}
	for i, w := range want {
		if math.Abs(float64(emb[i]-w)) > 1e-6 {
			t.Errorf("slot %d = %v, want %v", i, emb[i], w)
		}
	}
}

func TestEmbed_ScaleInvariant(t *testing.T) {
	a := Embed(map[string]float64{"4": 10, "5": 30})
	b := Embed(map[string]float64{"4": 1000, "5": 3000})
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-6 {
			t.Fatalf("slot %d: %v vs %v, normalization must be scale invariant", i, a[i], b[i])
		}
	}
}

func TestEmbed_ZeroValuesLifted(t *testing.T) {
	emb := Embed(map[string]float64{"4": 0})
	if emb[0] <= 0 {
		t.Error("zero stat value must be lifted to the epsilon floor before normalization")
	}
}

func TestEmbed_PositionEncodingRange(t *testing.T) {
	stats := make(map[string]float64, statSlots)
	for i := 0; i < statSlots; i++ {
		stats[strconv.Itoa(i)] = float64(i + 1)
	}
	emb := Embed(stats)
	if emb[statSlots] != 0.1 {
		t.Errorf("first position slot = %v, want 0.1", emb[statSlots])
	}
	if emb[Dimension-1] != 1.0 {
		t.Errorf("last position slot = %v, want 1.0", emb[Dimension-1])
	}
}

func TestVectorID(t *testing.T) {
	if got := VectorID("423.p.100", "2025", 0); got != "423.p.100_2025_season" {
		t.Errorf("season ID = %q", got)
	}
	if got := VectorID("423.p.100", "2025", 7); got != "423.p.100_2025_7" {
		t.Errorf("week ID = %q", got)
	}
}
