// Package vector embeds normalized stat lines into fixed-length vectors and
// drives the similarity index used for point prediction.
package vector

import (
	"sort"
	"strconv"
)

const (
	// Dimension is the fixed embedding length expected by the index.
	Dimension = 128

	// statSlots caps how many stat magnitudes fit in the front half of the
	// embedding; the back half mirrors them with a position encoding.
	statSlots = Dimension / 2

	// epsilon keeps every slot strictly positive so cosine similarity never
	// sees a degenerate all-zero vector.
	epsilon = 0.0001
)

// Embed converts a raw stat map into a 128-dimensional vector.
//
// Stats are ordered deterministically (numeric IDs ascending, then any
// non-numeric IDs lexicographically), zero values are lifted to epsilon, and
// magnitudes are normalized by their sum into the first 64 slots. Each used
// stat slot gets a matching position encoding in the back half; unused slots
// keep the epsilon floor.
func Embed(stats map[string]float64) []float32 {
	ids := sortedStatIDs(stats)

	values := make([]float64, len(ids))
	total := 0.0
	for i, id := range ids {
		v := stats[id]
		if v == 0 {
			v = epsilon
		}
		values[i] = v
		total += v
	}
	if total == 0 {
		total = 1
	}

	embedding := make([]float32, Dimension)
	for i := range embedding {
		embedding[i] = epsilon
	}
	for i, v := range values {
		if i >= statSlots {
			break
		}
		embedding[i] = float32(v / total)
		position := float64(i) / float64(statSlots-1)
		embedding[statSlots+i] = float32(0.1 + 0.9*position)
	}
	return embedding
}

// sortedStatIDs orders stat IDs numerically where possible so the same stat
// map always produces the same embedding.
func sortedStatIDs(stats map[string]float64) []string {
	ids := make([]string, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, iErr := strconv.Atoi(ids[i])
		nj, jErr := strconv.Atoi(ids[j])
		switch {
		case iErr == nil && jErr == nil:
			return ni < nj
		case iErr == nil:
			return true
		case jErr == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}
