package merge

import (
	"math/rand"

	"github.com/vovakirdan/bloom/internal/config"
)

// SpawnTable draws the tier of each new ball from fixed weights.
type SpawnTable struct {
	tiers   []Tier
	weights []int
	total   int
}

// NewSpawnTable builds a table from config weights. Out-of-range tiers and
// non-positive weights are skipped; an empty result always spawns tier 0.
func NewSpawnTable(weights []config.SpawnWeight) SpawnTable {
	var t SpawnTable
	for _, w := range weights {
		tier := Tier(w.Tier)
		if !tier.Valid() || w.Weight <= 0 {
			continue
		}
		t.tiers = append(t.tiers, tier)
		t.weights = append(t.weights, w.Weight)
		t.total += w.Weight
	}
	return t
}

// Pick draws a tier.
func (t SpawnTable) Pick(rng *rand.Rand) Tier {
	if t.total == 0 {
		return 0
	}
	roll := rng.Intn(t.total)
	for i, w := range t.weights {
		if roll < w {
			return t.tiers[i]
		}
		roll -= w
	}
	return t.tiers[len(t.tiers)-1]
}

// Probability returns the chance of drawing tier, for display and tests.
func (t SpawnTable) Probability(tier Tier) float64 {
	if t.total == 0 {
		if tier == 0 {
			return 1
		}
		return 0
	}
	sum := 0
	for i, tt := range t.tiers {
		if tt == tier {
			sum += t.weights[i]
		}
	}
	return float64(sum) / float64(t.total)
}
