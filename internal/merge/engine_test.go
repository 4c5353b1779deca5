package merge

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/bloom/internal/config"
	"github.com/vovakirdan/bloom/internal/core"
)

func newTestEngine() *Engine {
	return NewEngine(rand.New(rand.NewSource(7)), config.DefaultBloomConfig().Merge)
}

func TestTierProperties(t *testing.T) {
	assert.Equal(t, 30.0, Tier(0).Diameter())
	assert.Equal(t, 120.0, TopTier.Diameter())
	assert.Equal(t, 10, Tier(0).Points())
	assert.Equal(t, 100, TopTier.Points())
	assert.InDelta(t, 0.3, Tier(0).Mass(), 1e-9)
	assert.Equal(t, "medium", Tier(3).Name())
	assert.Equal(t, "largest", TopTier.Name())
}

func TestTierNextSaturates(t *testing.T) {
	for tier := Tier(0); tier < TopTier; tier++ {
		assert.Equal(t, tier+1, tier.Next())
	}
	assert.Equal(t, TopTier, TopTier.Next())
	assert.Equal(t, TopTier, Tier(42).Next())
	assert.Equal(t, Tier(0), Tier(-3).Next())
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("4")
	require.NoError(t, err)
	assert.Equal(t, Tier(4), tier)

	tier, err = ParseTier("almostLargest")
	require.NoError(t, err)
	assert.Equal(t, Tier(8), tier)

	_, err = ParseTier("10")
	assert.Error(t, err)
	_, err = ParseTier("huge")
	assert.Error(t, err)
}

func TestMergeProducesNextTierAtMidpoint(t *testing.T) {
	e := newTestEngine()
	for tier := Tier(0); tier < TopTier; tier++ {
		a := e.NewBall(tier, core.V(100, 40))
		b := e.NewBall(tier, core.V(140, 60))

		out := e.OnContact(a, b)
		require.True(t, out.Merged, "tier %d should merge", tier)
		assert.Equal(t, tier+1, out.Result.Tier)
		assert.Equal(t, core.V(120, 50), out.Position)
		assert.Equal(t, core.V(120, 50), out.Result.Pos)
		assert.True(t, a.Removed())
		assert.True(t, b.Removed())
		assert.True(t, out.Result.Live())
		assert.NotEqual(t, a.ID, out.Result.ID)
	}
}

func TestMergePerturbationBounded(t *testing.T) {
	e := newTestEngine()
	for i := 0; i < 200; i++ {
		out := e.OnContact(e.NewBall(1, core.V(0, 0)), e.NewBall(1, core.V(10, 0)))
		require.True(t, out.Merged)
		assert.LessOrEqual(t, out.Result.Vel.X, 20.0)
		assert.GreaterOrEqual(t, out.Result.Vel.X, -20.0)
		assert.LessOrEqual(t, out.Result.Vel.Y, 10.0)
		assert.GreaterOrEqual(t, out.Result.Vel.Y, -10.0)
	}
}

func TestNoMergeCases(t *testing.T) {
	e := newTestEngine()

	t.Run("top tier", func(t *testing.T) {
		a, b := e.NewBall(TopTier, core.V(0, 0)), e.NewBall(TopTier, core.V(1, 0))
		out := e.OnContact(a, b)
		assert.False(t, out.Merged)
		assert.True(t, a.Live())
		assert.True(t, b.Live())
	})

	t.Run("different tiers", func(t *testing.T) {
		a, b := e.NewBall(2, core.V(0, 0)), e.NewBall(3, core.V(1, 0))
		assert.False(t, e.OnContact(a, b).Merged)
		assert.True(t, a.Live() && b.Live())
	})

	t.Run("removed ball", func(t *testing.T) {
		a, b := e.NewBall(2, core.V(0, 0)), e.NewBall(2, core.V(1, 0))
		a.remove()
		assert.False(t, e.OnContact(a, b).Merged)
		assert.True(t, b.Live())
	})

	t.Run("same ball", func(t *testing.T) {
		a := e.NewBall(2, core.V(0, 0))
		assert.False(t, e.OnContact(a, a).Merged)
		assert.True(t, a.Live())
	})

	t.Run("nil ball", func(t *testing.T) {
		assert.False(t, e.OnContact(nil, e.NewBall(0, core.V(0, 0))).Merged)
	})
}

func TestResolveMergesEachBallOnce(t *testing.T) {
	e := newTestEngine()
	a := e.NewBall(0, core.V(0, 0))
	b := e.NewBall(0, core.V(30, 0))
	c := e.NewBall(0, core.V(-30, 0))

	outcomes := e.Resolve([]Contact{
		{Kind: ContactBalls, A: a, B: b},
		{Kind: ContactBalls, A: a, B: c},
		{Kind: ContactBoundary, A: c},
	})

	require.Len(t, outcomes, 1)
	assert.Same(t, a, outcomes[0].Consumed[0])
	assert.Same(t, b, outcomes[0].Consumed[1])
	assert.True(t, c.Live(), "c must survive because a was already consumed")
}

func TestSeededIDsAreReproducible(t *testing.T) {
	e1, e2 := newTestEngine(), newTestEngine()
	for i := 0; i < 5; i++ {
		assert.Equal(t, e1.NewBall(0, core.V(0, 0)).ID, e2.NewBall(0, core.V(0, 0)).ID)
	}
}

func TestBoundaryTriggers(t *testing.T) {
	tests := []struct {
		name     string
		ball     *Ball
		expected bool
	}{
		{"settled and rising", &Ball{Vel: core.V(0, 5)}, true},
		{"settled and falling", &Ball{Vel: core.V(0, -5)}, false},
		{"settled and still", &Ball{}, false},
		{"dropping and rising", &Ball{Vel: core.V(0, 5), Dropping: true}, false},
		{"held", &Ball{Vel: core.V(0, 5), Held: true}, false},
		{"removed", &Ball{Vel: core.V(0, 5), removed: true}, false},
		{"nil", nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Boundary{}.Triggers(tc.ball))
		})
	}
}

func TestSpawnTableDistribution(t *testing.T) {
	table := NewSpawnTable(config.DefaultBloomConfig().Spawn.Weights)
	rng := rand.New(rand.NewSource(99))

	const draws = 100000
	counts := make(map[Tier]int)
	for i := 0; i < draws; i++ {
		counts[table.Pick(rng)]++
	}

	expected := map[Tier]float64{0: 0.50, 1: 0.30, 2: 0.15, 3: 0.05}
	for tier, p := range expected {
		assert.InDelta(t, p, table.Probability(tier), 1e-9)
		assert.InDelta(t, p, float64(counts[tier])/draws, 0.01, "tier %d", tier)
	}
	for tier := Tier(4); tier <= TopTier; tier++ {
		assert.Zero(t, counts[tier])
	}
}

func TestSpawnTableSkipsInvalidEntries(t *testing.T) {
	table := NewSpawnTable([]config.SpawnWeight{{Tier: 12, Weight: 5}, {Tier: 1, Weight: 0}})
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, Tier(0), table.Pick(rng))
	assert.Equal(t, 1.0, table.Probability(0))
}

func TestModeByID(t *testing.T) {
	m, ok := ModeByID("speed")
	require.True(t, ok)
	assert.True(t, m.Timed)
	assert.Equal(t, "speedModeHighScore", m.LeadersKey)

	m, ok = ModeByID("classic")
	require.True(t, ok)
	assert.False(t, m.Timed)
	assert.Equal(t, "highScore", m.LeadersKey)

	_, ok = ModeByID("zen")
	assert.False(t, ok)
}
