package bloom

import (
	"math"
	"time"

	"github.com/vovakirdan/bloom/internal/merge"
)

// ballFields is the number of BallData entries per ball.
const ballFields = 5

// Snapshot captures the observable game state for determinism testing.
type Snapshot struct {
	Tick            uint64
	Mode            string
	State           merge.State
	Score           int
	Best            int
	Multiplier10    int // Combo multiplier times ten
	ChainDepth      int
	TimeRemainingMs int64
	BallCount       int

	// Ball data: [tier, x, y, held, dropping] per ball, positions rounded
	// to whole container units.
	BallData []int
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Tick: g.tick,
		Mode: g.mode.ID,
	}
	if g.session == nil {
		return snap
	}
	s := g.session

	snap.State = s.State()
	snap.Score = s.Score()
	snap.Best = s.Best()
	snap.Multiplier10 = int(math.Round(s.Multiplier() * 10))
	snap.ChainDepth = s.ChainDepth()
	snap.TimeRemainingMs = int64(s.TimeRemaining() / time.Millisecond)

	balls := s.Balls()
	snap.BallData = make([]int, 0, len(balls)*ballFields)
	for _, b := range balls {
		if !b.Live() {
			continue
		}
		snap.BallCount++
		snap.BallData = append(snap.BallData,
			int(b.Tier),
			int(math.Round(b.Pos.X)),
			int(math.Round(b.Pos.Y)),
			boolInt(b.Held),
			boolInt(b.Dropping),
		)
	}
	return snap
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (snap *Snapshot) Hash() uint64 {
	h := snap.Tick
	for _, c := range snap.Mode + string(snap.State) {
		h = h*31 + uint64(c) //#nosec G115 -- hash computation
	}
	h = h*31 + uint64(snap.Score)           //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Best)            //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Multiplier10)    //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.ChainDepth)      //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.TimeRemainingMs) //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.BallCount)       //#nosec G115 -- hash computation

	for _, v := range snap.BallData {
		h = h*31 + uint64(v) //#nosec G115 -- hash computation
	}

	return h
}
