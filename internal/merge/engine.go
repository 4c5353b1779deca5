package merge

import (
	"io"
	"math/rand"

	"github.com/google/uuid"

	"github.com/vovakirdan/bloom/internal/config"
	"github.com/vovakirdan/bloom/internal/core"
)

// ContactKind says what a reported contact touched.
type ContactKind int

const (
	ContactBalls     ContactKind = iota // Two balls began touching
	ContactBoundary                     // A ball touched the boundary sensor
	ContactOutOfPlay                    // A ball left the container
)

// Contact is a begin-contact event from the simulator. B is nil unless
// Kind is ContactBalls.
type Contact struct {
	Kind ContactKind
	A, B *Ball
}

// MergeOutcome describes what a ball-ball contact did.
type MergeOutcome struct {
	Merged   bool
	Result   *Ball    // The new ball, nil unless Merged
	Consumed [2]*Ball // The inputs, nil unless Merged
	Position core.Vec2
}

// Engine decides whether two touching balls fuse and builds the result.
type Engine struct {
	rng      *rand.Rand
	ids      io.Reader
	perturbX float64
	perturbY float64
}

// NewEngine creates an engine drawing perturbations and ball ids from rng,
// so a seeded run is reproducible end to end.
func NewEngine(rng *rand.Rand, cfg config.MergeConfig) *Engine {
	return &Engine{
		rng:      rng,
		ids:      rng,
		perturbX: cfg.PerturbX,
		perturbY: cfg.PerturbY,
	}
}

// NewBall creates a live ball with a fresh identity.
func (e *Engine) NewBall(tier Tier, pos core.Vec2) *Ball {
	id, err := uuid.NewRandomFromReader(e.ids)
	if err != nil {
		id = uuid.New()
	}
	return &Ball{ID: id, Tier: tier, Pos: pos}
}

// CanMerge reports whether a and b would fuse: two distinct live balls of
// the same tier below the top.
func (e *Engine) CanMerge(a, b *Ball) bool {
	return a.Live() && b.Live() && a != b && a.Tier == b.Tier && !a.Tier.IsTop()
}

// OnContact resolves one ball-ball contact. On a merge both inputs are
// marked removed and a ball of the next tier appears at their midpoint with
// a small random velocity so results do not stack perfectly. Any other
// contact is a plain collision and returns a zero outcome.
func (e *Engine) OnContact(a, b *Ball) MergeOutcome {
	if !e.CanMerge(a, b) {
		return MergeOutcome{}
	}

	mid := a.Pos.Midpoint(b.Pos)
	result := e.NewBall(a.Tier.Next(), mid)
	result.Vel = core.V(e.spread(e.perturbX), e.spread(e.perturbY))

	a.remove()
	b.remove()

	return MergeOutcome{
		Merged:   true,
		Result:   result,
		Consumed: [2]*Ball{a, b},
		Position: mid,
	}
}

// Resolve applies ball-ball contacts in report order. A ball consumed
// earlier in the pass is skipped, so no ball takes part in two merges.
func (e *Engine) Resolve(contacts []Contact) []MergeOutcome {
	var outcomes []MergeOutcome
	for _, c := range contacts {
		if c.Kind != ContactBalls {
			continue
		}
		if out := e.OnContact(c.A, c.B); out.Merged {
			outcomes = append(outcomes, out)
		}
	}
	return outcomes
}

// spread returns a uniform value in [-limit, limit].
func (e *Engine) spread(limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return (e.rng.Float64()*2 - 1) * limit
}
