package merge

import (
	"github.com/google/uuid"

	"github.com/vovakirdan/bloom/internal/core"
)

// Ball is one entity in the container. Position and velocity belong to the
// simulator; the merge rules only read them.
type Ball struct {
	ID   uuid.UUID
	Tier Tier
	Pos  core.Vec2
	Vel  core.Vec2

	// Held is true while the ball is the undropped current ball. The
	// simulator does not move held balls.
	Held bool

	// Dropping is true from spawn until the ball has had time to settle
	// after release. A dropping ball cannot end the game.
	Dropping bool

	removed bool
}

// Live reports whether the ball still exists in the world.
func (b *Ball) Live() bool {
	return b != nil && !b.removed
}

// Removed reports whether the ball was consumed by a merge, fell out of
// play or was cleared.
func (b *Ball) Removed() bool {
	return b != nil && b.removed
}

// Radius returns the ball radius in container units.
func (b *Ball) Radius() float64 {
	return b.Tier.Radius()
}

// Mass returns the ball mass used by the simulator.
func (b *Ball) Mass() float64 {
	return b.Tier.Mass()
}

func (b *Ball) remove() {
	b.removed = true
	b.Held = false
}
