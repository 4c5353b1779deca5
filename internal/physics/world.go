// Package physics is a small circle simulator for the merge container:
// gravity, walls, a floor, an open top and ball-ball impulses. It reports
// begin-contact events for the merge rules to act on and never decides
// anything about merging itself.
package physics

import (
	"bytes"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/bloom/internal/config"
	"github.com/vovakirdan/bloom/internal/core"
	"github.com/vovakirdan/bloom/internal/merge"
)

const (
	// contactSlop is how far apart two surfaces may be and still count as touching.
	contactSlop = 0.5

	// restSpeed is the bounce speed below which a ball stops on the floor.
	restSpeed = 30.0
)

type pairKey struct {
	lo, hi uuid.UUID
}

func keyOf(a, b *merge.Ball) pairKey {
	if bytes.Compare(a.ID[:], b.ID[:]) > 0 {
		a, b = b, a
	}
	return pairKey{lo: a.ID, hi: b.ID}
}

// World holds the balls of one container. It implements merge.Simulator.
type World struct {
	width, height float64

	gravity     float64
	restitution float64
	friction    float64
	damping     float64
	iterations  int

	balls []*merge.Ball

	touching map[pairKey]bool
	onSensor map[uuid.UUID]bool
	escaped  map[uuid.UUID]bool
}

var _ merge.Simulator = (*World)(nil)

// NewWorld creates an empty world sized and tuned from cfg.
func NewWorld(cfg config.BloomConfig) *World {
	iterations := cfg.Physics.Iterations
	if iterations < 1 {
		iterations = 1
	}
	return &World{
		width:       cfg.Container.Width,
		height:      cfg.Container.Height,
		gravity:     cfg.Physics.Gravity,
		restitution: cfg.Physics.Restitution,
		friction:    cfg.Physics.Friction,
		damping:     cfg.Physics.LinearDamping,
		iterations:  iterations,
		touching:    make(map[pairKey]bool),
		onSensor:    make(map[uuid.UUID]bool),
		escaped:     make(map[uuid.UUID]bool),
	}
}

// AddBall puts b into the world.
func (w *World) AddBall(b *merge.Ball) {
	w.balls = append(w.balls, b)
}

// RemoveBall takes b out of the world and forgets its contacts.
func (w *World) RemoveBall(b *merge.Ball) {
	for i, x := range w.balls {
		if x == b {
			w.balls = append(w.balls[:i], w.balls[i+1:]...)
			break
		}
	}
	w.forget(b.ID)
}

// Clear removes every ball.
func (w *World) Clear() {
	w.balls = nil
	clear(w.touching)
	clear(w.onSensor)
	clear(w.escaped)
}

// Balls returns the balls in insertion order.
func (w *World) Balls() []*merge.Ball {
	return w.balls
}

func (w *World) forget(id uuid.UUID) {
	for k := range w.touching {
		if k.lo == id || k.hi == id {
			delete(w.touching, k)
		}
	}
	delete(w.onSensor, id)
	delete(w.escaped, id)
}

// Step advances the simulation by dt and returns the contacts that began
// during the step: ball pairs first, then boundary touches, then balls that
// left the container. Held balls neither move nor collide.
func (w *World) Step(dt time.Duration) []merge.Contact {
	w.prune()

	secs := dt.Seconds()
	if secs <= 0 {
		return nil
	}

	active := w.active()
	w.integrate(active, secs)
	for i := 0; i < w.iterations; i++ {
		w.solvePairs(active)
		for _, b := range active {
			w.solveWalls(b)
		}
	}
	return w.contacts(active)
}

// prune drops balls something else removed, e.g. merged away.
func (w *World) prune() {
	kept := w.balls[:0]
	for _, b := range w.balls {
		if b.Live() {
			kept = append(kept, b)
			continue
		}
		w.forget(b.ID)
	}
	clear(w.balls[len(kept):])
	w.balls = kept
}

func (w *World) active() []*merge.Ball {
	out := make([]*merge.Ball, 0, len(w.balls))
	for _, b := range w.balls {
		if !b.Held {
			out = append(out, b)
		}
	}
	return out
}

func (w *World) integrate(balls []*merge.Ball, secs float64) {
	keep := math.Max(0, 1-w.damping*secs)
	for _, b := range balls {
		b.Vel.Y += w.gravity * secs
		b.Vel = b.Vel.Scale(keep)
		b.Pos = b.Pos.Add(b.Vel.Scale(secs))
	}
}

func (w *World) solvePairs(balls []*merge.Ball) {
	for i := 0; i < len(balls); i++ {
		for j := i + 1; j < len(balls); j++ {
			w.collide(balls[i], balls[j])
		}
	}
}

// collide separates two overlapping balls in proportion to their inverse
// mass and applies a restitution impulse if they are approaching.
func (w *World) collide(a, b *merge.Ball) {
	d := b.Pos.Sub(a.Pos)
	dist := d.Len()
	minDist := a.Radius() + b.Radius()
	if dist >= minDist {
		return
	}

	n := core.V(1, 0)
	if dist > 0 {
		n = d.Scale(1 / dist)
	}
	invA, invB := 1/a.Mass(), 1/b.Mass()
	invSum := invA + invB

	overlap := minDist - dist
	a.Pos = a.Pos.Sub(n.Scale(overlap * invA / invSum))
	b.Pos = b.Pos.Add(n.Scale(overlap * invB / invSum))

	approach := b.Vel.Sub(a.Vel).Dot(n)
	if approach >= 0 {
		return
	}
	j := -(1 + w.restitution) * approach / invSum
	a.Vel = a.Vel.Sub(n.Scale(j * invA))
	b.Vel = b.Vel.Add(n.Scale(j * invB))
}

func (w *World) solveWalls(b *merge.Ball) {
	r := b.Radius()

	if b.Pos.X < r {
		b.Pos.X = r
		if b.Vel.X < 0 {
			b.Vel.X = -b.Vel.X * w.restitution
		}
	}
	if b.Pos.X > w.width-r {
		b.Pos.X = w.width - r
		if b.Vel.X > 0 {
			b.Vel.X = -b.Vel.X * w.restitution
		}
	}

	if b.Pos.Y < r {
		b.Pos.Y = r
		if b.Vel.Y < 0 {
			b.Vel.Y = -b.Vel.Y * w.restitution
			if b.Vel.Y < restSpeed {
				b.Vel.Y = 0
			}
			b.Vel.X *= 1 - w.friction
		}
	}
}

// contacts diffs the current touching sets against the previous step.
func (w *World) contacts(balls []*merge.Ball) []merge.Contact {
	var out []merge.Contact

	now := make(map[pairKey]bool)
	for i := 0; i < len(balls); i++ {
		for j := i + 1; j < len(balls); j++ {
			a, b := balls[i], balls[j]
			if b.Pos.Sub(a.Pos).Len() > a.Radius()+b.Radius()+contactSlop {
				continue
			}
			k := keyOf(a, b)
			now[k] = true
			if !w.touching[k] {
				out = append(out, merge.Contact{Kind: merge.ContactBalls, A: a, B: b})
			}
		}
	}
	w.touching = now

	// A ball that settles while still on the sensor is reported again so
	// the overflow rule sees it without the drop exemption.
	for _, b := range balls {
		if math.Abs(b.Pos.Y-w.height) > b.Radius() {
			delete(w.onSensor, b.ID)
			continue
		}
		wasDropping, seen := w.onSensor[b.ID]
		if !seen || (wasDropping && !b.Dropping) {
			out = append(out, merge.Contact{Kind: merge.ContactBoundary, A: b})
		}
		w.onSensor[b.ID] = b.Dropping
	}

	for _, b := range balls {
		if b.Pos.Y-b.Radius() > 2*w.height && !w.escaped[b.ID] {
			w.escaped[b.ID] = true
			out = append(out, merge.Contact{Kind: merge.ContactOutOfPlay, A: b})
		}
	}
	return out
}
