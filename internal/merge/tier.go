// Package merge implements the rules of the merge puzzle: which balls fuse,
// how a merge is scored, when the stack has overflowed and how a session
// moves between its states.
//
// Everything here runs on a logical clock (timeline.Scheduler) owned by the
// Session, so tests can fast-forward through combos and countdowns.
package merge

import (
	"fmt"
	"strconv"
)

// Tier is the size class of a ball, 0 (smallest) through TopTier.
type Tier int

// TierCount is the number of ball sizes.
const TierCount = 10

// TopTier is the largest ball. Creating it wins the game.
const TopTier Tier = TierCount - 1

var tierNames = [TierCount]string{
	"smallest",
	"small",
	"mediumSmall",
	"medium",
	"mediumLarge",
	"large",
	"larger",
	"evenLarger",
	"almostLargest",
	"largest",
}

// Valid reports whether t is one of the ten tiers.
func (t Tier) Valid() bool {
	return t >= 0 && t <= TopTier
}

// IsTop reports whether t is the largest tier.
func (t Tier) IsTop() bool {
	return t == TopTier
}

// Next returns the tier a merge of two t balls produces. It saturates at
// TopTier instead of overflowing.
func (t Tier) Next() Tier {
	switch {
	case t < 0:
		return 0
	case t >= TopTier:
		return TopTier
	default:
		return t + 1
	}
}

// Diameter returns the ball diameter in container units.
func (t Tier) Diameter() float64 {
	return 30 + 10*float64(t)
}

// Radius returns half the diameter.
func (t Tier) Radius() float64 {
	return t.Diameter() / 2
}

// Mass grows linearly so big balls push small ones aside.
func (t Tier) Mass() float64 {
	return float64(t+1) * 0.3
}

// Points is the base score for creating a ball of this tier.
func (t Tier) Points() int {
	return int(t+1) * 10
}

// Name returns the default asset id for the tier.
func (t Tier) Name() string {
	if !t.Valid() {
		return "unknown"
	}
	return tierNames[t]
}

func (t Tier) String() string {
	return fmt.Sprintf("tier %d (%s)", int(t), t.Name())
}

// ParseTier accepts either a tier number ("3") or an asset name ("medium").
func ParseTier(s string) (Tier, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if t := Tier(n); t.Valid() {
			return t, nil
		}
		return 0, fmt.Errorf("merge: tier %d out of range 0-%d", n, TopTier)
	}
	for i, name := range tierNames {
		if name == s {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("merge: unknown tier %q", s)
}
