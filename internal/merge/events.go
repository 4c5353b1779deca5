package merge

import (
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/bloom/internal/core"
)

// Event is a one-way notification from a Session to its Presenter.
type Event interface {
	mergeEvent()
}

// ScoreChanged is sent whenever the score moves, and once on every reset.
type ScoreChanged struct {
	Score int
}

func (ScoreChanged) mergeEvent() {}

// ComboChanged carries the multiplier and how long it has left. It is sent
// after every merge and with Remaining zero when the combo lapses.
type ComboChanged struct {
	Multiplier float64
	Remaining  time.Duration
}

func (ComboChanged) mergeEvent() {}

// BallSpawned is sent when a new current ball appears above the container.
type BallSpawned struct {
	ID   uuid.UUID
	Tier Tier
}

func (BallSpawned) mergeEvent() {}

// TimeRewardEarned is sent when a merge adds time to the countdown.
type TimeRewardEarned struct {
	Seconds  time.Duration
	Reason   string
	Position core.Vec2
}

func (TimeRewardEarned) mergeEvent() {}

// EndReason says why a game ended.
type EndReason string

const (
	EndOverflow EndReason = "overflow" // A settled ball rose past the boundary
	EndTimeout  EndReason = "timeout"  // The timed mode countdown ran out
)

// GameEnded is sent on the transition to game over.
type GameEnded struct {
	Score  int
	Reason EndReason
}

func (GameEnded) mergeEvent() {}

// GameWon is sent when the top tier is created.
type GameWon struct {
	Score int
}

func (GameWon) mergeEvent() {}

// MergeOccurred is sent for each merge so the presentation layer can play
// feedback at the merge point.
type MergeOccurred struct {
	From       Tier
	To         Tier
	Position   core.Vec2
	At         time.Duration
	Points     int
	ChainDepth int
}

func (MergeOccurred) mergeEvent() {}

// StateChanged is sent after every session transition.
type StateChanged struct {
	From, To State
}

func (StateChanged) mergeEvent() {}
