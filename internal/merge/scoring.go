package merge

import (
	"fmt"
	"math"
	"time"

	"github.com/vovakirdan/bloom/internal/config"
	"github.com/vovakirdan/bloom/internal/timeline"
)

// ScoreDelta is the full result of scoring one merge.
type ScoreDelta struct {
	Tier       Tier    // Tier that was created
	Base       int     // Tier points before any bonus
	ChainBonus float64 // 1.0 outside a chain
	WithChain  int     // floor(Base * ChainBonus)
	Multiplier float64 // Combo multiplier after this merge
	ChainDepth int     // 0 when this merge started a new chain
	Points     int     // floor(WithChain * Multiplier), added to the score

	// TimeReward is the bonus time this merge earns in the timed mode.
	TimeReward   time.Duration
	RewardReason string

	Win bool // Tier is the top tier

	// SinceLast is the gap to the previous merge; HadPrevious is false
	// for the first merge of a session.
	SinceLast   time.Duration
	HadPrevious bool
}

// Scoring tracks the combo multiplier and chain reactions of one session.
// Expiry windows are timers on the session clock.
type Scoring struct {
	clock *timeline.Scheduler

	comboExpiry time.Duration
	comboStep   float64
	comboMax    float64
	chainWindow time.Duration
	chainStep   float64
	chainCap    int

	multiplier float64
	lastMerge  time.Duration
	hasLast    bool
	comboTimer timeline.TimerID

	chainOpen  bool
	chainDepth int
	chainTimer timeline.TimerID

	onComboReset func()
}

// NewScoring creates a controller on clock. onComboReset runs when the
// combo window lapses without another merge; it may be nil.
func NewScoring(clock *timeline.Scheduler, cfg config.BloomConfig, onComboReset func()) *Scoring {
	return &Scoring{
		clock:        clock,
		comboExpiry:  config.Seconds(cfg.Combo.Expiry),
		comboStep:    cfg.Combo.Step,
		comboMax:     cfg.Combo.Max,
		chainWindow:  config.Seconds(cfg.Chain.Window),
		chainStep:    cfg.Chain.Step,
		chainCap:     cfg.SpeedMode.ChainCapSec,
		multiplier:   1.0,
		onComboReset: onComboReset,
	}
}

// Multiplier returns the current combo multiplier, always in [1, max].
func (s *Scoring) Multiplier() float64 {
	return s.multiplier
}

// ChainDepth returns the depth of the running chain.
func (s *Scoring) ChainDepth() int {
	return s.chainDepth
}

// ChainOpen reports whether a merge now would extend a chain.
func (s *Scoring) ChainOpen() bool {
	return s.chainOpen
}

// ComboRemaining returns how long the current combo has left, zero when
// no combo window is running.
func (s *Scoring) ComboRemaining() time.Duration {
	d, ok := s.clock.Remaining(s.comboTimer)
	if !ok {
		return 0
	}
	return d
}

// ComboWindow returns the full length of the combo window.
func (s *Scoring) ComboWindow() time.Duration {
	return s.comboExpiry
}

// OnMergeOccurred scores a merge that created newTier at time at.
func (s *Scoring) OnMergeOccurred(newTier Tier, at time.Duration) ScoreDelta {
	d := ScoreDelta{Tier: newTier, Base: newTier.Points()}

	// Combo.
	if s.hasLast {
		d.SinceLast = at - s.lastMerge
		d.HadPrevious = true
	}
	if d.HadPrevious && d.SinceLast < s.comboExpiry {
		s.multiplier = math.Min(s.multiplier+s.comboStep, s.comboMax)
	} else {
		s.multiplier = 1.0
	}
	s.lastMerge = at
	s.hasLast = true
	s.clock.Cancel(s.comboTimer)
	s.comboTimer = s.clock.After(s.comboExpiry, s.expireCombo)

	// Chain.
	d.ChainBonus = 1.0
	if s.chainOpen {
		s.chainDepth++
		d.ChainBonus = 1.0 + s.chainStep*float64(s.chainDepth-1)
	} else {
		s.chainDepth = 0
	}
	s.chainOpen = true
	s.clock.Cancel(s.chainTimer)
	s.chainTimer = s.clock.After(s.chainWindow, s.closeChain)

	d.Multiplier = s.multiplier
	d.ChainDepth = s.chainDepth
	d.WithChain = int(math.Floor(float64(d.Base) * d.ChainBonus))
	d.Points = int(math.Floor(float64(d.WithChain) * d.Multiplier))

	d.TimeReward, d.RewardReason = s.timeReward()
	d.Win = newTier.IsTop()
	return d
}

// timeReward grants flat seconds for a hot combo plus up to chainCap
// seconds for a chain deeper than one.
func (s *Scoring) timeReward() (time.Duration, string) {
	if s.multiplier <= 1.0 && s.chainDepth <= 1 {
		return 0, ""
	}

	var seconds int
	switch {
	case s.multiplier >= 2.5:
		seconds = 3
	case s.multiplier >= 2.0:
		seconds = 2
	case s.multiplier >= 1.5:
		seconds = 1
	}
	if s.chainDepth > 1 {
		seconds += min(s.chainDepth, s.chainCap)
	}
	if seconds == 0 {
		return 0, ""
	}

	reason := fmt.Sprintf("Chain x%d", s.chainDepth)
	if s.multiplier > 1.0 {
		reason = fmt.Sprintf("Combo x%.1f", s.multiplier)
	}
	return time.Duration(seconds) * time.Second, reason
}

func (s *Scoring) expireCombo() {
	s.comboTimer = 0
	s.multiplier = 1.0
	if s.onComboReset != nil {
		s.onComboReset()
	}
}

func (s *Scoring) closeChain() {
	s.chainTimer = 0
	s.chainOpen = false
	s.chainDepth = 0
}

// Reset clears combo and chain state and cancels their timers.
func (s *Scoring) Reset() {
	s.clock.Cancel(s.comboTimer)
	s.clock.Cancel(s.chainTimer)
	s.comboTimer, s.chainTimer = 0, 0
	s.multiplier = 1.0
	s.hasLast = false
	s.lastMerge = 0
	s.chainOpen = false
	s.chainDepth = 0
}
