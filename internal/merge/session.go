package merge

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/looplab/fsm"

	"github.com/vovakirdan/bloom/internal/config"
	"github.com/vovakirdan/bloom/internal/core"
	"github.com/vovakirdan/bloom/internal/timeline"
)

// State is a session state.
type State string

const (
	StateReady    State = "ready"
	StatePlaying  State = "playing"
	StatePaused   State = "paused"
	StateGameOver State = "gameOver"
	StateWin      State = "win"
)

// Session events.
const (
	evStart     = "start"
	evPause     = "pause"
	evResume    = "resume"
	evRestart   = "restart"
	evNextLevel = "nextLevel"
	evLose      = "lose"
	evWin       = "reachTop"
)

var allStates = []string{
	string(StateReady), string(StatePlaying), string(StatePaused),
	string(StateGameOver), string(StateWin),
}

func sessionTransitions() fsm.Events {
	return fsm.Events{
		{Name: evStart, Src: []string{string(StateReady), string(StateGameOver), string(StateWin)}, Dst: string(StatePlaying)},
		{Name: evPause, Src: []string{string(StatePlaying)}, Dst: string(StatePaused)},
		{Name: evResume, Src: []string{string(StatePaused)}, Dst: string(StatePlaying)},
		{Name: evRestart, Src: allStates, Dst: string(StatePlaying)},
		{Name: evNextLevel, Src: allStates, Dst: string(StatePlaying)},
		{Name: evLose, Src: []string{string(StatePlaying)}, Dst: string(StateGameOver)},
		{Name: evWin, Src: []string{string(StatePlaying)}, Dst: string(StateWin)},
	}
}

// Deps are the collaborators a Session talks to. Nil fields get no-op
// implementations.
type Deps struct {
	Presenter    Presenter
	Achievements AchievementSink
	Scores       ScoreStore
	Skins        SkinLookup
	Simulator    Simulator
	Logger       *log.Logger
	Seed         int64
}

func (d Deps) withDefaults() Deps {
	if d.Presenter == nil {
		d.Presenter = nopPresenter{}
	}
	if d.Achievements == nil {
		d.Achievements = NopAchievements{}
	}
	if d.Scores == nil {
		d.Scores = nopScores{}
	}
	if d.Skins == nil {
		d.Skins = DefaultSkins{}
	}
	if d.Simulator == nil {
		d.Simulator = nopSimulator{}
	}
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	return d
}

// Session is one game of one mode. It owns the logical clock, the ball
// set and the current ball; every mutation goes through its methods on a
// single goroutine. Operations that do not apply in the current state are
// ignored and return false.
type Session struct {
	mode Mode
	cfg  config.BloomConfig
	deps Deps
	log  *log.Logger

	machine  *fsm.FSM
	clock    *timeline.Scheduler
	rng      *rand.Rand
	engine   *Engine
	scoring  *Scoring
	boundary Boundary
	spawns   SpawnTable

	// epoch is bumped on every reset and on teardown. Timer callbacks
	// scheduled under an older epoch do nothing.
	epoch  uint64
	closed bool

	balls   []*Ball
	current *Ball
	score   int
	best    int

	countdown     timeline.TimerID
	frozenTime    time.Duration // Remaining countdown once the game is over
	endReason     EndReason
	spawnPending  bool
	settleTimeout time.Duration
	spawnDelay    time.Duration
}

// NewSession creates a session in the ready state and loads the best
// score for the mode.
func NewSession(mode Mode, cfg config.BloomConfig, deps Deps) *Session {
	deps = deps.withDefaults()
	rng := rand.New(rand.NewSource(deps.Seed))
	clock := timeline.NewScheduler()

	s := &Session{
		mode:          mode,
		cfg:           cfg,
		deps:          deps,
		log:           deps.Logger.With("mode", mode.ID),
		clock:         clock,
		rng:           rng,
		engine:        NewEngine(rng, cfg.Merge),
		spawns:        NewSpawnTable(cfg.Spawn.Weights),
		settleTimeout: config.Seconds(cfg.Timing.SettleDelay),
		spawnDelay:    config.Seconds(cfg.Timing.SpawnDelay),
	}
	s.scoring = NewScoring(clock, cfg, s.onComboReset)
	s.machine = fsm.NewFSM(string(StateReady), sessionTransitions(), fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			s.log.Debug("session transition", "event", e.Event, "from", e.Src, "to", e.Dst)
			s.present(StateChanged{From: State(e.Src), To: State(e.Dst)})
		},
	})

	best, err := deps.Scores.LoadHighScore(mode.LeadersKey)
	if err != nil {
		s.log.Warn("cannot load high score", "key", mode.LeadersKey, "error", err)
	}
	s.best = best
	return s
}

// fire runs a state machine event. Re-entering the current state counts as
// success so restart works from playing.
func (s *Session) fire(event string) bool {
	if s.closed {
		return false
	}
	err := s.machine.Event(context.Background(), event)
	if err == nil {
		return true
	}
	var same fsm.NoTransitionError
	if errors.As(err, &same) && same.Err == nil {
		return true
	}
	s.log.Debug("ignored session event", "event", event, "state", s.machine.Current(), "error", err)
	return false
}

// Start begins a game from ready, game over or win.
func (s *Session) Start() bool {
	return s.begin(evStart)
}

// Restart throws the current world away and starts a new game from any state.
func (s *Session) Restart() bool {
	return s.begin(evRestart)
}

// NextLevel starts a fresh game after a win. It accepts any state, like Restart.
func (s *Session) NextLevel() bool {
	return s.begin(evNextLevel)
}

func (s *Session) begin(event string) bool {
	from := s.State()
	wasLive := from == StatePlaying || from == StatePaused
	if !s.fire(event) {
		return false
	}
	if s.State() == from {
		// The state machine skips enter_state on a self transition.
		s.present(StateChanged{From: from, To: from})
	}
	if wasLive {
		s.deps.Achievements.OnSessionEnd()
	}
	s.resetWorld()
	s.deps.Achievements.OnSessionStart()
	return true
}

func (s *Session) resetWorld() {
	s.epoch++
	s.scoring.Reset()
	s.clock.Reset()
	s.deps.Simulator.Clear()
	s.balls = nil
	s.current = nil
	s.spawnPending = false
	s.score = 0
	s.endReason = ""
	s.frozenTime = 0
	s.countdown = 0

	s.present(ScoreChanged{Score: 0})
	s.present(ComboChanged{Multiplier: 1.0})

	if s.mode.Timed {
		s.countdown = s.after(config.Seconds(s.cfg.SpeedMode.Duration), s.timeout)
	}
	s.spawnCurrent()
}

// Pause freezes the clock. Combo, chain, settle, spawn and countdown timers
// keep their remaining durations.
func (s *Session) Pause() bool {
	if !s.fire(evPause) {
		return false
	}
	s.clock.Pause()
	s.deps.Achievements.OnSessionPause()
	return true
}

// Resume continues a paused game from where the clock stopped.
func (s *Session) Resume() bool {
	if !s.fire(evResume) {
		return false
	}
	s.clock.Resume()
	return true
}

// TogglePause pauses a running game or resumes a paused one.
func (s *Session) TogglePause() bool {
	switch s.State() {
	case StatePlaying:
		return s.Pause()
	case StatePaused:
		return s.Resume()
	}
	return false
}

// Advance moves the session clock by dt while playing, firing due timers.
func (s *Session) Advance(dt time.Duration) {
	if s.closed || s.State() != StatePlaying {
		return
	}
	s.clock.Advance(dt)
}

// MoveCurrent places the held ball at x, clamped inside the container walls.
func (s *Session) MoveCurrent(x float64) bool {
	if s.closed || s.State() != StatePlaying || s.current == nil {
		return false
	}
	r := s.current.Radius()
	s.current.Pos.X = core.ClampF(x, r, s.cfg.Container.Width-r)
	return true
}

// Nudge moves the held ball horizontally by dx.
func (s *Session) Nudge(dx float64) bool {
	if s.current == nil {
		return false
	}
	return s.MoveCurrent(s.current.Pos.X + dx)
}

// Drop releases the held ball. It keeps its dropping flag until the settle
// delay passes; the next ball appears after the spawn delay.
func (s *Session) Drop() bool {
	if s.closed || s.State() != StatePlaying || s.current == nil {
		return false
	}
	b := s.current
	s.current = nil
	b.Held = false
	b.Dropping = true

	s.after(s.settleTimeout, func() {
		if !b.Live() {
			return
		}
		b.Dropping = false
		s.deps.Achievements.OnFailedMerge()
	})

	s.spawnPending = true
	s.after(s.spawnDelay, func() {
		s.spawnPending = false
		if s.State() == StatePlaying && s.current == nil {
			s.spawnCurrent()
		}
	})
	return true
}

func (s *Session) spawnCurrent() {
	tier := s.spawns.Pick(s.rng)
	pos := core.V(s.cfg.Container.Width/2, s.cfg.Container.Height+s.cfg.Container.SpawnHeadroom)
	b := s.engine.NewBall(tier, pos)
	b.Held = true
	b.Dropping = true
	s.addBall(b)
	s.current = b
	s.present(BallSpawned{ID: b.ID, Tier: tier})
}

// HandleContacts applies one resolution pass of begin-contact events in
// report order. Ball pairs go to the merge engine, boundary touches to the
// overflow rule, out-of-play reports remove the ball. The pass stops as
// soon as the game ends.
func (s *Session) HandleContacts(contacts []Contact) {
	for _, c := range contacts {
		if s.closed || s.State() != StatePlaying {
			return
		}
		switch c.Kind {
		case ContactBalls:
			if c.A == nil || c.B == nil || c.A.Held || c.B.Held {
				continue
			}
			if out := s.engine.OnContact(c.A, c.B); out.Merged {
				s.applyMerge(out)
			}
		case ContactBoundary:
			if s.boundary.Triggers(c.A) {
				s.lose(EndOverflow)
			}
		case ContactOutOfPlay:
			if c.A.Live() && !c.A.Held {
				c.A.remove()
				s.dropBall(c.A)
			}
		}
	}
}

func (s *Session) applyMerge(out MergeOutcome) {
	for _, b := range out.Consumed {
		s.dropBall(b)
	}
	result := out.Result
	result.Dropping = true
	s.addBall(result)
	s.after(s.settleTimeout, func() {
		if result.Live() {
			result.Dropping = false
		}
	})

	now := s.clock.Now()
	delta := s.scoring.OnMergeOccurred(result.Tier, now)
	s.score += delta.Points

	s.present(MergeOccurred{
		From:       out.Consumed[0].Tier,
		To:         result.Tier,
		Position:   out.Position,
		At:         now,
		Points:     delta.Points,
		ChainDepth: delta.ChainDepth,
	})
	s.present(ScoreChanged{Score: s.score})
	s.present(ComboChanged{Multiplier: delta.Multiplier, Remaining: s.scoring.ComboRemaining()})

	if s.mode.Timed && delta.TimeReward > 0 && s.clock.Extend(s.countdown, delta.TimeReward) {
		s.present(TimeRewardEarned{Seconds: delta.TimeReward, Reason: delta.RewardReason, Position: out.Position})
	}

	ach := s.deps.Achievements
	ach.OnSuccessfulMerge()
	if delta.ChainDepth >= 3 {
		ach.OnMultiMerge(delta.ChainDepth)
	}
	if delta.Multiplier > 1.0 {
		ach.OnLargeCombo()
	}
	if delta.HadPrevious {
		ach.OnQuickMerge(delta.SinceLast)
	}
	if delta.Win {
		ach.OnTopTierCreated(now)
		s.win()
	}
}

func (s *Session) onComboReset() {
	s.present(ComboChanged{Multiplier: 1.0})
}

func (s *Session) timeout() {
	s.countdown = 0
	s.lose(EndTimeout)
}

func (s *Session) lose(reason EndReason) {
	remaining := s.TimeRemaining()
	if !s.fire(evLose) {
		return
	}
	s.endReason = reason
	s.finish(remaining)
	s.present(GameEnded{Score: s.score, Reason: reason})
}

func (s *Session) win() {
	remaining := s.TimeRemaining()
	if !s.fire(evWin) {
		return
	}
	s.finish(remaining)
	s.present(GameWon{Score: s.score})
}

// finish freezes the world: no timers survive a terminal state.
func (s *Session) finish(remaining time.Duration) {
	s.frozenTime = remaining
	s.clock.CancelAll()
	s.countdown = 0
	s.spawnPending = false
	s.epoch++
	s.saveHighScore()
	s.deps.Achievements.OnSessionEnd()
}

func (s *Session) saveHighScore() {
	if s.score <= 0 || s.score <= s.best {
		return
	}
	s.best = s.score
	if err := s.deps.Scores.SaveHighScore(s.mode.LeadersKey, s.score); err != nil {
		s.log.Warn("cannot save high score", "key", s.mode.LeadersKey, "score", s.score, "error", err)
	}
}

// Close tears the session down: every timer is cancelled and later calls
// are ignored. A game still in progress is reported as ended.
func (s *Session) Close() {
	if s.closed {
		return
	}
	if st := s.State(); st == StatePlaying || st == StatePaused {
		s.deps.Achievements.OnSessionEnd()
	}
	s.clock.CancelAll()
	s.epoch++
	s.closed = true
}

// after schedules fn on the session clock, guarded by the current epoch.
func (s *Session) after(d time.Duration, fn func()) timeline.TimerID {
	epoch := s.epoch
	return s.clock.After(d, func() {
		if s.closed || epoch != s.epoch {
			return
		}
		fn()
	})
}

func (s *Session) addBall(b *Ball) {
	s.balls = append(s.balls, b)
	s.deps.Simulator.AddBall(b)
}

func (s *Session) dropBall(b *Ball) {
	for i, x := range s.balls {
		if x == b {
			s.balls = append(s.balls[:i], s.balls[i+1:]...)
			break
		}
	}
	s.deps.Simulator.RemoveBall(b)
}

func (s *Session) present(e Event) {
	s.deps.Presenter.Present(e)
}

// State returns the current session state.
func (s *Session) State() State {
	return State(s.machine.Current())
}

// Mode returns the session's game mode.
func (s *Session) Mode() Mode { return s.mode }

// Config returns the tuning the session runs with.
func (s *Session) Config() config.BloomConfig { return s.cfg }

// Score returns the current score.
func (s *Session) Score() int { return s.score }

// Best returns the best score known for the mode, including this session.
func (s *Session) Best() int { return max(s.best, s.score) }

// Current returns the held ball, or nil between a drop and the next spawn.
func (s *Session) Current() *Ball { return s.current }

// Balls returns the live balls, the held ball included.
func (s *Session) Balls() []*Ball { return s.balls }

// Multiplier returns the combo multiplier.
func (s *Session) Multiplier() float64 { return s.scoring.Multiplier() }

// ComboRemaining returns the time left in the combo window.
func (s *Session) ComboRemaining() time.Duration { return s.scoring.ComboRemaining() }

// ComboWindow returns the full combo window length.
func (s *Session) ComboWindow() time.Duration { return s.scoring.ComboWindow() }

// ChainDepth returns the depth of the running chain.
func (s *Session) ChainDepth() int { return s.scoring.ChainDepth() }

// Elapsed returns how long the current game has been played, pauses excluded.
func (s *Session) Elapsed() time.Duration { return s.clock.Now() }

// EndReason returns why the last game ended, empty unless in game over.
func (s *Session) EndReason() EndReason { return s.endReason }

// SpawnPending reports whether a new ball is scheduled to appear.
func (s *Session) SpawnPending() bool { return s.spawnPending }

// Skin returns the equipped asset id for a tier.
func (s *Session) Skin(t Tier) string { return s.deps.Skins.EquippedSkin(t) }

// TimeRemaining returns the countdown in the timed mode. Before the first
// start it is the full duration; after the game ends it is frozen.
func (s *Session) TimeRemaining() time.Duration {
	if !s.mode.Timed {
		return 0
	}
	switch s.State() {
	case StateReady:
		return config.Seconds(s.cfg.SpeedMode.Duration)
	case StateGameOver, StateWin:
		return s.frozenTime
	}
	if d, ok := s.clock.Remaining(s.countdown); ok {
		return d
	}
	return 0
}
