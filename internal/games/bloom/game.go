// Package bloom adapts the merge session to the platform's fixed-tick game
// interface. Each tick steps the physics world, feeds its contacts to the
// session, then advances the session clock by the same amount.
package bloom

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bloom/internal/config"
	"github.com/vovakirdan/bloom/internal/core"
	"github.com/vovakirdan/bloom/internal/merge"
	"github.com/vovakirdan/bloom/internal/physics"
	"github.com/vovakirdan/bloom/internal/registry"
)

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names fall back
// to normal.
func SetDifficultyPreset(preset string) {
	p, err := config.ParseDifficulty(preset)
	if err != nil {
		p = config.DifficultyNormal
	}
	difficultyPreset = p
}

// floatTicks is how long a floating text stays on screen.
const floatTicks = 60

// floatText is a short-lived label drawn at a container position.
type floatText struct {
	text  string
	pos   core.Vec2
	color core.Color
	ttl   int
}

// Game implements registry.Game for one merge mode.
type Game struct {
	mode merge.Mode
	svc  registry.Services
	log  *log.Logger

	runtime core.RuntimeConfig
	cfg     config.BloomConfig
	session *merge.Session
	world   *physics.World

	tick    uint64
	floats  []floatText
	lastEnd merge.Event // GameEnded or GameWon of the last finished game
}

// New creates a game for mode wired to svc.
func New(mode merge.Mode, svc registry.Services) *Game {
	logger := svc.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Game{mode: mode, svc: svc, log: logger}
}

func init() {
	for _, m := range merge.Modes() {
		registry.Register(m.ID, func(svc registry.Services) registry.Game {
			return New(m, svc)
		})
	}
}

// ID returns the mode identifier.
func (g *Game) ID() string { return g.mode.ID }

// Title returns the display name for this mode.
func (g *Game) Title() string { return g.mode.Title }

// Description returns the menu blurb.
func (g *Game) Description() string { return g.mode.Description }

// LeadersKey returns the best score key of the mode.
func (g *Game) LeadersKey() string { return g.mode.LeadersKey }

// Reset loads the config and starts a new session.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime

	cfg, err := config.LoadBloom(configPath)
	if err != nil {
		g.log.Warn("cannot load config, using defaults", "path", configPath, "error", err)
		cfg = config.DefaultBloomConfig()
	}
	if difficultyPreset != "" {
		config.ApplyBloomPreset(&cfg, difficultyPreset)
	}
	g.cfg = cfg

	if g.session != nil {
		g.session.Close()
	}
	g.world = physics.NewWorld(cfg)
	g.session = merge.NewSession(g.mode, cfg, merge.Deps{
		Presenter:    g,
		Achievements: g.svc.Achievements,
		Scores:       g.svc.Scores,
		Skins:        g.svc.Skins,
		Simulator:    g.world,
		Logger:       g.svc.Logger,
		Seed:         runtime.Seed,
	})
	g.tick = 0
	g.floats = nil
	g.lastEnd = nil
	g.session.Start()
}

// Close tears the session down.
func (g *Game) Close() {
	if g.session != nil {
		g.session.Close()
	}
}

// Session exposes the running session, mostly for tests.
func (g *Game) Session() *merge.Session { return g.session }

// World exposes the physics world, mostly for tests.
func (g *Game) World() *physics.World { return g.world }

// tickDuration is the simulated time of one Step.
func (g *Game) tickDuration() time.Duration {
	return time.Duration(g.runtime.TickSeconds() * float64(time.Second))
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.session == nil {
		return core.StepResult{State: g.State()}
	}
	s := g.session

	if in.Has(core.ActionRestart) {
		g.floats = nil
		s.Restart()
		return core.StepResult{State: g.State()}
	}
	if in.Has(core.ActionPause) {
		s.TogglePause()
	}

	switch s.State() {
	case merge.StateWin:
		if in.Has(core.ActionConfirm) {
			g.floats = nil
			s.NextLevel()
		}
		return core.StepResult{State: g.State()}
	case merge.StateGameOver:
		if in.Has(core.ActionConfirm) {
			g.floats = nil
			s.Start()
		}
		return core.StepResult{State: g.State()}
	case merge.StatePlaying:
	default:
		return core.StepResult{State: g.State()}
	}

	g.tick++

	step := g.cfg.Container.MoveStep
	if in.Has(core.ActionLeft) {
		s.Nudge(-step)
	}
	if in.Has(core.ActionRight) {
		s.Nudge(step)
	}
	if in.Has(core.ActionDrop) {
		s.Drop()
	}

	dt := g.tickDuration()
	s.HandleContacts(g.world.Step(dt))
	s.Advance(dt)

	g.ageFloats()
	return core.StepResult{State: g.State()}
}

// State returns the platform summary of the session.
func (g *Game) State() core.GameState {
	if g.session == nil {
		return core.GameState{}
	}
	st := g.session.State()
	return core.GameState{
		Score:    g.session.Score(),
		Best:     g.session.Best(),
		GameOver: st == merge.StateGameOver,
		Won:      st == merge.StateWin,
		Paused:   st == merge.StatePaused,
	}
}

// Present implements merge.Presenter.
func (g *Game) Present(e merge.Event) {
	switch e := e.(type) {
	case merge.MergeOccurred:
		g.addFloat(fmt.Sprintf("+%d", e.Points), e.Position, core.ColorBrightYellow)
		if e.ChainDepth > 0 {
			g.addFloat(fmt.Sprintf("Chain x%d", e.ChainDepth), e.Position.Add(core.V(0, 30)), core.ColorBrightMagenta)
		}
	case merge.TimeRewardEarned:
		label := fmt.Sprintf("+%ds", int(e.Seconds/time.Second))
		g.addFloat(label, e.Position.Add(core.V(0, -30)), core.ColorBrightCyan)
	case merge.GameEnded:
		g.lastEnd = e
		g.recordResult(e.Score)
	case merge.GameWon:
		g.lastEnd = e
		g.recordResult(e.Score)
	}
}

func (g *Game) recordResult(score int) {
	if g.svc.Results == nil || score <= 0 {
		return
	}
	if _, err := g.svc.Results.SaveScore(g.mode.ID, score); err != nil {
		g.log.Warn("cannot record finished game", "mode", g.mode.ID, "score", score, "error", err)
	}
}

func (g *Game) addFloat(text string, pos core.Vec2, color core.Color) {
	g.floats = append(g.floats, floatText{text: text, pos: pos, color: color, ttl: floatTicks})
}

// ageFloats drifts floating texts upward and drops expired ones.
func (g *Game) ageFloats() {
	kept := g.floats[:0]
	for _, f := range g.floats {
		f.ttl--
		if f.ttl <= 0 {
			continue
		}
		f.pos.Y += 0.5
		kept = append(kept, f)
	}
	g.floats = kept
}
