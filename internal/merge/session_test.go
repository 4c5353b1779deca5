package merge

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/bloom/internal/config"
	"github.com/vovakirdan/bloom/internal/core"
)

type achievementRecorder struct {
	calls      map[string]int
	quickGaps  []time.Duration
	multiDepth []int
	topTierAt  time.Duration
}

func newAchievementRecorder() *achievementRecorder {
	return &achievementRecorder{calls: make(map[string]int)}
}

func (r *achievementRecorder) OnSuccessfulMerge() { r.calls["merge"]++ }
func (r *achievementRecorder) OnFailedMerge()     { r.calls["failed"]++ }
func (r *achievementRecorder) OnLargeCombo()      { r.calls["combo"]++ }
func (r *achievementRecorder) OnQuickMerge(since time.Duration) {
	r.calls["quick"]++
	r.quickGaps = append(r.quickGaps, since)
}
func (r *achievementRecorder) OnMultiMerge(count int) {
	r.calls["multi"]++
	r.multiDepth = append(r.multiDepth, count)
}
func (r *achievementRecorder) OnTopTierCreated(elapsed time.Duration) {
	r.calls["top"]++
	r.topTierAt = elapsed
}
func (r *achievementRecorder) OnSessionStart() { r.calls["start"]++ }
func (r *achievementRecorder) OnSessionEnd()   { r.calls["end"]++ }
func (r *achievementRecorder) OnSessionPause() { r.calls["pause"]++ }

type memScores struct {
	scores  map[string]int
	saveErr error
}

func (m *memScores) SaveHighScore(key string, score int) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.scores[key] = score
	return nil
}

func (m *memScores) LoadHighScore(key string) (int, error) {
	return m.scores[key], nil
}

type sessionFixture struct {
	s      *Session
	events *EventLog
	ach    *achievementRecorder
	store  *memScores
}

func newFixture(t *testing.T, mode Mode) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		events: &EventLog{},
		ach:    newAchievementRecorder(),
		store:  &memScores{scores: make(map[string]int)},
	}
	f.s = NewSession(mode, config.DefaultBloomConfig(), Deps{
		Presenter:    f.events,
		Achievements: f.ach,
		Scores:       f.store,
		Seed:         42,
	})
	return f
}

func looseBall(tier Tier, x, y float64) *Ball {
	return &Ball{ID: uuid.New(), Tier: tier, Pos: core.V(x, y)}
}

func touch(a, b *Ball) Contact {
	return Contact{Kind: ContactBalls, A: a, B: b}
}

func eventsOf[T Event](log *EventLog) []T {
	var out []T
	for _, e := range log.Events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestSessionStartsReady(t *testing.T) {
	f := newFixture(t, ModeClassic)
	assert.Equal(t, StateReady, f.s.State())
	assert.Nil(t, f.s.Current())
	assert.Empty(t, f.s.Balls())

	assert.False(t, f.s.Pause())
	assert.False(t, f.s.Resume())
	assert.False(t, f.s.Drop())
}

func TestStartSpawnsHeldBall(t *testing.T) {
	f := newFixture(t, ModeClassic)
	require.True(t, f.s.Start())
	assert.Equal(t, StatePlaying, f.s.State())

	cur := f.s.Current()
	require.NotNil(t, cur)
	assert.True(t, cur.Held)
	assert.True(t, cur.Dropping)
	assert.LessOrEqual(t, int(cur.Tier), 3)
	assert.Equal(t, 150.0, cur.Pos.X)
	assert.Equal(t, 500.0, cur.Pos.Y)

	require.NotEmpty(t, f.events.Events)
	assert.Equal(t, StateChanged{From: StateReady, To: StatePlaying}, f.events.Events[0])
	assert.Len(t, eventsOf[BallSpawned](f.events), 1)
	assert.Equal(t, 1, f.ach.calls["start"])
}

func TestMoveCurrentClampsToWalls(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.s.Start()
	r := f.s.Current().Radius()

	f.s.MoveCurrent(-100)
	assert.Equal(t, r, f.s.Current().Pos.X)

	f.s.MoveCurrent(1000)
	assert.Equal(t, 300-r, f.s.Current().Pos.X)

	f.s.MoveCurrent(120)
	f.s.Nudge(10)
	assert.Equal(t, 130.0, f.s.Current().Pos.X)
}

func TestDropSpawnsAfterDelayAndSettles(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.s.Start()
	dropped := f.s.Current()

	require.True(t, f.s.Drop())
	assert.Nil(t, f.s.Current())
	assert.True(t, f.s.SpawnPending())
	assert.False(t, dropped.Held)
	assert.True(t, dropped.Dropping)
	assert.False(t, f.s.Drop(), "nothing to drop until the next spawn")

	f.s.Advance(999 * time.Millisecond)
	assert.Nil(t, f.s.Current())

	f.s.Advance(time.Millisecond)
	require.NotNil(t, f.s.Current())
	assert.False(t, f.s.SpawnPending())
	assert.Len(t, f.s.Balls(), 2)

	f.s.Advance(499 * time.Millisecond)
	assert.True(t, dropped.Dropping)

	f.s.Advance(time.Millisecond)
	assert.False(t, dropped.Dropping)
	assert.Equal(t, 1, f.ach.calls["failed"])
}

func TestTwoSmallestMergeIntoNextTier(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.s.Start()
	f.events.Reset()

	a, b := looseBall(0, 100, 20), looseBall(0, 130, 20)
	f.s.HandleContacts([]Contact{touch(a, b)})

	assert.Equal(t, 20, f.s.Score())
	assert.Equal(t, 1.0, f.s.Multiplier())
	assert.True(t, a.Removed())
	assert.True(t, b.Removed())

	merges := eventsOf[MergeOccurred](f.events)
	require.Len(t, merges, 1)
	assert.Equal(t, Tier(0), merges[0].From)
	assert.Equal(t, Tier(1), merges[0].To)
	assert.Equal(t, core.V(115, 20), merges[0].Position)
	assert.Equal(t, 20, merges[0].Points)

	scores := eventsOf[ScoreChanged](f.events)
	require.Len(t, scores, 1)
	assert.Equal(t, 20, scores[0].Score)

	var result *Ball
	for _, ball := range f.s.Balls() {
		if ball.Tier == 1 && !ball.Held {
			result = ball
		}
	}
	require.NotNil(t, result)
	assert.True(t, result.Dropping)

	assert.Equal(t, 1, f.ach.calls["merge"])
	assert.Zero(t, f.ach.calls["quick"])
	assert.Zero(t, f.ach.calls["combo"])
}

func TestComboAcrossSession(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.s.Start()

	f.s.HandleContacts([]Contact{touch(looseBall(0, 0, 0), looseBall(0, 10, 0))})
	f.s.Advance(time.Second)
	f.s.HandleContacts([]Contact{touch(looseBall(0, 0, 0), looseBall(0, 10, 0))})
	f.s.Advance(time.Second)
	f.s.HandleContacts([]Contact{touch(looseBall(0, 0, 0), looseBall(0, 10, 0))})

	// 20 + 30 + 40
	assert.Equal(t, 90, f.s.Score())
	assert.Equal(t, 2.0, f.s.Multiplier())
	assert.Equal(t, 2, f.ach.calls["combo"])
	assert.Equal(t, []time.Duration{time.Second, time.Second}, f.ach.quickGaps)

	f.events.Reset()
	f.s.Advance(3 * time.Second)
	assert.Equal(t, 1.0, f.s.Multiplier())
	require.NotEmpty(t, f.events.Events)
	assert.Equal(t, ComboChanged{Multiplier: 1.0}, f.events.Events[len(f.events.Events)-1])
}

func TestChainAcrossSession(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.s.Start()

	for i := 0; i < 4; i++ {
		f.s.HandleContacts([]Contact{touch(looseBall(0, 0, 0), looseBall(0, 10, 0))})
		f.s.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, 3, f.s.ChainDepth())
	assert.Equal(t, []int{3}, f.ach.multiDepth)

	f.s.Advance(time.Second)
	assert.Equal(t, 0, f.s.ChainDepth())
	f.s.HandleContacts([]Contact{touch(looseBall(0, 0, 0), looseBall(0, 10, 0))})
	assert.Equal(t, 0, f.s.ChainDepth())
}

func TestMultiWayContactMergesOnce(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.s.Start()

	a, b, c := looseBall(0, 50, 0), looseBall(0, 80, 0), looseBall(0, 20, 0)
	f.s.HandleContacts([]Contact{touch(a, b), touch(a, c), touch(b, c)})

	assert.Len(t, eventsOf[MergeOccurred](f.events), 1)
	assert.True(t, c.Live())
	assert.Equal(t, 20, f.s.Score())
}

func TestHeldBallNeverMerges(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.s.Start()
	cur := f.s.Current()

	f.s.HandleContacts([]Contact{touch(cur, looseBall(cur.Tier, 150, 480))})
	assert.True(t, cur.Live())
	assert.Zero(t, f.s.Score())
}

func TestTopTierWins(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.s.Start()

	later := [2]*Ball{looseBall(0, 0, 0), looseBall(0, 10, 0)}
	f.s.HandleContacts([]Contact{
		touch(looseBall(8, 100, 60), looseBall(8, 180, 60)),
		touch(later[0], later[1]),
	})

	assert.Equal(t, StateWin, f.s.State())
	assert.Equal(t, 100, f.s.Score())
	assert.True(t, later[0].Live(), "contacts after the win are ignored")

	won := eventsOf[GameWon](f.events)
	require.Len(t, won, 1)
	assert.Equal(t, 100, won[0].Score)

	assert.Equal(t, 100, f.store.scores["highScore"])
	assert.Equal(t, 1, f.ach.calls["top"])
	assert.Equal(t, 1, f.ach.calls["end"])

	assert.False(t, f.s.Drop())
	f.s.Advance(10 * time.Second)
	assert.Equal(t, 100, f.s.Score())

	require.True(t, f.s.NextLevel())
	assert.Equal(t, StatePlaying, f.s.State())
	assert.Zero(t, f.s.Score())
	assert.Equal(t, 100, f.s.Best())
}

func TestTopTierBallsDoNotMerge(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.s.Start()
	f.events.Reset()

	a, b := looseBall(TopTier, 0, 0), looseBall(TopTier, 10, 0)
	f.s.HandleContacts([]Contact{touch(a, b)})

	assert.True(t, a.Live() && b.Live())
	assert.Empty(t, f.events.Events)
	assert.Equal(t, StatePlaying, f.s.State())
}

func TestOverflowEndsGame(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.s.Start()
	f.s.HandleContacts([]Contact{touch(looseBall(0, 0, 0), looseBall(0, 10, 0))})

	dropping := looseBall(2, 100, 450)
	dropping.Dropping = true
	dropping.Vel = core.V(0, 40)
	f.s.HandleContacts([]Contact{{Kind: ContactBoundary, A: dropping}})
	assert.Equal(t, StatePlaying, f.s.State(), "a dropping ball crosses the line freely")

	falling := looseBall(2, 100, 450)
	falling.Vel = core.V(0, -40)
	f.s.HandleContacts([]Contact{{Kind: ContactBoundary, A: falling}})
	assert.Equal(t, StatePlaying, f.s.State())

	rising := looseBall(2, 100, 450)
	rising.Vel = core.V(0, 40)
	f.s.HandleContacts([]Contact{{Kind: ContactBoundary, A: rising}})

	assert.Equal(t, StateGameOver, f.s.State())
	assert.Equal(t, EndOverflow, f.s.EndReason())

	ended := eventsOf[GameEnded](f.events)
	require.Len(t, ended, 1)
	assert.Equal(t, GameEnded{Score: 20, Reason: EndOverflow}, ended[0])
	assert.Equal(t, 20, f.store.scores["highScore"])
}

func TestHighScoreOnlySavedWhenBeaten(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.store.scores["highScore"] = 50
	f.s = NewSession(ModeClassic, config.DefaultBloomConfig(), Deps{Scores: f.store, Presenter: f.events})
	assert.Equal(t, 50, f.s.Best())

	f.s.Start()
	f.s.HandleContacts([]Contact{touch(looseBall(0, 0, 0), looseBall(0, 10, 0))})
	rising := looseBall(2, 100, 450)
	rising.Vel = core.V(0, 1)
	f.s.HandleContacts([]Contact{{Kind: ContactBoundary, A: rising}})

	assert.Equal(t, StateGameOver, f.s.State())
	assert.Equal(t, 50, f.store.scores["highScore"])
}

func TestSaveErrorDoesNotBlockGameOver(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.store.saveErr = errors.New("disk full")
	f.s.Start()
	f.s.HandleContacts([]Contact{touch(looseBall(0, 0, 0), looseBall(0, 10, 0))})

	rising := looseBall(2, 100, 450)
	rising.Vel = core.V(0, 1)
	f.s.HandleContacts([]Contact{{Kind: ContactBoundary, A: rising}})

	assert.Equal(t, StateGameOver, f.s.State())
	assert.Len(t, eventsOf[GameEnded](f.events), 1)
}

func TestNoScoringOutsidePlaying(t *testing.T) {
	f := newFixture(t, ModeClassic)

	a, b := looseBall(0, 0, 0), looseBall(0, 10, 0)
	f.s.HandleContacts([]Contact{touch(a, b)})
	assert.True(t, a.Live())

	f.s.Start()
	f.s.Pause()
	f.s.HandleContacts([]Contact{touch(a, b)})
	assert.True(t, a.Live())
	assert.Zero(t, f.s.Score())
	assert.False(t, f.s.Drop())
	assert.False(t, f.s.MoveCurrent(10))
}

func TestOutOfPlayRemovesBall(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.s.Start()
	f.s.Drop()
	lost := f.s.Balls()[0]

	f.s.HandleContacts([]Contact{{Kind: ContactOutOfPlay, A: lost}})
	assert.True(t, lost.Removed())
	assert.Empty(t, f.s.Balls())
}

func TestSpeedModeCountdown(t *testing.T) {
	f := newFixture(t, ModeSpeed)
	assert.Equal(t, 30*time.Second, f.s.TimeRemaining())

	f.s.Start()
	f.s.Advance(10 * time.Second)
	assert.Equal(t, 20*time.Second, f.s.TimeRemaining())

	require.True(t, f.s.Pause())
	assert.Equal(t, 1, f.ach.calls["pause"])
	f.s.Advance(5 * time.Second)
	assert.Equal(t, 20*time.Second, f.s.TimeRemaining())
	assert.Equal(t, 10*time.Second, f.s.Elapsed())

	require.True(t, f.s.Resume())
	f.s.Advance(19 * time.Second)
	assert.Equal(t, StatePlaying, f.s.State())
	assert.Equal(t, time.Second, f.s.TimeRemaining())

	f.s.Advance(time.Second)
	assert.Equal(t, StateGameOver, f.s.State())
	assert.Equal(t, EndTimeout, f.s.EndReason())
	assert.Zero(t, f.s.TimeRemaining())

	ended := eventsOf[GameEnded](f.events)
	require.Len(t, ended, 1)
	assert.Equal(t, EndTimeout, ended[0].Reason)
}

func TestSpeedModeTimeReward(t *testing.T) {
	f := newFixture(t, ModeSpeed)
	f.s.Start()

	f.s.Advance(time.Second)
	f.s.HandleContacts([]Contact{touch(looseBall(0, 0, 0), looseBall(0, 10, 0))})
	assert.Empty(t, eventsOf[TimeRewardEarned](f.events))

	f.s.Advance(time.Second)
	f.s.HandleContacts([]Contact{touch(looseBall(0, 40, 0), looseBall(0, 60, 0))})

	rewards := eventsOf[TimeRewardEarned](f.events)
	require.Len(t, rewards, 1)
	assert.Equal(t, time.Second, rewards[0].Seconds)
	assert.Equal(t, "Combo x1.5", rewards[0].Reason)
	assert.Equal(t, core.V(50, 0), rewards[0].Position)
	assert.Equal(t, 29*time.Second, f.s.TimeRemaining())
}

func TestClassicModeHasNoCountdown(t *testing.T) {
	f := newFixture(t, ModeClassic)
	f.s.Start()
	f.s.Advance(time.Second)
	f.s.HandleContacts([]Contact{touch(looseBall(0, 0, 0), looseBall(0, 10, 0))})
	f.s.Advance(time.Second)
	f.s.HandleContacts([]Contact{touch(looseBall(0, 0, 0), looseBall(0, 10, 0))})

	assert.Zero(t, f.s.TimeRemaining())
	assert.Empty(t, eventsOf[TimeRewardEarned](f.events))

	f.s.Advance(10 * time.Minute)
	assert.Equal(t, StatePlaying, f.s.State())
}

func TestRestartResetsWorld(t *testing.T) {
	f := newFixture(t, ModeSpeed)
	f.s.Start()
	f.s.Drop()
	f.s.Advance(2 * time.Second)
	f.s.HandleContacts([]Contact{touch(looseBall(0, 0, 0), looseBall(0, 10, 0))})
	f.s.Advance(100 * time.Millisecond)
	f.s.HandleContacts([]Contact{touch(looseBall(0, 0, 0), looseBall(0, 10, 0))})
	require.Positive(t, f.s.Score())

	f.events.Reset()
	require.True(t, f.s.Restart())
	assert.Equal(t, StatePlaying, f.s.State())
	assert.Equal(t, []StateChanged{{From: StatePlaying, To: StatePlaying}}, eventsOf[StateChanged](f.events))
	assert.Zero(t, f.s.Score())
	assert.Equal(t, 1.0, f.s.Multiplier())
	assert.Zero(t, f.s.ChainDepth())
	assert.Len(t, f.s.Balls(), 1)
	assert.NotNil(t, f.s.Current())
	assert.Equal(t, 30*time.Second, f.s.TimeRemaining())
	assert.Zero(t, f.s.Elapsed())
	assert.Equal(t, 1, f.ach.calls["end"])
	assert.Equal(t, 2, f.ach.calls["start"])

	// Timers from the previous game never fire into the new one.
	f.s.Advance(5 * time.Second)
	assert.Equal(t, 1.0, f.s.Multiplier())
	assert.Equal(t, 25*time.Second, f.s.TimeRemaining())
}

func TestRestartAfterGameOver(t *testing.T) {
	f := newFixture(t, ModeSpeed)
	f.s.Start()
	f.s.Advance(30 * time.Second)
	require.Equal(t, StateGameOver, f.s.State())

	require.True(t, f.s.Start())
	assert.Equal(t, StatePlaying, f.s.State())
	assert.Empty(t, f.s.EndReason())
	assert.Equal(t, 30*time.Second, f.s.TimeRemaining())
}

func TestTogglePause(t *testing.T) {
	f := newFixture(t, ModeClassic)
	assert.False(t, f.s.TogglePause())

	f.s.Start()
	assert.True(t, f.s.TogglePause())
	assert.Equal(t, StatePaused, f.s.State())
	assert.True(t, f.s.TogglePause())
	assert.Equal(t, StatePlaying, f.s.State())
}

func TestCloseStopsEverything(t *testing.T) {
	f := newFixture(t, ModeSpeed)
	f.s.Start()
	f.s.Drop()

	f.s.Close()
	assert.Equal(t, 1, f.ach.calls["end"])

	f.events.Reset()
	f.s.Advance(time.Minute)
	assert.Empty(t, f.events.Events)
	assert.Nil(t, f.s.Current())
	assert.False(t, f.s.Restart())
	assert.False(t, f.s.Pause())

	f.s.Close()
	assert.Equal(t, 1, f.ach.calls["end"])
}

func TestSkinLookupDefaultsToTierName(t *testing.T) {
	f := newFixture(t, ModeClassic)
	assert.Equal(t, "medium", f.s.Skin(3))
}
