package merge

import "time"

// Presenter receives session events. Implementations must not call back
// into the Session.
type Presenter interface {
	Present(Event)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(Event)

func (f PresenterFunc) Present(e Event) { f(e) }

// AchievementSink is told about merges and session lifecycle. Unlocking
// rules live behind it.
type AchievementSink interface {
	OnSuccessfulMerge()
	OnFailedMerge()
	OnLargeCombo()
	OnQuickMerge(since time.Duration)
	OnMultiMerge(count int)
	OnTopTierCreated(elapsed time.Duration)
	OnSessionStart()
	OnSessionEnd()
	OnSessionPause()
}

// ScoreStore persists the best score per mode.
type ScoreStore interface {
	SaveHighScore(modeKey string, score int) error
	LoadHighScore(modeKey string) (int, error)
}

// SkinLookup maps a tier to the asset id the player has equipped. It is
// only consulted for rendering.
type SkinLookup interface {
	EquippedSkin(t Tier) string
}

// Simulator is the physics world the session keeps in sync with its balls.
type Simulator interface {
	AddBall(b *Ball)
	RemoveBall(b *Ball)
	Clear()
}

// EventLog records every event it is given, in order.
type EventLog struct {
	Events []Event
}

func (l *EventLog) Present(e Event) {
	l.Events = append(l.Events, e)
}

// Reset forgets recorded events.
func (l *EventLog) Reset() {
	l.Events = l.Events[:0]
}

type nopPresenter struct{}

func (nopPresenter) Present(Event) {}

// NopAchievements ignores every notification.
type NopAchievements struct{}

func (NopAchievements) OnSuccessfulMerge()             {}
func (NopAchievements) OnFailedMerge()                 {}
func (NopAchievements) OnLargeCombo()                  {}
func (NopAchievements) OnQuickMerge(time.Duration)     {}
func (NopAchievements) OnMultiMerge(int)               {}
func (NopAchievements) OnTopTierCreated(time.Duration) {}
func (NopAchievements) OnSessionStart()                {}
func (NopAchievements) OnSessionEnd()                  {}
func (NopAchievements) OnSessionPause()                {}

type nopScores struct{}

func (nopScores) SaveHighScore(string, int) error   { return nil }
func (nopScores) LoadHighScore(string) (int, error) { return 0, nil }

// DefaultSkins returns each tier's own asset name.
type DefaultSkins struct{}

func (DefaultSkins) EquippedSkin(t Tier) string { return t.Name() }

type nopSimulator struct{}

func (nopSimulator) AddBall(*Ball)    {}
func (nopSimulator) RemoveBall(*Ball) {}
func (nopSimulator) Clear()           {}
