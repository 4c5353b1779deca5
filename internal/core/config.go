package core

// RuntimeConfig is handed to a game on every Reset.
// Screen size drives layout; Seed makes a run reproducible.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second
	Seed     int64 // 0 lets the platform pick a time-based seed
}

// DefaultConfig returns a RuntimeConfig for an 80x24 terminal at 60 ticks per second.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
	}
}

// TickSeconds returns the simulated duration of one tick in seconds.
func (c RuntimeConfig) TickSeconds() float64 {
	if c.TickRate <= 0 {
		return 1.0 / 60.0
	}
	return 1.0 / float64(c.TickRate)
}

// GameState is the summary a game reports to the platform after each tick.
type GameState struct {
	Score    int
	Best     int  // Best score known for the running mode
	GameOver bool // Session ended by overflow or timeout
	Won      bool // Session ended by reaching the top tier
	Paused   bool
}

// Finished reports whether the session reached a terminal state.
func (s GameState) Finished() bool {
	return s.GameOver || s.Won
}

// StepResult is returned by Game.Step.
type StepResult struct {
	State GameState
}
