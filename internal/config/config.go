// Package config loads the tunable parameters of the merge game from YAML
// and applies difficulty presets on top of them.
package config

import (
	"errors"
	"fmt"
	"time"
)

// BloomConfig holds every tunable of a session. Lengths are in container
// units, times in seconds.
type BloomConfig struct {
	Container ContainerConfig `yaml:"container"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Merge     MergeConfig     `yaml:"merge"`
	Combo     ComboConfig     `yaml:"combo"`
	Chain     ChainConfig     `yaml:"chain"`
	Timing    TimingConfig    `yaml:"timing"`
	SpeedMode SpeedModeConfig `yaml:"speed_mode"`
	Spawn     SpawnConfig     `yaml:"spawn"`
}

// ContainerConfig describes the play area. The boundary line sits at the
// top of the container; new balls appear SpawnHeadroom above it.
type ContainerConfig struct {
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	SpawnHeadroom float64 `yaml:"spawn_headroom"`
	MoveStep      float64 `yaml:"move_step"` // Horizontal move per key press
}

// PhysicsConfig tunes the contact simulator.
type PhysicsConfig struct {
	Gravity       float64 `yaml:"gravity"` // Negative pulls down
	Restitution   float64 `yaml:"restitution"`
	Friction      float64 `yaml:"friction"`
	LinearDamping float64 `yaml:"linear_damping"`
	Iterations    int     `yaml:"iterations"`
}

// MergeConfig bounds the random nudge given to a freshly merged ball.
type MergeConfig struct {
	PerturbX float64 `yaml:"perturb_x"`
	PerturbY float64 `yaml:"perturb_y"`
}

// ComboConfig controls the time-decaying score multiplier.
type ComboConfig struct {
	Expiry float64 `yaml:"expiry"`
	Step   float64 `yaml:"step"`
	Max    float64 `yaml:"max"`
}

// ChainConfig controls the short window in which merges count as a chain reaction.
type ChainConfig struct {
	Window float64 `yaml:"window"`
	Step   float64 `yaml:"step"`
}

// TimingConfig holds the delays around a drop.
type TimingConfig struct {
	SpawnDelay  float64 `yaml:"spawn_delay"`
	SettleDelay float64 `yaml:"settle_delay"`
}

// SpeedModeConfig configures the timed mode.
type SpeedModeConfig struct {
	Duration    float64 `yaml:"duration"`
	ChainCapSec int     `yaml:"chain_cap"` // Max seconds a chain adds to a reward
}

// SpawnConfig lists the tiers a new ball may start at.
type SpawnConfig struct {
	Weights []SpawnWeight `yaml:"weights"`
}

// SpawnWeight gives a tier its relative draw weight.
type SpawnWeight struct {
	Tier   int `yaml:"tier"`
	Weight int `yaml:"weight"`
}

// Seconds converts a config value in seconds to a time.Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Validate reports the first setting that would make a session unplayable.
func (c BloomConfig) Validate() error {
	switch {
	case c.Container.Width <= 0 || c.Container.Height <= 0:
		return fmt.Errorf("config: container must have positive size, got %gx%g",
			c.Container.Width, c.Container.Height)
	case c.Combo.Expiry <= 0:
		return errors.New("config: combo expiry must be positive")
	case c.Combo.Max < 1:
		return fmt.Errorf("config: combo max must be at least 1, got %g", c.Combo.Max)
	case c.Chain.Window <= 0:
		return errors.New("config: chain window must be positive")
	case c.SpeedMode.Duration <= 0:
		return errors.New("config: speed mode duration must be positive")
	case len(c.Spawn.Weights) == 0:
		return errors.New("config: spawn weights must not be empty")
	}

	total := 0
	for _, w := range c.Spawn.Weights {
		if w.Weight < 0 {
			return fmt.Errorf("config: negative spawn weight for tier %d", w.Tier)
		}
		total += w.Weight
	}
	if total == 0 {
		return errors.New("config: spawn weights sum to zero")
	}
	return nil
}
