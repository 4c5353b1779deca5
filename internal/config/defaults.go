package config

import (
	_ "embed"
)

//go:embed defaults/bloom.yaml
var defaultBloomYAML []byte

// DefaultBloomConfig returns the built-in tuning, used when no YAML
// source can be parsed.
func DefaultBloomConfig() BloomConfig {
	return BloomConfig{
		Container: ContainerConfig{
			Width:         300,
			Height:        450,
			SpawnHeadroom: 50,
			MoveStep:      10,
		},
		Physics: PhysicsConfig{
			Gravity:       -980,
			Restitution:   0.5,
			Friction:      0.2,
			LinearDamping: 0.5,
			Iterations:    6,
		},
		Merge: MergeConfig{
			PerturbX: 20,
			PerturbY: 10,
		},
		Combo: ComboConfig{
			Expiry: 3.0,
			Step:   0.5,
			Max:    3.0,
		},
		Chain: ChainConfig{
			Window: 0.5,
			Step:   0.5,
		},
		Timing: TimingConfig{
			SpawnDelay:  1.0,
			SettleDelay: 1.5,
		},
		SpeedMode: SpeedModeConfig{
			Duration:    30,
			ChainCapSec: 2,
		},
		Spawn: SpawnConfig{
			Weights: []SpawnWeight{
				{Tier: 0, Weight: 50},
				{Tier: 1, Weight: 30},
				{Tier: 2, Weight: 15},
				{Tier: 3, Weight: 5},
			},
		},
	}
}

// DefaultYAML returns the embedded default configuration document.
func DefaultYAML() []byte {
	return defaultBloomYAML
}
