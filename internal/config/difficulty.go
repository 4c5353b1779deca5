package config

import "fmt"

// DifficultyPreset is a named adjustment applied over a loaded config.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParseDifficulty maps a CLI value to a preset. The empty string means normal.
func ParseDifficulty(s string) (DifficultyPreset, error) {
	switch DifficultyPreset(s) {
	case "", DifficultyNormal:
		return DifficultyNormal, nil
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyHard:
		return DifficultyHard, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal or hard)", s)
	}
}

// ApplyBloomPreset adjusts the timed mode budget, the combo window and the
// spawn pace for a preset. Normal leaves the config untouched.
func ApplyBloomPreset(cfg *BloomConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.SpeedMode.Duration = 45
		cfg.Combo.Expiry = 4.0
		cfg.Timing.SpawnDelay = 1.2
	case DifficultyHard:
		cfg.SpeedMode.Duration = 20
		cfg.Combo.Expiry = 2.5
		cfg.Timing.SpawnDelay = 0.8
	}
}
