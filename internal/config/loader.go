package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFile = "bloom.yaml"

// LoadBloom loads the game configuration.
// Search order: customPath -> ~/.bloom/configs/bloom.yaml -> ./configs/bloom.yaml -> embedded default.
// Only an explicit customPath can produce an error; the other sources are
// skipped when missing or malformed.
func LoadBloom(customPath string) (BloomConfig, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return BloomConfig{}, fmt.Errorf("config: cannot read %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return BloomConfig{}, fmt.Errorf("config: cannot parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	for _, path := range []string{userConfigPath(configFile), filepath.Join("configs", configFile)} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if cfg, err := parse(data); err == nil {
			return cfg, nil
		}
	}

	if cfg, err := parse(defaultBloomYAML); err == nil {
		return cfg, nil
	}
	return DefaultBloomConfig(), nil
}

// parse decodes a YAML document over the built-in defaults, so a partial
// file only overrides the keys it names.
func parse(data []byte) (BloomConfig, error) {
	cfg := DefaultBloomConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return BloomConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return BloomConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path under ~/.bloom/configs, or "" without a home directory.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".bloom", "configs", filename)
}
