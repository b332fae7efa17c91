package commons

import (
	"errors"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"stasher/internal/config"
)

// LoadConfig reads the YAML file at path and lets the environment override it.
func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := config.ApplyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	return &cfg, nil
}

// LoadConfigOrEnv reads path when it exists and falls back to environment and
// defaults only.
func LoadConfigOrEnv(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Load()
	}
	return LoadConfig(path)
}
