// Package config loads tunable engine constants from an optional YAML file,
// overlaying them on safe defaults. The embedding application owns CLI and
// environment handling; this package only parses the file it is handed.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the engine constants an embedding application may override.
type Config struct {
	// TokenBudget caps the estimated tokens of context included in the
	// final-answer prompt.
	TokenBudget int `yaml:"token_budget"`
	// CharsPerToken is the divisor of the char-to-token size heuristic.
	CharsPerToken float64 `yaml:"chars_per_token"`
	// MaxWorkers bounds concurrent tasks within one run.
	MaxWorkers int `yaml:"max_workers"`
	// MaxConcurrentRuns bounds concurrent runs in batch mode.
	MaxConcurrentRuns int `yaml:"max_concurrent_runs"`
	// Model names the synthesis model handed to the provider adapter.
	Model string `yaml:"model"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		TokenBudget:       150_000,
		CharsPerToken:     3.5,
		MaxWorkers:        4,
		MaxConcurrentRuns: 3,
		LogLevel:          "info",
	}
}

// Load reads a YAML config file and overlays it on the defaults. Zero-value
// fields in the file keep their defaults, so partial files are fine.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if file.TokenBudget > 0 {
		cfg.TokenBudget = file.TokenBudget
	}
	if file.CharsPerToken > 0 {
		cfg.CharsPerToken = file.CharsPerToken
	}
	if file.MaxWorkers > 0 {
		cfg.MaxWorkers = file.MaxWorkers
	}
	if file.MaxConcurrentRuns > 0 {
		cfg.MaxConcurrentRuns = file.MaxConcurrentRuns
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}

	return cfg, nil
}
