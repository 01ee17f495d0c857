package bot

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/puzzlebot/core/config"
	coredatabase "github.com/m3rciful/puzzlebot/core/database"
	"github.com/m3rciful/puzzlebot/llm"
	"github.com/m3rciful/puzzlebot/scheduler"
)

// PuzzleConfig tunes gameplay parameters.
type PuzzleConfig struct {
	// ContextSize caps the per-user context buffer length.
	ContextSize int `yaml:"context_size" envconfig:"PUZZLE_CONTEXT_SIZE"`
	// LeaderboardSize limits how many players the leaderboard shows.
	LeaderboardSize int `yaml:"leaderboard_size" envconfig:"PUZZLE_LEADERBOARD_SIZE"`
}

// Config aggregates core and bot-specific configuration.
type Config struct {
	Core      coreconfig.Config   `yaml:",inline"`
	Database  coredatabase.Config `yaml:"database"`
	LLM       llm.Config          `yaml:"llm"`
	Scheduler scheduler.Config    `yaml:"scheduler"`
	Puzzle    PuzzleConfig        `yaml:"puzzle"`
}

// CoreConfig exposes the embedded core configuration for the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Core }

// LoadConfig reads configuration from a YAML file, overlays environment
// variables, and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if cfg.Puzzle.ContextSize <= 0 {
		cfg.Puzzle.ContextSize = 500
	}
	if cfg.Puzzle.LeaderboardSize <= 0 {
		cfg.Puzzle.LeaderboardSize = 10
	}
	return &cfg, nil
}
