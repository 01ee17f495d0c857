package scheduler

import (
	"fmt"
	"time"
)

// Config controls the daily puzzle reminder broadcast.
type Config struct {
	Enabled     bool   `yaml:"enabled" envconfig:"SCHEDULER_ENABLED"`
	Hour        int    `yaml:"hour" envconfig:"SCHEDULER_HOUR"`
	Minute      int    `yaml:"minute" envconfig:"SCHEDULER_MINUTE"`
	Timezone    string `yaml:"timezone" envconfig:"SCHEDULER_TIMEZONE"`
	Concurrency int    `yaml:"concurrency" envconfig:"SCHEDULER_CONCURRENCY"`
}

// Normalize validates the schedule and fills defaults.
func (c *Config) Normalize() (*time.Location, error) {
	if c.Hour < 0 || c.Hour > 23 {
		return nil, fmt.Errorf("scheduler: hour %d out of range", c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return nil, fmt.Errorf("scheduler: minute %d out of range", c.Minute)
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
