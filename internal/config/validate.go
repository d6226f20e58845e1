package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateBumper(); err != nil {
		return err
	}
	if err := c.validateAssets(); err != nil {
		return err
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	if c.Playback.Speed < 0 {
		return errors.New("playback.speed must not be negative")
	}
	return nil
}

func (c *Config) validateTiming() error {
	t := c.Timing
	for name, v := range map[string]float64{
		"timing.enter_run_time":    t.EnterRunTime,
		"timing.exit_run_time":     t.ExitRunTime,
		"timing.emphasis_run_time": t.EmphasisRunTime,
		"timing.lag_ratio":         t.LagRatio,
		"timing.tolerance":         t.Tolerance,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative (got %g)", name, v)
		}
	}
	if t.FPS <= 0 {
		return errors.New("timing.fps must be positive")
	}
	return nil
}

func (c *Config) validateBumper() error {
	b := c.Bumper
	if b.Enter < 0 || b.Hold < 0 || b.Exit < 0 || b.Pause < 0 {
		return errors.New("bumper timings must not be negative")
	}
	if b.EnterScale < 0 || b.ExitScale < 0 {
		return errors.New("bumper scales must not be negative")
	}
	return nil
}

func (c *Config) validateAssets() error {
	if len(c.Assets.Extensions) == 0 {
		return errors.New("assets.extensions must list at least one extension")
	}
	if c.Assets.Workers < 1 {
		return errors.New("assets.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLog() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unsupported value %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "auto", "text", "json", "logfmt":
	default:
		return fmt.Errorf("log.format: unsupported value %q", c.Log.Format)
	}
	return nil
}
