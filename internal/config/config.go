// Package config loads the theme, timing and runtime settings of slidereel.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed sample_config.toml
var sampleConfig string

// SampleConfig returns the commented sample configuration file.
func SampleConfig() string { return sampleConfig }

// Theme holds the visual constants shared by every scene. It is passed by
// value into the timeline runner and the composer; nothing mutates it after load.
type Theme struct {
	Background  string `toml:"background" env:"BACKGROUND"`
	Accent      string `toml:"accent" env:"ACCENT"`
	AccentAlt   string `toml:"accent_alt" env:"ACCENT_ALT"`
	Text        string `toml:"text" env:"TEXT"`
	Muted       string `toml:"muted" env:"MUTED"`
	Warning     string `toml:"warning" env:"WARNING"`
	Font        string `toml:"font" env:"FONT"`
	TitleSize   int    `toml:"title_size" env:"TITLE_SIZE"`
	BodySize    int    `toml:"body_size" env:"BODY_SIZE"`
	CaptionSize int    `toml:"caption_size" env:"CAPTION_SIZE"`
	BumperSize  int    `toml:"bumper_size" env:"BUMPER_SIZE"`
}

// Color resolves a theme color name ("accent", "muted", ...) to its value.
// Anything else is returned unchanged, so literal colors pass through.
func (t Theme) Color(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "background", "bg":
		return t.Background
	case "accent":
		return t.Accent
	case "accent_alt", "highlight":
		return t.AccentAlt
	case "text", "":
		return t.Text
	case "muted":
		return t.Muted
	case "warning":
		return t.Warning
	}
	return name
}

// Timing holds the default run times used when a script leaves them out.
type Timing struct {
	EnterRunTime    float64 `toml:"enter_run_time" env:"ENTER_RUN_TIME"`
	ExitRunTime     float64 `toml:"exit_run_time" env:"EXIT_RUN_TIME"`
	EmphasisRunTime float64 `toml:"emphasis_run_time" env:"EMPHASIS_RUN_TIME"`
	LagRatio        float64 `toml:"lag_ratio" env:"LAG_RATIO"`
	// Tolerance is how far (seconds) a scene may drift from its target before lint fails.
	Tolerance float64 `toml:"tolerance" env:"TOLERANCE"`
	// FPS is used to frame-align scaled durations.
	FPS int `toml:"fps" env:"FPS"`
}

// Bumper holds the timing of the transition card shown between scenes.
type Bumper struct {
	Enter      float64 `toml:"enter" env:"ENTER"`
	Hold       float64 `toml:"hold" env:"HOLD"`
	Exit       float64 `toml:"exit" env:"EXIT"`
	Pause      float64 `toml:"pause" env:"PAUSE"`
	EnterScale float64 `toml:"enter_scale" env:"ENTER_SCALE"`
	ExitScale  float64 `toml:"exit_scale" env:"EXIT_SCALE"`
}

// Total is the time one bumper occupies.
func (b Bumper) Total() float64 {
	return b.Enter + b.Hold + b.Exit + b.Pause
}

// Assets configures image resolution.
type Assets struct {
	Dir        string   `toml:"dir" env:"DIR"`
	Extensions []string `toml:"extensions" env:"EXTENSIONS" envSeparator:","`
	Workers    int      `toml:"workers" env:"WORKERS"`
}

// Log configures logger output.
type Log struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"`
}

// Playback configures the realtime pacer.
type Playback struct {
	Realtime bool    `toml:"realtime" env:"REALTIME"`
	Speed    float64 `toml:"speed" env:"SPEED"`
}

// Config is the runtime configuration of slidereel.
//
// Sections:
//   - Theme: colors, font and sizes
//   - Timing: default run times, lag ratio, budget tolerance
//   - Bumper: transition card timing
//   - Assets: asset directory, extension search order, preload workers
//   - Log: level and format
//   - Playback: realtime pacing
type Config struct {
	Theme    Theme    `toml:"theme" envPrefix:"THEME_"`
	Timing   Timing   `toml:"timing" envPrefix:"TIMING_"`
	Bumper   Bumper   `toml:"bumper" envPrefix:"BUMPER_"`
	Assets   Assets   `toml:"assets" envPrefix:"ASSETS_"`
	Log      Log      `toml:"log" envPrefix:"LOG_"`
	Playback Playback `toml:"playback" envPrefix:"PLAYBACK_"`
}

// DefaultConfigPath is the project-local config file looked up when no path is given.
const DefaultConfigPath = "slidereel.toml"

// Load builds the configuration: defaults, then the TOML file (if any), then
// .env and SLIDEREEL_* environment overrides. The result is normalized and validated.
// An explicitly named file must exist; the default one is optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	} else if !errors.Is(err, fs.ErrNotExist) || explicit {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
