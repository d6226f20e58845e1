package config

import (
	"runtime"
	"strings"
)

const (
	defaultBackground  = "#0b0f17"
	defaultAccent      = "#7cc5ff"
	defaultAccentAlt   = "#ffd166"
	defaultText        = "#FFFFFF"
	defaultMuted       = "#EFEFEF"
	defaultWarning     = "#FC6255"
	defaultFont        = "DejaVu Sans"
	defaultTitleSize   = 46
	defaultBodySize    = 26
	defaultCaptionSize = 20
	defaultBumperSize  = 52

	defaultEnterRunTime    = 1.0
	defaultExitRunTime     = 0.8
	defaultEmphasisRunTime = 1.1
	defaultLagRatio        = 0.5
	defaultTolerance       = 2.0
	defaultFPS             = 30

	defaultBumperEnter      = 1.0
	defaultBumperHold       = 0.8
	defaultBumperExit       = 1.0
	defaultBumperPause      = 0.4
	defaultBumperEnterScale = 1.1
	defaultBumperExitScale  = 0.9

	defaultAssetsDir = "assets"
	defaultLogLevel  = "info"
	defaultLogFormat = "auto"
	defaultSpeed     = 1.0
)

// DefaultExtensions is the candidate order tried for a named asset.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".ico"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Theme: Theme{
			Background:  defaultBackground,
			Accent:      defaultAccent,
			AccentAlt:   defaultAccentAlt,
			Text:        defaultText,
			Muted:       defaultMuted,
			Warning:     defaultWarning,
			Font:        defaultFont,
			TitleSize:   defaultTitleSize,
			BodySize:    defaultBodySize,
			CaptionSize: defaultCaptionSize,
			BumperSize:  defaultBumperSize,
		},
		Timing: Timing{
			EnterRunTime:    defaultEnterRunTime,
			ExitRunTime:     defaultExitRunTime,
			EmphasisRunTime: defaultEmphasisRunTime,
			LagRatio:        defaultLagRatio,
			Tolerance:       defaultTolerance,
			FPS:             defaultFPS,
		},
		Bumper: Bumper{
			Enter:      defaultBumperEnter,
			Hold:       defaultBumperHold,
			Exit:       defaultBumperExit,
			Pause:      defaultBumperPause,
			EnterScale: defaultBumperEnterScale,
			ExitScale:  defaultBumperExitScale,
		},
		Assets: Assets{
			Dir:        defaultAssetsDir,
			Extensions: append([]string(nil), DefaultExtensions...),
			Workers:    runtime.NumCPU(),
		},
		Log: Log{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Playback: Playback{
			Speed: defaultSpeed,
		},
	}
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	exts := make([]string, 0, len(c.Assets.Extensions))
	for _, ext := range c.Assets.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	c.Assets.Extensions = exts

	if c.Assets.Workers == 0 {
		c.Assets.Workers = runtime.NumCPU()
	}
	if c.Playback.Speed == 0 {
		c.Playback.Speed = defaultSpeed
	}
}
