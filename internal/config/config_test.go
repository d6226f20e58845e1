package config_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/ivlev/slidereel/internal/config"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if math.Abs(cfg.Bumper.Total()-3.2) > 1e-9 {
		t.Errorf("bumper total = %v, want 3.2", cfg.Bumper.Total())
	}
	if got := strings.Join(cfg.Assets.Extensions, ","); got != ".png,.jpg,.jpeg,.gif,.ico" {
		t.Errorf("extensions = %s", got)
	}
	if cfg.Assets.Workers < 1 {
		t.Errorf("workers = %d, want >= 1", cfg.Assets.Workers)
	}
	if cfg.Theme.Color("accent") != "#7cc5ff" {
		t.Errorf("accent = %s", cfg.Theme.Color("accent"))
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slidereel.toml")
	content := `
[timing]
tolerance = 1.5

[assets]
extensions = ["PNG", "svg"]
workers = 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SLIDEREEL_BUMPER_HOLD", "2.5")
	t.Setenv("SLIDEREEL_THEME_ACCENT", "#123456")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Timing.Tolerance != 1.5 {
		t.Errorf("tolerance = %v, want 1.5", cfg.Timing.Tolerance)
	}
	if got := strings.Join(cfg.Assets.Extensions, ","); got != ".png,.svg" {
		t.Errorf("extensions not normalized: %s", got)
	}
	if cfg.Bumper.Hold != 2.5 {
		t.Errorf("bumper hold = %v, want env override 2.5", cfg.Bumper.Hold)
	}
	if cfg.Theme.Accent != "#123456" {
		t.Errorf("accent = %s, want env override", cfg.Theme.Accent)
	}
	// Untouched values keep their defaults.
	if cfg.Timing.ExitRunTime != 0.8 {
		t.Errorf("exit run time = %v, want default 0.8", cfg.Timing.ExitRunTime)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slidereel.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"info\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SLIDEREEL_LOG_LEVEL=debug\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SLIDEREEL_LOG_LEVEL", "")
	os.Unsetenv("SLIDEREEL_LOG_LEVEL")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug from .env", cfg.Log.Level)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slidereel.toml")
	if err := os.WriteFile(path, []byte("[timing]\nhold_everything = 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "timing.hold_everything") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"negative exit", func(c *config.Config) { c.Timing.ExitRunTime = -1 }, "timing.exit_run_time"},
		{"zero fps", func(c *config.Config) { c.Timing.FPS = 0 }, "timing.fps"},
		{"negative bumper", func(c *config.Config) { c.Bumper.Hold = -0.1 }, "bumper"},
		{"no extensions", func(c *config.Config) { c.Assets.Extensions = nil }, "assets.extensions"},
		{"no workers", func(c *config.Config) { c.Assets.Workers = 0 }, "assets.workers"},
		{"bad level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSampleConfigDecodes(t *testing.T) {
	cfg := config.Default()
	md, err := toml.Decode(config.SampleConfig(), &cfg)
	if err != nil {
		t.Fatalf("sample config does not decode: %v", err)
	}
	if len(md.Undecoded()) != 0 {
		t.Fatalf("sample config has unknown keys: %v", md.Undecoded())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
}

func TestThemeColorPassthrough(t *testing.T) {
	theme := config.Default().Theme
	if theme.Color("#abcdef") != "#abcdef" {
		t.Error("literal colors must pass through")
	}
	if theme.Color("Muted") != theme.Muted {
		t.Error("theme names are case-insensitive")
	}
}
