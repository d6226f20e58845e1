package show

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ivlev/slidereel/internal/config"
	"github.com/ivlev/slidereel/internal/engine"
	"github.com/ivlev/slidereel/internal/logging"
	"github.com/ivlev/slidereel/internal/timeline"
)

// Composer runs a show from start to finish: each scene timeline in full,
// then its bumper. It never reorders entries and never re-enters a scene.
type Composer struct {
	engine engine.Engine
	theme  config.Theme
	timing config.Timing
	logger *log.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the composer's logger. Without it RunShow logs to the
// logger carried by its context.
func WithLogger(l *log.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewComposer creates a composer that drives eng.
func NewComposer(eng engine.Engine, theme config.Theme, timing config.Timing, opts ...Option) *Composer {
	c := &Composer{engine: eng, theme: theme, timing: timing}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SceneReport is the scheduled placement of one entry.
type SceneReport struct {
	Index    int
	Name     string
	Start    float64
	Duration float64
	Target   float64
	Bumper   string
	// BumperDuration is 0 when the scene has no bumper.
	BumperDuration float64
}

// Report summarizes a run.
type Report struct {
	RunID   string
	Title   string
	Scenes  []SceneReport
	Total   float64
	Elapsed time.Duration // wall clock
}

// RunShow runs every entry in order.
func (c *Composer) RunShow(ctx context.Context, s *Show) (*Report, error) {
	runID := uuid.NewString()
	logger := c.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	logger = logger.With("run", runID[:8])
	started := time.Now()

	report := &Report{RunID: runID, Title: s.Title}
	runner := timeline.NewRunner(c.engine, c.theme, c.timing, timeline.WithLogger(logger))

	logger.Info("show started", "title", s.Title, "scenes", len(s.Entries))
	for i, entry := range s.Entries {
		start := runner.Now()
		logger.Info("scene", "n", fmt.Sprintf("%d/%d", i+1, len(s.Entries)), "name", entry.Scene.Name, "at", fmt.Sprintf("%.2fs", start))

		if err := runner.RunSceneTimeline(ctx, entry.Scene); err != nil {
			return report, err
		}
		sr := SceneReport{
			Index:    i,
			Name:     entry.Scene.Name,
			Start:    start,
			Duration: runner.Now() - start,
			Target:   entry.Scene.Target,
		}

		if entry.Bumper != nil {
			bstart := runner.Now()
			if err := c.runBumper(ctx, runner, i, entry.Bumper); err != nil {
				return report, err
			}
			sr.Bumper = entry.Bumper.Label
			sr.BumperDuration = runner.Now() - bstart
		}
		report.Scenes = append(report.Scenes, sr)
	}

	report.Total = runner.Now()
	report.Elapsed = time.Since(started)
	logger.Info("show finished", "scenes", runner.Scenes(), "scheduled", fmt.Sprintf("%.2fs", report.Total), "elapsed", report.Elapsed.Round(time.Millisecond))
	return report, nil
}

// runBumper shows the bumper label on an empty screen: enter, hold, exit, pause.
func (c *Composer) runBumper(ctx context.Context, runner *timeline.Runner, scene int, b *Bumper) error {
	if n := runner.Stage().Len(); n != 0 {
		return fmt.Errorf("bumper %q: %d elements still on screen", b.Label, n)
	}
	src := engine.Source{Segment: engine.SegmentBumper, Scene: scene, SceneName: b.Label, Unit: -1}
	t := b.Timing

	effect := engine.EffectFadeIn
	if t.Enter == 0 {
		effect = engine.EffectAdd
	}
	src.Phase = engine.PhaseBumperEnter
	if err := runner.Show(ctx, src, b.Text, effect, t.Enter, t.EnterScale); err != nil {
		return err
	}
	src.Phase = engine.PhaseBumperHold
	if err := runner.Wait(ctx, src, t.Hold); err != nil {
		return err
	}
	src.Phase = engine.PhaseBumperExit
	if err := runner.Hide(ctx, src, b.Text.ID(), t.Exit, t.ExitScale); err != nil {
		return err
	}
	src.Phase = engine.PhaseBumperPause
	return runner.Wait(ctx, src, t.Pause)
}
