package timeline

import (
	"context"
	"fmt"
	"math"

	"github.com/ivlev/slidereel/internal/config"
	"github.com/ivlev/slidereel/internal/engine"
	"github.com/ivlev/slidereel/internal/logging"
)

// Budget compares a scene's scheduled duration with its target.
type Budget struct {
	Scene     string
	Target    float64
	Scheduled float64
	Tolerance float64
}

// Delta is scheduled minus target.
func (b Budget) Delta() float64 { return b.Scheduled - b.Target }

// OK reports whether the scene is unbudgeted or within tolerance of its target.
func (b Budget) OK() bool {
	if b.Target <= 0 {
		return true
	}
	return math.Abs(b.Delta()) <= b.Tolerance+1e-9
}

func (b Budget) String() string {
	if b.Target <= 0 {
		return fmt.Sprintf("%s: %.2fs (no target)", b.Scene, b.Scheduled)
	}
	return fmt.Sprintf("%s: %.2fs scheduled, target %.2fs (%+.2fs, tolerance ±%.2fs)",
		b.Scene, b.Scheduled, b.Target, b.Delta(), b.Tolerance)
}

// Schedule runs the scene against a Recorder and returns its total duration.
// Nothing is rendered and no real time passes.
func Schedule(scene SceneTimeline, theme config.Theme, timing config.Timing) (float64, error) {
	rec := engine.NewRecorder()
	r := NewRunner(rec, theme, timing, WithLogger(logging.Discard()))
	if err := r.RunSceneTimeline(context.Background(), scene); err != nil {
		return 0, err
	}
	return r.Now(), nil
}

// CheckBudget schedules the scene and compares it with the scene's target.
func CheckBudget(scene SceneTimeline, theme config.Theme, timing config.Timing) (Budget, error) {
	total, err := Schedule(scene, theme, timing)
	if err != nil {
		return Budget{}, err
	}
	return Budget{
		Scene:     scene.Name,
		Target:    scene.Target,
		Scheduled: total,
		Tolerance: timing.Tolerance,
	}, nil
}
