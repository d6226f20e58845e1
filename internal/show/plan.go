package show

import (
	"context"
	"fmt"
	"math"

	"github.com/ivlev/slidereel/internal/config"
	"github.com/ivlev/slidereel/internal/engine"
	"github.com/ivlev/slidereel/internal/logging"
	"github.com/ivlev/slidereel/internal/timeline"
)

// Plan runs the show against a Recorder. The returned recorder holds the
// full instruction stream (for export); the report holds per-scene placement.
func Plan(s *Show, theme config.Theme, timing config.Timing) (*Report, *engine.Recorder, error) {
	rec := engine.NewRecorder()
	c := NewComposer(rec, theme, timing, WithLogger(logging.Discard()))
	report, err := c.RunShow(context.Background(), s)
	if err != nil {
		return nil, nil, err
	}
	return report, rec, nil
}

// Budgets checks every scene of the show against its target.
func Budgets(s *Show, theme config.Theme, timing config.Timing) ([]timeline.Budget, error) {
	scenes := s.Scenes()
	out := make([]timeline.Budget, 0, len(scenes))
	for _, sc := range scenes {
		b, err := timeline.CheckBudget(sc, theme, timing)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// FitTo returns a copy of the show whose holds are scaled so the whole show
// lasts total seconds, e.g. the length of a narration track. Animations,
// pauses and bumpers keep their run times; only holds stretch. Each hold is
// aligned to the frame grid, so the result may differ from total by up to
// half a frame per hold. The scale factor applied is returned too.
func FitTo(s *Show, total float64, theme config.Theme, timing config.Timing) (*Show, float64, error) {
	if total <= 0 {
		return nil, 0, fmt.Errorf("fit: target duration must be positive, got %.2f", total)
	}
	report, _, err := Plan(s, theme, timing)
	if err != nil {
		return nil, 0, err
	}

	holds, bumpers := 0.0, 0.0
	for _, e := range s.Entries {
		holds += e.Scene.Holds()
		bumpers += e.Bumper.Duration()
	}
	if holds == 0 {
		return nil, 0, fmt.Errorf("fit: show has no holds to stretch")
	}
	fixed := report.Total - holds
	if total <= fixed {
		return nil, 0, fmt.Errorf("fit: %.2fs is shorter than the show's animations and bumpers (%.2fs, bumpers %.2fs)", total, fixed, bumpers)
	}

	scale := (total - fixed) / holds
	fps := float64(timing.FPS)
	fitted := s.Clone()
	for i := range fitted.Entries {
		units := fitted.Entries[i].Scene.Units
		for j := range units {
			h := units[j].Hold * scale
			if fps > 0 {
				h = math.Round(h*fps) / fps
			}
			units[j].Hold = h
		}
		// The scene target follows its content.
		scene := &fitted.Entries[i].Scene
		if old := report.Scenes[i].Duration; scene.Target > 0 && old > 0 {
			scene.Target *= (old + scene.Holds() - s.Entries[i].Scene.Holds()) / old
		}
	}
	return fitted, scale, nil
}
