package timeline

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/ivlev/slidereel/internal/config"
	"github.com/ivlev/slidereel/internal/element"
	"github.com/ivlev/slidereel/internal/engine"
	"github.com/ivlev/slidereel/internal/logging"
)

// Runner turns slide units into engine instructions. It keeps a virtual
// clock: every instruction is stamped with the time it is scheduled to start,
// and the clock advances by the instruction's duration once the engine returns.
type Runner struct {
	engine engine.Engine
	theme  config.Theme
	timing config.Timing
	logger *log.Logger

	stage *Stage
	now   float64

	scenes int // scene timelines started so far
	src    engine.Source
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger. Without it the logger carried by the
// context is used.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner with an empty stage. Theme and timing are
// copied; later changes by the caller do not affect a running show.
func NewRunner(eng engine.Engine, theme config.Theme, timing config.Timing, opts ...Option) *Runner {
	r := &Runner{
		engine: eng,
		theme:  theme,
		timing: timing,
		stage:  NewStage(),
		src:    engine.Source{Unit: -1},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now is the virtual time of the next instruction.
func (r *Runner) Now() float64 { return r.now }

// Stage exposes the current screen contents.
func (r *Runner) Stage() *Stage { return r.stage }

// Scenes is the number of scene timelines started so far.
func (r *Runner) Scenes() int { return r.scenes }

// Play hands one batch to the engine and advances the clock by its duration.
func (r *Runner) Play(ctx context.Context, src engine.Source, batch engine.Batch) error {
	in := engine.Instruction{
		Op:       engine.OpPlay,
		At:       r.now,
		Duration: batch.Duration(),
		Batch:    batch,
		Source:   src,
	}
	if err := r.engine.Execute(ctx, in); err != nil {
		return fmt.Errorf("%s %q %s: %w", src.Segment, src.SceneName, src.Phase, err)
	}
	r.now = in.End()
	return nil
}

// Wait hands a fixed-duration wait to the engine. Non-positive waits are skipped.
func (r *Runner) Wait(ctx context.Context, src engine.Source, d float64) error {
	if d <= 0 {
		return nil
	}
	in := engine.Instruction{Op: engine.OpWait, At: r.now, Duration: d, Source: src}
	if err := r.engine.Execute(ctx, in); err != nil {
		return fmt.Errorf("%s %q %s: %w", src.Segment, src.SceneName, src.Phase, err)
	}
	r.now = in.End()
	return nil
}

func (r *Runner) log(ctx context.Context) *log.Logger {
	if r.logger != nil {
		return r.logger
	}
	return logging.FromContext(ctx)
}

func (r *Runner) source(phase engine.Phase) engine.Source {
	s := r.src
	s.Phase = phase
	return s
}

// RunSlideUnit plays one unit: enter, hold, emphasis, exit. After the exit in
// clear mode the stage holds exactly the members of keep that were on screen.
func (r *Runner) RunSlideUnit(ctx context.Context, unit SlideUnit, keep KeepSet) error {
	if err := r.enter(ctx, unit); err != nil {
		return err
	}
	if err := r.Wait(ctx, r.source(engine.PhaseHold), unit.Hold); err != nil {
		return err
	}
	for _, em := range unit.Emphasis {
		if err := r.emphasize(ctx, em); err != nil {
			return err
		}
	}
	if err := r.exit(ctx, unit.Exit, keep); err != nil {
		return err
	}
	return r.Wait(ctx, r.source(engine.PhasePause), unit.Exit.Pause)
}

func (r *Runner) enter(ctx context.Context, unit SlideUnit) error {
	anims := make([]engine.Animation, 0, len(unit.Enter))
	for _, e := range unit.Enter {
		if e.Element == nil {
			continue
		}
		effect := e.Effect
		if effect == "" {
			effect = engine.EffectFadeIn
			if e.RunTime == 0 {
				effect = engine.EffectAdd
			}
		}
		if !effect.Enters() {
			return fmt.Errorf("unit %q: effect %s cannot bring %q on screen", unit.Name, effect, e.Element.ID())
		}
		if !r.stage.Add(e.Element) {
			r.log(ctx).Warn("element already on screen", "scene", r.src.SceneName, "unit", unit.Name, "id", e.Element.ID())
			continue
		}
		anims = append(anims, engine.Animation{
			Target:  e.Element,
			Effect:  effect,
			RunTime: e.RunTime,
			Scale:   e.Scale,
			Shift:   e.Shift,
		})
	}
	if len(anims) == 0 {
		return nil
	}
	return r.Play(ctx, r.source(engine.PhaseEnter), engine.Batch{
		Animations: anims,
		LagRatio:   unit.LagRatio,
		RunTime:    unit.EnterRunTime,
	})
}

func (r *Runner) emphasize(ctx context.Context, em Emphasis) error {
	target, ok := r.stage.Get(em.Target)
	if !ok {
		r.log(ctx).Warn("emphasis target not on screen", "scene", r.src.SceneName, "id", em.Target)
		return r.Wait(ctx, r.source(engine.PhaseEmphasis), em.Wait)
	}
	effect := em.Effect
	if effect == "" {
		effect = engine.EffectIndicate
	}
	if !effect.Emphasizes() {
		return fmt.Errorf("effect %s is not an emphasis", effect)
	}
	anim := engine.Animation{Target: target, Effect: effect, RunTime: em.RunTime, Color: r.theme.AccentAlt}
	if effect == engine.EffectTransform && em.To != nil {
		to := em.To.Apply(target.State())
		anim.To = &to
	}
	if err := r.Play(ctx, r.source(engine.PhaseEmphasis), engine.Batch{Animations: []engine.Animation{anim}}); err != nil {
		return err
	}
	if anim.To != nil {
		r.stage.Replace(target.WithState(*anim.To))
	}
	return r.Wait(ctx, r.source(engine.PhaseEmphasis), em.Wait)
}

func (r *Runner) exit(ctx context.Context, ex Exit, keep KeepSet) error {
	var leaving []string
	switch ex.Mode {
	case ExitFade:
		for _, id := range ex.Fade {
			if r.stage.Has(id) && !keep.Has(id) {
				leaving = append(leaving, id)
			}
		}
	default:
		for _, id := range r.stage.IDs() {
			if !keep.Has(id) {
				leaving = append(leaving, id)
			}
		}
	}
	return r.remove(ctx, r.source(engine.PhaseExit), leaving, ex.Effect, ex.RunTime, ex.LagRatio)
}

// remove plays one exit batch for ids and takes them off the stage.
func (r *Runner) remove(ctx context.Context, src engine.Source, ids []string, effect engine.Effect, runTime, lag float64) error {
	if len(ids) == 0 {
		return nil
	}
	if effect == "" {
		effect = engine.EffectFadeOut
		if runTime == 0 {
			effect = engine.EffectRemove
		}
	}
	if !effect.Exits() {
		return fmt.Errorf("effect %s cannot take elements off screen", effect)
	}
	anims := make([]engine.Animation, 0, len(ids))
	for _, id := range ids {
		el, _ := r.stage.Get(id)
		anims = append(anims, engine.Animation{Target: el, Effect: effect, RunTime: runTime})
	}
	if err := r.Play(ctx, src, engine.Batch{Animations: anims, LagRatio: lag}); err != nil {
		return err
	}
	for _, id := range ids {
		r.stage.Remove(id)
	}
	return nil
}

// RunSceneTimeline runs the scene's units in order. Every unit but the last
// keeps the scene's persistent elements on top of its own keep list. Whatever
// is still on screen after the last unit is cleared, so a scene never leaks
// into what follows it.
func (r *Runner) RunSceneTimeline(ctx context.Context, scene SceneTimeline) error {
	r.src = engine.Source{Segment: engine.SegmentScene, Scene: r.scenes, SceneName: scene.Name, Unit: -1}
	r.scenes++
	start := r.now

	persist := NewKeepSet(scene.Persist...)
	for i, unit := range scene.Units {
		keep := NewKeepSet(unit.Exit.Keep...)
		if i < len(scene.Units)-1 {
			keep = keep.Union(persist)
		}
		r.src.Unit = i
		if err := r.RunSlideUnit(ctx, unit, keep); err != nil {
			return fmt.Errorf("scene %q unit %d: %w", scene.Name, i, err)
		}
		r.log(ctx).Debug("unit done", "scene", scene.Name, "unit", i, "name", unit.Name, "at", r.now, "on_screen", r.stage.Len())
	}

	r.src.Unit = -1
	if err := r.Clear(ctx, r.source(engine.PhaseClear)); err != nil {
		return fmt.Errorf("scene %q: %w", scene.Name, err)
	}
	r.log(ctx).Debug("scene done", "scene", scene.Name, "duration", r.now-start)
	return nil
}

// Clear takes everything off screen with the configured exit run time.
func (r *Runner) Clear(ctx context.Context, src engine.Source) error {
	return r.remove(ctx, src, r.stage.IDs(), "", r.timing.ExitRunTime, 0)
}

// Show puts a standalone element on screen (used for bumpers).
func (r *Runner) Show(ctx context.Context, src engine.Source, el element.Renderable, effect engine.Effect, runTime, scale float64) error {
	if !r.stage.Add(el) {
		return fmt.Errorf("element %q already on screen", el.ID())
	}
	return r.Play(ctx, src, engine.Batch{Animations: []engine.Animation{{
		Target: el, Effect: effect, RunTime: runTime, Scale: scale,
	}}})
}

// Hide takes one element off screen.
func (r *Runner) Hide(ctx context.Context, src engine.Source, id string, runTime, scale float64) error {
	el, ok := r.stage.Get(id)
	if !ok {
		return nil
	}
	effect := engine.EffectFadeOut
	if runTime == 0 {
		effect = engine.EffectRemove
	}
	if err := r.Play(ctx, src, engine.Batch{Animations: []engine.Animation{{
		Target: el, Effect: effect, RunTime: runTime, Scale: scale,
	}}}); err != nil {
		return err
	}
	r.stage.Remove(id)
	return nil
}
