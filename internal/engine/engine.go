// Package engine defines the contract between the slide timeline and the
// rendering engine that actually draws frames.
//
// The timeline never talks to a renderer directly. It emits Instructions:
// "play this batch of animations" or "wait this long". A play instruction is a
// join-all barrier: every animation of the batch starts (optionally staggered
// by the lag ratio) and the instruction lasts until the last one finishes.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/ivlev/slidereel/internal/element"
)

// Effect names an animation the engine knows how to play.
type Effect string

const (
	EffectAdd       Effect = "add"
	EffectFadeIn    Effect = "fade_in"
	EffectWrite     Effect = "write"
	EffectGrow      Effect = "grow"
	EffectFadeOut   Effect = "fade_out"
	EffectRemove    Effect = "remove"
	EffectFlash     Effect = "flash"
	EffectIndicate  Effect = "indicate"
	EffectTransform Effect = "transform"
)

var effects = []Effect{
	EffectAdd, EffectFadeIn, EffectWrite, EffectGrow,
	EffectFadeOut, EffectRemove,
	EffectFlash, EffectIndicate, EffectTransform,
}

// ParseEffect maps a script name (case-insensitive, "-" or "_") to an Effect.
func ParseEffect(s string) (Effect, error) {
	norm := Effect(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, e := range effects {
		if e == norm {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown effect %q", s)
}

// Enters reports whether the effect brings its target on screen.
func (e Effect) Enters() bool {
	switch e {
	case EffectAdd, EffectFadeIn, EffectWrite, EffectGrow:
		return true
	}
	return false
}

// Exits reports whether the effect takes its target off screen.
func (e Effect) Exits() bool {
	return e == EffectFadeOut || e == EffectRemove
}

// Emphasizes reports whether the effect is an in-place emphasis.
func (e Effect) Emphasizes() bool {
	return e == EffectFlash || e == EffectIndicate || e == EffectTransform
}

// Animation is one element's part of a batch.
type Animation struct {
	Target  element.Renderable
	Effect  Effect
	RunTime float64 // seconds; 0 plays instantly
	// Scale is the start (enter) or end (exit) scale factor, 0 = none.
	Scale float64
	// Shift is the offset the element travels from (enter) or to (exit).
	Shift element.Point
	// To is the target state of a transform.
	To *element.State
	// Color tints flash and indicate effects.
	Color string
}

// Batch is a set of animations played together.
type Batch struct {
	Animations []Animation
	// LagRatio staggers animation i by i*LagRatio*longest run time. 0 plays all at once.
	LagRatio float64
	// RunTime, when set, is the total the engine must fit the batch into.
	RunTime float64
}

// Duration returns how long the batch occupies the timeline.
func (b Batch) Duration() float64 {
	if b.RunTime > 0 {
		return b.RunTime
	}
	longest := 0.0
	for _, a := range b.Animations {
		if a.RunTime > longest {
			longest = a.RunTime
		}
	}
	total := 0.0
	for i, a := range b.Animations {
		end := float64(i)*b.LagRatio*longest + a.RunTime
		if end > total {
			total = end
		}
	}
	return total
}

// Op is the instruction kind.
type Op int

const (
	OpPlay Op = iota
	OpWait
)

func (o Op) String() string {
	if o == OpWait {
		return "wait"
	}
	return "play"
}

// Phase records which step of a slide unit or bumper produced an instruction.
type Phase string

const (
	PhaseEnter    Phase = "enter"
	PhaseHold     Phase = "hold"
	PhaseEmphasis Phase = "emphasis"
	PhaseExit     Phase = "exit"
	PhasePause    Phase = "pause"
	PhaseClear    Phase = "clear"

	PhaseBumperEnter Phase = "bumper_enter"
	PhaseBumperHold  Phase = "bumper_hold"
	PhaseBumperExit  Phase = "bumper_exit"
	PhaseBumperPause Phase = "bumper_pause"
)

// Segment distinguishes scene timelines from the bumpers between them.
type Segment int

const (
	SegmentScene Segment = iota
	SegmentBumper
)

func (s Segment) String() string {
	if s == SegmentBumper {
		return "bumper"
	}
	return "scene"
}

// Source is the provenance of an instruction.
type Source struct {
	Segment   Segment
	Scene     int    // index of the scene (or of the scene the bumper follows)
	SceneName string // scene name, or bumper label
	Unit      int    // slide unit index inside the scene, -1 for bumpers and scene clears
	Phase     Phase
}

// Instruction is the unit of work handed to an Engine.
type Instruction struct {
	Op       Op
	At       float64 // scheduled start, seconds since show start
	Duration float64
	Batch    Batch // OpPlay only
	Source   Source
}

// End is the scheduled end of the instruction.
func (in Instruction) End() float64 { return in.At + in.Duration }

// Engine executes instructions in order. Execute blocks for as long as the
// engine needs to realize the instruction; recording engines return at once.
type Engine interface {
	Execute(ctx context.Context, in Instruction) error
}

// Func adapts a function to the Engine interface.
type Func func(ctx context.Context, in Instruction) error

func (f Func) Execute(ctx context.Context, in Instruction) error { return f(ctx, in) }

// Multi fans an instruction out to several engines in order. The first error stops the fan-out.
type Multi []Engine

func (m Multi) Execute(ctx context.Context, in Instruction) error {
	for _, e := range m {
		if err := e.Execute(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
