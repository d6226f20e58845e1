// Package timeline runs scene timelines: ordered slide units that bring
// elements on screen, hold, emphasize, and clear everything except a keep set.
package timeline

import (
	"fmt"

	"github.com/ivlev/slidereel/internal/element"
	"github.com/ivlev/slidereel/internal/engine"
)

// Entrance brings one new element on screen.
type Entrance struct {
	Element element.Renderable
	// Effect defaults to fade_in (or add when RunTime is 0).
	Effect  engine.Effect
	RunTime float64
	Shift   element.Point
	Scale   float64
}

// Emphasis is a short in-place animation on an element already on screen,
// followed by its own wait.
type Emphasis struct {
	Target  string
	Effect  engine.Effect
	RunTime float64
	Wait    float64
	// To is the transform target, applied on top of the element's current state.
	To *element.Patch
}

// ExitMode selects how a unit leaves the screen.
type ExitMode int

const (
	// ExitClear removes everything on screen except the keep set.
	ExitClear ExitMode = iota
	// ExitFade removes only the listed elements.
	ExitFade
)

func (m ExitMode) String() string {
	if m == ExitFade {
		return "fade"
	}
	return "clear"
}

// ParseExitMode maps a script name to an ExitMode. Empty means clear.
func ParseExitMode(s string) (ExitMode, error) {
	switch s {
	case "", "clear":
		return ExitClear, nil
	case "fade":
		return ExitFade, nil
	}
	return ExitClear, fmt.Errorf("unknown exit mode %q", s)
}

// Exit describes the end of a slide unit.
type Exit struct {
	Mode ExitMode
	// Keep lists elements that survive a clear and carry into the next unit.
	Keep []string
	// Fade lists the elements removed in fade mode.
	Fade []string
	// Effect defaults to fade_out (or remove when RunTime is 0).
	Effect   engine.Effect
	RunTime  float64
	LagRatio float64
	// Pause is an extra wait after the exit animation.
	Pause float64
}

// SlideUnit is one beat of a scene.
type SlideUnit struct {
	Name  string
	Enter []Entrance
	// LagRatio staggers the entrances; 0 plays them as one concurrent batch.
	LagRatio float64
	// EnterRunTime, when set, is the total time the entrance batch is fitted into.
	EnterRunTime float64
	Hold         float64
	Emphasis     []Emphasis
	Exit         Exit
}

// SceneTimeline is an ordered list of slide units on one topic.
type SceneTimeline struct {
	Name string
	// Target is the intended duration in seconds; 0 means unbudgeted.
	Target float64
	// Persist lists elements (typically the title) kept across every unit
	// exit except the last one.
	Persist []string
	Units   []SlideUnit
}

// Holds returns the sum of the units' hold durations.
func (s SceneTimeline) Holds() float64 {
	total := 0.0
	for _, u := range s.Units {
		total += u.Hold
	}
	return total
}

// Clone returns a deep copy of the scene's unit list so callers can retime it.
func (s SceneTimeline) Clone() SceneTimeline {
	c := s
	c.Persist = append([]string(nil), s.Persist...)
	c.Units = make([]SlideUnit, len(s.Units))
	for i, u := range s.Units {
		cu := u
		cu.Enter = append([]Entrance(nil), u.Enter...)
		cu.Emphasis = append([]Emphasis(nil), u.Emphasis...)
		cu.Exit.Keep = append([]string(nil), u.Exit.Keep...)
		cu.Exit.Fade = append([]string(nil), u.Exit.Fade...)
		c.Units[i] = cu
	}
	return c
}

// KeepSet is the set of element ids exempt from a clear.
type KeepSet map[string]struct{}

// NewKeepSet builds a keep set from ids.
func NewKeepSet(ids ...string) KeepSet {
	k := make(KeepSet, len(ids))
	for _, id := range ids {
		k[id] = struct{}{}
	}
	return k
}

// Has reports whether id is kept.
func (k KeepSet) Has(id string) bool {
	_, ok := k[id]
	return ok
}

// Union returns a new set holding the members of k and o.
func (k KeepSet) Union(o KeepSet) KeepSet {
	u := make(KeepSet, len(k)+len(o))
	for id := range k {
		u[id] = struct{}{}
	}
	for id := range o {
		u[id] = struct{}{}
	}
	return u
}
