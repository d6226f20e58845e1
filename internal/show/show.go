// Package show sequences scene timelines and the transition bumpers between
// them into one linear run.
package show

import (
	"errors"
	"fmt"

	"github.com/ivlev/slidereel/internal/config"
	"github.com/ivlev/slidereel/internal/element"
	"github.com/ivlev/slidereel/internal/timeline"
)

// Bumper is the short text card shown between two scenes.
type Bumper struct {
	Label  string
	Text   *element.Text
	Timing config.Bumper
}

// NewBumper styles label with the theme's highlight color and bumper size.
func NewBumper(label string, theme config.Theme, timing config.Bumper) *Bumper {
	t := element.NewText("bumper:"+label, label)
	t.Color = theme.AccentAlt
	t.Font = theme.Font
	t.Size = theme.BumperSize
	t.Bold = true
	return &Bumper{Label: label, Text: t, Timing: timing}
}

// Duration is enter + hold + exit + pause.
func (b *Bumper) Duration() float64 {
	if b == nil {
		return 0
	}
	return b.Timing.Total()
}

// Entry pairs a scene with the bumper that follows it. Bumper may be nil.
type Entry struct {
	Scene  timeline.SceneTimeline
	Bumper *Bumper
}

// Show is the ordered list of entries for one run.
type Show struct {
	Title   string
	Entries []Entry
}

// Validate checks every scene and the bumper timings.
func (s *Show) Validate() error {
	if len(s.Entries) == 0 {
		return errors.New("show has no scenes")
	}
	var errs []error
	names := make(map[string]int)
	for i, e := range s.Entries {
		if prev, ok := names[e.Scene.Name]; ok && e.Scene.Name != "" {
			errs = append(errs, fmt.Errorf("scene %d: name %q already used by scene %d", i, e.Scene.Name, prev))
		}
		names[e.Scene.Name] = i
		if err := e.Scene.Validate(); err != nil {
			errs = append(errs, err)
		}
		if b := e.Bumper; b != nil {
			t := b.Timing
			if t.Enter < 0 || t.Hold < 0 || t.Exit < 0 || t.Pause < 0 {
				errs = append(errs, fmt.Errorf("bumper %q: negative timing", b.Label))
			}
		}
	}
	return errors.Join(errs...)
}

// Scenes returns the scene timelines in order.
func (s *Show) Scenes() []timeline.SceneTimeline {
	out := make([]timeline.SceneTimeline, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Scene
	}
	return out
}

// Clone deep-copies the show's scenes. Bumpers are copied by value.
func (s *Show) Clone() *Show {
	c := &Show{Title: s.Title, Entries: make([]Entry, len(s.Entries))}
	for i, e := range s.Entries {
		c.Entries[i].Scene = e.Scene.Clone()
		if e.Bumper != nil {
			b := *e.Bumper
			c.Entries[i].Bumper = &b
		}
	}
	return c
}
