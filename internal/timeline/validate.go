package timeline

import (
	"errors"
	"fmt"
)

// Validate checks a scene before it runs: every element it refers to must
// have been introduced by an earlier (or the same) unit, emphasis targets
// must be on screen, ids must not enter twice while visible, durations
// must not be negative, and the scene must have at least one unit. All problems are reported together.
func (s SceneTimeline) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("scene %q: "+format, append([]any{s.Name}, args...)...))
	}

	if s.Target < 0 {
		fail("negative target %.2f", s.Target)
	}
	if len(s.Units) == 0 {
		fail("no units")
	}

	introduced := make(map[string]bool)
	for _, u := range s.Units {
		for _, e := range u.Enter {
			if e.Element != nil {
				introduced[e.Element.ID()] = true
			}
		}
	}
	for _, id := range s.Persist {
		if !introduced[id] {
			fail("persist refers to unknown element %q", id)
		}
	}

	persist := NewKeepSet(s.Persist...)
	onScreen := make(map[string]bool)
	seen := make(map[string]bool)
	for i, u := range s.Units {
		where := fmt.Sprintf("unit %d", i)
		if u.Name != "" {
			where = fmt.Sprintf("unit %d (%s)", i, u.Name)
		}
		for _, d := range []struct {
			name string
			v    float64
		}{
			{"hold", u.Hold}, {"lag_ratio", u.LagRatio}, {"enter_run_time", u.EnterRunTime},
			{"exit.run_time", u.Exit.RunTime}, {"exit.lag_ratio", u.Exit.LagRatio}, {"exit.pause", u.Exit.Pause},
		} {
			if d.v < 0 {
				fail("%s: negative %s %.2f", where, d.name, d.v)
			}
		}

		for _, e := range u.Enter {
			if e.Element == nil {
				fail("%s: entrance without element", where)
				continue
			}
			id := e.Element.ID()
			if id == "" {
				fail("%s: element without id", where)
				continue
			}
			if onScreen[id] {
				fail("%s: %q is already on screen", where, id)
			}
			if e.RunTime < 0 {
				fail("%s: negative run_time for %q", where, id)
			}
			if e.Effect != "" && !e.Effect.Enters() {
				fail("%s: effect %s cannot bring %q on screen", where, e.Effect, id)
			}
			onScreen[id] = true
			seen[id] = true
		}

		for _, em := range u.Emphasis {
			if !onScreen[em.Target] {
				fail("%s: emphasis target %q is not on screen", where, em.Target)
			}
			if em.RunTime < 0 || em.Wait < 0 {
				fail("%s: negative emphasis timing for %q", where, em.Target)
			}
			if em.Effect != "" && !em.Effect.Emphasizes() {
				fail("%s: effect %s is not an emphasis", where, em.Effect)
			}
		}

		if u.Exit.Effect != "" && !u.Exit.Effect.Exits() {
			fail("%s: exit effect %s does not remove elements", where, u.Exit.Effect)
		}
		for _, id := range u.Exit.Keep {
			if !seen[id] {
				fail("%s: keep refers to unknown element %q", where, id)
			}
		}
		for _, id := range u.Exit.Fade {
			if !seen[id] {
				fail("%s: fade refers to unknown element %q", where, id)
			}
		}

		keep := NewKeepSet(u.Exit.Keep...)
		if i < len(s.Units)-1 {
			keep = keep.Union(persist)
		}
		if u.Exit.Mode == ExitFade {
			for _, id := range u.Exit.Fade {
				if !keep.Has(id) {
					delete(onScreen, id)
				}
			}
		} else {
			for id := range onScreen {
				if !keep.Has(id) {
					delete(onScreen, id)
				}
			}
		}
	}
	return errors.Join(errs...)
}

// Warnings lists suspicious but runnable constructs: elements that are both
// kept and faded (keep wins) and keep entries that are not on screen.
func (s SceneTimeline) Warnings() []string {
	var out []string
	persist := NewKeepSet(s.Persist...)
	onScreen := make(map[string]bool)
	for i, u := range s.Units {
		for _, e := range u.Enter {
			if e.Element != nil {
				onScreen[e.Element.ID()] = true
			}
		}
		keep := NewKeepSet(u.Exit.Keep...)
		if i < len(s.Units)-1 {
			keep = keep.Union(persist)
		}
		for _, id := range u.Exit.Keep {
			if !onScreen[id] {
				out = append(out, fmt.Sprintf("scene %q unit %d: keep %q is not on screen", s.Name, i, id))
			}
		}
		if u.Exit.Mode == ExitFade {
			for _, id := range u.Exit.Fade {
				if keep.Has(id) {
					out = append(out, fmt.Sprintf("scene %q unit %d: %q is both kept and faded, keeping it", s.Name, i, id))
					continue
				}
				delete(onScreen, id)
			}
		} else {
			for id := range onScreen {
				if !keep.Has(id) {
					delete(onScreen, id)
				}
			}
		}
	}
	return out
}
