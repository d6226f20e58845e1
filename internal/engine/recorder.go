package engine

import (
	"context"
	"sort"
)

// Recorder keeps every instruction it receives. It is the observation point
// for dry runs (plan, lint, export) and for tests.
type Recorder struct {
	Instructions []Instruction
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Execute(ctx context.Context, in Instruction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.Instructions = append(r.Instructions, in)
	return nil
}

// Total is the scheduled end of the last instruction.
func (r *Recorder) Total() float64 {
	total := 0.0
	for _, in := range r.Instructions {
		if in.End() > total {
			total = in.End()
		}
	}
	return total
}

// interval is the half-open span [from, to) during which an element is on screen.
type interval struct {
	from, to float64
	open     bool
}

// intervals replays enter/exit animations into per-element visibility spans.
// An element appears at the start of the instruction that enters it and
// disappears at the end of the instruction that removes it.
func (r *Recorder) intervals() map[string][]interval {
	spans := make(map[string][]interval)
	for _, in := range r.Instructions {
		if in.Op != OpPlay {
			continue
		}
		for _, a := range in.Batch.Animations {
			if a.Target == nil {
				continue
			}
			id := a.Target.ID()
			list := spans[id]
			switch {
			case a.Effect.Enters():
				if n := len(list); n > 0 && list[n-1].open {
					continue
				}
				spans[id] = append(list, interval{from: in.At, open: true})
			case a.Effect.Exits():
				if n := len(list); n > 0 && list[n-1].open {
					list[n-1].to = in.End()
					list[n-1].open = false
				}
			}
		}
	}
	return spans
}

// VisibleAt returns the sorted ids of the elements on screen at time t.
func (r *Recorder) VisibleAt(t float64) []string {
	var ids []string
	for id, list := range r.intervals() {
		for _, iv := range list {
			if iv.from <= t && (iv.open || t < iv.to) {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// OnScreen returns the ids still on screen after the last instruction.
func (r *Recorder) OnScreen() []string {
	var ids []string
	for id, list := range r.intervals() {
		if n := len(list); n > 0 && list[n-1].open {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Runs collapses the instruction stream into consecutive segments, e.g.
// scene 0, bumper 0, scene 1. A new run starts whenever the segment kind or
// scene index changes.
func (r *Recorder) Runs() []Source {
	var runs []Source
	for _, in := range r.Instructions {
		src := in.Source
		if n := len(runs); n > 0 && runs[n-1].Segment == src.Segment && runs[n-1].Scene == src.Scene {
			continue
		}
		runs = append(runs, Source{Segment: src.Segment, Scene: src.Scene, SceneName: src.SceneName, Unit: -1})
	}
	return runs
}
