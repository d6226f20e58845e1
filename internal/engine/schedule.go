package engine

import (
	"fmt"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Schedule is the serializable form of a recorded run.
type Schedule struct {
	Version  string  `yaml:"version"`
	Title    string  `yaml:"title,omitempty"`
	Total    float64 `yaml:"total"` // seconds
	Segments []Entry `yaml:"instructions"`
}

// Entry is one instruction of a Schedule.
type Entry struct {
	Op       string   `yaml:"op"`
	At       float64  `yaml:"at"`
	Duration float64  `yaml:"duration"`
	Segment  string   `yaml:"segment"`
	Scene    string   `yaml:"scene"`
	Unit     int      `yaml:"unit"`
	Phase    string   `yaml:"phase"`
	LagRatio float64  `yaml:"lag_ratio,omitempty"`
	Targets  []Target `yaml:"targets,omitempty"`
}

// Target is one animation of a play entry.
type Target struct {
	ID      string  `yaml:"id"`
	Effect  string  `yaml:"effect"`
	RunTime float64 `yaml:"run_time"`
}

// NewSchedule converts recorded instructions into a Schedule.
func NewSchedule(title string, ins []Instruction) *Schedule {
	s := &Schedule{Version: "1.0", Title: title}
	for _, in := range ins {
		e := Entry{
			Op:       in.Op.String(),
			At:       in.At,
			Duration: in.Duration,
			Segment:  in.Source.Segment.String(),
			Scene:    in.Source.SceneName,
			Unit:     in.Source.Unit,
			Phase:    string(in.Source.Phase),
			LagRatio: in.Batch.LagRatio,
		}
		for _, a := range in.Batch.Animations {
			id := ""
			if a.Target != nil {
				id = a.Target.ID()
			}
			e.Targets = append(e.Targets, Target{ID: id, Effect: string(a.Effect), RunTime: a.RunTime})
		}
		if in.End() > s.Total {
			s.Total = in.End()
		}
		s.Segments = append(s.Segments, e)
	}
	return s
}

// WriteSchedule writes a schedule to a YAML file
func WriteSchedule(s *Schedule, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadSchedule reads a schedule from a YAML file
func ReadSchedule(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Schedule
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

// Diff describes the first difference between s and o, or returns "" when
// they hold the same instructions.
func (s *Schedule) Diff(o *Schedule) string {
	if s.Title != o.Title {
		return fmt.Sprintf("title %q != %q", s.Title, o.Title)
	}
	n := min(len(s.Segments), len(o.Segments))
	for i := 0; i < n; i++ {
		a, b := s.Segments[i], o.Segments[i]
		if !reflect.DeepEqual(a, b) {
			return fmt.Sprintf("instruction %d: %s %s@%.2fs+%.2fs != %s %s@%.2fs+%.2fs",
				i, a.Op, a.Scene, a.At, a.Duration, b.Op, b.Scene, b.At, b.Duration)
		}
	}
	if len(s.Segments) != len(o.Segments) {
		return fmt.Sprintf("%d instructions != %d", len(s.Segments), len(o.Segments))
	}
	if s.Total != o.Total {
		return fmt.Sprintf("total %.2fs != %.2fs", s.Total, o.Total)
	}
	return ""
}
