package timeline

import "github.com/ivlev/slidereel/internal/element"

// Stage is the current screen contents: the one piece of mutable state every
// slide unit reads (what exists) and writes (what to keep or clear).
// It is owned by a single runner and is not safe for concurrent use.
type Stage struct {
	order []string
	byID  map[string]element.Renderable
}

func NewStage() *Stage {
	return &Stage{byID: make(map[string]element.Renderable)}
}

// Add puts r on screen. It reports false if an element with the same id is already there.
func (s *Stage) Add(r element.Renderable) bool {
	if _, ok := s.byID[r.ID()]; ok {
		return false
	}
	s.byID[r.ID()] = r
	s.order = append(s.order, r.ID())
	return true
}

// Replace swaps the on-screen element with the same id (after a transform).
func (s *Stage) Replace(r element.Renderable) {
	if _, ok := s.byID[r.ID()]; ok {
		s.byID[r.ID()] = r
	}
}

// Remove takes the element with id off screen.
func (s *Stage) Remove(id string) {
	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Stage) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *Stage) Get(id string) (element.Renderable, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// IDs returns on-screen ids in the order they appeared.
func (s *Stage) IDs() []string {
	return append([]string(nil), s.order...)
}

func (s *Stage) Len() int { return len(s.order) }
