// Package element models the visual elements a show puts on screen.
package element

import "fmt"

// Kind tags the concrete variant behind a Renderable.
type Kind int

const (
	KindText Kind = iota
	KindShape
	KindImage
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindShape:
		return "shape"
	case KindImage:
		return "image"
	case KindGroup:
		return "group"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Point is a position in scene units (origin at frame center, y up).
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// State is the animatable part of an element.
type State struct {
	Position Point   `yaml:"position"`
	Opacity  float64 `yaml:"opacity"`
	Scale    float64 `yaml:"scale"`
}

// Patch is a partial State: nil fields keep the value they are applied to.
type Patch struct {
	Position *Point   `yaml:"position,omitempty"`
	Opacity  *float64 `yaml:"opacity,omitempty"`
	Scale    *float64 `yaml:"scale,omitempty"`
}

// Apply overlays the fields set in p onto s.
func (p Patch) Apply(s State) State {
	if p.Position != nil {
		s.Position = *p.Position
	}
	if p.Opacity != nil {
		s.Opacity = *p.Opacity
	}
	if p.Scale != nil {
		s.Scale = *p.Scale
	}
	return s
}

// DefaultState is fully opaque, unscaled, centered.
func DefaultState() State {
	return State{Opacity: 1.0, Scale: 1.0}
}

// Renderable is the capability every visual element shares with the engine:
// an identity, a position/opacity/scale state, and a way to derive the element
// in another state (the target of a transform animation).
type Renderable interface {
	ID() string
	Kind() Kind
	State() State
	WithState(s State) Renderable
}

// Base carries the fields common to all variants.
type Base struct {
	Name string
	At   State
}

func (b Base) ID() string { return b.Name }

func (b Base) State() State { return b.At }

func (b *Base) set(s State) { b.At = s }

func newBase(id string) Base {
	return Base{Name: id, At: DefaultState()}
}

// Text is a single styled string.
type Text struct {
	Base
	Content string
	Color   string
	Font    string
	Size    int
	Bold    bool
	Italic  bool
}

func NewText(id, content string) *Text {
	return &Text{Base: newBase(id), Content: content}
}

func (t *Text) Kind() Kind { return KindText }

func (t *Text) WithState(s State) Renderable {
	c := *t
	c.set(s)
	return &c
}

// ShapeType enumerates the primitive shapes.
type ShapeType string

const (
	ShapeRect    ShapeType = "rect"
	ShapeRounded ShapeType = "rounded"
	ShapeCircle  ShapeType = "circle"
	ShapeLine    ShapeType = "line"
	ShapeCross   ShapeType = "cross"
)

// Shape is a vector primitive.
type Shape struct {
	Base
	Type        ShapeType
	Width       float64
	Height      float64
	Stroke      string
	StrokeWidth float64
	Fill        string
}

func NewShape(id string, typ ShapeType, w, h float64) *Shape {
	return &Shape{Base: newBase(id), Type: typ, Width: w, Height: h, StrokeWidth: 2}
}

func (s *Shape) Kind() Kind { return KindShape }

func (s *Shape) WithState(st State) Renderable {
	c := *s
	c.set(st)
	return &c
}

// Image is a raster (or rasterizable) asset. Either Path or Data is set.
type Image struct {
	Base
	Path   string
	Data   []byte
	Format string
	Width  int
	Height int
}

func NewImage(id, path string) *Image {
	return &Image{Base: newBase(id), Path: path}
}

func (i *Image) Kind() Kind { return KindImage }

func (i *Image) WithState(s State) Renderable {
	c := *i
	c.set(s)
	return &c
}

// Group is an ordered collection animated as one element.
type Group struct {
	Base
	Children []Renderable
	// Placeholder marks a group substituted for an asset that could not be loaded.
	Placeholder bool
}

func NewGroup(id string, children ...Renderable) *Group {
	return &Group{Base: newBase(id), Children: children}
}

func (g *Group) Kind() Kind { return KindGroup }

// WithState moves the group; children keep their offsets relative to it.
func (g *Group) WithState(s State) Renderable {
	c := *g
	dx, dy := s.Position.X-g.At.Position.X, s.Position.Y-g.At.Position.Y
	c.Children = make([]Renderable, len(g.Children))
	for i, ch := range g.Children {
		cs := ch.State()
		cs.Position.X += dx
		cs.Position.Y += dy
		cs.Opacity = s.Opacity
		c.Children[i] = ch.WithState(cs)
	}
	c.set(s)
	return &c
}

// Walk visits r and, for groups, every descendant depth-first.
func Walk(r Renderable, fn func(Renderable)) {
	fn(r)
	if g, ok := r.(*Group); ok {
		for _, ch := range g.Children {
			Walk(ch, fn)
		}
	}
}

// IsPlaceholder reports whether r stands in for a missing asset.
func IsPlaceholder(r Renderable) bool {
	g, ok := r.(*Group)
	return ok && g.Placeholder
}

// Describe returns a short human label used in logs.
func Describe(r Renderable) string {
	switch v := r.(type) {
	case *Text:
		return fmt.Sprintf("text %q", truncate(v.Content, 32))
	case *Shape:
		return fmt.Sprintf("shape %s", v.Type)
	case *Image:
		if v.Path != "" {
			return fmt.Sprintf("image %s", v.Path)
		}
		return fmt.Sprintf("image inline %dx%d", v.Width, v.Height)
	case *Group:
		if v.Placeholder {
			return fmt.Sprintf("placeholder (%d parts)", len(v.Children))
		}
		return fmt.Sprintf("group (%d)", len(v.Children))
	default:
		return r.Kind().String()
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
