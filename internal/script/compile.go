package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ivlev/slidereel/internal/assets"
	"github.com/ivlev/slidereel/internal/config"
	"github.com/ivlev/slidereel/internal/element"
	"github.com/ivlev/slidereel/internal/engine"
	"github.com/ivlev/slidereel/internal/show"
	"github.com/ivlev/slidereel/internal/timeline"
)

// compiler accumulates authoring errors instead of stopping at the first one.
type compiler struct {
	ctx    context.Context
	cfg    config.Config
	loader *assets.Loader
	errs   []error
}

func (c *compiler) fail(where string, format string, args ...any) {
	c.errs = append(c.errs, fmt.Errorf("%s: %s", where, fmt.Sprintf(format, args...)))
}

// Compile turns a document into a show. Images are resolved through loader;
// missing ones become placeholders, never errors. Durations left out of the
// script take the configured timing defaults.
func Compile(ctx context.Context, doc *Document, cfg config.Config, loader *assets.Loader) (*show.Show, error) {
	if loader == nil {
		loader = assets.NewLoader(cfg.Assets, cfg.Theme)
	}
	c := &compiler{ctx: ctx, cfg: cfg, loader: loader}

	s := &show.Show{Title: doc.Title}
	for i, sc := range doc.Scenes {
		where := fmt.Sprintf("scene %d", i)
		if sc.Name != "" {
			where = fmt.Sprintf("scene %q", sc.Name)
		}
		entry := show.Entry{Scene: c.scene(where, sc)}
		if sc.Bumper != "" {
			entry.Bumper = show.NewBumper(sc.Bumper, cfg.Theme, cfg.Bumper)
		}
		s.Entries = append(s.Entries, entry)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *compiler) scene(where string, sc Scene) timeline.SceneTimeline {
	if sc.Name == "" {
		c.fail(where, "missing name")
	}
	if len(sc.Units) == 0 {
		c.fail(where, "no units")
	}
	out := timeline.SceneTimeline{
		Name:    sc.Name,
		Target:  sc.Target,
		Persist: sc.Persist,
	}
	for j, u := range sc.Units {
		uw := fmt.Sprintf("%s unit %d", where, j)
		out.Units = append(out.Units, c.unit(uw, u))
	}
	return out
}

func (c *compiler) unit(where string, u Unit) timeline.SlideUnit {
	t := c.cfg.Timing
	out := timeline.SlideUnit{
		Name:         u.Name,
		EnterRunTime: u.EnterRunTime,
		Hold:         u.Hold,
	}

	for _, e := range u.Enter {
		el := c.element(where, e.Element)
		if el == nil {
			continue
		}
		ent := timeline.Entrance{Element: el, RunTime: t.EnterRunTime, Scale: e.Scale}
		if e.RunTime != nil {
			ent.RunTime = *e.RunTime
		}
		if e.Shift != nil {
			ent.Shift = *e.Shift
		}
		ent.Effect = c.effect(where, e.Effect)
		out.Enter = append(out.Enter, ent)
	}
	switch {
	case u.LagRatio != nil:
		out.LagRatio = *u.LagRatio
	case len(u.Enter) > 1:
		out.LagRatio = t.LagRatio
	}

	for _, em := range u.Emphasis {
		e := timeline.Emphasis{
			Target:  em.Target,
			Effect:  c.effect(where, em.Effect),
			RunTime: t.EmphasisRunTime,
			Wait:    em.Wait,
			To:      em.To,
		}
		if em.RunTime != nil {
			e.RunTime = *em.RunTime
		}
		out.Emphasis = append(out.Emphasis, e)
	}

	mode, err := timeline.ParseExitMode(u.Exit.Mode)
	if err != nil {
		c.fail(where, "%v", err)
	}
	out.Exit = timeline.Exit{
		Mode:     mode,
		Keep:     u.Exit.Keep,
		Fade:     u.Exit.Fade,
		Effect:   c.effect(where, u.Exit.Effect),
		RunTime:  t.ExitRunTime,
		LagRatio: u.Exit.LagRatio,
		Pause:    u.Exit.Pause,
	}
	if u.Exit.RunTime != nil {
		out.Exit.RunTime = *u.Exit.RunTime
	}
	if mode == timeline.ExitFade && len(u.Exit.Fade) == 0 {
		c.fail(where, "exit mode fade without a fade list")
	}
	return out
}

func (c *compiler) effect(where, name string) engine.Effect {
	if name == "" {
		return ""
	}
	e, err := engine.ParseEffect(name)
	if err != nil {
		c.fail(where, "%v", err)
	}
	return e
}

func (c *compiler) element(where string, e Element) element.Renderable {
	if e.ID == "" {
		c.fail(where, "element without id")
		return nil
	}
	where = fmt.Sprintf("%s element %q", where, e.ID)
	theme := c.cfg.Theme

	var r element.Renderable
	switch strings.ToLower(e.Kind) {
	case "text", "":
		if e.Text == "" {
			c.fail(where, "text element without text")
			return nil
		}
		t := element.NewText(e.ID, e.Text)
		t.Font = theme.Font
		t.Bold, t.Italic = e.Bold, e.Italic
		switch e.Style {
		case "title":
			t.Size, t.Color, t.Bold = theme.TitleSize, theme.Accent, true
		case "caption":
			t.Size, t.Color = theme.CaptionSize, theme.Muted
		case "body", "":
			t.Size, t.Color = theme.BodySize, theme.Text
		default:
			c.fail(where, "unknown text style %q", e.Style)
		}
		if e.Size > 0 {
			t.Size = e.Size
		}
		if e.Color != "" {
			t.Color = theme.Color(e.Color)
		}
		r = t

	case "formula":
		if e.Text == "" {
			c.fail(where, "formula element without text")
			return nil
		}
		// No TeX here: the source is shown as plain text, minus backslashes.
		t := element.NewText(e.ID, strings.ReplaceAll(e.Text, `\`, ""))
		t.Font = theme.Font
		t.Size, t.Color = theme.BodySize, theme.Text
		if e.Size > 0 {
			t.Size = e.Size
		}
		if e.Color != "" {
			t.Color = theme.Color(e.Color)
		}
		r = t

	case "shape":
		typ := element.ShapeType(strings.ToLower(e.Shape))
		switch typ {
		case element.ShapeRect, element.ShapeRounded, element.ShapeCircle, element.ShapeLine, element.ShapeCross:
		case "":
			typ = element.ShapeRect
		default:
			c.fail(where, "unknown shape %q", e.Shape)
		}
		w, h := e.Width, e.Height
		if w <= 0 {
			w = 1
		}
		if h <= 0 {
			h = 1
		}
		s := element.NewShape(e.ID, typ, w, h)
		s.Stroke = theme.Accent
		if e.Stroke != "" {
			s.Stroke = theme.Color(e.Stroke)
		}
		if e.Fill != "" {
			s.Fill = theme.Color(e.Fill)
		}
		r = s

	case "image":
		name := e.Src
		if name == "" {
			name = e.ID
		}
		r = c.loader.LoadAs(c.ctx, e.ID, name, e.Extensions...)

	case "qr":
		img, err := assets.QRCode(e.ID, e.Content, e.Size)
		if err != nil {
			c.fail(where, "%v", err)
			return nil
		}
		r = img

	case "group":
		var children []element.Renderable
		for _, ch := range e.Children {
			if cr := c.element(where, ch); cr != nil {
				children = append(children, cr)
			}
		}
		if len(children) == 0 {
			c.fail(where, "empty group")
			return nil
		}
		g := element.NewGroup(e.ID, children...)
		seen := make(map[string]bool)
		element.Walk(g, func(d element.Renderable) {
			if seen[d.ID()] {
				c.fail(where, "duplicate id %q in group", d.ID())
			}
			seen[d.ID()] = true
		})
		r = g

	default:
		c.fail(where, "unknown kind %q", e.Kind)
		return nil
	}

	if e.At != nil {
		st := r.State()
		st.Position = *e.At
		r = r.WithState(st)
	}
	return r
}
