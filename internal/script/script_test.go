package script

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/slidereel/internal/assets"
	"github.com/ivlev/slidereel/internal/config"
	"github.com/ivlev/slidereel/internal/element"
	"github.com/ivlev/slidereel/internal/engine"
	"github.com/ivlev/slidereel/internal/logging"
	"github.com/ivlev/slidereel/internal/show"
	"github.com/ivlev/slidereel/internal/timeline"
)

func testConfig(t *testing.T) (config.Config, *assets.Loader) {
	t.Helper()
	cfg := config.Default()
	cfg.Assets.Dir = t.TempDir()
	return cfg, assets.NewLoader(cfg.Assets, cfg.Theme, assets.WithLogger(logging.Discard()))
}

func TestSampleCompilesWithinBudget(t *testing.T) {
	doc, err := Parse(Sample())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg, loader := testConfig(t)

	s, err := Compile(context.Background(), doc, cfg, loader)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(s.Entries) != 5 {
		t.Fatalf("got %d scenes", len(s.Entries))
	}
	if s.Entries[len(s.Entries)-1].Bumper != nil {
		t.Error("last scene should have no bumper")
	}
	for _, e := range s.Entries[:len(s.Entries)-1] {
		if e.Bumper == nil {
			t.Errorf("scene %q has no bumper", e.Scene.Name)
		}
		if w := e.Scene.Warnings(); len(w) != 0 {
			t.Errorf("warnings: %v", w)
		}
	}

	budgets, err := show.Budgets(s, cfg.Theme, cfg.Timing)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range budgets {
		if !b.OK() {
			t.Errorf("over budget: %s", b)
		}
		t.Logf("%s", b)
	}

	// No image exists in the temp asset dir: all of them fall back.
	if got := loader.Misses(); strings.Join(got, ",") != "pipeline_figure,pitch_contour,spectrogram,waveform" {
		t.Errorf("misses = %v", got)
	}

	report, rec, err := show.Plan(s, cfg.Theme, cfg.Timing)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(report.Total-80.432) > 1e-6 {
		t.Errorf("total = %.3f, want 80.432", report.Total)
	}
	if len(rec.Runs()) != 9 {
		t.Errorf("runs = %d, want 5 scenes + 4 bumpers", len(rec.Runs()))
	}
}

func TestCompileDefaults(t *testing.T) {
	src := `
title: defaults
scenes:
  - name: one
    units:
      - enter:
          - element: {id: a, kind: text, text: A}
          - element: {id: b, kind: shape, shape: circle, fill: accent}
        hold: 2
        emphasis:
          - {target: a}
      - enter:
          - element: {id: c, text: C, style: caption}
            run_time: 0
            effect: Fade-In
        exit: {mode: fade, fade: [c], run_time: 0.25}
`
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != Version {
		t.Errorf("version = %d", doc.Version)
	}
	cfg, loader := testConfig(t)
	s, err := Compile(context.Background(), doc, cfg, loader)
	if err != nil {
		t.Fatal(err)
	}

	u0 := s.Entries[0].Scene.Units[0]
	if u0.Enter[0].RunTime != cfg.Timing.EnterRunTime || u0.LagRatio != cfg.Timing.LagRatio {
		t.Errorf("enter defaults not applied: %+v lag=%v", u0.Enter[0], u0.LagRatio)
	}
	if u0.Emphasis[0].RunTime != cfg.Timing.EmphasisRunTime {
		t.Errorf("emphasis run time = %v", u0.Emphasis[0].RunTime)
	}
	if u0.Exit.RunTime != cfg.Timing.ExitRunTime || u0.Exit.Mode != timeline.ExitClear {
		t.Errorf("exit = %+v", u0.Exit)
	}
	shape := u0.Enter[1].Element.(*element.Shape)
	if shape.Type != element.ShapeCircle || shape.Fill != cfg.Theme.Accent {
		t.Errorf("shape = %+v", shape)
	}

	u1 := s.Entries[0].Scene.Units[1]
	if u1.Enter[0].RunTime != 0 || u1.Enter[0].Effect != engine.EffectFadeIn || u1.LagRatio != 0 {
		t.Errorf("explicit values lost: %+v", u1)
	}
	txt := u1.Enter[0].Element.(*element.Text)
	if txt.Size != cfg.Theme.CaptionSize || txt.Color != cfg.Theme.Muted {
		t.Errorf("caption style = %+v", txt)
	}
	if u1.Exit.Mode != timeline.ExitFade || u1.Exit.RunTime != 0.25 {
		t.Errorf("exit = %+v", u1.Exit)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "unknown kind and effect",
			src: `
scenes:
  - name: s
    units:
      - enter:
          - element: {id: a, kind: video}
          - element: {id: b, text: B}
            effect: zoom
`,
			want: []string{`unknown kind "video"`, `unknown effect "zoom"`},
		},
		{
			name: "bad references",
			src: `
scenes:
  - name: s
    persist: [logo]
    units:
      - enter:
          - element: {id: a, text: A}
        emphasis: [{target: ghost}]
        exit: {keep: [later]}
`,
			want: []string{`persist refers to unknown element "logo"`, `emphasis target "ghost"`, `keep refers to unknown element "later"`},
		},
		{
			name: "bad exit",
			src: `
scenes:
  - name: s
    units:
      - enter:
          - element: {id: a, text: A}
        exit: {mode: dissolve}
      - enter:
          - element: {id: b, text: B}
        exit: {mode: fade}
`,
			want: []string{`unknown exit mode "dissolve"`, "fade without a fade list"},
		},
		{
			name: "negative durations",
			src: `
scenes:
  - name: s
    units:
      - enter:
          - element: {id: a, text: A}
        hold: -1
`,
			want: []string{"negative hold"},
		},
		{
			name: "duplicate id in group",
			src: `
scenes:
  - name: s
    units:
      - enter:
          - element:
              id: row
              kind: group
              children:
                - {id: cell, text: A}
                - id: inner
                  kind: group
                  children:
                    - {id: cell, text: B}
`,
			want: []string{`duplicate id "cell" in group`},
		},
		{
			name: "empty show",
			src:  "title: nothing\n",
			want: []string{"no scenes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.src))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			cfg, loader := testConfig(t)
			_, err = Compile(context.Background(), doc, cfg, loader)
			if err == nil {
				t.Fatal("expected compile error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %q", err, w)
				}
			}
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("scenes:\n  - name: a\n    hodl: 3\n"))
	if err == nil || !strings.Contains(err.Error(), "hodl") {
		t.Errorf("err = %v", err)
	}
	if _, err := Parse([]byte("version: 9\n")); err == nil {
		t.Error("expected version error")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	doc, err := Parse(Sample())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "show.yaml")
	if err := Write(doc, path); err != nil {
		t.Fatal(err)
	}
	back, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Title != doc.Title || len(back.Scenes) != len(doc.Scenes) {
		t.Fatalf("round trip lost data: %q, %d scenes", back.Title, len(back.Scenes))
	}
	if got := back.Scenes[0].Units[3].Exit.LagRatio; got != 0.12 {
		t.Errorf("exit lag ratio = %v", got)
	}
}

func TestAssets(t *testing.T) {
	doc, err := Parse(Sample())
	if err != nil {
		t.Fatal(err)
	}
	refs := doc.Assets()
	var names []string
	for _, r := range refs {
		names = append(names, r.Name)
	}
	if got := strings.Join(names, ","); got != "waveform,spectrogram,pitch_contour,pipeline_figure" {
		t.Errorf("Assets() = %s", got)
	}
	if ext := strings.Join(refs[3].Extensions, ","); ext != ".png,.pdf" {
		t.Errorf("pipeline_figure extensions = %s", ext)
	}
}

func TestCompilePartialTransform(t *testing.T) {
	src := `
scenes:
  - name: s
    units:
      - enter:
          - element: {id: box, kind: shape}
        emphasis:
          - {target: box, effect: transform, to: {position: {x: 2, y: 0}}}
`
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	cfg, loader := testConfig(t)
	s, err := Compile(context.Background(), doc, cfg, loader)
	if err != nil {
		t.Fatal(err)
	}

	to := s.Entries[0].Scene.Units[0].Emphasis[0].To
	if to == nil || to.Position == nil || to.Opacity != nil || to.Scale != nil {
		t.Fatalf("to = %+v, want position only", to)
	}

	_, rec, err := show.Plan(s, cfg.Theme, cfg.Timing)
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range rec.Instructions {
		if in.Source.Phase != engine.PhaseEmphasis || in.Op != engine.OpPlay {
			continue
		}
		got := *in.Batch.Animations[0].To
		want := element.State{Position: element.Point{X: 2}, Opacity: 1, Scale: 1}
		if got != want {
			t.Errorf("moved box state = %+v, want %+v", got, want)
		}
		return
	}
	t.Fatal("no transform instruction recorded")
}

func TestCompileFormula(t *testing.T) {
	src := `
scenes:
  - name: math
    units:
      - enter:
          - element: {id: f1, kind: formula, text: '\frac{TP}{TP + FP}'}
          - element: {id: f2, kind: formula, text: 'F_1', size: 40, color: accent}
`
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	cfg, loader := testConfig(t)
	s, err := Compile(context.Background(), doc, cfg, loader)
	if err != nil {
		t.Fatal(err)
	}

	enter := s.Entries[0].Scene.Units[0].Enter
	f1, ok := enter[0].Element.(*element.Text)
	if !ok {
		t.Fatalf("f1 is %s, want text", element.Describe(enter[0].Element))
	}
	if f1.Content != "frac{TP}{TP + FP}" || f1.Size != cfg.Theme.BodySize || f1.Color != cfg.Theme.Text {
		t.Errorf("f1 = %q size %d color %s", f1.Content, f1.Size, f1.Color)
	}
	f2 := enter[1].Element.(*element.Text)
	if f2.Size != 40 || f2.Color != cfg.Theme.Accent {
		t.Errorf("f2 size %d color %s", f2.Size, f2.Color)
	}

	doc, err = Parse([]byte("scenes:\n  - name: s\n    units:\n      - enter:\n          - element: {id: f, kind: formula}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Compile(context.Background(), doc, cfg, loader); err == nil || !strings.Contains(err.Error(), "formula element without text") {
		t.Errorf("err = %v", err)
	}
}
