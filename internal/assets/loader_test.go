package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ivlev/slidereel/internal/config"
	"github.com/ivlev/slidereel/internal/element"
	"github.com/ivlev/slidereel/internal/logging"
)

func newTestLoader(t *testing.T, dir string, opts ...Option) *Loader {
	t.Helper()
	cfg := config.Default()
	cfg.Assets.Dir = dir
	cfg.Assets.Workers = 2
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return NewLoader(cfg.Assets, cfg.Theme, opts...)
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 0x7c, G: 0xc5, B: 0xff, A: 0xff})
	return img
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h), nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingReturnsPlaceholder(t *testing.T) {
	l := newTestLoader(t, t.TempDir())

	r := l.Load(context.Background(), "diagram")
	if r == nil {
		t.Fatal("Load returned nil")
	}
	if !element.IsPlaceholder(r) {
		t.Fatalf("got %s, want placeholder", element.Describe(r))
	}
	if r.ID() != "diagram" {
		t.Errorf("placeholder id = %q", r.ID())
	}
	g := r.(*element.Group)
	if len(g.Children) != 3 {
		t.Fatalf("placeholder has %d parts, want frame, cross, label", len(g.Children))
	}
	label, ok := g.Children[2].(*element.Text)
	if !ok || label.Content != "diagram not found" {
		t.Errorf("label = %+v", g.Children[2])
	}
	if got := l.Misses(); !reflect.DeepEqual(got, []string{"diagram"}) {
		t.Errorf("Misses() = %v", got)
	}
}

func TestLoadTriesCandidatesInOrder(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]func(t *testing.T, path string)
		exts   []string
		want   string
		format string
	}{
		{
			name:   "only second exists",
			files:  map[string]func(*testing.T, string){"logo.jpg": func(t *testing.T, p string) { writeJPEG(t, p, 8, 6) }},
			exts:   []string{".png", ".jpg"},
			want:   "logo.jpg",
			format: "jpeg",
		},
		{
			name: "first wins when both exist",
			files: map[string]func(*testing.T, string){
				"logo.png": func(t *testing.T, p string) { writePNG(t, p, 8, 6) },
				"logo.jpg": func(t *testing.T, p string) { writeJPEG(t, p, 8, 6) },
			},
			exts:   []string{".png", ".jpg"},
			want:   "logo.png",
			format: "png",
		},
		{
			name: "corrupt first falls through",
			files: map[string]func(*testing.T, string){
				"logo.png": func(t *testing.T, p string) { os.WriteFile(p, []byte("not a png"), 0644) },
				"logo.gif": func(t *testing.T, p string) {
					// A PNG under the wrong extension still decodes: formats are sniffed.
					writePNG(t, p, 8, 6)
				},
			},
			exts:   []string{"png", "gif"},
			want:   "logo.gif",
			format: "png",
		},
		{
			name:   "default extensions",
			files:  map[string]func(*testing.T, string){"logo.jpeg": func(t *testing.T, p string) { writeJPEG(t, p, 8, 6) }},
			want:   "logo.jpeg",
			format: "jpeg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, write := range tt.files {
				write(t, filepath.Join(dir, name))
			}
			l := newTestLoader(t, dir)

			r := l.Load(context.Background(), "logo", tt.exts...)
			img, ok := r.(*element.Image)
			if !ok {
				t.Fatalf("got %s, want image", element.Describe(r))
			}
			if filepath.Base(img.Path) != tt.want {
				t.Errorf("path = %s, want %s", img.Path, tt.want)
			}
			if img.Format != tt.format || img.Width != 8 || img.Height != 6 {
				t.Errorf("image = %s %dx%d", img.Format, img.Width, img.Height)
			}
			if img.ID() != "logo" || img.State().Opacity != 1 {
				t.Errorf("id/state = %q %+v", img.ID(), img.State())
			}
		})
	}
}

func TestLoadAsAndCache(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "chart.png"), 4, 4)

	calls := 0
	counting := DecoderFunc(func(path string) (*element.Image, error) {
		calls++
		return RasterDecoder{}.Decode(path)
	})
	l := newTestLoader(t, dir)
	l.fallback = counting

	a := l.LoadAs(context.Background(), "left", "chart")
	b := l.LoadAs(context.Background(), "right", "chart")
	if a.ID() != "left" || b.ID() != "right" {
		t.Errorf("ids = %q, %q", a.ID(), b.ID())
	}
	if calls != 1 {
		t.Errorf("decoder called %d times, want 1 (cached)", calls)
	}
}

func TestCustomDecoder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "arch.svg"), []byte("<svg/>"), 0644); err != nil {
		t.Fatal(err)
	}
	svg := DecoderFunc(func(path string) (*element.Image, error) {
		return &element.Image{Path: path, Format: "svg", Width: 100, Height: 50}, nil
	})
	l := newTestLoader(t, dir, WithDecoder(".svg", svg))

	r := l.Load(context.Background(), "arch", ".png", ".svg")
	img, ok := r.(*element.Image)
	if !ok || img.Format != "svg" {
		t.Fatalf("got %s", element.Describe(r))
	}
}

func TestCandidates(t *testing.T) {
	l := newTestLoader(t, "assets")
	got := l.Candidates("intro/logo.png", "jpg")
	want := []string{filepath.Join("assets", "intro", "logo.png"), filepath.Join("assets", "intro", "logo.png.jpg")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}

func TestPreload(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a", "b", "c"} {
		writePNG(t, filepath.Join(dir, n+".png"), 2, 2)
	}
	l := newTestLoader(t, dir)

	var refs []Ref
	for _, n := range []string{"c", "zeta", "a", "b", "alpha", "a"} {
		refs = append(refs, Ref{Name: n})
	}
	refs = append(refs, Ref{Name: "a", Extensions: []string{".gif"}})
	missing, err := l.Preload(context.Background(), refs)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(missing, []string{"a", "alpha", "zeta"}) {
		t.Errorf("missing = %v", missing)
	}
	if _, ok := l.Load(context.Background(), "b").(*element.Image); !ok {
		t.Error("preloaded asset should load")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestLoader(t, dir).Preload(ctx, []Ref{{Name: "a"}}); err == nil {
		t.Error("expected error from cancelled preload")
	}
}

func TestPreloadCancelledMidway(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "slow.png"), 2, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelling := DecoderFunc(func(path string) (*element.Image, error) {
		cancel()
		return nil, context.Canceled
	})
	l := newTestLoader(t, dir, WithDecoder(".png", cancelling))

	missing, err := l.Preload(ctx, []Ref{{Name: "slow"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, missing = %v; want cancellation", err, missing)
	}
	if got := l.Misses(); len(got) != 0 {
		t.Errorf("cancelled lookup recorded as miss: %v", got)
	}
}

func TestICOHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "favicon.ico")
	// ICONDIR (reserved, type=1, count=1) + first entry width=0 (256), height=48
	hdr := []byte{0, 0, 1, 0, 1, 0, 0, 48, 0, 0, 1, 0, 32, 0}
	if err := os.WriteFile(path, hdr, 0644); err != nil {
		t.Fatal(err)
	}
	img, err := RasterDecoder{}.Decode(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 256 || img.Height != 48 || img.Format != "ico" {
		t.Errorf("ico = %+v", img)
	}

	if err := os.WriteFile(path, []byte{0, 0, 2, 0, 1, 0, 16, 16}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := (RasterDecoder{}).Decode(path); err == nil {
		t.Error("cursor file should be rejected")
	}
}

func TestPDFDecoderMissingFile(t *testing.T) {
	if _, err := (PDFDecoder{}).Decode(filepath.Join(t.TempDir(), "slides.pdf")); err == nil {
		t.Error("expected error for missing pdf")
	}
}

func TestQRCode(t *testing.T) {
	img, err := QRCode("qr", "https://example.com/talk", 128)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(img.Data, []byte("\x89PNG")) {
		t.Error("QR data is not a PNG")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil || format != "png" || cfg.Width != 128 {
		t.Errorf("decoded %s %dx%d err=%v", format, cfg.Width, cfg.Height, err)
	}
	if _, err := QRCode("qr", "", 64); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadLogsToContextLogger(t *testing.T) {
	cfg := config.Default()
	cfg.Assets.Dir = t.TempDir()
	l := NewLoader(cfg.Assets, cfg.Theme)

	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), log.New(&buf))
	l.Load(ctx, "diagram")
	if !strings.Contains(buf.String(), "asset not found") || !strings.Contains(buf.String(), "name=diagram") {
		t.Errorf("log = %q", buf.String())
	}
}
