// Package assets resolves named image assets on disk. A missing or
// unreadable asset never fails a show: the loader substitutes a visible
// placeholder and logs a warning.
package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/slidereel/internal/config"
	"github.com/ivlev/slidereel/internal/element"
	"github.com/ivlev/slidereel/internal/logging"
)

// Loader looks up <dir>/<name><ext> for each candidate extension in order and
// returns the first file its decoder accepts.
type Loader struct {
	dir        string
	extensions []string
	decoders   map[string]Decoder
	fallback   Decoder
	theme      config.Theme
	workers    int
	logger     *log.Logger

	mu     sync.Mutex
	cache  map[string]*element.Image // nil value: known missing
	misses map[string]struct{}
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger. Without it lookups log to the logger
// carried by their context.
func WithLogger(l *log.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithDecoder registers d for files with extension ext (".svg").
func WithDecoder(ext string, d Decoder) Option {
	return func(ld *Loader) { ld.decoders[strings.ToLower(ext)] = d }
}

// NewLoader creates a loader rooted at cfg.Dir. Raster formats and PDF are
// registered by default.
func NewLoader(cfg config.Assets, theme config.Theme, opts ...Option) *Loader {
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = config.DefaultExtensions
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	l := &Loader{
		dir:        cfg.Dir,
		extensions: append([]string(nil), exts...),
		decoders:   make(map[string]Decoder),
		fallback:   RasterDecoder{},
		theme:      theme,
		workers:    workers,
		cache:      make(map[string]*element.Image),
		misses:     make(map[string]struct{}),
	}
	WithDecoder(".pdf", PDFDecoder{})(l)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir is the directory assets are resolved against.
func (l *Loader) Dir() string { return l.dir }

// Load resolves name using exts, or the configured extensions when none are
// given. The returned element's id is name.
func (l *Loader) Load(ctx context.Context, name string, exts ...string) element.Renderable {
	return l.LoadAs(ctx, name, name, exts...)
}

// LoadAs is Load with a caller-chosen element id.
func (l *Loader) LoadAs(ctx context.Context, id, name string, exts ...string) element.Renderable {
	img, _ := l.resolve(ctx, name, exts)
	if img == nil {
		return l.Placeholder(id, name)
	}
	out := *img
	out.Base = element.Base{Name: id, At: element.DefaultState()}
	return &out
}

// Ref names an asset and the extensions to try for it (nil means the
// configured defaults).
type Ref struct {
	Name       string
	Extensions []string
}

// Preload resolves refs concurrently, at most Workers at a time, and fills
// the cache. It returns the names that will fall back to a placeholder.
func (l *Loader) Preload(ctx context.Context, refs []Ref) ([]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	var mu sync.Mutex
	var missing []string
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		key := ref.Name + "|" + strings.Join(ref.Extensions, ",")
		if seen[key] {
			continue
		}
		seen[key] = true
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, _ := l.resolve(ctx, ref.Name, ref.Extensions)
			if err := ctx.Err(); err != nil {
				// Gave up early; the asset may well exist.
				return err
			}
			if img == nil {
				mu.Lock()
				missing = append(missing, ref.Name)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("preload: %w", err)
	}
	sort.Strings(missing)
	return missing, nil
}

// Misses lists every name that fell back to a placeholder so far.
func (l *Loader) Misses() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.misses))
	for n := range l.misses {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Candidates lists the paths tried for name, in order. A name that already
// carries an extension is tried as-is first.
func (l *Loader) Candidates(name string, exts ...string) []string {
	if len(exts) == 0 {
		exts = l.extensions
	}
	base := filepath.Join(l.dir, name)
	var out []string
	if filepath.Ext(name) != "" {
		out = append(out, base)
	}
	for _, ext := range exts {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, base+ext)
	}
	return out
}

func (l *Loader) resolve(ctx context.Context, name string, exts []string) (*element.Image, string) {
	key := name + "|" + strings.Join(exts, ",")
	l.mu.Lock()
	img, ok := l.cache[key]
	l.mu.Unlock()
	if ok {
		if img == nil {
			return nil, ""
		}
		return img, img.Path
	}

	logger := l.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	var tried []string
	for _, path := range l.Candidates(name, exts...) {
		if ctx.Err() != nil {
			break
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		tried = append(tried, path)
		img, err := l.decoderFor(path).Decode(path)
		if err != nil {
			logger.Debug("asset candidate rejected", "path", path, "err", err)
			continue
		}
		l.store(key, name, img)
		logger.Debug("asset resolved", "name", name, "path", path, "format", img.Format, "size", fmt.Sprintf("%dx%d", img.Width, img.Height))
		return img, path
	}

	if ctx.Err() == nil {
		logger.Warn("asset not found, using placeholder", "name", name, "dir", l.dir, "tried", len(tried))
		l.store(key, name, nil)
	}
	return nil, ""
}

func (l *Loader) store(key, name string, img *element.Image) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[key] = img
	if img == nil {
		l.misses[name] = struct{}{}
	}
}

func (l *Loader) decoderFor(path string) Decoder {
	if d, ok := l.decoders[strings.ToLower(filepath.Ext(path))]; ok {
		return d
	}
	return l.fallback
}

// Placeholder builds the stand-in for a missing asset: a frame, a diagonal
// cross and a "<name> not found" caption, all in the theme's warning color.
func (l *Loader) Placeholder(id, name string) *element.Group {
	const w, h = 4.0, 3.0

	frame := element.NewShape(id+"/frame", element.ShapeRect, w, h)
	frame.Stroke = l.theme.Warning

	cross := element.NewShape(id+"/cross", element.ShapeCross, w, h)
	cross.Stroke = l.theme.Warning

	label := element.NewText(id+"/label", name+" not found")
	label.Color = l.theme.Warning
	label.Font = l.theme.Font
	label.Size = l.theme.CaptionSize
	label.At.Position.Y = -h/2 - 0.4

	g := element.NewGroup(id, frame, cross, label)
	g.Placeholder = true
	return g
}
