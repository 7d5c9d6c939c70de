// Package engine wires the configuration, the resource subsystem,
// the fonts and the palettes into a ready to use renderer.
package engine

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"

	"github.com/benoitkugler/infosvg/config"
	"github.com/benoitkugler/infosvg/ctxlog"
	"github.com/benoitkugler/infosvg/dom"
	"github.com/benoitkugler/infosvg/element"
	"github.com/benoitkugler/infosvg/font"
	"github.com/benoitkugler/infosvg/measure"
	"github.com/benoitkugler/infosvg/palette"
	"github.com/benoitkugler/infosvg/render"
	"github.com/benoitkugler/infosvg/resource"
	"github.com/benoitkugler/infosvg/store"
	"github.com/benoitkugler/infosvg/svgpdf"
	"github.com/benoitkugler/infosvg/svgraster"
)

// Engine renders element trees. It is safe for concurrent use.
type Engine struct {
	cfg *config.Config

	logger     *slog.Logger
	client     *http.Client
	extra      map[string]resource.Loader
	palettes   *palette.Registry
	fonts      *font.Registry
	fontLoader *font.Loader
	loaders    *resource.Registry
	store      *store.SQLite
	resources  *resource.Manager
	measurer   *measure.Measurer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by renders. Default: no logging.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithHTTPClient sets the client of the HTTP loaders.
func WithHTTPClient(c *http.Client) Option { return func(e *Engine) { e.client = c } }

// WithLoader registers a loader for scene, overriding the configured
// URL template, if any.
func WithLoader(scene string, l resource.Loader) Option {
	return func(e *Engine) { e.extra[scene] = l }
}

// New builds an engine. A nil cfg uses config.Default.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{cfg: cfg, logger: ctxlog.Nop(), extra: make(map[string]resource.Loader)}
	for _, o := range opts {
		o(e)
	}
	if e.logger == nil {
		e.logger = ctxlog.Nop()
	}

	e.palettes = palette.NewRegistry()
	for name, colors := range cfg.Palettes {
		e.palettes.Register(name, palette.Colors(colors))
	}

	e.fonts = font.NewRegistry()
	for _, f := range cfg.Fonts {
		e.fonts.Register(font.Family{Name: f.Name, URL: f.URL, Weight: f.Weight})
		if f.File == "" {
			continue
		}
		data, err := os.ReadFile(f.File)
		if err != nil {
			return nil, fmt.Errorf("engine: font %s: %w", f.Name, err)
		}
		if err := e.fonts.RegisterTTF(f.Name, data); err != nil {
			return nil, fmt.Errorf("engine: font %s: %w", f.Name, err)
		}
	}
	e.fontLoader = &font.Loader{Registry: e.fonts, Headless: cfg.Headless}

	e.loaders = resource.NewRegistry(resource.DefaultLoader{HTTP: &resource.HTTPLoader{Client: e.client}})
	for scene, tmpl := range cfg.Scenes {
		e.loaders.Register(scene, &resource.HTTPLoader{Client: e.client, URLTemplate: tmpl})
	}
	for scene, l := range e.extra {
		e.loaders.Register(scene, l)
	}

	managerOpts := []resource.Option{
		resource.WithTimeout(cfg.LoaderTimeout),
		resource.WithPrefetchLimit(cfg.PrefetchLimit),
	}
	if cfg.StorePath != "" {
		st, err := store.Open(cfg.StorePath, store.WithMkdirAll())
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.store = st
		managerOpts = append(managerOpts, resource.WithStore(st))
		e.logger.Info("engine: resource store opened", "path", cfg.StorePath)
	}
	e.resources = resource.NewManager(e.loaders, managerOpts...)

	e.measurer = &measure.Measurer{
		Fonts: e.fonts,
		Theme: measure.Theme{FontFamily: cfg.Theme.FontFamily, FontSize: cfg.Theme.FontSize},
	}
	return e, nil
}

// RenderOption adjusts a single render.
type RenderOption func(*render.Options)

// WithPalette colors the nodes with p instead of the configured palette.
func WithPalette(p palette.Palette) RenderOption {
	return func(o *render.Options) { o.Palette = p }
}

// WithTotal sets the number of items colored by the palette.
func WithTotal(n int) RenderOption { return func(o *render.Options) { o.Total = n } }

// WithPrimary overrides the configured primary color.
func WithPrimary(color string) RenderOption { return func(o *render.Options) { o.Primary = color } }

func (e *Engine) options(opts []RenderOption) render.Options {
	out := render.Options{
		Primary:   e.cfg.PrimaryColor,
		Palettes:  e.palettes,
		Resources: e.resources,
		Fonts:     e.fontLoader,
	}
	if e.cfg.Palette != "" {
		out.Palette = palette.Named(e.cfg.Palette)
	}
	for _, o := range opts {
		o(&out)
	}
	return out
}

// Render renders root into a new document, sized to fit its content.
func (e *Engine) Render(ctx context.Context, root element.Node, opts ...RenderOption) (*render.Rendered, error) {
	b, err := e.measurer.Measure(root)
	if err != nil {
		return nil, err
	}
	doc := dom.NewDocument(math.Ceil(math.Max(b.X+b.Width, 0)), math.Ceil(math.Max(b.Y+b.Height, 0)))
	return e.RenderInto(ctx, root, doc, opts...)
}

// RenderInto replaces the content of doc by the rendering of root.
func (e *Engine) RenderInto(ctx context.Context, root element.Node, doc *dom.Document, opts ...RenderOption) (*render.Rendered, error) {
	ctx = ctxlog.WithLogger(ctx, e.logger)
	return render.Render(ctx, root, doc, e.options(opts))
}

// Prefetch resolves the given references in the background, so that
// later renders find them in the cache. References which do not parse
// are skipped.
func (e *Engine) Prefetch(ctx context.Context, scene string, refs ...any) (int, error) {
	ctx = ctxlog.WithLogger(ctx, e.logger)
	cfgs := make([]resource.Config, 0, len(refs))
	for _, ref := range refs {
		cfg, ok := resource.ParseReference(ref)
		if !ok {
			e.logger.Debug("engine: invalid resource reference", "scene", scene, "reference", ref)
			continue
		}
		cfgs = append(cfgs, *cfg)
	}
	return e.resources.Prefetch(ctx, scene, cfgs...)
}

// Measure returns the bounds of n, with the engine theme and fonts.
func (e *Engine) Measure(n element.Node) (measure.Bounds, error) { return e.measurer.Measure(n) }

// Measurer returns the measurer of the engine, to be passed to
// layout components.
func (e *Engine) Measurer() *measure.Measurer { return e.measurer }

// Palettes returns the palette registry, populated from the configuration.
func (e *Engine) Palettes() *palette.Registry { return e.palettes }

// Loaders returns the loader registry. Loaders may be registered
// after New.
func (e *Engine) Loaders() *resource.Registry { return e.loaders }

// Fonts returns the font registry.
func (e *Engine) Fonts() *font.Registry { return e.fonts }

// Resources returns the resource manager.
func (e *Engine) Resources() *resource.Manager { return e.resources }

// WritePNG waits for the resources of r to settle, then writes
// the document as a PNG image.
func (e *Engine) WritePNG(ctx context.Context, w io.Writer, r *render.Rendered) error {
	if err := r.Wait(ctx); err != nil {
		return err
	}
	img, err := svgraster.Rasterize(r.Document(), e.fonts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// WritePDF waits for the resources of r to settle, then writes
// the document as a single page PDF.
func (e *Engine) WritePDF(ctx context.Context, w io.Writer, r *render.Rendered) error {
	if err := r.Wait(ctx); err != nil {
		return err
	}
	return svgpdf.Write(w, r.Document())
}

// Close releases the persistent store, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}
