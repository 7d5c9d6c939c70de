package resource

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Loader fetches the raw SVG markup of a resource.
// Returned content is validated by the Manager.
type Loader interface {
	Load(ctx context.Context, scene string, cfg Config) (string, error)
}

// LoaderFunc is an adapter to use ordinary functions as loaders.
type LoaderFunc func(ctx context.Context, scene string, cfg Config) (string, error)

// Load calls f(ctx, scene, cfg).
func (f LoaderFunc) Load(ctx context.Context, scene string, cfg Config) (string, error) {
	return f(ctx, scene, cfg)
}

// Registry maps scenes to loaders. It is populated at start-up
// and read afterwards, but is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	loaders  map[string]Loader
	fallback Loader
}

// NewRegistry returns a registry using fallback for scenes without
// a registered loader. A nil fallback is replaced by a DefaultLoader.
func NewRegistry(fallback Loader) *Registry {
	if fallback == nil {
		fallback = DefaultLoader{}
	}
	return &Registry{loaders: make(map[string]Loader), fallback: fallback}
}

// Register sets the loader of scene. The last registration wins.
func (r *Registry) Register(scene string, l Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[scene] = l
}

// Lookup returns the loader of scene, or the fallback.
func (r *Registry) Lookup(scene string) Loader {
	if r == nil {
		return DefaultLoader{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.loaders[scene]; ok {
		return l
	}
	return r.fallback
}

// Scenes returns the scenes with a registered loader.
func (r *Registry) Scenes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.loaders))
	for s := range r.loaders {
		out = append(out, s)
	}
	return out
}

// ErrNoLoader is returned for custom references of a scene without loader.
var ErrNoLoader = errors.New("resource: no loader for custom reference")

// DefaultLoader resolves the references which do not need a
// scene specific loader: inline SVG, raster images (wrapped in
// an SVG document) and remote URLs (fetched with HTTP).
type DefaultLoader struct {
	HTTP *HTTPLoader // nil means a zero HTTPLoader
}

// Load implements Loader.
func (dl DefaultLoader) Load(ctx context.Context, scene string, cfg Config) (string, error) {
	switch cfg.Type {
	case TypeSVG:
		s, ok := cfg.Data.(string)
		if !ok {
			return "", fmt.Errorf("resource: svg data must be a string, got %T", cfg.Data)
		}
		return s, nil
	case TypeImage:
		href, ok := cfg.Data.(string)
		if !ok || href == "" {
			return "", fmt.Errorf("resource: image data must be a string, got %T", cfg.Data)
		}
		return wrapImage(href), nil
	case TypeRemote:
		h := dl.HTTP
		if h == nil {
			h = &HTTPLoader{}
		}
		return h.Load(ctx, scene, cfg)
	default:
		return "", fmt.Errorf("%w (scene %q)", ErrNoLoader, scene)
	}
}

// wrapImage returns an SVG document displaying the image href
func wrapImage(href string) string {
	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><image href="`)
	_ = xml.EscapeText(&b, []byte(href)) // strings.Builder never fails
	b.WriteString(`" width="100" height="100" preserveAspectRatio="xMidYMid meet"/></svg>`)
	return b.String()
}
