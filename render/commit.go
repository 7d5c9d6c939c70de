// Package render commits element trees into SVG documents.
//
// Commit is synchronous: resources referenced by icons and illustrations
// are written as placeholders (<use href="#fingerprint">) which Render
// patches in place once the resource manager resolves them.
package render

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/benoitkugler/infosvg/attrs"
	"github.com/benoitkugler/infosvg/ctxlog"
	"github.com/benoitkugler/infosvg/dom"
	"github.com/benoitkugler/infosvg/element"
	"github.com/benoitkugler/infosvg/font"
	"github.com/benoitkugler/infosvg/palette"
	"github.com/benoitkugler/infosvg/resource"
)

// Data attributes written on committed elements, used to select them again.
const (
	AttrElementID = "data-element-id"
	AttrIndexes   = "data-indexes"
	AttrScene     = "data-scene"
)

// Options configures a commit.
type Options struct {
	// Primary is the default primary color, used when no palette
	// color applies to a node.
	Primary string
	// Palette, when not nil, gives the primary color of nodes with an id.
	Palette palette.Palette
	// Palettes resolves named palettes. It may be nil.
	Palettes *palette.Registry
	// Total is the number of items colored by the palette.
	Total int

	// Resources resolves icons and illustrations. When nil, the
	// placeholders are never patched.
	Resources *resource.Manager
	// Fonts adds the stylesheets of the families used by text nodes.
	// It may be nil.
	Fonts *font.Loader
}

// Reference is a resource used by a committed tree.
type Reference struct {
	Scene       string
	Config      resource.Config
	Fingerprint string
}

// Committed describes the outcome of a commit.
type Committed struct {
	Root       *dom.Element // the element of the root node
	References []Reference  // distinct fingerprints, in document order
	Families   []string     // font families used by text nodes, sorted
}

// Commit expands root and appends its rendering to container.
// Only expansion errors are returned.
func Commit(ctx context.Context, root element.Node, container *dom.Element, opts Options) (*Committed, error) {
	return commit(ctx, root, container, opts, nil)
}

// previous maps element ids to the attributes of the element they
// replace, which are the current state seen by dynamic attributes.
type previous map[string]map[string]any

func snapshot(root *dom.Element) previous {
	out := make(previous)
	root.Walk(func(el *dom.Element) bool {
		if id, ok := el.Get(AttrElementID); ok {
			out[id] = el.AttrMap()
		}
		return true
	})
	return out
}

type committer struct {
	opts   Options
	prev   previous
	logger *slog.Logger

	seen     map[string]bool
	families map[string]bool
	out      *Committed
}

func commit(ctx context.Context, root element.Node, container *dom.Element, opts Options, prev previous) (*Committed, error) {
	p, err := element.Expand(root)
	if err != nil {
		return nil, err
	}
	c := committer{
		opts:     opts,
		prev:     prev,
		logger:   ctxlog.FromContext(ctx),
		seen:     make(map[string]bool),
		families: make(map[string]bool),
		out:      new(Committed),
	}
	c.out.Root = c.node(p, container, "")
	for f := range c.families {
		c.out.Families = append(c.out.Families, f)
	}
	sort.Strings(c.out.Families)
	return c.out, nil
}

// primary returns the primary color of the node
func (c *committer) primary(id string) string {
	if c.opts.Palette != nil && id != "" {
		if color, ok := c.opts.Palettes.Color(c.opts.Palette, id, c.opts.Total); ok {
			return color
		}
	}
	return c.opts.Primary
}

// node renders p in parent. family is the font family inherited from
// the ancestors.
func (c *committer) node(p *element.Primitive, parent *dom.Element, family string) *dom.Element {
	id := p.ID()
	resolved := attrs.Resolve(c.prev[id], p.Attrs, c.primary(id))

	el := dom.NewElement(string(p.Tag))
	if id != "" {
		el.Set(AttrElementID, id)
		if idx := palette.Indexes(id); len(idx) > 0 {
			el.Set(AttrIndexes, palette.FormatIndexes(idx))
		}
	}
	if p.Tag.IsResource() {
		c.placeholder(el, p.Tag.Scene(), resolved["href"])
		delete(resolved, "href")
	}
	for _, k := range sortedKeys(resolved) {
		if k == "id" || k == "text" {
			continue
		}
		if v := attrs.Format(resolved[k]); v != "" {
			el.Set(k, v)
		}
	}
	parent.Append(el)

	if f, ok := resolved["font-family"]; ok {
		family = attrs.Format(f)
	}
	if p.Tag == element.Text {
		el.SetText(p.TextContent())
		if family != "" {
			c.families[firstFamily(family)] = true
		}
	}
	for _, child := range p.Children {
		c.node(child.(*element.Primitive), el, family)
	}
	return el
}

// placeholder turns el into a <use> referencing the resource, and
// records the reference. References which do not parse leave an empty
// <use>.
func (c *committer) placeholder(el *dom.Element, scene string, href any) {
	el.Tag = "use"
	el.Set(AttrScene, scene)
	cfg, ok := resource.ParseReference(href)
	if !ok {
		c.logger.Debug("render: invalid resource reference", "scene", scene, "reference", href)
		return
	}
	fp := resource.Fingerprint(*cfg)
	el.Set("href", resource.Ref(fp))
	if !c.seen[fp] {
		c.seen[fp] = true
		c.out.References = append(c.out.References, Reference{Scene: scene, Config: *cfg, Fingerprint: fp})
	}
}

// firstFamily returns the first family of a font-family list
func firstFamily(list string) string {
	first, _, _ := strings.Cut(list, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
