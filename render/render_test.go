package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benoitkugler/infosvg/attrs"
	"github.com/benoitkugler/infosvg/dom"
	"github.com/benoitkugler/infosvg/element"
	"github.com/benoitkugler/infosvg/font"
	"github.com/benoitkugler/infosvg/palette"
	"github.com/benoitkugler/infosvg/resource"
	"github.com/google/go-cmp/cmp"
)

const star = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><path d="M12 2 L15 9 L22 9 Z"/></svg>`

func encode(t *testing.T, el *dom.Element) string {
	t.Helper()
	var b strings.Builder
	if err := dom.Encode(&b, el); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

func byElementID(root *dom.Element, id string) *dom.Element {
	return root.Find(func(el *dom.Element) bool { return el.Value(AttrElementID) == id })
}

func TestCommit(t *testing.T) {
	root := element.G(element.Attrs{"id": "item-2-1"},
		element.New(element.Rect, element.Attrs{"width": 10, "height": 5}),
		element.T("Hi", element.Attrs{"font-family": "Roboto, sans-serif", "x": 1}),
		element.New(element.Icon, element.Attrs{"href": "data:image/svg+xml,<svg/>", "width": 24}),
		element.New(element.Icon, element.Attrs{"href": "data:image/svg+xml,<svg/>"}),
		element.New(element.Illustration, element.Attrs{"href": "not-a-data-uri"}),
	)
	container := dom.NewElement("svg")
	c, err := Commit(context.Background(), root, container, Options{})
	if err != nil {
		t.Fatal(err)
	}

	fp := resource.Fingerprint(resource.Config{Type: resource.TypeSVG, Data: "<svg/>"})
	expected := `<svg><g data-element-id="item-2-1" data-indexes="2,1">` +
		`<rect height="5" width="10"></rect>` +
		`<text font-family="Roboto, sans-serif" x="1">Hi</text>` +
		`<use data-scene="icon" href="#` + fp + `" width="24"></use>` +
		`<use data-scene="icon" href="#` + fp + `"></use>` +
		`<use data-scene="illustration"></use>` +
		`</g></svg>`
	if diff := cmp.Diff(expected, encode(t, container)); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}

	wantRefs := []Reference{{Scene: "icon", Config: resource.Config{Type: resource.TypeSVG, Data: "<svg/>"}, Fingerprint: fp}}
	if diff := cmp.Diff(wantRefs, c.References); diff != "" {
		t.Errorf("references should be distinct (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Roboto"}, c.Families); diff != "" {
		t.Errorf("families (-want +got):\n%s", diff)
	}
	if c.Root.Tag != "g" {
		t.Errorf("unexpected root %s", c.Root.Tag)
	}
}

func TestCommitInheritedFamily(t *testing.T) {
	root := element.G(element.Attrs{"font-family": "'Open Sans'"},
		element.T("a", nil),
		element.G(nil, element.T("b", element.Attrs{"font-family": "monospace"})),
	)
	c, err := Commit(context.Background(), root, dom.NewElement("svg"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Open Sans", "monospace"}, c.Families); diff != "" {
		t.Errorf("families (-want +got):\n%s", diff)
	}
}

func TestCommitExpansionError(t *testing.T) {
	broken := element.Compose("Broken", func(element.Props) element.Node { return nil }, nil)
	container := dom.NewElement("svg")
	_, err := Commit(context.Background(), element.G(nil, broken), container, Options{})
	if !errors.Is(err, element.ErrExpansion) {
		t.Fatalf("expected expansion error, got %v", err)
	}
	if len(container.Children) != 0 {
		t.Error("container should be untouched")
	}

	doc := dom.NewDocument(10, 10)
	if _, err := Render(context.Background(), element.G(nil), doc, Options{}); err != nil {
		t.Fatal(err)
	}
	before := doc.String()
	if _, err := Render(context.Background(), broken, doc, Options{}); err == nil {
		t.Fatal("expected error")
	}
	if doc.String() != before {
		t.Error("failed render should leave the document untouched")
	}
}

func TestRenderCurrentAttributes(t *testing.T) {
	ctx := context.Background()
	doc := dom.NewDocument(100, 100)
	first := element.New(element.Rect, element.Attrs{"id": "a", "fill": "red", "stroke": "blue"})
	if _, err := Render(ctx, first, doc, Options{}); err != nil {
		t.Fatal(err)
	}

	// no explicit fill/stroke: defaulted from the primary color
	second := element.New(element.Rect, element.Attrs{"id": "a", "width": 100})
	if _, err := Render(ctx, second, doc, Options{Primary: "green"}); err != nil {
		t.Fatal(err)
	}
	doc.View(func(root *dom.Element) {
		got := byElementID(root, "a").AttrMap()
		want := map[string]any{AttrElementID: "a", "width": "100", "fill": "green", "stroke": "green"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	third := element.New(element.Rect, element.Attrs{
		"id":     "a",
		"fill":   "yellow",
		"stroke": attrs.Func(func(current any, _ string) any { return current }),
		"width":  attrs.Func(func(any, string) any { return "" }),
	})
	if _, err := Render(ctx, third, doc, Options{Primary: "green"}); err != nil {
		t.Fatal(err)
	}
	doc.View(func(root *dom.Element) {
		got := byElementID(root, "a").AttrMap()
		want := map[string]any{AttrElementID: "a", "fill": "yellow", "stroke": "green"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})
}

func TestCommitPalette(t *testing.T) {
	reg := palette.NewRegistry()
	reg.Register("brand", palette.Colors{"#a00", "#0b0"})
	root := element.G(nil,
		element.New(element.Rect, element.Attrs{"id": "item-0"}),
		element.New(element.Rect, element.Attrs{"id": "item-1"}),
		element.New(element.Rect, element.Attrs{"id": "item-4", "fill": "white"}),
		element.New(element.Rect, nil),
	)
	container := dom.NewElement("svg")
	opts := Options{Primary: "gray", Palette: palette.Named("brand"), Palettes: reg, Total: 5}
	if _, err := Commit(context.Background(), root, container, opts); err != nil {
		t.Fatal(err)
	}
	for id, fill := range map[string]string{"item-0": "#a00", "item-1": "#0b0", "item-4": "white"} {
		if got := byElementID(container, id).Value("fill"); got != fill {
			t.Errorf("%s: expected fill %s, got %s", id, fill, got)
		}
	}
	if got := byElementID(container, "item-4").Value("stroke"); got != "#a00" {
		t.Errorf("unexpected stroke %s", got)
	}
	anonymous := container.Elements()[0].Elements()[3]
	if got := anonymous.Value("fill"); got != "gray" {
		t.Errorf("nodes without id use the primary color, got %s", got)
	}
}

func newManager(load resource.LoaderFunc) *resource.Manager {
	reg := resource.NewRegistry(nil)
	reg.Register("icon", load)
	return resource.NewManager(reg)
}

func symbols(doc *dom.Document) []string {
	var out []string
	doc.View(func(root *dom.Element) {
		for _, el := range root.FindAll(func(el *dom.Element) bool { return el.Tag == "symbol" }) {
			out = append(out, el.Value("id"))
		}
	})
	return out
}

func TestRenderPatches(t *testing.T) {
	m := newManager(func(_ context.Context, _ string, cfg resource.Config) (string, error) {
		if cfg.Data == "icon:missing" {
			return "", errors.New("not found")
		}
		return star, nil
	})
	root := element.G(nil,
		element.New(element.Icon, element.Attrs{"href": "icon:star"}),
		element.New(element.Icon, element.Attrs{"href": "icon:star"}),
		element.New(element.Icon, element.Attrs{"href": "icon:heart"}),
		element.New(element.Icon, element.Attrs{"href": "icon:missing"}),
	)
	doc := dom.NewDocument(100, 100)
	r, err := Render(context.Background(), root, doc, Options{Resources: m})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if r.Pending() != 0 {
		t.Errorf("expected no pending resource, got %d", r.Pending())
	}

	fp := func(s string) string { return resource.Fingerprint(resource.Config{Type: resource.TypeCustom, Data: s}) }
	got := symbols(doc)
	if len(got) != 2 {
		t.Fatalf("expected 2 symbols, got %v", got)
	}
	for _, want := range []string{fp("icon:star"), fp("icon:heart")} {
		if got[0] != want && got[1] != want {
			t.Errorf("missing symbol %s in %v", want, got)
		}
	}

	// re-render: cached resources are patched again, defs are kept
	r2, err := Render(context.Background(), root, doc, Options{Resources: m})
	if err != nil {
		t.Fatal(err)
	}
	if err := r2.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if got := symbols(doc); len(got) != 2 {
		t.Errorf("re-render should not duplicate symbols, got %v", got)
	}
}

func TestRenderClose(t *testing.T) {
	release := make(chan struct{})
	m := newManager(func(ctx context.Context, _ string, _ resource.Config) (string, error) {
		<-release
		return star, nil
	})
	doc := dom.NewDocument(100, 100)
	root := element.New(element.Icon, element.Attrs{"href": "icon:star"})
	r, err := Render(context.Background(), root, doc, Options{Resources: m})
	if err != nil {
		t.Fatal(err)
	}
	if r.Pending() != 1 {
		t.Fatalf("expected one pending resource, got %d", r.Pending())
	}
	r.Close()
	close(release)

	// wait for the shared load to settle
	if _, ok := m.Request(context.Background(), "icon", resource.Config{Type: resource.TypeCustom, Data: "icon:star"}); !ok {
		t.Fatal("expected resolution")
	}
	if got := symbols(doc); len(got) != 0 {
		t.Errorf("closed render must not patch, got %v", got)
	}
	if err := r.Wait(context.Background()); err != nil {
		t.Error(err)
	}
}

func TestRenderFonts(t *testing.T) {
	fonts := font.NewRegistry()
	fonts.Register(font.Family{Name: "Roboto", URL: "https://fonts.example.com/roboto.css"})
	loader := &font.Loader{Registry: fonts}

	doc := dom.NewDocument(100, 100)
	root := element.T("Title", element.Attrs{"font-family": "Roboto"})
	for range 2 {
		if _, err := Render(context.Background(), root, doc, Options{Fonts: loader}); err != nil {
			t.Fatal(err)
		}
	}
	doc.View(func(svg *dom.Element) {
		styles := svg.FindAll(func(el *dom.Element) bool { return el.Tag == "style" })
		if len(styles) != 1 || styles[0].Parent().Tag != "defs" {
			t.Errorf("expected a single stylesheet in defs, got %s", encode(t, svg))
		}
		if n := len(svg.Elements()); n != 2 {
			t.Errorf("expected defs and text, got %d children", n)
		}
	})
}
