package resource

import (
	"strings"
	"testing"

	"github.com/benoitkugler/infosvg/dom"
	"github.com/google/go-cmp/cmp"
)

func encode(t *testing.T, el *dom.Element) string {
	t.Helper()
	var b strings.Builder
	if err := dom.Encode(&b, el); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

func TestSanitize(t *testing.T) {
	for _, test := range []struct {
		content, expected string
	}{
		{
			star,
			`<symbol viewBox="0 0 24 24"><path d="M12 2 L15 9 L22 9 Z"></path></symbol>`,
		},
		{
			`<svg xmlns="http://www.w3.org/2000/svg" width="10px" height="20" onload="evil()">
				<script>alert(1)</script>
				<rect onclick="evil()" width="1" height="1" fill="red"/>
				<foreignObject><div>html</div></foreignObject>
			</svg>`,
			`<symbol viewBox="0 0 10 20"><rect width="1" height="1" fill="red"></rect></symbol>`,
		},
		{
			`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"
				xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape" viewBox="0 0 4 4" fill="blue">
				<inkscape:grid/>
				<a xlink:href="javascript:evil()" inkscape:label="l"><use xlink:href="#c"/></a>
				<circle id="c" r="2"/>
			</svg>`,
			`<symbol viewBox="0 0 4 4" fill="blue"><a><use href="#c"></use></a><circle id="c" r="2"></circle></symbol>`,
		},
		{
			`<svg xmlns="http://www.w3.org/2000/svg" id="root" viewBox="bad"><text>Hi</text></svg>`,
			`<symbol><text>Hi</text></symbol>`,
		},
	} {
		symbol, err := Sanitize(test.content)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(test.expected, encode(t, symbol)); diff != "" {
			t.Errorf("unexpected symbol (-want +got):\n%s", diff)
		}
	}

	for _, invalid := range []string{"", "<html/>", "<svg><g>"} {
		if _, err := Sanitize(invalid); err == nil {
			t.Errorf("%q: expected error", invalid)
		}
	}
}

func placeholderDoc(fp string) *dom.Document {
	doc := dom.NewDocument(100, 100)
	doc.Update(func(root *dom.Element) {
		root.Append(dom.NewElement("g", dom.Attr{Name: "data-element-id", Value: "0"}))
		root.Append(dom.NewElement("use", dom.Attr{Name: "href", Value: Ref(fp)}, dom.Attr{Name: "width", Value: "24"}))
	})
	return doc
}

func symbols(doc *dom.Document, fp string) int {
	var n int
	doc.View(func(root *dom.Element) {
		n = len(root.FindAll(func(el *dom.Element) bool {
			return el.Tag == "symbol" && el.Value("id") == fp
		}))
	})
	return n
}

func TestPatch(t *testing.T) {
	fp := Fingerprint(Config{TypeSVG, star})
	doc := placeholderDoc(fp)

	if !Patch(doc, fp, star) {
		t.Fatal("expected patch")
	}
	if Patch(doc, fp, star) {
		t.Error("second patch should be a no-op")
	}
	if n := symbols(doc, fp); n != 1 {
		t.Fatalf("expected a single symbol, got %d", n)
	}
	doc.View(func(root *dom.Element) {
		first := root.Elements()[0]
		if first.Tag != "defs" || first.Elements()[0].Value("id") != fp {
			t.Errorf("symbol should be inserted in a leading <defs>, got %s", encode(t, root))
		}
	})
}

func TestPatchNoop(t *testing.T) {
	fp := Fingerprint(Config{TypeSVG, star})

	unreferenced := placeholderDoc("other")
	if Patch(unreferenced, fp, star) {
		t.Error("patch without placeholder should be a no-op")
	}

	closed := placeholderDoc(fp)
	closed.Close()
	if Patch(closed, fp, star) || symbols(closed, fp) != 0 {
		t.Error("closed documents must not be patched")
	}

	invalid := placeholderDoc(fp)
	if Patch(invalid, fp, "<html/>") || symbols(invalid, fp) != 0 {
		t.Error("invalid content must not be patched")
	}
}

func TestPatchCollision(t *testing.T) {
	const (
		fp     = "42"
		circle = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 2 2"><circle r="1"/></svg>`
	)
	doc := placeholderDoc(fp)
	if !Patch(doc, fp, star) || !Patch(doc, fp, circle) {
		t.Fatal("expected patches")
	}
	if Patch(doc, fp, circle) {
		t.Error("patching the same content again should be a no-op")
	}
	if n := symbols(doc, fp); n != 1 {
		t.Fatalf("expected a single symbol, got %d", n)
	}
	doc.View(func(root *dom.Element) {
		symbol := root.ByID(fp)
		if symbol.Find(func(el *dom.Element) bool { return el.Tag == "circle" }) == nil {
			t.Errorf("the last content should win, got %s", encode(t, symbol))
		}
	})
}
