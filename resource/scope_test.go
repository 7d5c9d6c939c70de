package resource

import (
	"testing"

	"github.com/benoitkugler/infosvg/dom"
	"github.com/google/go-cmp/cmp"
)

func TestCSSID(t *testing.T) {
	for id, expected := range map[string]string{
		"abc":     "#abc",
		"123":     `#\31 23`,
		"12-g":    `#\31 2-g`,
		"a.b:c":   `#a\.b\:c`,
		"_x-été1": "#_x-été1",
	} {
		if got := cssID(id); got != expected {
			t.Errorf("%s: expected %s, got %s", id, expected, got)
		}
	}
}

func TestScopeStylesheet(t *testing.T) {
	for _, test := range []struct {
		css, expected string
	}{
		{"rect{fill:red}", `#\37  rect{fill:red}`},
		{
			".a, #g > path { fill: url(#g) }",
			`#\37  .a, #\37  #\37 -g > path{ fill: url(#7-g) }`,
		},
		{
			"@import url(x.css); @media print { rect { stroke: #fff } }",
			`@media print {#\37  rect{ stroke: #fff }}`,
		},
		{"/* c */ @font-face { font-family: x }", "@font-face { font-family: x }"},
		{"rect{fill:red", `#\37  rect{fill:red}`},
		{"  ", ""},
	} {
		if diff := cmp.Diff(test.expected, scopeStylesheet(test.css, "7")); diff != "" {
			t.Errorf("%q (-want +got):\n%s", test.css, diff)
		}
	}
}

func TestPatchScoped(t *testing.T) {
	const (
		withStyle = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
			<style>rect{fill:red}</style>
			<defs><linearGradient id="g"/></defs>
			<rect width="10" height="10" fill="url(#g)"/>
			<use href="#g"/>
		</svg>`
		plain = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
			<defs><linearGradient id="g"/></defs>
			<circle r="5" style="fill: url('#g')"/>
		</svg>`
	)
	fpA := Fingerprint(Config{TypeSVG, withStyle})
	fpB := Fingerprint(Config{TypeSVG, plain})

	doc := dom.NewDocument(100, 100)
	doc.Update(func(root *dom.Element) {
		root.Append(dom.NewElement("rect", dom.Attr{Name: "width", Value: "100"}))
		root.Append(dom.NewElement("use", dom.Attr{Name: "href", Value: Ref(fpA)}))
		root.Append(dom.NewElement("use", dom.Attr{Name: "href", Value: Ref(fpB)}))
	})
	if !Patch(doc, fpA, withStyle) || !Patch(doc, fpB, plain) {
		t.Fatal("expected patches")
	}

	doc.View(func(root *dom.Element) {
		ids := map[string]int{}
		root.Walk(func(el *dom.Element) bool {
			if id, ok := el.Get("id"); ok {
				ids[id]++
			}
			return true
		})
		expected := map[string]int{fpA: 1, fpB: 1, fpA + "-g": 1, fpB + "-g": 1}
		if diff := cmp.Diff(expected, ids); diff != "" {
			t.Errorf("ids should be unique and scoped (-want +got):\n%s", diff)
		}

		symbolA, symbolB := root.ByID(fpA), root.ByID(fpB)
		rect := symbolA.Find(func(el *dom.Element) bool { return el.Tag == "rect" })
		use := symbolA.Find(func(el *dom.Element) bool { return el.Tag == "use" })
		circle := symbolB.Find(func(el *dom.Element) bool { return el.Tag == "circle" })
		if got := rect.Value("fill"); got != "url(#"+fpA+"-g)" {
			t.Errorf("unexpected fill %s", got)
		}
		if got := use.Value("href"); got != "#"+fpA+"-g" {
			t.Errorf("unexpected href %s", got)
		}
		if got := circle.Value("style"); got != "fill: url(#"+fpB+"-g)" {
			t.Errorf("unexpected style %s", got)
		}

		styles := root.FindAll(func(el *dom.Element) bool { return el.Tag == "style" })
		if len(styles) != 1 || styles[0].Parent() != symbolA {
			t.Fatalf("the stylesheet should stay in its symbol, got %s", encode(t, root))
		}
		if got := styles[0].Text(); got != cssID(fpA)+" rect{fill:red}" {
			t.Errorf("stylesheet should be scoped to its symbol, got %s", got)
		}
	})
}
