package svgicon

import (
	"image/color"
	"strings"
	"testing"

	"github.com/benoitkugler/infosvg/svgpath"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func parseIcon(t *testing.T, content string, mode ErrorMode) *SvgIcon {
	t.Helper()
	icon, err := ReadIconStream(strings.NewReader(content), mode)
	if err != nil {
		t.Fatal(err)
	}
	return icon
}

func TestShapes(t *testing.T) {
	icon := parseIcon(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50" width="200" height="100">
		<title>Shapes</title>
		<rect x="1" y="2" width="10" height="20" fill="red"/>
		<circle cx="50" cy="25" r="5" fill="none" stroke="#00f"/>
		<g transform="translate(10 0)">
			<line x1="0" y1="0" x2="10" y2="10" stroke="black"/>
			<polygon points="0,0 10,0 10,10"/>
		</g>
		<path d="M0 0 L 5 5"/>
	</svg>`, StrictErrorMode)

	if d := cmp.Diff(Bounds{0, 0, 100, 50}, icon.ViewBox); d != "" {
		t.Errorf("view box (-want +got)\n%s", d)
	}
	if icon.Width != 200 || icon.Height != 100 {
		t.Errorf("unexpected size %v x %v", icon.Width, icon.Height)
	}
	if len(icon.Titles) != 1 || icon.Titles[0] != "Shapes" {
		t.Errorf("unexpected titles %v", icon.Titles)
	}
	if len(icon.SVGPaths) != 5 {
		t.Fatalf("expected 5 paths, got %d", len(icon.SVGPaths))
	}

	rect := icon.SVGPaths[0]
	if rect.Style.FillerColor != (color.NRGBA{R: 0xff, A: 0xff}) {
		t.Errorf("unexpected rect fill %v", rect.Style.FillerColor)
	}
	circle := icon.SVGPaths[1]
	if circle.Style.FillerColor != nil || circle.Style.LinerColor != (color.NRGBA{B: 0xff, A: 0xff}) {
		t.Errorf("unexpected circle colors %v %v", circle.Style.FillerColor, circle.Style.LinerColor)
	}

	line := icon.SVGPaths[2]
	box, _ := line.Path.Transform(line.Style.Transform()).Bounds()
	if d := cmp.Diff(svgpath.Rect{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10}, box); d != "" {
		t.Errorf("grouped line (-want +got)\n%s", d)
	}
}

func TestStyleAttribute(t *testing.T) {
	icon := parseIcon(t, `<svg viewBox="0 0 10 10">
		<rect width="10" height="10" fill="red" style="fill: rgb(0, 128, 0); stroke-width: 3px; opacity: 0.5"/>
	</svg>`, StrictErrorMode)
	st := icon.SVGPaths[0].Style
	if st.FillerColor != (color.NRGBA{G: 128, A: 0xff}) {
		t.Errorf("style attribute should win, got %v", st.FillerColor)
	}
	if st.LineWidth != 3 || st.FillOpacity != 0.5 || st.LineOpacity != 0.5 {
		t.Errorf("unexpected style %+v", st)
	}
}

func TestSymbolUse(t *testing.T) {
	icon := parseIcon(t, `<svg viewBox="0 0 100 100">
		<defs>
			<symbol id="sq" viewBox="0 0 10 10"><rect width="10" height="10"/></symbol>
			<rect id="hidden" width="5" height="5"/>
		</defs>
		<use href="#sq" x="20" y="30" width="40" height="20"/>
		<use href="#missing"/>
		<use/>
	</svg>`, IgnoreErrorMode)

	if !icon.Definition("sq") || !icon.Definition("hidden") {
		t.Error("definitions should be recorded")
	}
	if len(icon.SVGPaths) != 1 {
		t.Fatalf("definitions must only be drawn when used, got %d paths", len(icon.SVGPaths))
	}
	box, _ := icon.PathBounds()
	want := svgpath.Rect{MinX: 20, MinY: 30, MaxX: 60, MaxY: 50}
	if d := cmp.Diff(want, box, cmpopts.EquateApprox(0, 0.05)); d != "" {
		t.Errorf("symbol box (-want +got)\n%s", d)
	}
}

func TestUseCycle(t *testing.T) {
	_, err := ReadIconStream(strings.NewReader(`<svg>
		<defs><g id="a"><use href="#a"/></g></defs>
		<use href="#a"/>
	</svg>`), IgnoreErrorMode)
	if err == nil {
		t.Error("expected error for cyclic use")
	}
}

func TestText(t *testing.T) {
	icon := parseIcon(t, `<svg font-family="'Go Mono', monospace">
		<text x="10 20" y="30" font-size="12" text-anchor="middle">Hello
			<tspan>world</tspan></text>
		<text></text>
	</svg>`, StrictErrorMode)
	if len(icon.Texts) != 1 {
		t.Fatalf("expected one text run, got %v", icon.Texts)
	}
	tx := icon.Texts[0]
	if tx.Content != "Hello world" || tx.X != 10 || tx.Y != 30 {
		t.Errorf("unexpected text %+v", tx)
	}
	if tx.Style.FontFamily != "Go Mono" || tx.Style.FontSize != 12 || tx.Style.TextAnchor != "middle" {
		t.Errorf("unexpected text style %+v", tx.Style)
	}
}

func TestErrorModes(t *testing.T) {
	const content = `<svg><foreignObject/><rect width="1" height="1"/></svg>`
	if _, err := ReadIconStream(strings.NewReader(content), StrictErrorMode); err == nil {
		t.Error("strict mode should reject unsupported elements")
	}
	icon := parseIcon(t, content, WarnErrorMode)
	if len(icon.SVGPaths) != 1 {
		t.Errorf("warn mode should skip unsupported elements, got %d paths", len(icon.SVGPaths))
	}

	for _, bad := range []string{"", "not xml", "<svg><rect></svg>"} {
		if _, err := ReadIconStream(strings.NewReader(bad), IgnoreErrorMode); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestGradientFallback(t *testing.T) {
	icon := parseIcon(t, `<svg>
		<defs><linearGradient id="g"><stop offset="0" stop-color="#ff0000"/><stop offset="1" stop-color="blue"/></linearGradient></defs>
		<linearGradient id="empty"/>
		<rect width="1" height="1" fill="url(#g)"/>
		<rect width="1" height="1" fill="url(#other) lime"/>
		<rect width="1" height="1" fill="url(#g)" stroke="url(#empty)"/>
	</svg>`, StrictErrorMode)
	if c := icon.SVGPaths[0].Style.FillerColor; c != (color.NRGBA{R: 0xff, A: 0xff}) {
		t.Errorf("unexpected gradient fallback %v", c)
	}
	if icon.SVGPaths[0].Style.FillerGradient == nil {
		t.Error("expected a gradient paint")
	}
	if s := icon.SVGPaths[1].Style; s.FillerColor != (color.NRGBA{G: 0xff, A: 0xff}) || s.FillerGradient != nil {
		t.Errorf("unexpected explicit fallback %v", s.FillerColor)
	}
	if s := icon.SVGPaths[2].Style; s.LinerColor != nil || s.LinerGradient != nil {
		t.Errorf("a gradient without stops should disable the stroke, got %v", s.LinerColor)
	}
}

func TestParseGradient(t *testing.T) {
	icon := parseIcon(t, `<svg viewBox="0 0 10 10">
		<defs>
			<linearGradient id="base" x2="50%" spreadMethod="reflect">
				<stop offset="0.2" stop-color="red" stop-opacity="0.5"/>
				<stop offset="0.1" style="stop-color: blue"/>
			</linearGradient>
			<radialGradient id="radial" href="#base" cx="2" r="3" gradientUnits="userSpaceOnUse" gradientTransform="translate(1 1)"/>
		</defs>
		<rect width="10" height="10" fill="url(#base)" stroke="url('#radial')"/>
	</svg>`, StrictErrorMode)
	style := icon.SVGPaths[0].Style

	red, blue := color.NRGBA{R: 0xff, A: 0xff}, color.NRGBA{B: 0xff, A: 0xff}
	stops := []svgpath.GradStop{
		{StopColor: red, Offset: 0.2, Opacity: 0.5},
		{StopColor: blue, Offset: 0.2, Opacity: 1}, // offsets are increasing
	}
	linear := svgpath.Gradient{
		Direction: svgpath.Linear{0, 0, 0.5, 0},
		Stops:     stops,
		Matrix:    svgpath.Identity,
		Spread:    svgpath.ReflectSpread,
	}
	if diff := cmp.Diff(&linear, style.FillerGradient); diff != "" {
		t.Errorf("linear gradient (-want +got):\n%s", diff)
	}

	radial := svgpath.Gradient{
		Direction: svgpath.Radial{2, 0.5, 2, 0.5, 3, 0},
		Stops:     stops,
		Matrix:    svgpath.Identity.Translate(1, 1),
		Spread:    svgpath.ReflectSpread,
		Units:     svgpath.UserSpaceOnUse,
	}
	if diff := cmp.Diff(&radial, style.LinerGradient); diff != "" {
		t.Errorf("radial gradient (-want +got):\n%s", diff)
	}
	if style.LinerColor != red {
		t.Errorf("unexpected stroke fallback %v", style.LinerColor)
	}
}

func TestParseColor(t *testing.T) {
	for _, test := range []struct {
		in   string
		want color.Color
	}{
		{"none", nil},
		{"#fff", color.NRGBA{0xff, 0xff, 0xff, 0xff}},
		{"#102030", color.NRGBA{0x10, 0x20, 0x30, 0xff}},
		{"#10203080", color.NRGBA{0x10, 0x20, 0x30, 0x80}},
		{"rgb(100%, 0%, 0%)", color.NRGBA{0xff, 0, 0, 0xff}},
		{"rgba(0, 0, 255, 0.5)", color.NRGBA{0, 0, 0xff, 0x80}},
		{"Navy", color.NRGBA{0, 0, 0x80, 0xff}},
	} {
		got, err := ParseColor(test.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != test.want {
			t.Errorf("ParseColor(%q) = %v, want %v", test.in, got, test.want)
		}
	}
	for _, bad := range []string{"#12", "rgb(1,2)", "hsl(1,2,3)"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
