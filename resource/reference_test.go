package resource

import (
	"encoding/base64"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseReference(t *testing.T) {
	svg64 := base64.StdEncoding.EncodeToString([]byte(`<svg viewBox="0 0 1 1"/>`))
	for _, test := range []struct {
		in   any
		want *Config
	}{
		{"data:image/svg+xml,<svg>...</svg>", &Config{TypeSVG, "<svg>...</svg>"}},
		{"data:image/svg+xml,%3Csvg%3E%3C/svg%3E", &Config{TypeSVG, "<svg></svg>"}},
		{`data:image/svg+xml,<svg width="100%"/>`, &Config{TypeSVG, `<svg width="100%"/>`}},
		{"data:image/svg+xml;base64," + svg64, &Config{TypeSVG, `<svg viewBox="0 0 1 1"/>`}},
		{"data:text/url,https://x/y.png", &Config{TypeRemote, "https://x/y.png"}},
		{"data:image/png;base64,iVBORw0KGgo=", &Config{TypeImage, "data:image/png;base64,iVBORw0KGgo="}},
		{"data:application/x-thing,abc", &Config{TypeCustom, "data:application/x-thing,abc"}},
		{"data:,abc", &Config{TypeCustom, "data:,abc"}},
		{"icon:star", &Config{TypeCustom, "icon:star"}},
		{"my_icons-2:arrow/left", &Config{TypeCustom, "my_icons-2:arrow/left"}},
		{Config{TypeRemote, "https://x"}, &Config{TypeRemote, "https://x"}},
		{&Config{TypeSVG, "<svg/>"}, &Config{TypeSVG, "<svg/>"}},
		{map[string]any{"type": "image", "data": "a.png"}, &Config{TypeImage, "a.png"}},

		{"not-a-data-uri", nil},
		{"data:image/svg+xml", nil}, // no payload separator
		{"data:image/svg+xml;base64,!!!", nil},
		{"https://example.com/a.svg", nil},
		{"icon:", nil},
		{":star", nil},
		{"bad ns:star", nil},
		{Config{Type: "video", Data: "x"}, nil},
		{(*Config)(nil), nil},
		{map[string]any{"type": "svg"}, nil},
		{map[string]any{"type": "other", "data": "x"}, nil},
		{42, nil},
		{nil, nil},
	} {
		got, ok := ParseReference(test.in)
		if ok != (test.want != nil) {
			t.Errorf("ParseReference(%v): ok = %v", test.in, ok)
			continue
		}
		if d := cmp.Diff(test.want, got); d != "" {
			t.Errorf("ParseReference(%v): (-want +got)\n%s", test.in, d)
		}
	}
}

func TestParseReferenceCopies(t *testing.T) {
	in := &Config{TypeSVG, "<svg/>"}
	out, _ := ParseReference(in)
	out.Data = "changed"
	if in.Data != "<svg/>" {
		t.Error("input config must not be aliased")
	}
}

func TestSplitIdentifier(t *testing.T) {
	ns, name, ok := SplitIdentifier("icon:arrow:left")
	if !ok || ns != "icon" || name != "arrow:left" {
		t.Errorf("unexpected split %q %q %v", ns, name, ok)
	}
	if _, _, ok := SplitIdentifier("http://x"); ok {
		t.Error("URL is not an identifier")
	}
}

func TestFingerprint(t *testing.T) {
	a := Config{TypeCustom, map[string]any{"name": "star", "size": 2, "tags": []string{"x"}}}
	b := Config{TypeCustom, map[string]any{"tags": []string{"x"}, "size": 2, "name": "star"}}
	if Fingerprint(a) != Fingerprint(a) {
		t.Fatal("fingerprint must be deterministic")
	}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("key order must not change the fingerprint")
	}
	if Fingerprint(Config{TypeSVG, "<svg/>"}) == Fingerprint(Config{TypeCustom, "<svg/>"}) {
		t.Error("type is part of the fingerprint")
	}
	for _, r := range Fingerprint(a) {
		if r < '0' || r > '9' {
			t.Fatalf("fingerprint should be numeric, got %q", Fingerprint(a))
		}
	}
	// canonical form hashed
	if got := string(canonical(Config{TypeSVG, "x"})); got != `{"data":"x","type":"svg"}` {
		t.Errorf("unexpected canonical form %s", got)
	}
	if got := string(canonical(Config{TypeSVG, "<a&b>"})); got != `{"data":"<a&b>","type":"svg"}` {
		t.Errorf("html must not be escaped: %s", got)
	}
	if Fingerprint(Config{TypeCustom, func() {}}) == "" {
		t.Error("unsupported data should still be fingerprinted")
	}
	if Ref("12") != "#12" {
		t.Error("unexpected ref")
	}
}
