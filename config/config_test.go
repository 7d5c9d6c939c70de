package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const sample = `
headless: true
loader_timeout: 2s
store_path: /var/cache/infosvg.db
palette: brand
theme:
  font_family: Roboto
palettes:
  brand: ["#1783FF", "#00C9C9", "#F0884D"]
fonts:
  - name: Roboto
    url: https://fonts.example.com/roboto.css
    weight: bold
  - name: Inter
scenes:
  icon: https://icons.example.com/{namespace}/{name}.svg
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	expected := &Config{
		Headless:      true,
		LoaderTimeout: 2 * time.Second,
		PrefetchLimit: 4,
		StorePath:     "/var/cache/infosvg.db",
		PrimaryColor:  "#1783FF",
		Palette:       "brand",
		Theme:         ThemeConfig{FontFamily: "Roboto", FontSize: 16},
		Palettes:      map[string][]string{"brand": {"#1783FF", "#00C9C9", "#F0884D"}},
		Fonts: []FontConfig{
			{Name: "Roboto", URL: "https://fonts.example.com/roboto.css", Weight: "bold"},
			{Name: "Inter", Weight: "normal"},
		},
		Scenes: map[string]string{"icon": "https://icons.example.com/{namespace}/{name}.svg"},
	}
	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{
		"loader_timeout: [1, 2]",
		"fonts:\n  - url: x",
		"palettes:\n  empty: []",
		"palette: missing",
		"scenes:\n  icon: ''",
	} {
		if _, err := Parse([]byte(input)); err == nil {
			t.Errorf("%q: expected error", input)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "infosvg.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Headless || cfg.Theme.FontFamily != "Roboto" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if d := Default(); d.LoaderTimeout != 10*time.Second || d.Theme.FontSize != 16 {
		t.Errorf("unexpected defaults %+v", d)
	}
}
