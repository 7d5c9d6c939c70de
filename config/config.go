// Package config loads the engine configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the engine configuration.
type Config struct {
	// Headless engines render for export: font stylesheets are not
	// inserted in documents.
	Headless bool `yaml:"headless"`
	// LoaderTimeout bounds each resource load.
	LoaderTimeout time.Duration `yaml:"loader_timeout"`
	// PrefetchLimit bounds the concurrent loads of a prefetch.
	PrefetchLimit int `yaml:"prefetch_limit"`
	// StorePath is the SQLite database caching resolved resources
	// across restarts. Empty disables the persistent cache.
	StorePath string `yaml:"store_path"`
	// PrimaryColor is used for nodes without palette color.
	PrimaryColor string `yaml:"primary_color"`
	// Palette is the name of the default palette, if any.
	Palette string `yaml:"palette"`

	Theme    ThemeConfig         `yaml:"theme"`
	Palettes map[string][]string `yaml:"palettes"`
	Fonts    []FontConfig        `yaml:"fonts"`
	// Scenes maps resource scenes to URL templates, with {namespace}
	// and {name} placeholders.
	Scenes map[string]string `yaml:"scenes"`
}

// ThemeConfig is the default typography.
type ThemeConfig struct {
	FontFamily string  `yaml:"font_family"`
	FontSize   float64 `yaml:"font_size"`
}

// FontConfig registers a font family.
type FontConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`    // stylesheet imported by documents
	Weight string `yaml:"weight"` // normal | bold
	File   string `yaml:"file"`   // optional TTF/OTF file, for metrics
}

// Default returns the configuration used without file.
func Default() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

func (c *Config) defaults() {
	if c.LoaderTimeout <= 0 {
		c.LoaderTimeout = 10 * time.Second
	}
	if c.PrefetchLimit <= 0 {
		c.PrefetchLimit = 4
	}
	if c.PrimaryColor == "" {
		c.PrimaryColor = "#1783FF"
	}
	if c.Theme.FontFamily == "" {
		c.Theme.FontFamily = "sans-serif"
	}
	if c.Theme.FontSize <= 0 {
		c.Theme.FontSize = 16
	}
	for i := range c.Fonts {
		if c.Fonts[i].Weight == "" {
			c.Fonts[i].Weight = "normal"
		}
	}
}

// validate reports inconsistent settings
func (c *Config) validate() error {
	for i, f := range c.Fonts {
		if f.Name == "" {
			return fmt.Errorf("config: font %d has no name", i)
		}
	}
	for name, colors := range c.Palettes {
		if len(colors) == 0 {
			return fmt.Errorf("config: palette %q is empty", name)
		}
	}
	if c.Palette != "" {
		if _, ok := c.Palettes[c.Palette]; !ok {
			return fmt.Errorf("config: unknown palette %q", c.Palette)
		}
	}
	for scene, tmpl := range c.Scenes {
		if tmpl == "" {
			return fmt.Errorf("config: scene %q has no URL template", scene)
		}
	}
	return nil
}

// Parse decodes a YAML configuration and applies the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
