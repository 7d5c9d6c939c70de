package svgicon

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var black = color.NRGBA{A: 0xff}

// basic color keywords
var namedColors = map[string]color.NRGBA{
	"black":   {0, 0, 0, 0xff},
	"silver":  {0xc0, 0xc0, 0xc0, 0xff},
	"gray":    {0x80, 0x80, 0x80, 0xff},
	"grey":    {0x80, 0x80, 0x80, 0xff},
	"white":   {0xff, 0xff, 0xff, 0xff},
	"maroon":  {0x80, 0, 0, 0xff},
	"red":     {0xff, 0, 0, 0xff},
	"purple":  {0x80, 0, 0x80, 0xff},
	"fuchsia": {0xff, 0, 0xff, 0xff},
	"magenta": {0xff, 0, 0xff, 0xff},
	"green":   {0, 0x80, 0, 0xff},
	"lime":    {0, 0xff, 0, 0xff},
	"olive":   {0x80, 0x80, 0, 0xff},
	"yellow":  {0xff, 0xff, 0, 0xff},
	"navy":    {0, 0, 0x80, 0xff},
	"blue":    {0, 0, 0xff, 0xff},
	"teal":    {0, 0x80, 0x80, 0xff},
	"aqua":    {0, 0xff, 0xff, 0xff},
	"cyan":    {0, 0xff, 0xff, 0xff},
	"orange":  {0xff, 0xa5, 0, 0xff},
	"pink":    {0xff, 0xc0, 0xcb, 0xff},
	"brown":   {0xa5, 0x2a, 0x2a, 0xff},
	"gold":    {0xff, 0xd7, 0, 0xff},
}

// ParseColor parses a plain SVG color: #rgb, #rrggbb, #rrggbbaa,
// rgb(), rgba() or a basic keyword. "none" and "transparent"
// return a nil color.
func ParseColor(s string) (color.Color, error) {
	return parseSVGColor(s)
}

func parseSVGColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "none", "transparent", "":
		return nil, nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	if strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") {
		return parseRGB(s)
	}
	return nil, fmt.Errorf("unsupported color %q", s)
}

func parseHex(h string) (color.Color, error) {
	expand := func(b byte) string { return string([]byte{b, b}) }
	switch len(h) {
	case 3:
		h = expand(h[0]) + expand(h[1]) + expand(h[2]) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return nil, fmt.Errorf("invalid hex color #%s", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid hex color #%s", h)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseRGB(s string) (color.Color, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if end < open {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	parts := strings.FieldsFunc(s[open+1:end], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(parts) != 3 && len(parts) != 4 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	var out [4]uint8
	out[3] = 0xff
	for i, p := range parts {
		var (
			f   float64
			err error
		)
		if i == 3 { // alpha is a fraction
			f, err = readFraction(p)
			f *= 255
		} else if strings.HasSuffix(p, "%") {
			f, err = strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
			f *= 255. / 100
		} else {
			f, err = strconv.ParseFloat(p, 64)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid color %q", s)
		}
		out[i] = clampUint8(f)
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: out[3]}, nil
}

func clampUint8(f float64) uint8 {
	switch {
	case f < 0:
		return 0
	case f > 255:
		return 255
	}
	return uint8(f + 0.5)
}
