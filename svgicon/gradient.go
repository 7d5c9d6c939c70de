package svgicon

import (
	"encoding/xml"
	"image/color"
	"strconv"
	"strings"

	"github.com/benoitkugler/infosvg/svgpath"
)

// maxGradientRefs bounds the chain of href between gradients
const maxGradientRefs = 8

// readPaintServer resolves a url(#id) paint, with an optional fallback color.
// A gradient without stops disables the painting.
func (c *iconCursor) readPaintServer(v string) (color.Color, *svgpath.Gradient) {
	end := strings.IndexByte(v, ')')
	if end < 0 {
		_ = c.handleError("invalid paint " + v)
		return nil, nil
	}
	id := strings.Trim(strings.TrimSpace(v[len("url("):end]), `'"`)
	id = strings.TrimPrefix(id, "#")
	if grad, ok := c.gradient(id, 0); ok {
		if len(grad.Stops) == 0 {
			return nil, nil
		}
		return grad.Fallback(), grad
	}
	if fallback := strings.TrimSpace(v[end+1:]); fallback != "" {
		col, _ := parseSVGColor(fallback)
		return col, nil
	}
	_ = c.handleError("unresolved paint server " + v)
	return nil, nil
}

// gradient builds the gradient recorded with id, following
// the href attribute for the inherited properties.
func (c *iconCursor) gradient(id string, depth int) (*svgpath.Gradient, bool) {
	tokens := c.icon.defs[id]
	if len(tokens) == 0 {
		return nil, false
	}
	se, ok := tokens[0].(xml.StartElement)
	if !ok || (se.Name.Local != "linearGradient" && se.Name.Local != "radialGradient") {
		return nil, false
	}

	grad := &svgpath.Gradient{Matrix: svgpath.Identity}
	if href := attrValue(se.Attr, "href"); strings.HasPrefix(href, "#") && depth < maxGradientRefs {
		if base, ok := c.gradient(href[1:], depth+1); ok {
			*grad = *base
		}
	}
	for _, attr := range se.Attr {
		switch attr.Name.Local {
		case "gradientUnits":
			switch attr.Value {
			case "userSpaceOnUse":
				grad.Units = svgpath.UserSpaceOnUse
			case "objectBoundingBox":
				grad.Units = svgpath.ObjectBoundingBox
			}
		case "spreadMethod":
			switch attr.Value {
			case "pad":
				grad.Spread = svgpath.PadSpread
			case "reflect":
				grad.Spread = svgpath.ReflectSpread
			case "repeat":
				grad.Spread = svgpath.RepeatSpread
			}
		case "gradientTransform":
			m, err := svgpath.ParseTransform(attr.Value)
			if err != nil {
				_ = c.handleError(err.Error())
				continue
			}
			grad.Matrix = m
		}
	}
	if se.Name.Local == "linearGradient" {
		grad.Direction = c.linearDirection(se.Attr, grad.Direction)
	} else {
		grad.Direction = c.radialDirection(se.Attr, grad.Direction)
	}

	if stops := c.gradientStops(tokens[1:]); len(stops) > 0 {
		grad.Stops = stops
	}
	return grad, true
}

func (c *iconCursor) linearDirection(attrs []xml.Attr, inherited svgpath.Direction) svgpath.Linear {
	dir, ok := inherited.(svgpath.Linear)
	if !ok {
		dir = svgpath.Linear{0, 0, 1, 0}
	}
	for _, attr := range attrs {
		index := -1
		switch attr.Name.Local {
		case "x1":
			index = 0
		case "y1":
			index = 1
		case "x2":
			index = 2
		case "y2":
			index = 3
		}
		if index >= 0 {
			c.readGradientCoord(&dir[index], attr.Value)
		}
	}
	return dir
}

func (c *iconCursor) radialDirection(attrs []xml.Attr, inherited svgpath.Direction) svgpath.Radial {
	dir, ok := inherited.(svgpath.Radial)
	if !ok {
		dir = svgpath.Radial{0.5, 0.5, 0.5, 0.5, 0.5, 0}
	}
	var setFx, setFy bool
	for _, attr := range attrs {
		index := -1
		switch attr.Name.Local {
		case "cx":
			index = 0
		case "cy":
			index = 1
		case "fx":
			index, setFx = 2, true
		case "fy":
			index, setFy = 3, true
		case "r":
			index = 4
		case "fr":
			index = 5
		}
		if index >= 0 {
			c.readGradientCoord(&dir[index], attr.Value)
		}
	}
	if !setFx { // the focal point defaults to the center
		dir[2] = dir[0]
	}
	if !setFy {
		dir[3] = dir[1]
	}
	return dir
}

func (c *iconCursor) readGradientCoord(dst *float64, v string) {
	f, err := readFraction(v)
	if err != nil {
		_ = c.handleError("invalid gradient coordinate " + v)
		return
	}
	*dst = f
}

// gradientStops reads the <stop> children of a gradient,
// whose offsets are clamped to be increasing.
func (c *iconCursor) gradientStops(tokens []xml.Token) []svgpath.GradStop {
	var (
		stops []svgpath.GradStop
		last  float64
	)
	for _, t := range tokens {
		se, ok := t.(xml.StartElement)
		if !ok || se.Name.Local != "stop" {
			continue
		}
		props := map[string]string{"offset": "0", "stop-color": "black", "stop-opacity": "1"}
		for _, attr := range se.Attr {
			props[attr.Name.Local] = attr.Value
		}
		// the style attribute takes precedence
		for _, decl := range strings.Split(props["style"], ";") {
			if kv := strings.SplitN(decl, ":", 2); len(kv) == 2 {
				props[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
			}
		}

		stop := svgpath.GradStop{Offset: last, Opacity: 1}
		if offset, err := readFraction(props["offset"]); err == nil {
			stop.Offset = min(max(offset, last), 1)
		}
		last = stop.Offset
		col, err := parseSVGColor(props["stop-color"])
		if err != nil {
			_ = c.handleError(err.Error())
		}
		if col == nil {
			col = color.Transparent
		}
		stop.StopColor = col
		if op, err := strconv.ParseFloat(strings.TrimSpace(props["stop-opacity"]), 64); err == nil {
			stop.Opacity = min(max(op, 0), 1)
		}
		stops = append(stops, stop)
	}
	return stops
}
