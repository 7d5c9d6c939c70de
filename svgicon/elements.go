package svgicon

import (
	"encoding/xml"
	"errors"
	"strings"

	"github.com/benoitkugler/infosvg/svgpath"
)

func init() {
	// avoids cyclical static declaration
	// called on package initialization
	drawFuncs["use"] = useF
}

type svgFunc func(c *iconCursor, attrs []xml.Attr) error

var drawFuncs = map[string]svgFunc{
	"svg":      svgF,
	"g":        gF,
	"a":        gF,
	"tspan":    gF,
	"line":     lineF,
	"rect":     rectF,
	"circle":   circleF,
	"ellipse":  circleF, // circleF handles ellipse also
	"polyline": polylineF,
	"polygon":  polygonF,
	"path":     pathF,
	"text":     textF,
	"desc":     descF,
	"defs":     defsF,
	"title":    titleF,
	"style":    gF, // CSS is not supported; presentation attributes are
	"metadata": gF,
	"image":    gF, // raster images are not drawn
}

func svgF(c *iconCursor, attrs []xml.Attr) error {
	if c.seenRoot { // nested viewports are drawn as groups
		return nil
	}
	c.seenRoot = true
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "viewBox":
			var points []float64
			points, err = svgpath.ParseNumbers(attr.Value)
			if err == nil && len(points) != 4 {
				return errParamMismatch
			}
			if err == nil {
				c.icon.ViewBox = Bounds{X: points[0], Y: points[1], W: points[2], H: points[3]}
			}
		case "width":
			c.icon.Width, err = svgpath.ParseLength(attr.Value)
		case "height":
			c.icon.Height, err = svgpath.ParseLength(attr.Value)
		}
		if err != nil {
			return err
		}
	}
	if c.icon.ViewBox.W == 0 {
		c.icon.ViewBox.W = c.icon.Width
	}
	if c.icon.ViewBox.H == 0 {
		c.icon.ViewBox.H = c.icon.Height
	}
	return nil
}

func gF(*iconCursor, []xml.Attr) error { return nil } // g does nothing but push the style

func rectF(c *iconCursor, attrs []xml.Attr) error {
	var x, y, w, h, rx, ry float64
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "x":
			x, err = c.parseUnit(attr.Value, widthPercentage)
		case "y":
			y, err = c.parseUnit(attr.Value, heightPercentage)
		case "width":
			w, err = c.parseUnit(attr.Value, widthPercentage)
		case "height":
			h, err = c.parseUnit(attr.Value, heightPercentage)
		case "rx":
			rx, err = c.parseUnit(attr.Value, widthPercentage)
		case "ry":
			ry, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	c.path.AddRoundRect(x, y, w, h, rx, ry)
	return nil
}

func circleF(c *iconCursor, attrs []xml.Attr) error {
	var cx, cy, rx, ry float64
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "cx":
			cx, err = c.parseUnit(attr.Value, widthPercentage)
		case "cy":
			cy, err = c.parseUnit(attr.Value, heightPercentage)
		case "r":
			rx, err = c.parseUnit(attr.Value, diagPercentage)
			ry = rx
		case "rx":
			rx, err = c.parseUnit(attr.Value, widthPercentage)
		case "ry":
			ry, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	if rx <= 0 || ry <= 0 { // not drawn, but not an error
		return nil
	}
	c.path.AddEllipse(cx, cy, rx, ry)
	return nil
}

func lineF(c *iconCursor, attrs []xml.Attr) error {
	var x1, x2, y1, y2 float64
	var err error
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "x1":
			x1, err = c.parseUnit(attr.Value, widthPercentage)
		case "x2":
			x2, err = c.parseUnit(attr.Value, widthPercentage)
		case "y1":
			y1, err = c.parseUnit(attr.Value, heightPercentage)
		case "y2":
			y2, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	c.path.AddPolyline([]float64{x1, y1, x2, y2}, false)
	return nil
}

func readPoints(attrs []xml.Attr) ([]float64, error) {
	points, err := svgpath.ParseNumbers(attrValue(attrs, "points"))
	if err != nil {
		return nil, err
	}
	if len(points)%2 != 0 {
		return nil, errors.New("svgicon: polygon has odd number of points")
	}
	return points, nil
}

func polylineF(c *iconCursor, attrs []xml.Attr) error {
	points, err := readPoints(attrs)
	if err != nil {
		return err
	}
	if len(points) >= 4 {
		c.path.AddPolyline(points, false)
	}
	return nil
}

func polygonF(c *iconCursor, attrs []xml.Attr) error {
	points, err := readPoints(attrs)
	if err != nil {
		return err
	}
	if len(points) >= 4 {
		c.path.AddPolyline(points, true)
	}
	return nil
}

func pathF(c *iconCursor, attrs []xml.Attr) error {
	d := attrValue(attrs, "d")
	if d == "" {
		return nil
	}
	p, err := svgpath.Parse(d)
	if err != nil {
		return err
	}
	c.path = append(c.path, p...)
	return nil
}

func textF(c *iconCursor, attrs []xml.Attr) error {
	var x, y float64
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "x", "y":
			// only the first position of a list is used
			vs, err := svgpath.ParseNumbers(attr.Value)
			if err != nil {
				return err
			}
			if len(vs) == 0 {
				continue
			}
			if attr.Name.Local == "x" {
				x = vs[0]
			} else {
				y = vs[0]
			}
		}
	}
	c.curText = &SvgText{X: x, Y: y, Style: *c.top()}
	return nil
}

func descF(c *iconCursor, attrs []xml.Attr) error {
	c.inDescText = true
	c.icon.Descriptions = append(c.icon.Descriptions, "")
	return nil
}

func titleF(c *iconCursor, attrs []xml.Attr) error {
	c.inTitleText = true
	c.icon.Titles = append(c.icon.Titles, "")
	return nil
}

func defsF(c *iconCursor, attrs []xml.Attr) error {
	c.inDefs++
	return nil
}

// useF replays a recorded definition. Symbols (and nested svg)
// are mapped from their view box into the use box.
func useF(c *iconCursor, attrs []xml.Attr) error {
	var (
		href       string
		x, y, w, h float64
		err        error
	)
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "href":
			href = attr.Value
		case "x":
			x, err = c.parseUnit(attr.Value, widthPercentage)
		case "y":
			y, err = c.parseUnit(attr.Value, heightPercentage)
		case "width":
			w, err = c.parseUnit(attr.Value, widthPercentage)
		case "height":
			h, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	if href == "" {
		return nil // placeholder, nothing to draw
	}
	if !strings.HasPrefix(href, "#") {
		return c.handleError("only the ID CSS selector is supported in use: " + href)
	}
	tokens, ok := c.icon.defs[href[1:]]
	if !ok || len(tokens) == 0 {
		return c.handleError("href ID in use statement was not found in saved defs: " + href)
	}
	if c.useDepth >= maxUseDepth {
		return errors.New("svgicon: use elements nested too deeply")
	}

	m := c.top().transform.Translate(x, y)
	body := tokens
	root := tokens[0].(xml.StartElement)
	if name := root.Name.Local; name == "symbol" || name == "svg" {
		if vb, err := svgpath.ParseNumbers(attrValue(root.Attr, "viewBox")); err == nil && len(vb) == 4 && vb[2] > 0 && vb[3] > 0 {
			if w <= 0 {
				w = vb[2]
			}
			if h <= 0 {
				h = vb[3]
			}
			m = m.Scale(w/vb[2], h/vb[3]).Translate(-vb[0], -vb[1])
		}
		// the root itself is not drawn, only its style is applied
		if err := c.pushStyle(withoutTransform(root.Attr)); err != nil {
			return err
		}
		body = tokens[1 : len(tokens)-1]
	} else {
		c.styleStack = append(c.styleStack, *c.top())
	}
	c.top().transform = m
	defer c.popStyle()

	c.useDepth++
	defer func() { c.useDepth-- }()
	for _, t := range body {
		if err := c.handleToken(t); err != nil {
			return err
		}
	}
	return nil
}

func withoutTransform(attrs []xml.Attr) []xml.Attr {
	out := make([]xml.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Name.Local != "transform" {
			out = append(out, a)
		}
	}
	return out
}
