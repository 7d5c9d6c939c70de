package svgicon

import (
	"encoding/xml"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/infosvg/svgpath"
	"golang.org/x/image/math/fixed"
)

// maxUseDepth bounds the nesting of <use> elements,
// which may reference each other in a cycle.
const maxUseDepth = 8

var errParamMismatch = errors.New("svgicon: param mismatch")

type (
	// iconCursor is used while parsing SVG files
	iconCursor struct {
		icon       *SvgIcon
		styleStack []PathStyle
		path       svgpath.Path

		errorMode ErrorMode
		logger    *slog.Logger

		seenRoot                bool
		inTitleText, inDescText bool
		inDefs                  int
		useDepth                int
		curText                 *SvgText
		rec                     *recording
	}

	// recording stores the tokens of a definition,
	// replayed by <use> elements
	recording struct {
		id     string
		depth  int
		tokens []xml.Token
	}
)

func fToFixed(f float64) fixed.Int26_6 {
	return fixed.Int26_6(f * 64)
}

// DefaultStyle sets the default PathStyle to fill black, winding rule,
// full opacity, no stroke, ButtCap line end and Bevel line connect.
var DefaultStyle = PathStyle{
	FillOpacity:       1.0,
	LineOpacity:       1.0,
	LineWidth:         1.0,
	UseNonZeroWinding: true,
	Join: JoinOptions{
		MiterLimit:   fToFixed(4),
		LineJoin:     Bevel,
		TrailLineCap: ButtCap,
	},
	FillerColor: black,
	FontFamily:  "sans-serif",
	FontSize:    16,
	TextAnchor:  "start",
	current:     black,
	transform:   svgpath.Identity,
}

func (c *iconCursor) top() *PathStyle { return &c.styleStack[len(c.styleStack)-1] }

func (c *iconCursor) popStyle() {
	if len(c.styleStack) > 1 {
		c.styleStack = c.styleStack[:len(c.styleStack)-1]
	}
}

// handleError reports an unsupported construct, according to the error mode
func (c *iconCursor) handleError(msg string) error {
	switch c.errorMode {
	case StrictErrorMode:
		return errors.New("svgicon: " + msg)
	case WarnErrorMode:
		c.logger.Warn("svgicon: unsupported content", "detail", msg)
	}
	return nil
}

func (c *iconCursor) handleToken(t xml.Token) error {
	if c.rec != nil {
		c.record(t)
		return nil
	}
	switch se := t.(type) {
	case xml.StartElement:
		if c.inDefs > 0 || recordedElements[se.Name.Local] {
			c.rec = &recording{id: attrValue(se.Attr, "id")}
			c.record(se)
			return nil
		}
		// Reads all recognized style attributes from the start element
		// and places it on top of the styleStack
		if err := c.pushStyle(se.Attr); err != nil {
			return err
		}
		return c.readStartElement(se)
	case xml.EndElement:
		c.popStyle()
		c.readEndElement(se)
	case xml.CharData:
		switch {
		case c.inTitleText:
			c.icon.Titles[len(c.icon.Titles)-1] += string(se)
		case c.inDescText:
			c.icon.Descriptions[len(c.icon.Descriptions)-1] += string(se)
		case c.curText != nil:
			c.curText.Content += string(se)
		}
	}
	return nil
}

// elements only drawn when referenced
var recordedElements = map[string]bool{
	"symbol":         true,
	"linearGradient": true,
	"radialGradient": true,
}

func (c *iconCursor) record(t xml.Token) {
	r := c.rec
	switch t := t.(type) {
	case xml.StartElement:
		r.depth++
		r.tokens = append(r.tokens, t.Copy())
	case xml.EndElement:
		r.depth--
		r.tokens = append(r.tokens, t)
		if r.depth == 0 {
			if r.id != "" {
				c.icon.defs[r.id] = r.tokens
			}
			c.rec = nil
		}
	case xml.CharData:
		r.tokens = append(r.tokens, t.Copy())
	}
}

func (c *iconCursor) readEndElement(se xml.EndElement) {
	switch se.Name.Local {
	case "title":
		c.inTitleText = false
	case "desc":
		c.inDescText = false
	case "defs":
		c.inDefs--
	case "text":
		if t := c.curText; t != nil {
			t.Content = strings.Join(strings.Fields(t.Content), " ")
			if t.Content != "" {
				c.icon.Texts = append(c.icon.Texts, *t)
			}
			c.curText = nil
		}
	}
}

func (c *iconCursor) readStartElement(se xml.StartElement) error {
	df, ok := drawFuncs[se.Name.Local]
	if !ok {
		return c.handleError("cannot process svg element " + se.Name.Local)
	}
	err := df(c, se.Attr)
	if len(c.path) > 0 {
		// the cursor parsed a path from the xml element
		pathCopy := append(svgpath.Path{}, c.path...)
		c.icon.SVGPaths = append(c.icon.SVGPaths, SvgPath{Path: pathCopy, Style: *c.top()})
		c.path = c.path[:0]
	}
	return err
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, attr := range attrs {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

// pushStyle parses the style element, and push it on the style stack.
// Note that this parses both the contents of a style attribute plus
// direct presentation attributes, the former taking precedence.
func (c *iconCursor) pushStyle(attrs []xml.Attr) error {
	var pairs, styles []string
	for _, attr := range attrs {
		switch strings.ToLower(attr.Name.Local) {
		case "style":
			styles = append(styles, strings.Split(attr.Value, ";")...)
		default:
			pairs = append(pairs, attr.Name.Local+":"+attr.Value)
		}
	}
	pairs = append(pairs, styles...)
	// Make a copy of the top style
	curStyle := *c.top()
	for _, pair := range pairs {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.TrimSpace(strings.ToLower(kv[0]))
		v := strings.TrimSpace(kv[1])
		if err := c.readStyleAttr(&curStyle, k, v); err != nil {
			return fmt.Errorf("svgicon: invalid %s %q: %w", k, v, err)
		}
	}
	c.styleStack = append(c.styleStack, curStyle) // Push style onto stack
	return nil
}

// readPaint resolves a fill or stroke value
func (c *iconCursor) readPaint(curStyle *PathStyle, v string) (color.Color, *svgpath.Gradient, error) {
	if strings.HasPrefix(v, "url(") {
		col, grad := c.readPaintServer(v)
		return col, grad, nil
	}
	if v == "currentColor" {
		return curStyle.current, nil, nil
	}
	col, err := parseSVGColor(v)
	if err != nil {
		return nil, nil, c.handleError(err.Error())
	}
	return col, nil, nil
}

func (c *iconCursor) readStyleAttr(curStyle *PathStyle, k, v string) error {
	switch k {
	case "color":
		if col, err := parseSVGColor(v); err == nil && col != nil {
			curStyle.current = col
		}
	case "fill":
		col, grad, err := c.readPaint(curStyle, v)
		if err != nil {
			return err
		}
		curStyle.FillerColor, curStyle.FillerGradient = col, grad
	case "stroke":
		col, grad, err := c.readPaint(curStyle, v)
		if err != nil {
			return err
		}
		curStyle.LinerColor, curStyle.LinerGradient = col, grad
	case "fill-rule":
		curStyle.UseNonZeroWinding = v != "evenodd"
	case "stroke-linegap":
		switch v {
		case "flat":
			curStyle.Join.LineGap = FlatGap
		case "round":
			curStyle.Join.LineGap = RoundGap
		case "cubic":
			curStyle.Join.LineGap = CubicGap
		case "quadratic":
			curStyle.Join.LineGap = QuadraticGap
		}
	case "stroke-linecap":
		switch v {
		case "butt":
			curStyle.Join.TrailLineCap = ButtCap
		case "round":
			curStyle.Join.TrailLineCap = RoundCap
		case "square":
			curStyle.Join.TrailLineCap = SquareCap
		}
	case "stroke-linejoin":
		switch v {
		case "miter":
			curStyle.Join.LineJoin = Miter
		case "miter-clip":
			curStyle.Join.LineJoin = MiterClip
		case "arc-clip":
			curStyle.Join.LineJoin = ArcClip
		case "round":
			curStyle.Join.LineJoin = Round
		case "arc":
			curStyle.Join.LineJoin = Arc
		case "bevel":
			curStyle.Join.LineJoin = Bevel
		}
	case "stroke-miterlimit":
		mLimit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		curStyle.Join.MiterLimit = fToFixed(mLimit)
	case "stroke-width":
		width, err := c.parseUnit(v, diagPercentage)
		if err != nil {
			return err
		}
		curStyle.LineWidth = width
	case "stroke-dashoffset":
		dashOffset, err := c.parseUnit(v, diagPercentage)
		if err != nil {
			return err
		}
		curStyle.Dash.DashOffset = dashOffset
	case "stroke-dasharray":
		if v == "none" {
			curStyle.Dash.Dash = nil
			break
		}
		dList, err := svgpath.ParseNumbers(v)
		if err != nil {
			return err
		}
		curStyle.Dash.Dash = dList
	case "opacity", "stroke-opacity", "fill-opacity":
		op, err := readFraction(v)
		if err != nil {
			return err
		}
		if k != "stroke-opacity" {
			curStyle.FillOpacity *= op
		}
		if k != "fill-opacity" {
			curStyle.LineOpacity *= op
		}
	case "font-family":
		family := strings.TrimSpace(strings.Split(v, ",")[0])
		curStyle.FontFamily = strings.Trim(family, `"'`)
	case "font-size":
		size, err := c.parseUnit(v, heightPercentage)
		if err != nil {
			return err
		}
		curStyle.FontSize = size
	case "text-anchor":
		curStyle.TextAnchor = v
	case "transform":
		m, err := svgpath.ParseTransform(v)
		if err != nil {
			return err
		}
		curStyle.transform = curStyle.transform.Mult(m)
	}
	return nil
}

func readFraction(v string) (f float64, err error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err = strconv.ParseFloat(v, 64)
	f /= d
	return
}

type percentageReference uint8

const (
	widthPercentage percentageReference = iota
	heightPercentage
	diagPercentage
)

// parseUnit converts a length to user units. Percentages are
// relative to the view box.
func (c *iconCursor) parseUnit(s string, asPerc percentageReference) (float64, error) {
	s = strings.TrimSpace(s)
	factor := 1.
	switch {
	case strings.HasSuffix(s, "%"):
		vb := c.icon.ViewBox
		switch asPerc {
		case widthPercentage:
			factor = vb.W / 100
		case heightPercentage:
			factor = vb.H / 100
		case diagPercentage:
			factor = math.Sqrt(vb.W*vb.W+vb.H*vb.H) / math.Sqrt2 / 100
		}
		s = strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "pt"):
		factor = 4. / 3
		s = strings.TrimSuffix(s, "pt")
	case strings.HasSuffix(s, "em"):
		factor = c.top().FontSize
		s = strings.TrimSuffix(s, "em")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f * factor, err
}
