package resource

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/benoitkugler/infosvg/dom"
	"github.com/benoitkugler/infosvg/svgpath"
	"golang.org/x/net/html/charset"
)

const (
	svgNamespace   = "http://www.w3.org/2000/svg"
	xlinkNamespace = "http://www.w3.org/1999/xlink"
)

// forbidden elements are dropped with their content
var forbidden = map[string]bool{
	"script":        true,
	"foreignObject": true,
	"iframe":        true,
	"object":        true,
	"embed":         true,
}

// rootOnly attributes of the <svg> root, which make no sense on a symbol
var rootOnly = map[string]bool{
	"x": true, "y": true, "width": true, "height": true,
	"version": true, "baseProfile": true, "viewBox": true,
}

// Sanitize converts untrusted SVG markup into a <symbol> element,
// which may be inserted in the <defs> of a document.
//
// Scripts, foreign objects, event handler attributes and javascript:
// links are removed, as well as elements and attributes of foreign
// namespaces (editor metadata). The symbol carries the view box of
// the root, or "0 0 width height".
func Sanitize(content string) (*dom.Element, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *dom.Element
		stack []*dom.Element
		skip  int // depth inside a dropped element
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("resource: sanitizing: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if skip > 0 || forbidden[t.Name.Local] || !isSVGName(t.Name) {
				skip++
				continue
			}
			el := dom.NewElement(t.Name.Local, sanitizeAttrs(t.Attr)...)
			if len(stack) == 0 {
				if root != nil || t.Name.Local != "svg" {
					return nil, ErrInvalidContent
				}
				root = toSymbol(el)
				el = root
			} else {
				stack[len(stack)-1].Append(el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if skip > 0 {
				skip--
				continue
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if skip > 0 || len(stack) == 0 || strings.TrimSpace(string(t)) == "" {
				continue
			}
			stack[len(stack)-1].Append(dom.CharData(string(t)))
		}
	}
	if root == nil {
		return nil, ErrInvalidContent
	}
	return root, nil
}

func isSVGName(n xml.Name) bool {
	return n.Space == "" || n.Space == svgNamespace
}

func sanitizeAttrs(attrs []xml.Attr) []dom.Attr {
	out := make([]dom.Attr, 0, len(attrs))
	for _, a := range attrs {
		name := a.Name.Local
		switch a.Name.Space {
		case "", svgNamespace:
		case xlinkNamespace:
			if name != "href" {
				continue
			}
		default: // xmlns declarations and foreign attributes
			continue
		}
		if name == "xmlns" || strings.HasPrefix(strings.ToLower(name), "on") {
			continue
		}
		if name == "href" && isScriptURL(a.Value) {
			continue
		}
		out = append(out, dom.Attr{Name: name, Value: a.Value})
	}
	return out
}

// isScriptURL detects javascript: links, ignoring case and
// embedded white space.
func isScriptURL(v string) bool {
	v = strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, v)
	return strings.HasPrefix(strings.ToLower(v), "javascript:")
}

var errNoViewBox = errors.New("resource: no view box")

// toSymbol turns the <svg> root into a <symbol>
func toSymbol(svg *dom.Element) *dom.Element {
	symbol := dom.NewElement("symbol")
	if vb, err := viewBox(svg); err == nil {
		symbol.Set("viewBox", vb)
	}
	for _, a := range svg.Attrs {
		if !rootOnly[a.Name] && a.Name != "id" {
			symbol.Set(a.Name, a.Value)
		}
	}
	return symbol
}

func viewBox(svg *dom.Element) (string, error) {
	if vb, ok := svg.Get("viewBox"); ok {
		if nums, err := svgpath.ParseNumbers(vb); err == nil && len(nums) == 4 {
			return vb, nil
		}
	}
	w, errW := svgpath.ParseLength(svg.Value("width"))
	h, errH := svgpath.ParseLength(svg.Value("height"))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return "", errNoViewBox
	}
	return fmt.Sprintf("0 0 %g %g", w, h), nil
}
