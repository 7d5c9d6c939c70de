package resource

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/benoitkugler/infosvg/dom"
	"github.com/gorilla/css/scanner"
)

// localURL matches url(#id) references, quoted or not
var localURL = regexp.MustCompile(`url\(\s*['"]?#([^'")\s]+)['"]?\s*\)`)

// Scope confines the content of symbol to the document it is inserted
// in: symbol gets the id prefix, internal ids are renamed prefix-id
// (with the url(#id) and #id references), and the rules of <style>
// elements only select descendants of the symbol. At-rules other than
// @media and @supports are kept unscoped when they have a block, and
// dropped otherwise (@import, @charset).
func Scope(symbol *dom.Element, prefix string) {
	symbol.Del("id")
	var styles []*dom.Element
	symbol.Walk(func(el *dom.Element) bool {
		for i, a := range el.Attrs {
			el.Attrs[i].Value = scopeAttr(a, prefix)
		}
		if el.Tag == "style" {
			styles = append(styles, el)
			return false
		}
		return true
	})
	symbol.Set("id", prefix)
	for _, style := range styles {
		css := scopeStylesheet(style.Text(), prefix)
		if strings.TrimSpace(css) == "" {
			style.Detach()
			continue
		}
		style.SetText(css)
	}
}

func scopeAttr(a dom.Attr, prefix string) string {
	switch {
	case a.Name == "id":
		return prefix + "-" + a.Value
	case a.Name == "href" && strings.HasPrefix(a.Value, "#"):
		return "#" + prefix + "-" + a.Value[1:]
	}
	return scopeURLs(a.Value, prefix)
}

func scopeURLs(v, prefix string) string {
	if !strings.Contains(v, "url(") {
		return v
	}
	return localURL.ReplaceAllString(v, "url(#"+prefix+"-$1)")
}

// cssID returns an id selector, escaping the characters which are not
// allowed in an identifier (such as a leading digit).
func cssID(id string) string {
	var b strings.Builder
	b.WriteByte('#')
	for i, r := range id {
		switch {
		case i == 0 && r >= '0' && r <= '9':
			fmt.Fprintf(&b, `\%x `, r)
		case r == '-', r == '_', r >= 0x80,
			r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// block kinds of a stylesheet
const (
	rulesBlock = iota // contains rules: top level, @media
	declBlock         // contains declarations
	rawBlock          // copied as is: @font-face, @keyframes
)

// scopeStylesheet prefixes every selector of css with the id selector
// of prefix and renames the id selectors and local urls.
// Malformed stylesheets are dropped.
func scopeStylesheet(css, prefix string) string {
	var (
		out     strings.Builder
		blocks  = []int{rulesBlock}
		prelude []*scanner.Token
	)
	s := scanner.New(css)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			for range len(blocks) - 1 {
				out.WriteByte('}')
			}
			return out.String()
		case scanner.TokenError:
			return ""
		case scanner.TokenComment, scanner.TokenCDO, scanner.TokenCDC, scanner.TokenBOM:
			continue
		}

		if blocks[len(blocks)-1] != rulesBlock {
			switch {
			case tok.Type == scanner.TokenChar && tok.Value == "{":
				blocks = append(blocks, rawBlock)
			case tok.Type == scanner.TokenChar && tok.Value == "}":
				blocks = blocks[:len(blocks)-1]
			case tok.Type == scanner.TokenURI:
				out.WriteString(scopeURLs(tok.Value, prefix))
				continue
			}
			out.WriteString(tok.Value)
			continue
		}

		// rule level: accumulate the prelude up to its block
		switch {
		case tok.Type == scanner.TokenChar && tok.Value == "}":
			prelude = prelude[:0]
			if len(blocks) > 1 {
				blocks = blocks[:len(blocks)-1]
				out.WriteByte('}')
			}
		case tok.Type == scanner.TokenChar && tok.Value == ";":
			prelude = prelude[:0] // statement at-rules
		case tok.Type == scanner.TokenChar && tok.Value == "{":
			kind := declBlock
			if len(prelude) > 0 && prelude[0].Type == scanner.TokenAtKeyword {
				switch strings.ToLower(prelude[0].Value) {
				case "@media", "@supports":
					kind = rulesBlock
				default:
					kind = rawBlock
				}
				writeTokens(&out, prelude)
			} else {
				writeSelectors(&out, prelude, prefix)
			}
			out.WriteByte('{')
			blocks = append(blocks, kind)
			prelude = prelude[:0]
		case tok.Type == scanner.TokenS && len(prelude) == 0:
		default:
			prelude = append(prelude, tok)
		}
	}
}

func writeTokens(out *strings.Builder, toks []*scanner.Token) {
	for _, t := range toks {
		if t.Type == scanner.TokenS {
			out.WriteByte(' ')
		} else {
			out.WriteString(t.Value)
		}
	}
}

// writeSelectors writes the comma separated selectors of prelude,
// each one prefixed with the scope
func writeSelectors(out *strings.Builder, prelude []*scanner.Token, prefix string) {
	scope := cssID(prefix)
	var selector []*scanner.Token
	first := true
	flush := func() {
		for len(selector) > 0 && selector[len(selector)-1].Type == scanner.TokenS {
			selector = selector[:len(selector)-1]
		}
		for len(selector) > 0 && selector[0].Type == scanner.TokenS {
			selector = selector[1:]
		}
		if len(selector) == 0 {
			return
		}
		if !first {
			out.WriteString(", ")
		}
		first = false
		out.WriteString(scope)
		out.WriteByte(' ')
		for _, t := range selector {
			switch t.Type {
			case scanner.TokenS:
				out.WriteByte(' ')
			case scanner.TokenHash:
				out.WriteString(scope + "-" + t.Value[1:])
			default:
				out.WriteString(t.Value)
			}
		}
		selector = selector[:0]
	}
	for _, t := range prelude {
		if t.Type == scanner.TokenChar && t.Value == "," {
			flush()
			continue
		}
		selector = append(selector, t)
	}
	flush()
}
