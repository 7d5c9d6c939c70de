package resource

import (
	"strings"

	"github.com/benoitkugler/infosvg/dom"
)

// Patch inserts content, as a <symbol id=fp>, in the <defs> of doc,
// so that the placeholders <use href="#fp"> display it. The content
// is sanitized and scoped to the symbol (see Scope).
// It reports whether the document was modified: it is a no-op when the
// document is closed, when no placeholder references fp anymore,
// when the symbol is already defined with the same content, or when
// content can't be sanitized. Patch is thus idempotent. A symbol with
// another content (colliding fingerprints) is replaced.
func Patch(doc *dom.Document, fp, content string) bool {
	if doc.Closed() {
		return false
	}
	symbol, err := Sanitize(content)
	if err != nil {
		return false
	}
	Scope(symbol, fp)
	ref := Ref(fp)
	return doc.Patch(func(root *dom.Element) bool {
		used := root.Find(func(el *dom.Element) bool {
			return el.Tag == "use" && el.Value("href") == ref
		})
		if used == nil {
			return false
		}
		defs := dom.Defs(root)
		for _, el := range defs.Elements() {
			if el.Tag == "symbol" && el.Value("id") == fp {
				if sameMarkup(el, symbol) {
					return false
				}
				el.Detach() // colliding fingerprint: the last write wins
				break
			}
		}
		defs.Append(symbol)
		return true
	})
}

func sameMarkup(a, b *dom.Element) bool {
	var ba, bb strings.Builder
	if dom.Encode(&ba, a) != nil || dom.Encode(&bb, b) != nil {
		return false
	}
	return ba.String() == bb.String()
}
