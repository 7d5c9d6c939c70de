package font

import (
	"fmt"

	"github.com/benoitkugler/infosvg/dom"
)

// Loader adds the stylesheets of the families used by a document.
// Already rendered text picks the family up once the viewer loads the
// stylesheet, so there is nothing to patch afterwards.
type Loader struct {
	Registry *Registry
	// Headless loaders never insert stylesheets, for documents
	// rasterised or measured on the server.
	Headless bool
}

// Ensure inserts a <style> importing the stylesheet of family into
// the <defs> of doc, and reports whether it did so.
// Families without URL, closed documents and repeated calls
// for the same family and URL are no-ops.
func (l *Loader) Ensure(doc *dom.Document, family string) bool {
	if l == nil || l.Headless || l.Registry == nil {
		return false
	}
	fam, ok := l.Registry.Lookup(family)
	if !ok || fam.URL == "" || doc.Closed() {
		return false
	}
	if !doc.Mark("font:" + normalize(fam.Name) + "|" + fam.URL) {
		return false
	}
	doc.Update(func(root *dom.Element) {
		style := dom.NewElement("style", dom.Attr{Name: "data-font-family", Value: fam.Name})
		style.SetText(fmt.Sprintf("@import url(%q);", fam.URL))
		dom.Defs(root).Append(style)
	})
	return true
}
