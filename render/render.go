package render

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/benoitkugler/infosvg/ctxlog"
	"github.com/benoitkugler/infosvg/dom"
	"github.com/benoitkugler/infosvg/element"
	"github.com/benoitkugler/infosvg/resource"
)

// Rendered is a committed document whose resources are being
// resolved. Resolved resources are patched in the document by a
// single goroutine, which runs until every resolution has settled
// or Close is called.
type Rendered struct {
	doc       *dom.Document
	committed *Committed

	pending   atomic.Int32
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Render replaces the content of doc by the rendering of root, and
// starts resolving the resources it references.
// The <defs> of doc are kept, so that resources and stylesheets
// already available are displayed at once.
// Only expansion errors are returned: the document is left untouched
// in that case.
func Render(ctx context.Context, root element.Node, doc *dom.Document, opts Options) (*Rendered, error) {
	// expand first, so that a broken template leaves doc unchanged
	p, err := element.Expand(root)
	if err != nil {
		return nil, err
	}
	var committed *Committed
	doc.Update(func(svg *dom.Element) {
		prev := snapshot(svg)
		var defs *dom.Element
		for _, el := range svg.Elements() {
			if el.Tag == "defs" {
				defs = el
				break
			}
		}
		svg.Clear()
		if defs != nil {
			svg.Append(defs)
		}
		committed, err = commit(ctx, p, svg, opts, prev)
	})
	if err != nil {
		return nil, err
	}

	for _, family := range committed.Families {
		opts.Fonts.Ensure(doc, family)
	}

	rctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &Rendered{doc: doc, committed: committed, cancel: cancel, done: make(chan struct{})}
	refs := committed.References
	if opts.Resources == nil {
		refs = nil
	}
	r.pending.Store(int32(len(refs)))
	results := make(chan resource.Resolved, len(refs))
	for _, ref := range refs {
		opts.Resources.Resolve(rctx, ref.Scene, ref.Config, results)
	}
	go r.patch(rctx, results, len(refs))
	return r, nil
}

// patch applies the n resolutions received on results
func (r *Rendered) patch(ctx context.Context, results <-chan resource.Resolved, n int) {
	defer close(r.done)
	logger := ctxlog.FromContext(ctx)
	for range n {
		select {
		case res := <-results:
			r.pending.Add(-1)
			if !res.OK {
				continue // logged by the manager
			}
			if resource.Patch(r.doc, res.Fingerprint, res.Content) {
				logger.Debug("render: resource patched", "fingerprint", res.Fingerprint)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Document returns the rendered document.
func (r *Rendered) Document() *dom.Document { return r.doc }

// Committed returns the outcome of the commit.
func (r *Rendered) Committed() *Committed { return r.committed }

// Pending returns the number of resources not settled yet.
func (r *Rendered) Pending() int { return int(r.pending.Load()) }

// Wait blocks until every resource has settled (resolved and patched,
// or failed), Close is called, or ctx is done.
func (r *Rendered) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops patching the document: resources settling
// afterwards are dropped. The document itself stays usable.
func (r *Rendered) Close() {
	r.closeOnce.Do(func() {
		r.cancel()
		<-r.done
	})
}
