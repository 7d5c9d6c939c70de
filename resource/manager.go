package resource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benoitkugler/infosvg/ctxlog"
	"golang.org/x/sync/errgroup"
)

// Store is a persistent second level cache, consulted before loaders.
// See package store for an SQLite implementation.
type Store interface {
	Get(ctx context.Context, fp string) (string, bool, error)
	Put(ctx context.Context, fp, scene, content string) error
}

// Resolved is the outcome of a resolution, sent by Manager.Resolve.
type Resolved struct {
	Fingerprint string
	Content     string
	OK          bool // false when the resource could not be resolved
}

type state uint8

const (
	pending state = iota
	resolved
)

// entry is the state of a fingerprint. Unrequested and failed
// fingerprints have no entry.
type entry struct {
	key     string // canonical config
	state   state
	content string
	ok      bool
	done    chan struct{} // closed once settled
}

// Manager resolves resources, with at most one load in flight per
// fingerprint and an unbounded cache of successful results.
// Failures are not cached, so that a later request retries.
// It is safe for concurrent use.
type Manager struct {
	loaders       *Registry
	store         Store
	timeout       time.Duration
	prefetchLimit int

	mu      sync.Mutex
	entries map[string]*entry
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout bounds the duration of each load. Default: no limit
// besides the one of the caller context.
func WithTimeout(d time.Duration) Option { return func(m *Manager) { m.timeout = d } }

// WithStore adds a persistent second level cache.
func WithStore(s Store) Option { return func(m *Manager) { m.store = s } }

// WithPrefetchLimit bounds the number of concurrent loads started
// by Prefetch. Default: 4.
func WithPrefetchLimit(n int) Option { return func(m *Manager) { m.prefetchLimit = n } }

// NewManager returns a manager loading resources with loaders.
// A nil registry uses the DefaultLoader for every scene.
func NewManager(loaders *Registry, opts ...Option) *Manager {
	m := &Manager{loaders: loaders, prefetchLimit: 4, entries: make(map[string]*entry)}
	for _, o := range opts {
		o(m)
	}
	if m.prefetchLimit <= 0 {
		m.prefetchLimit = 1
	}
	return m
}

// Request returns the content of the resource. A cached resource is
// returned immediately; concurrent requests for the same fingerprint
// share a single load. The load is not interrupted when ctx is done:
// only this caller stops waiting for it.
// A config colliding with the one cached under its fingerprint is
// loaded and replaces it: the last write wins.
// Failures are logged, never returned.
func (m *Manager) Request(ctx context.Context, scene string, cfg Config) (string, bool) {
	fp, key := Fingerprint(cfg), string(canonical(cfg))

	m.mu.Lock()
	e, ok := m.entries[fp]
	collision := ok && e.key != key
	if collision {
		ok = false
	}
	if ok && e.state == resolved {
		m.mu.Unlock()
		return e.content, true
	}
	if !ok {
		e = &entry{key: key, state: pending, done: make(chan struct{})}
		m.entries[fp] = e
		go m.settle(context.WithoutCancel(ctx), e, scene, cfg, fp, !collision)
	}
	m.mu.Unlock()

	select {
	case <-e.done:
		return e.content, e.ok
	case <-ctx.Done():
		return "", false
	}
}

// settle runs the load of a pending entry, and records its outcome
func (m *Manager) settle(ctx context.Context, e *entry, scene string, cfg Config, fp string, useStore bool) {
	logger := ctxlog.FromContext(ctx).With("fingerprint", fp, "scene", scene)
	content, err := m.load(ctx, scene, cfg, fp, useStore)

	m.mu.Lock()
	if err != nil {
		// not cached, a later request retries
		if m.entries[fp] == e {
			delete(m.entries, fp)
		}
	} else {
		e.state, e.content, e.ok = resolved, content, true
	}
	m.mu.Unlock()
	close(e.done)

	if err != nil {
		logger.Warn("resource: resolution failed", "type", cfg.Type, "error", err)
	} else {
		logger.Debug("resource: resolved", "size", len(content))
	}
}

// load reads the store (the stored content of a colliding config
// is skipped when useStore is false), then runs the loader
func (m *Manager) load(ctx context.Context, scene string, cfg Config, fp string, useStore bool) (content string, err error) {
	logger := ctxlog.FromContext(ctx)
	if m.store != nil && useStore {
		content, ok, err := m.store.Get(ctx, fp)
		if err != nil {
			logger.Warn("resource: store lookup failed", "fingerprint", fp, "error", err)
		} else if ok {
			return content, nil
		}
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resource: loader panic: %v", r)
		}
	}()
	content, err = m.loaders.Lookup(scene).Load(ctx, scene, cfg)
	if err != nil {
		return "", err
	}
	if err = ValidateContext(ctx, content); err != nil {
		return "", err
	}

	if m.store != nil {
		if err := m.store.Put(ctx, fp, scene, content); err != nil {
			logger.Warn("resource: store write failed", "fingerprint", fp, "error", err)
		}
	}
	return content, nil
}

// Resolve requests the resource in the background and sends the
// outcome on out, unless ctx is done first.
func (m *Manager) Resolve(ctx context.Context, scene string, cfg Config, out chan<- Resolved) {
	fp := Fingerprint(cfg)
	go func() {
		content, ok := m.Request(ctx, scene, cfg)
		select {
		case out <- Resolved{Fingerprint: fp, Content: content, OK: ok}:
		case <-ctx.Done():
		}
	}()
}

// Prefetch warms the cache with the given resources, running at most
// the configured number of loads at once. It returns the number of
// resources available once done, and ctx.Err() if ctx was canceled.
func (m *Manager) Prefetch(ctx context.Context, scene string, cfgs ...Config) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.prefetchLimit)
	var (
		mu sync.Mutex
		n  int
	)
	for _, cfg := range cfgs {
		g.Go(func() error {
			if _, ok := m.Request(gctx, scene, cfg); ok {
				mu.Lock()
				n++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // goroutines never fail
	return n, ctx.Err()
}

// Lookup returns the cached content of a fingerprint, without loading.
func (m *Manager) Lookup(fp string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[fp]; ok && e.state == resolved {
		return e.content, true
	}
	return "", false
}

// Len returns the number of cached resources.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.state == resolved {
			n++
		}
	}
	return n
}

// Forget removes a resolved resource from the cache, so that the
// next request loads it again. Pending loads are not affected.
func (m *Manager) Forget(fp string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[fp]; ok && e.state == resolved {
		delete(m.entries, fp)
	}
}
