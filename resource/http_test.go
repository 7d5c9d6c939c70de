package resource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestHTTPLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/icons/mdi/home.svg", "/direct.svg":
			w.Header().Set("Content-Type", "image/svg+xml")
			w.Write([]byte(star))
		case "/big.svg":
			w.Write([]byte(strings.Repeat("a", MaxContentSize+10)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	h := &HTTPLoader{Client: srv.Client(), URLTemplate: srv.URL + "/icons/{namespace}/{name}.svg"}
	ctx := context.Background()

	got, err := h.Load(ctx, "icon", Config{TypeCustom, "mdi:home"})
	if err != nil || got != star {
		t.Fatalf("template: %q %v", got, err)
	}
	got, err = h.Load(ctx, "icon", Config{TypeRemote, srv.URL + "/direct.svg"})
	if err != nil || got != star {
		t.Fatalf("remote: %q %v", got, err)
	}
	if _, err = h.Load(ctx, "icon", Config{TypeCustom, "mdi:missing"}); err == nil {
		t.Error("expected error for 404")
	}
	if _, err = h.Load(ctx, "icon", Config{TypeRemote, srv.URL + "/big.svg"}); err == nil {
		t.Error("expected error for oversized content")
	}
	if _, err = h.Load(ctx, "icon", Config{TypeSVG, star}); err == nil {
		t.Error("inline svg can't be fetched")
	}
	if _, err = (&HTTPLoader{}).Load(ctx, "icon", Config{TypeCustom, "mdi:home"}); !errors.Is(err, ErrNoLoader) {
		t.Errorf("expected ErrNoLoader without template, got %v", err)
	}
}

func TestHTTPLoaderThroughManager(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(star))
	}))
	defer srv.Close()

	reg := NewRegistry(DefaultLoader{HTTP: &HTTPLoader{Client: srv.Client()}})
	reg.Register("icon", &HTTPLoader{Client: srv.Client(), URLTemplate: srv.URL + "/{namespace}/{name}"})
	m := NewManager(reg)
	ctx := context.Background()

	if _, ok := m.Request(ctx, "icon", Config{TypeCustom, "mdi:home"}); !ok {
		t.Fatal("custom reference should resolve")
	}
	if _, ok := m.Request(ctx, "illustration", Config{TypeRemote, srv.URL + "/a.svg"}); !ok {
		t.Fatal("remote reference should resolve with the fallback")
	}
	m.Request(ctx, "icon", Config{TypeCustom, "mdi:home"})
	if n := hits.Load(); n != 2 {
		t.Errorf("expected 2 requests, got %d", n)
	}
}
