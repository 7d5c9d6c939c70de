package resource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// MaxContentSize bounds the size of fetched content.
const MaxContentSize = 4 << 20

// HTTPLoader fetches remote references and, through URLTemplate,
// custom identifiers of the form <namespace>:<name>.
type HTTPLoader struct {
	Client *http.Client // nil means http.DefaultClient
	// URLTemplate maps custom identifiers to URLs, with {namespace}
	// and {name} placeholders, for instance
	// "https://icons.example.com/{namespace}/{name}.svg".
	URLTemplate string
}

// Load implements Loader.
func (h *HTTPLoader) Load(ctx context.Context, _ string, cfg Config) (string, error) {
	u, err := h.url(cfg)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("resource: %w", err)
	}
	req.Header.Set("Accept", "image/svg+xml")
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resource: fetching %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("resource: fetching %s: unexpected status %s", u, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxContentSize+1))
	if err != nil {
		return "", fmt.Errorf("resource: reading %s: %w", u, err)
	}
	if len(body) > MaxContentSize {
		return "", fmt.Errorf("resource: %s exceeds %d bytes", u, MaxContentSize)
	}
	return string(body), nil
}

func (h *HTTPLoader) url(cfg Config) (string, error) {
	s, ok := cfg.Data.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("resource: %s data must be a string, got %T", cfg.Type, cfg.Data)
	}
	switch cfg.Type {
	case TypeRemote:
		return s, nil
	case TypeCustom:
		if h.URLTemplate == "" {
			return "", fmt.Errorf("%w: no URL template for %q", ErrNoLoader, s)
		}
		ns, name, ok := SplitIdentifier(s)
		if !ok {
			return "", fmt.Errorf("resource: invalid identifier %q", s)
		}
		r := strings.NewReplacer("{namespace}", url.PathEscape(ns), "{name}", url.PathEscape(name))
		return r.Replace(h.URLTemplate), nil
	default:
		return "", fmt.Errorf("resource: type %s can't be fetched", cfg.Type)
	}
}
