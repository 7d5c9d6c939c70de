// Package resource resolves the external content referenced by icon
// and illustration nodes: it normalizes references into configs,
// fingerprints them, fetches them through scene loaders with
// deduplication and caching, and patches committed documents once
// the content is available.
//
// Failures never cross the package boundary: a reference that cannot
// be resolved is logged and leaves its placeholder empty.
package resource

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// Type is the kind of a resource.
type Type string

const (
	TypeImage  Type = "image"  // raster image, Data is the href
	TypeSVG    Type = "svg"    // inline SVG markup
	TypeRemote Type = "remote" // URL of SVG markup
	TypeCustom Type = "custom" // opaque, interpreted by the scene loader
)

func (t Type) valid() bool {
	switch t {
	case TypeImage, TypeSVG, TypeRemote, TypeCustom:
		return true
	}
	return false
}

// Config is the normalized form of a resource reference.
type Config struct {
	Type Type `json:"type"`
	Data any  `json:"data"`
}

// String returns Data as a string, or an empty string.
func (c Config) String() string {
	s, _ := c.Data.(string)
	return s
}

// ParseReference normalizes a reference: a Config (or *Config),
// a map with "type" and "data" keys, a data URI or a scene-qualified
// identifier such as "icon:star". It returns false for anything else.
func ParseReference(input any) (*Config, bool) {
	switch in := input.(type) {
	case Config:
		if !in.Type.valid() {
			return nil, false
		}
		return &in, true
	case *Config:
		if in == nil || !in.Type.valid() {
			return nil, false
		}
		out := *in
		return &out, true
	case map[string]any:
		return parseMap(in)
	case string:
		s := strings.TrimSpace(in)
		if strings.HasPrefix(s, "data:") {
			return parseDataURI(s)
		}
		if isIdentifier(s) {
			return &Config{Type: TypeCustom, Data: s}, true
		}
	}
	return nil, false
}

func parseMap(m map[string]any) (*Config, bool) {
	var t Type
	switch v := m["type"].(type) {
	case string:
		t = Type(v)
	case Type:
		t = v
	}
	data, ok := m["data"]
	if !t.valid() || !ok || data == nil {
		return nil, false
	}
	return &Config{Type: t, Data: data}, true
}

// isIdentifier matches <namespace>:<name>, where the namespace is made
// of letters, digits, '-' and '_', and the name is not empty and does
// not start with "//" (which would be a URL).
func isIdentifier(s string) bool {
	ns, name, ok := strings.Cut(s, ":")
	if !ok || ns == "" || name == "" || strings.HasPrefix(name, "//") {
		return false
	}
	for _, r := range ns {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// SplitIdentifier returns the namespace and name of a
// scene-qualified identifier.
func SplitIdentifier(s string) (namespace, name string, ok bool) {
	if !isIdentifier(s) {
		return "", "", false
	}
	namespace, name, _ = strings.Cut(s, ":")
	return namespace, name, true
}

// parseDataURI handles data:<mime>[;<param>...],<payload>
func parseDataURI(s string) (*Config, bool) {
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return nil, false
	}
	params := strings.Split(meta, ";")
	mime := strings.ToLower(strings.TrimSpace(params[0]))
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	switch {
	case mime == "image/svg+xml":
		if isBase64 {
			dec, err := decodeBase64(payload)
			if err != nil {
				return nil, false
			}
			return &Config{Type: TypeSVG, Data: dec}, true
		}
		if dec, err := url.PathUnescape(payload); err == nil {
			payload = dec
		}
		return &Config{Type: TypeSVG, Data: payload}, true
	case strings.HasPrefix(mime, "image/"):
		return &Config{Type: TypeImage, Data: s}, true
	case mime == "text/url":
		return &Config{Type: TypeRemote, Data: payload}, true
	default:
		return &Config{Type: TypeCustom, Data: s}, true
	}
}

func decodeBase64(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(payload); err == nil {
			return string(b), nil
		}
	}
	_, err := base64.StdEncoding.DecodeString(payload)
	return "", err
}
