package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/benoitkugler/infosvg/svgicon"
)

// ErrInvalidContent is returned for content which is not SVG markup.
var ErrInvalidContent = errors.New("resource: content is not svg markup")

// Validate checks that content is plausible SVG markup: it must start
// with an <svg> element (after an optional byte order mark, XML prolog,
// doctype and comments) and parse as SVG.
func Validate(content string) error {
	return ValidateContext(context.Background(), content)
}

// ValidateContext is like Validate, logging unsupported elements
// through the context logger.
func ValidateContext(ctx context.Context, content string) error {
	if !strings.HasPrefix(trimProlog(content), "<svg") {
		return ErrInvalidContent
	}
	if _, err := svgicon.ReadIconContext(ctx, strings.NewReader(content), svgicon.WarnErrorMode); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidContent, err)
	}
	return nil
}

// trimProlog removes what may precede the root element
func trimProlog(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	for {
		s = strings.TrimSpace(s)
		var end string
		switch {
		case strings.HasPrefix(s, "<?"):
			end = "?>"
		case strings.HasPrefix(s, "<!--"):
			end = "-->"
		case strings.HasPrefix(s, "<!"):
			end = ">"
		default:
			return s
		}
		i := strings.Index(s, end)
		if i < 0 {
			return ""
		}
		s = s[i+len(end):]
	}
}
