package resource

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	for _, test := range []struct {
		content string
		valid   bool
	}{
		{star, true},
		{"\ufeff" + star, true},
		{`<?xml version="1.0" encoding="UTF-8"?>` + "\n<!-- exported -->\n" + `<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "x.dtd">` + star, true},
		{`<svg xmlns="http://www.w3.org/2000/svg"><text>é</text></svg>`, true},
		{"", false},
		{"not found", false},
		{"<html><body><svg/></body></html>", false},
		{`{"error": "unknown icon"}`, false},
		{`<svg xmlns="http://www.w3.org/2000/svg"><path d="M0 0`, false},
		{"<!-- unterminated", false},
	} {
		err := Validate(test.content)
		if test.valid && err != nil {
			t.Errorf("%q: unexpected error %v", test.content, err)
		}
		if !test.valid && !errors.Is(err, ErrInvalidContent) {
			t.Errorf("%q: expected ErrInvalidContent, got %v", test.content, err)
		}
	}
}
