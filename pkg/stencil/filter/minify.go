package filter

import (
	"regexp"
	"strings"
)

var (
	// protectedTag matches the start of a <pre> or <textarea> tag, opening or closing.
	protectedTag = regexp.MustCompile(`(?i)<(/?)(?:pre|textarea)\b`)

	whitespaceRun = regexp.MustCompile(`[\t\n\v\f\r ]+`)
)

// MinifyString collapses every whitespace run other than a lone space to a
// single space. Text whose next protected tag is a closing </pre> or
// </textarea> is inside a protected body and is copied unchanged.
func MinifyString(s string) string {
	if s == "" {
		return s
	}

	tags := protectedTag.FindAllStringSubmatchIndex(s, -1)
	if len(tags) == 0 {
		return collapse(s)
	}

	var b strings.Builder
	b.Grow(len(s))

	start := 0
	for _, tag := range tags {
		segment := s[start:tag[0]]
		if closing := tag[3] > tag[2]; closing {
			b.WriteString(segment)
		} else {
			b.WriteString(collapse(segment))
		}
		start = tag[0]
	}
	b.WriteString(collapse(s[start:]))
	return b.String()
}

func collapse(s string) string {
	return whitespaceRun.ReplaceAllLiteralString(s, " ")
}

// NewMinify returns the buffer filter that minifies rendered output.
func NewMinify() *BufferFilter {
	return NewBufferFilter("minify", func(_ *Context, buffer string) string {
		return MinifyString(buffer)
	})
}
