package textutil

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagRe         = regexp.MustCompile(`<[^<]+?>`)
	spaceRe       = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// CleanHTML strips markup from a rich-text description: script and style
// blocks go away with their content, remaining tags become a single space,
// entities are decoded, and whitespace runs collapse to one space.
func CleanHTML(raw string) string {
	if raw == "" {
		return ""
	}
	s := scriptStyleRe.ReplaceAllString(raw, "")
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Truncate caps s at max characters, appending an ellipsis marker when
// anything was cut. The cut lands on a rune boundary so the result is
// always valid UTF-8.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
