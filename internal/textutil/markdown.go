package textutil

import "strings"

// markdownV2Special is the reserved punctuation set for Telegram MarkdownV2.
// Backslash is handled separately and must be escaped first.
var markdownV2Special = []string{
	"_", "*", "[", "]", "(", ")", "~", "`", ">", "#",
	"+", "-", "=", "|", "{", "}", ".", "!",
}

// EscapeMarkdownV2 escapes text for insertion into a MarkdownV2 message.
// Callers escape raw text exactly once per render.
func EscapeMarkdownV2(text string) string {
	if text == "" {
		return ""
	}
	escaped := strings.ReplaceAll(text, `\`, `\\`)
	for _, ch := range markdownV2Special {
		escaped = strings.ReplaceAll(escaped, ch, `\`+ch)
	}
	return escaped
}

// EscapeURLParens percent-escapes parentheses inside a URL so it can sit
// inside a [text](url) markup link without closing it early.
func EscapeURLParens(u string) string {
	u = strings.ReplaceAll(u, "(", "%28")
	return strings.ReplaceAll(u, ")", "%29")
}
