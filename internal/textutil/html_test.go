package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"tags only", "<p><br/><div></div></p>", ""},
		{"mixed", "<p>Read  chapter&nbsp;3 &amp; take <b>notes</b>.</p>", "Read chapter 3 & take notes ."},
		{"script dropped with content", "<script>alert('x')</script>before<SCRIPT a=b>bad</SCRIPT>after", "beforeafter"},
		{"style dropped with content", "<style>.a{color:red}</style>text", "text"},
		{"tags become spaces", "one<br>two<hr/>three", "one two three"},
		{"whitespace collapsed", "  a \n\t b  ", "a b"},
	}
	for _, tt := range tests {
		if got := CleanHTML(tt.in); got != tt.want {
			t.Errorf("%s: CleanHTML(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("got %q, want untouched input", got)
	}
	if got := Truncate("abcdefgh", 5); got != "abcde..." {
		t.Errorf("got %q, want abcde...", got)
	}
	if got := Truncate("exact", 5); got != "exact" {
		t.Errorf("got %q, want exact", got)
	}
}

func TestTruncateRuneBoundary(t *testing.T) {
	in := strings.Repeat("你", 334)
	got := Truncate(in, 1000)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated string is not valid UTF-8: %q", got[len(got)-8:])
	}
	if got != in {
		t.Errorf("334 three-byte runes are under a 1000-character cap, want untouched input")
	}

	got = Truncate(strings.Repeat("你", 1001), 1000)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated string is not valid UTF-8")
	}
	if want := strings.Repeat("你", 1000) + "..."; got != want {
		t.Errorf("got %d runes, want cap at 1000 plus marker", utf8.RuneCountInString(got))
	}
}

func TestEscapeMarkdownV2AllReserved(t *testing.T) {
	in := `_*[]()~` + "`" + `>#+-=|{}.!`
	got := EscapeMarkdownV2(in)
	for i := 0; i < len(got); i++ {
		switch got[i] {
		case '\\':
			i++ // next byte is the escaped character
		default:
			t.Fatalf("unescaped %q at %d in %q", got[i], i, got)
		}
	}
}

func TestEscapeMarkdownV2BackslashFirst(t *testing.T) {
	if got := EscapeMarkdownV2(`a\b.`); got != `a\\b\.` {
		t.Errorf("got %q, want %q", got, `a\\b\.`)
	}
}

func TestEscapeURLParens(t *testing.T) {
	in := "https://example.com/a(1)/b(2)"
	want := "https://example.com/a%281%29/b%282%29"
	if got := EscapeURLParens(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
