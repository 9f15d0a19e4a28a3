package engine

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{`<a href="x">link</a><br/>after`, "link after"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripTags(tt.in); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace("  a\t\tb\n\nc  "); got != "a b c" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeBody(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"a  b", 0, "a b"},
		{"short", 100, "short"},
	}
	for _, tt := range tests {
		if got := NormalizeBody(tt.in, tt.limit); got != tt.want {
			t.Errorf("NormalizeBody(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestNormalizeBodyTruncates(t *testing.T) {
	got := NormalizeBody("привет мир и все остальные", 6)
	if n := utf8.RuneCountInString(got); n > 6 || n == 0 {
		t.Errorf("rune count = %d", n)
	}
	if !utf8.ValidString(got) || !strings.HasPrefix("привет", got) {
		t.Errorf("got %q", got)
	}
}
