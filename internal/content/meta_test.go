package content

import (
	"strings"
	"testing"
)

func TestDeriveDescription(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "first paragraph", in: "<p>Hello world</p><p>more</p>", want: "Hello world"},
		{name: "uppercase tags", in: "<P>Upper case</P><P>second</P>", want: "Upper case"},
		{name: "line break", in: "First line<br>second line", want: "First line"},
		{name: "paragraph wins over sentence", in: "<p>One. Two</p><p>Three</p>", want: "One. Two"},
		{name: "sentence", in: "Plain sentence. Another one", want: "Plain sentence"},
		{name: "newline", in: "first\nsecond", want: "first"},
		{name: "entities", in: "<p>Fish &amp; Chips</p>", want: "Fish & Chips"},
		{name: "escaped markup", in: "&lt;b&gt;x&lt;/b&gt;", want: "x"},
		{name: "double escaped markup", in: "<p>&amp;lt;b&amp;gt;x</p>", want: "x"},
		{name: "less than sign", in: "<p>1 &lt; 2</p>", want: "1 < 2"},
		{name: "invalid utf8", in: "<p>caf\xe9</p>", want: "caf"},
		{name: "nested markup", in: "<div><p><strong>Bold</strong> start</p></div>", want: "Bold start"},
		{name: "empty", in: "", want: ""},
		{name: "whitespace", in: "   ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveDescription(tc.in); got != tc.want {
				t.Fatalf("DeriveDescription(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDeriveDescriptionTruncatesLongText(t *testing.T) {
	words := make([]string, 200)
	for i := range words {
		words[i] = "word"
	}
	got := DeriveDescription(strings.Join(words, " "))

	if n := len(strings.Fields(got)); n != DescriptionWordLimit {
		t.Fatalf("expected %d words, got %d", DescriptionWordLimit, n)
	}
	if strings.Contains(got, "...") || strings.Contains(got, "…") {
		t.Fatalf("expected no ellipsis, got %q", got)
	}
}

func TestCloseTags(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "<p>Hello", want: "<p>Hello</p>"},
		{in: "<div><p><em>Hi", want: "<div><p><em>Hi</em></p></div>"},
		{in: "<p>Text<br>more", want: "<p>Text<br>more</p>"},
		{in: "<p>Cut <stro", want: "<p>Cut </p>"},
		{in: "no markup", want: "no markup"},
	}
	for _, tc := range cases {
		if got := CloseTags(tc.in); got != tc.want {
			t.Fatalf("CloseTags(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncateWordsHTMLKeepsMarkup(t *testing.T) {
	got := TruncateWordsHTML("<p>one <b>two three</b> four</p>", 2)
	if got != "<p>one <b>two</b></p>" {
		t.Fatalf("unexpected truncation: %q", got)
	}

	short := "<p>one two</p>"
	if got := TruncateWordsHTML(short, 5); got != short {
		t.Fatalf("expected unchanged input, got %q", got)
	}
}
