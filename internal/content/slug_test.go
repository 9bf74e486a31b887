package content

import (
	"errors"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple", title: "Hello World", want: "hello-world"},
		{name: "accents", title: "Café Crème Brûlée", want: "cafe-creme-brulee"},
		{name: "punctuation runs", title: "  Go -- is   fun!!! ", want: "go-is-fun"},
		{name: "digits", title: "Top 10 Tips", want: "top-10-tips"},
		{name: "cjk only", title: "你好世界", want: ""},
		{name: "mixed", title: "Go 语言 101", want: "go-101"},
		{name: "folded letters", title: "Straße Ærø", want: "strasse-aero"},
		{name: "polish", title: "Łódź Œuvre", want: "lodz-oeuvre"},
		{name: "untransliterated letters dropped", title: "a世b", want: "ab"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.title); got != tc.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestGenerateUniqueSlugAppendsCounter(t *testing.T) {
	if got := GenerateUniqueSlug("Hello", nil); got != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
	if got := GenerateUniqueSlug("Hello", []string{"hello"}); got != "hello-2" {
		t.Fatalf("expected hello-2, got %q", got)
	}
	if got := GenerateUniqueSlug("Hello", []string{"hello", "hello-2"}); got != "hello-3" {
		t.Fatalf("expected hello-3, got %q", got)
	}
}

func TestGenerateUniqueSlugNeverReturnsExisting(t *testing.T) {
	existing := []string{"news", "news-2", "news-3", "news-5", "untitled"}
	titles := []string{"News", "news", "NEWS!", "日本語", "", "News 2"}

	for _, title := range titles {
		slug := GenerateUniqueSlug(title, existing)
		for _, taken := range existing {
			if slug == taken {
				t.Fatalf("title %q produced existing slug %q", title, slug)
			}
		}
		if slug == "" {
			t.Fatalf("title %q produced empty slug", title)
		}
	}
}

func TestUniqueSlugFallsBackForEmptyBase(t *testing.T) {
	slug, err := UniqueSlug("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slug != FallbackSlug {
		t.Fatalf("expected %q, got %q", FallbackSlug, slug)
	}
}

func TestUniqueSlugPropagatesCheckerError(t *testing.T) {
	boom := errors.New("boom")
	_, err := UniqueSlug("hello", SlugCheckerFunc(func(string) (bool, error) {
		return false, boom
	}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected checker error, got %v", err)
	}
}
