package content

import (
	"errors"
	"testing"
	"time"
)

func TestPrepareFillsDefaults(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	d := Displayable{
		Slugged:  Slugged{Title: "Hello World"},
		MetaData: MetaData{GenDescription: true},
	}

	if err := Prepare(&d, PrepareOptions{Now: now, Body: "<p>Intro line</p><p>rest</p>", RequireBody: true}); err != nil {
		t.Fatalf("prepare: %v", err)
	}

	if d.Status != StatusPublished {
		t.Fatalf("expected default status published, got %q", d.Status)
	}
	if d.PublishDate == nil || !d.PublishDate.Equal(now) {
		t.Fatalf("expected publish date %v, got %v", now, d.PublishDate)
	}
	if d.Created == nil || !d.Created.Equal(now) {
		t.Fatalf("expected created %v, got %v", now, d.Created)
	}
	if d.Updated == nil || !d.Updated.Equal(now) {
		t.Fatalf("expected updated %v, got %v", now, d.Updated)
	}
	if d.Slug != "hello-world" {
		t.Fatalf("expected slug hello-world, got %q", d.Slug)
	}
	if d.Description != "Intro line" {
		t.Fatalf("expected derived description, got %q", d.Description)
	}
}

func TestPrepareIsIdempotent(t *testing.T) {
	first := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	body := "<p>Stable summary</p><p>body</p>"

	taken := map[string]bool{"post": true}
	checker := SlugCheckerFunc(func(slug string) (bool, error) { return taken[slug], nil })

	d := Displayable{Slugged: Slugged{Title: "Post"}, MetaData: MetaData{GenDescription: true}}
	if err := Prepare(&d, PrepareOptions{Now: first, Body: body, Slugs: checker}); err != nil {
		t.Fatalf("first prepare: %v", err)
	}
	if d.Slug != "post-2" {
		t.Fatalf("expected post-2, got %q", d.Slug)
	}
	taken[d.Slug] = true

	slug, description := d.Slug, d.Description
	if err := Prepare(&d, PrepareOptions{Now: second, Body: body, Slugs: checker}); err != nil {
		t.Fatalf("second prepare: %v", err)
	}

	if d.Slug != slug {
		t.Fatalf("slug changed from %q to %q", slug, d.Slug)
	}
	if d.Description != description {
		t.Fatalf("description changed from %q to %q", description, d.Description)
	}
	if !d.Created.Equal(first) {
		t.Fatalf("created should stay %v, got %v", first, d.Created)
	}
	if !d.Updated.Equal(second) {
		t.Fatalf("updated should advance to %v, got %v", second, d.Updated)
	}
	if !d.PublishDate.Equal(first) {
		t.Fatalf("publish date should not be recomputed, got %v", d.PublishDate)
	}
}

func TestPrepareKeepsManualDescription(t *testing.T) {
	d := Displayable{
		Slugged:  Slugged{Title: "Manual"},
		MetaData: MetaData{Description: "hand written", GenDescription: false},
	}
	if err := Prepare(&d, PrepareOptions{Body: "<p>generated</p>"}); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if d.Description != "hand written" {
		t.Fatalf("manual description overwritten: %q", d.Description)
	}
}

func TestPrepareOverridesDescriptionWhenFlagged(t *testing.T) {
	d := Displayable{
		Slugged:  Slugged{Title: "Flagged"},
		MetaData: MetaData{Description: "stale", GenDescription: true},
	}
	if err := Prepare(&d, PrepareOptions{Body: "<p>fresh</p>"}); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if d.Description != "fresh" {
		t.Fatalf("expected fresh description, got %q", d.Description)
	}
}

func TestPrepareRequiresContentWhenPublished(t *testing.T) {
	cases := []struct {
		name    string
		status  string
		wantErr bool
	}{
		{name: "published", status: StatusPublished, wantErr: true},
		{name: "default status", status: "", wantErr: true},
		{name: "draft", status: StatusDraft, wantErr: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Displayable{Slugged: Slugged{Title: "Empty"}, Status: tc.status}
			err := Prepare(&d, PrepareOptions{Body: "  ", RequireBody: true})

			if !tc.wantErr {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != "content" {
				t.Fatalf("expected field content, got %q", verr.Field)
			}
			if d.Slug != "" || d.Created != nil || d.PublishDate != nil || d.Status != tc.status {
				t.Fatalf("record mutated on validation failure: %+v", d)
			}
		})
	}
}

func TestPrepareRejectsInvalidInput(t *testing.T) {
	var verr *ValidationError

	d := Displayable{Slugged: Slugged{Title: "  "}}
	if err := Prepare(&d, PrepareOptions{}); !errors.As(err, &verr) || verr.Field != "title" {
		t.Fatalf("expected title validation error, got %v", err)
	}

	d = Displayable{Slugged: Slugged{Title: "x"}, Status: "archived"}
	if err := Prepare(&d, PrepareOptions{}); !errors.As(err, &verr) || verr.Field != "status" {
		t.Fatalf("expected status validation error, got %v", err)
	}
}

func TestIsPublic(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		d    Displayable
		want bool
	}{
		{name: "published", d: Displayable{Status: StatusPublished, PublishDate: &past}, want: true},
		{name: "draft", d: Displayable{Status: StatusDraft, PublishDate: &past}, want: false},
		{name: "scheduled", d: Displayable{Status: StatusPublished, PublishDate: &future}, want: false},
		{name: "expired", d: Displayable{Status: StatusPublished, PublishDate: &past, ExpiryDate: &now}, want: false},
		{name: "not yet expired", d: Displayable{Status: StatusPublished, ExpiryDate: &future}, want: true},
	}
	for _, tc := range cases {
		if got := tc.d.IsPublic(now); got != tc.want {
			t.Fatalf("%s: IsPublic = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMetaTitleOrTitle(t *testing.T) {
	if got := (MetaData{}).MetaTitleOrTitle("Title"); got != "Title" {
		t.Fatalf("expected fallback title, got %q", got)
	}
	if got := (MetaData{MetaTitle: "Meta"}).MetaTitleOrTitle("Title"); got != "Meta" {
		t.Fatalf("expected meta title, got %q", got)
	}
}
