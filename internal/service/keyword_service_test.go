package service

import (
	"errors"
	"testing"

	"github.com/sitepress/internal/content"
)

func TestKeywordService_CreateIsIdempotentOnTitle(t *testing.T) {
	gdb := setupServiceTestDB(t, "keyword-create")
	svc := NewKeywordService(gdb)

	first, err := svc.Create("Go Lang")
	if err != nil {
		t.Fatalf("create keyword: %v", err)
	}
	if first.Slug != "go-lang" {
		t.Fatalf("expected slug go-lang, got %q", first.Slug)
	}

	again, err := svc.Create("  go lang ")
	if err != nil {
		t.Fatalf("create duplicate keyword: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected existing keyword %d, got %d", first.ID, again.ID)
	}

	if _, err := svc.Create("   "); err == nil {
		t.Fatal("expected validation error for blank title")
	} else {
		var validation *content.ValidationError
		if !errors.As(err, &validation) || validation.Field != "title" {
			t.Fatalf("expected title validation error, got %v", err)
		}
	}

	all, err := svc.EnsureTitles([]string{"Go-Lang", "Rust", "", "rust"})
	if err != nil {
		t.Fatalf("ensure titles: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 keywords, got %d", len(all))
	}
	if all[0].Slug != "go-lang-2" || all[1].Slug != "rust" {
		t.Fatalf("unexpected slugs %q %q", all[0].Slug, all[1].Slug)
	}
}

func TestKeywordService_UpdateAndDelete(t *testing.T) {
	gdb := setupServiceTestDB(t, "keyword-update")
	svc := NewKeywordService(gdb)

	keyword, err := svc.Create("Old")
	if err != nil {
		t.Fatalf("create keyword: %v", err)
	}

	updated, err := svc.Update(keyword.ID, "New Name", "")
	if err != nil {
		t.Fatalf("update keyword: %v", err)
	}
	if updated.Slug != "new-name" {
		t.Fatalf("expected regenerated slug, got %q", updated.Slug)
	}

	matches, err := svc.List("new")
	if err != nil {
		t.Fatalf("list keywords: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	if err := svc.Delete(keyword.ID); err != nil {
		t.Fatalf("delete keyword: %v", err)
	}
	if _, err := svc.Get(keyword.ID); !errors.Is(err, ErrKeywordNotFound) {
		t.Fatalf("expected ErrKeywordNotFound, got %v", err)
	}
}
