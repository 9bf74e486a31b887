package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:seed-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestSeedCreatesDemoContent(t *testing.T) {
	gdb := setupSeedTestDB(t)

	summary, err := seed(gdb)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if summary.Posts != len(demoPosts) || summary.Pages != 2 || summary.Categories != 6 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// 草稿与已过期文章不出现在前台列表
	posts := service.NewPostService(gdb, content.NewOwnershipPolicy(nil))
	result, err := posts.List(service.PostFilter{PublicOnly: true, PerPage: 20})
	if err != nil {
		t.Fatalf("list public posts: %v", err)
	}
	if result.Total != int64(len(demoPosts)-2) {
		t.Fatalf("expected %d public posts, got %d", len(demoPosts)-2, result.Total)
	}
	if result.Posts[0].Title != "Weekend hiking notes" {
		t.Fatalf("expected newest post first, got %q", result.Posts[0].Title)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	gdb := setupSeedTestDB(t)

	if _, err := seed(gdb); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	if _, err := seed(gdb); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	var users, posts, categories int64
	gdb.Model(&db.User{}).Count(&users)
	gdb.Model(&db.BlogPost{}).Count(&posts)
	gdb.Model(&db.BlogCategory{}).Count(&categories)
	if users != 2 || posts != int64(len(demoPosts)) || categories != 6 {
		t.Fatalf("expected no duplicates, got users=%d posts=%d categories=%d", users, posts, categories)
	}
}
