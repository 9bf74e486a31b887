package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/mail"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func createTestUser(t *testing.T, gdb *gorm.DB, username string, superuser bool) content.Actor {
	t.Helper()
	user := db.User{Username: username, Password: "x", IsSuperuser: superuser}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return content.Actor{ID: user.ID, IsSuperuser: superuser}
}

// fixedClock 返回可手动推进的时钟。
func fixedClock(start time.Time) (Clock, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type memoryBackend struct {
	objects map[string][]byte
	types   map[string]string
	deleted []string
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *memoryBackend) Upload(_ context.Context, key string, reader io.Reader, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return err
	}
	b.objects[key] = buf.Bytes()
	b.types[key] = contentType
	return nil
}

func (b *memoryBackend) Delete(_ context.Context, key string) error {
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *memoryBackend) URL(key string) string {
	return "https://cdn.example.com/media/" + key
}

func (b *memoryBackend) Filename(key string) string {
	return key
}

func boolPtr(v bool) *bool {
	return &v
}

func timePtr(v time.Time) *time.Time {
	return &v
}
