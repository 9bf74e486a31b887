package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/sitepress/internal/content"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFeaturedImageService_UploadRecordsDimensions(t *testing.T) {
	gdb := setupServiceTestDB(t, "image-upload")
	backend := newMemoryBackend()
	svc := NewFeaturedImageService(gdb, backend)
	clock, _ := fixedClock(fixedNow)
	svc.clock = clock

	asset, err := svc.Upload(context.Background(), "Cover.PNG", "", bytes.NewReader(encodePNG(t, 40, 25)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if asset.Width != 40 || asset.Height != 25 {
		t.Fatalf("expected 40x25, got %dx%d", asset.Width, asset.Height)
	}
	if !strings.HasPrefix(asset.Key, "20240501-") || !strings.HasSuffix(asset.Key, ".png") {
		t.Fatalf("unexpected key %q", asset.Key)
	}
	if asset.ContentType != "image/png" || backend.types[asset.Key] != "image/png" {
		t.Fatalf("expected detected content type, got %q", asset.ContentType)
	}
	if asset.URL != backend.URL(asset.Key) {
		t.Fatalf("expected backend url, got %q", asset.URL)
	}

	if _, err := svc.Upload(context.Background(), "notes.txt", "text/plain", strings.NewReader("not an image")); !errors.Is(err, ErrImageUnsupported) {
		t.Fatalf("expected ErrImageUnsupported, got %v", err)
	}
	if len(backend.objects) != 1 {
		t.Fatalf("rejected upload must not be stored, got %d objects", len(backend.objects))
	}
}

func TestFeaturedImageService_AttachDerivesFieldsFromStorage(t *testing.T) {
	gdb := setupServiceTestDB(t, "image-attach")
	backend := newMemoryBackend()
	svc := NewFeaturedImageService(gdb, backend)
	posts := NewPostService(gdb, content.NewOwnershipPolicy(nil))
	author := createTestUser(t, gdb, "author", false)

	post, err := posts.Create(author, PostInput{Title: "With image", Content: "<p>x</p>"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	img, err := svc.Attach(post.ID, FeaturedImageInput{AssetKey: "20240501-abc.png", IsFeaturedImage: boolPtr(true), Width: 40, Height: 25})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if img.Src != "https://cdn.example.com/media/20240501-abc.png" || img.Filename != "20240501-abc.png" {
		t.Fatalf("expected src/filename from storage, got %q %q", img.Src, img.Filename)
	}
	if !img.IsVisible {
		t.Fatal("expected image visible by default")
	}

	updated, err := svc.Update(img.ID, FeaturedImageInput{Description: "Cover", IsVisible: boolPtr(false)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Src != img.Src || updated.Description != "Cover" || updated.IsVisible {
		t.Fatalf("unexpected update result %#v", updated)
	}

	if _, err := svc.Attach(9999, FeaturedImageInput{AssetKey: "x.png"}); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}

	list, err := svc.ListForPost(post.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 image, got %d", len(list))
	}

	if err := svc.Delete(context.Background(), img.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != "20240501-abc.png" {
		t.Fatalf("expected stored object deleted, got %v", backend.deleted)
	}
}
