package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/handler"
	"github.com/sitepress/internal/mail"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestAPI(t *testing.T) *handler.API {
	t.Helper()

	dsn := fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
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

	return handler.NewAPI(handler.Dependencies{
		DB:     gdb,
		Mail:   mail.Noop{},
		Policy: content.NewOwnershipPolicy(nil),
	})
}

func TestSetupRouterServesUploadsAlias(t *testing.T) {
	gin.SetMode(gin.TestMode)

	uploadDir := t.TempDir()
	fileName := "example.txt"
	fileContent := []byte("hello uploads")
	if err := os.WriteFile(filepath.Join(uploadDir, fileName), fileContent, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	r := SetupRouter(newTestAPI(t), Options{
		SessionSecret:   "test-secret",
		UploadDir:       uploadDir,
		UploadURLPrefix: "/static/uploads",
	})

	for _, path := range []string{"/uploads/" + fileName, "/static/uploads/" + fileName} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusOK, rr.Code)
		}
		if rr.Body.String() != string(fileContent) {
			t.Fatalf("%s: unexpected body, got %q", path, rr.Body.String())
		}
	}
}

func TestSetupRouterHealthzAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(newTestAPI(t), Options{SessionSecret: "test-secret", TemplateGlob: "does-not-exist/*.html"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if got := rr.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}
}

func TestSetupRouterProtectsAdminAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(newTestAPI(t), Options{SessionSecret: "test-secret"})

	for _, path := range []string{"/admin/api/posts", "/admin/api/pages", "/admin/api/schema", "/admin/api/settings"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusUnauthorized, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/login" {
		t.Fatalf("expected redirect to login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestTemplateFuncs(t *testing.T) {
	funcs := templateFuncs()

	seq := funcs["seq"].(func(int) []int)(3)
	if len(seq) != 3 || seq[0] != 1 || seq[2] != 3 {
		t.Fatalf("unexpected seq: %v", seq)
	}

	formatDate := funcs["formatDate"].(func(*time.Time) string)
	if got := formatDate(nil); got != "" {
		t.Fatalf("expected empty string for nil date, got %q", got)
	}
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if got := formatDate(&date); got != "May 1, 2024" {
		t.Fatalf("unexpected formatted date: %q", got)
	}
}
