package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/mail"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubHTMLRender 记录最近一次渲染的模板与数据。
type stubHTMLRender struct {
	mu   sync.Mutex
	name string
	data interface{}
}

type stubHTMLInstance struct {
	name string
	data interface{}
}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	r.mu.Lock()
	r.name, r.data = name, data
	r.mu.Unlock()
	return &stubHTMLInstance{name: name, data: data}
}

func (r *stubHTMLRender) last() (string, gin.H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, _ := r.data.(gin.H)
	return r.name, data
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
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
}

func (b *memoryBackend) Upload(_ context.Context, key string, reader io.Reader, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	b.objects[key] = data
	return nil
}

func (b *memoryBackend) Delete(_ context.Context, key string) error {
	delete(b.objects, key)
	return nil
}

func (b *memoryBackend) URL(key string) string { return "/uploads/" + key }

func (b *memoryBackend) Filename(key string) string { return key }

func setupHandlerTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())
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
	return gdb
}

type testServer struct {
	api    *API
	db     *gorm.DB
	router *gin.Engine
	html   *stubHTMLRender
	sender *recordingSender
}

func newTestServer(t *testing.T, name string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := setupHandlerTestDB(t, name)
	sender := &recordingSender{}
	api := NewAPI(Dependencies{
		DB:      gdb,
		Storage: &memoryBackend{objects: map[string][]byte{}},
		Mail:    sender,
		Policy:  content.NewOwnershipPolicy(nil),
	})

	html := &stubHTMLRender{}
	router := gin.New()
	router.HTMLRender = html
	router.Use(sessions.Sessions("sitepress_session", cookie.NewStore([]byte("test-secret"))))

	router.GET("/", api.ShowHome)
	router.GET("/search", api.ShowSearch)
	router.GET("/category/:slug", api.ShowCategory)
	router.GET("/sub-category/:slug", api.ShowSubCategory)
	router.GET("/post/:slug", api.ShowPostDetail)
	router.GET("/page/:slug", api.ShowPage)
	router.POST("/submit-contact", api.SubmitContact)
	router.POST("/submit-news", api.SubmitNewsletter)
	router.GET("/healthz", api.Healthz)

	router.POST("/admin/login", api.Login)
	router.GET("/admin/logout", api.Logout)
	router.GET("/admin/dashboard", AuthRequired(), api.ShowDashboard)

	adminAPI := router.Group("/admin/api", AuthRequired())
	{
		adminAPI.GET("/session", api.CurrentSession)
		adminAPI.GET("/posts", api.ListPosts)
		adminAPI.POST("/posts", api.CreatePost)
		adminAPI.GET("/posts/:id", api.GetPost)
		adminAPI.PUT("/posts/:id", api.UpdatePost)
		adminAPI.DELETE("/posts/:id", api.DeletePost)
		adminAPI.GET("/categories", api.ListCategories)
		adminAPI.POST("/categories", api.CreateCategory)
		adminAPI.DELETE("/categories/:id", api.DeleteCategory)
		adminAPI.GET("/keywords", api.ListKeywords)
		adminAPI.POST("/keywords", api.CreateKeyword)
		adminAPI.GET("/page-types", api.ListPageTypes)
		adminAPI.GET("/pages", api.ListPages)
		adminAPI.POST("/pages", api.CreatePage)
		adminAPI.GET("/pages/:id", api.GetPage)
		adminAPI.GET("/messages", api.ListMessages)
		adminAPI.GET("/settings", api.GetSystemSettings)
		adminAPI.PUT("/settings", api.UpdateSystemSettings)
		adminAPI.GET("/schema", api.ListSchemas)
		adminAPI.GET("/schema/:model", api.GetSchema)
	}

	return &testServer{api: api, db: gdb, router: router, html: html, sender: sender}
}

func (s *testServer) createUser(t *testing.T, username, password string, superuser bool) db.User {
	t.Helper()
	hashed, err := db.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := db.User{Username: username, Password: hashed, IsSuperuser: superuser}
	if err := s.db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// login 通过 JSON 登录并返回会话 cookie。
func (s *testServer) login(t *testing.T, username, password string) []*http.Cookie {
	t.Helper()
	recorder := s.do(t, http.MethodPost, "/admin/login", map[string]string{"username": username, "password": password}, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, recorder.Code, recorder.Body.String())
	}
	return recorder.Result().Cookies()
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		request.AddCookie(c)
	}
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, request)
	return recorder
}

func (s *testServer) postForm(t *testing.T, path, form string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(form))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		request.AddCookie(c)
	}
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return out
}
