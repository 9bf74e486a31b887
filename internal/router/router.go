package router

import (
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/handler"
	"github.com/sitepress/internal/logger"
	"go.uber.org/zap"
)

const sessionName = "sitepress_session"

// Options 描述路由所需的运行参数。
type Options struct {
	SessionSecret string
	// TemplateGlob 匹配不到文件时跳过模板加载
	TemplateGlob string
	StaticDir    string
	// UploadDir 非空时以 UploadURLPrefix 暴露本地上传目录
	UploadDir       string
	UploadURLPrefix string
	Logger          *zap.Logger
}

// templateFuncs 为模板提供分页与日期相关的辅助函数。
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
		"formatDate": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
	}
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = logger.Z()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	r.SetFuncMap(templateFuncs())
	if glob := strings.TrimSpace(opts.TemplateGlob); glob != "" {
		if matches, err := filepath.Glob(glob); err == nil && len(matches) > 0 {
			r.LoadHTMLGlob(glob)
		} else {
			log.Warn("no templates matched, html routes disabled", zap.String("glob", glob))
		}
	}

	// 静态文件服务
	if opts.StaticDir != "" {
		r.Static("/static/assets", opts.StaticDir)
	}
	if opts.UploadDir != "" {
		prefix := opts.UploadURLPrefix
		if prefix == "" {
			prefix = "/static/uploads"
		}
		r.Static(prefix, opts.UploadDir)
		if prefix != "/uploads" {
			r.Static("/uploads", opts.UploadDir)
		}
	}

	r.GET("/healthz", api.Healthz)

	// 前台路由
	r.GET("/", api.ShowHome)
	r.GET("/search", api.ShowSearch)
	r.GET("/category/:slug", api.ShowCategory)
	r.GET("/sub-category/:slug", api.ShowSubCategory)
	r.GET("/post/:slug", api.ShowPostDetail)
	r.GET("/page/:slug", api.ShowPage)
	r.GET("/contact", api.ShowContact)
	r.POST("/submit-contact", api.SubmitContact)
	r.POST("/submit-news", api.SubmitNewsletter)

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("", func(c *gin.Context) { c.Redirect(http.StatusFound, "/admin/dashboard") })
			auth.GET("/dashboard", api.ShowDashboard)

			// API路由
			apiGroup := auth.Group("/api")
			{
				apiGroup.GET("/session", api.CurrentSession)

				apiGroup.GET("/posts", api.ListPosts)
				apiGroup.GET("/posts/:id", api.GetPost)
				apiGroup.POST("/posts", api.CreatePost)
				apiGroup.PUT("/posts/:id", api.UpdatePost)
				apiGroup.DELETE("/posts/:id", api.DeletePost)
				apiGroup.GET("/related-candidates", api.ListRelatedCandidates)
				apiGroup.GET("/posts/:id/images", api.ListPostImages)
				apiGroup.POST("/posts/:id/images", api.AttachPostImage)

				apiGroup.POST("/upload/image", api.UploadImage)
				apiGroup.PUT("/images/:id", api.UpdateImage)
				apiGroup.DELETE("/images/:id", api.DeleteImage)

				apiGroup.GET("/categories", api.ListCategories)
				apiGroup.GET("/categories/:id", api.GetCategory)
				apiGroup.POST("/categories", api.CreateCategory)
				apiGroup.PUT("/categories/:id", api.UpdateCategory)
				apiGroup.DELETE("/categories/:id", api.DeleteCategory)

				apiGroup.GET("/keywords", api.ListKeywords)
				apiGroup.POST("/keywords", api.CreateKeyword)
				apiGroup.PUT("/keywords/:id", api.UpdateKeyword)
				apiGroup.DELETE("/keywords/:id", api.DeleteKeyword)

				apiGroup.GET("/page-types", api.ListPageTypes)
				apiGroup.GET("/pages", api.ListPages)
				apiGroup.GET("/pages/:id", api.GetPage)
				apiGroup.POST("/pages", api.CreatePage)
				apiGroup.PUT("/pages/:id", api.UpdatePage)
				apiGroup.DELETE("/pages/:id", api.DeletePage)

				apiGroup.GET("/messages", api.ListMessages)
				apiGroup.GET("/messages/:id", api.GetMessage)

				apiGroup.GET("/settings", api.GetSystemSettings)
				apiGroup.PUT("/settings", api.UpdateSystemSettings)

				apiGroup.GET("/schema", api.ListSchemas)
				apiGroup.GET("/schema/:model", api.GetSchema)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		api.RenderNotFound(c)
	})

	return r
}
