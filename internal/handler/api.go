package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/admin"
	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/mail"
	"github.com/sitepress/internal/service"
	"github.com/sitepress/internal/storage"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	posts      *service.PostService
	categories *service.CategoryService
	keywords   *service.KeywordService
	pages      *service.PageService
	images     *service.FeaturedImageService
	messages   *service.MessageService
	newsletter *service.NewsletterService
	system     *service.SystemSettingService
	admin      *admin.Registry
}

// Dependencies 汇总构造 API 所需的外部资源。
type Dependencies struct {
	DB      *gorm.DB
	Storage storage.Backend
	Mail    mail.Sender
	Policy  content.OwnershipPolicy
}

type siteViewModel struct {
	Name    string
	Tagline string
}

const siteSettingsContextKey = "__site_settings"

// NewAPI constructs a handler set with shared services.
func NewAPI(deps Dependencies) *API {
	sender := deps.Mail
	if sender == nil {
		sender = mail.Noop{}
	}
	systemService := service.NewSystemSettingService(deps.DB)

	return &API{
		db:         deps.DB,
		posts:      service.NewPostService(deps.DB, deps.Policy),
		categories: service.NewCategoryService(deps.DB),
		keywords:   service.NewKeywordService(deps.DB),
		pages:      service.NewPageService(deps.DB),
		images:     service.NewFeaturedImageService(deps.DB, deps.Storage),
		messages:   service.NewMessageService(deps.DB, sender, systemService),
		newsletter: service.NewNewsletterService(deps.DB, sender, systemService),
		system:     systemService,
		admin:      admin.NewRegistry(deps.Policy),
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

func (a *API) siteSettings(c *gin.Context) siteViewModel {
	if cached, exists := c.Get(siteSettingsContextKey); exists {
		if view, ok := cached.(siteViewModel); ok {
			return view
		}
	}

	settings, err := a.system.GetSettings()
	if err != nil {
		c.Error(err)
	}

	view := siteViewModel{
		Name:    strings.TrimSpace(settings.SiteName),
		Tagline: strings.TrimSpace(settings.SiteTagline),
	}
	if view.Name == "" {
		view.Name = service.DefaultSiteName
	}

	c.Set(siteSettingsContextKey, view)
	return view
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	view := a.siteSettings(c)

	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["site"]; !exists {
		payload["site"] = gin.H{
			"name":    view.Name,
			"tagline": view.Tagline,
		}
	}
	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = view.Name
	}
	if _, exists := payload["flashes"]; !exists {
		payload["flashes"] = popFlashes(c)
	}

	c.HTML(status, template, payload)
}

// RenderHTML 在向模板渲染时自动附加站点名称与一次性提示信息。
func (a *API) RenderHTML(c *gin.Context, status int, template string, data gin.H) {
	a.renderHTML(c, status, template, data)
}
