package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/logger"
	"github.com/sitepress/internal/repository"
	"github.com/sitepress/internal/richtext"
	"github.com/sitepress/internal/service"
)

// PublicPerPage 是前台列表每页的文章数。
const PublicPerPage = 6

const (
	flashMessageSent  = "Message sent successfully!"
	flashMessageError = "There was an error."
	flashWelcome      = "You're welcome!"
	flashTryAgain     = "Try Again."
)

// navigation 收集每个前台页面都需要的分类与菜单。
func (a *API) navigation(c *gin.Context) gin.H {
	nav := gin.H{}

	categories, err := a.categories.List(service.CategoryFilter{VisibleOnly: true})
	if err != nil {
		c.Error(err)
	}
	var top, sub []db.BlogCategory
	for _, category := range categories {
		if category.ParentID == nil {
			top = append(top, category)
		} else {
			sub = append(sub, category)
		}
	}
	nav["categories"] = top
	nav["subcategories"] = sub

	menu, err := a.pages.List(service.PageFilter{InMenusOnly: true, PublicOnly: true})
	if err != nil {
		c.Error(err)
	}
	nav["menuPages"] = menu
	nav["year"] = time.Now().Year()
	return nav
}

func (a *API) renderPublic(c *gin.Context, status int, template string, data gin.H) {
	payload := a.navigation(c)
	for key, value := range data {
		payload[key] = value
	}
	a.renderHTML(c, status, template, payload)
}

func (a *API) renderNotFound(c *gin.Context) {
	a.renderPublic(c, http.StatusNotFound, "404.html", gin.H{"title": "Not found"})
}

// RenderNotFound 渲染前台 404 页面。
func (a *API) RenderNotFound(c *gin.Context) {
	a.renderNotFound(c)
}

// listPosts 查询前台文章列表。页码非整数时回到第一页，超出范围时落到最后一页。
func (a *API) listPosts(c *gin.Context, filter service.PostFilter) (*service.PostListResult, bool) {
	filter.PublicOnly = true
	filter.Page = repository.ParsePage(c.Query("page"))
	filter.PerPage = PublicPerPage

	result, err := a.posts.List(filter)
	if err != nil {
		logger.Errorw("list public posts failed", "path", c.Request.URL.Path, "error", err)
		a.renderPublic(c, http.StatusInternalServerError, "blog.html", gin.H{"error": "获取文章失败"})
		return nil, false
	}
	return result, true
}

func paginationPayload(result *service.PostListResult) gin.H {
	return gin.H{
		"posts":      result.Posts,
		"total":      result.Total,
		"page":       result.Page,
		"totalPages": result.TotalPages,
		"hasPrev":    result.Page > 1,
		"hasNext":    result.Page < result.TotalPages,
		"prevPage":   result.Page - 1,
		"nextPage":   result.Page + 1,
	}
}

// ShowHome 渲染首页文章列表。
func (a *API) ShowHome(c *gin.Context) {
	result, ok := a.listPosts(c, service.PostFilter{})
	if !ok {
		return
	}
	data := paginationPayload(result)
	data["title"] = a.siteSettings(c).Name
	a.renderPublic(c, http.StatusOK, "index.html", data)
}

// ShowSearch 按关键字搜索文章正文与标题。
func (a *API) ShowSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	result, ok := a.listPosts(c, service.PostFilter{Search: query})
	if !ok {
		return
	}
	data := paginationPayload(result)
	data["title"] = "Search"
	data["q"] = query
	a.renderPublic(c, http.StatusOK, "blog.html", data)
}

// ShowCategory 列出顶级分类及其子分类下的文章。
func (a *API) ShowCategory(c *gin.Context) {
	a.showCategory(c, true)
}

// ShowSubCategory 列出子分类下的文章。
func (a *API) ShowSubCategory(c *gin.Context) {
	a.showCategory(c, false)
}

func (a *API) showCategory(c *gin.Context, topLevel bool) {
	category, err := a.categories.GetBySlug(c.Param("slug"), topLevel)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			a.renderNotFound(c)
			return
		}
		logger.Errorw("load category failed", "slug", c.Param("slug"), "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	ids := []uint{category.ID}
	if topLevel {
		if ids, err = a.categories.CategoryIDsWithChildren(category); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
	}

	result, ok := a.listPosts(c, service.PostFilter{CategoryIDs: ids})
	if !ok {
		return
	}
	data := paginationPayload(result)
	data["title"] = category.Title
	data["category"] = category
	a.renderPublic(c, http.StatusOK, "blog.html", data)
}

// ShowPostDetail 渲染单篇文章。
func (a *API) ShowPostDetail(c *gin.Context) {
	post, err := a.posts.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.renderNotFound(c)
			return
		}
		logger.Errorw("load post failed", "slug", c.Param("slug"), "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	htmlContent, err := richtext.Render(post.RichText)
	if err != nil {
		logger.Errorw("render post failed", "post_id", post.ID, "error", err)
		a.renderPublic(c, http.StatusInternalServerError, "post.html", gin.H{"title": post.Title, "error": "渲染内容失败"})
		return
	}

	a.renderPublic(c, http.StatusOK, "post.html", gin.H{
		"title":       post.MetaTitleOrTitle(post.Title),
		"description": post.Description,
		"post":        post,
		"content":     htmlContent,
		"cover":       post.CoverImage(),
	})
}

// ShowPage 渲染页面，链接页面直接跳转到目标地址。
func (a *API) ShowPage(c *gin.Context) {
	concrete, err := a.pages.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			a.renderNotFound(c)
			return
		}
		logger.Errorw("load page failed", "slug", c.Param("slug"), "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	page := concrete.BasePage()
	data := gin.H{
		"title":       page.MetaTitleOrTitle(page.Title),
		"description": page.Description,
		"page":        page,
	}

	switch p := concrete.(type) {
	case *db.LinkPage:
		c.Redirect(http.StatusFound, p.Link)
		return
	case *db.RichTextPage:
		htmlContent, err := richtext.Render(p.RichText)
		if err != nil {
			logger.Errorw("render page failed", "page_id", page.ID, "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		data["content"] = htmlContent
	}

	a.renderPublic(c, http.StatusOK, "page.html", data)
}

// ShowContact 渲染联系页面。
func (a *API) ShowContact(c *gin.Context) {
	a.renderPublic(c, http.StatusOK, "contact.html", gin.H{"title": "Contact"})
}

// SubmitContact 保存联系留言，结果通过一次性提示展示在首页。
func (a *API) SubmitContact(c *gin.Context) {
	_, err := a.messages.Submit(c.Request.Context(), service.MessageInput{
		Name:    c.PostForm("name"),
		Subject: c.PostForm("subject"),
		Email:   c.PostForm("email"),
		Message: c.PostForm("message"),
	})
	if err != nil {
		logger.Warnw("submit contact message failed", "error", err)
		addFlash(c, flashError, flashMessageError)
	} else {
		addFlash(c, flashSuccess, flashMessageSent)
	}
	c.Redirect(http.StatusFound, "/")
}

// SubmitNewsletter 保存订阅并发送欢迎邮件。
func (a *API) SubmitNewsletter(c *gin.Context) {
	if _, err := a.newsletter.Subscribe(c.Request.Context(), c.PostForm("email")); err != nil {
		logger.Warnw("newsletter subscription failed", "error", err)
		addFlash(c, flashError, flashTryAgain)
	} else {
		addFlash(c, flashSuccess, flashWelcome)
	}
	c.Redirect(http.StatusFound, "/")
}

// Healthz 检查数据库连接。
func (a *API) Healthz(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		logger.Errorw("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
