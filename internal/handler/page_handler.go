package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/service"
)

type pageRequest struct {
	ContentModel   string     `json:"content_model"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Status         string     `json:"status"`
	MetaTitle      string     `json:"meta_title"`
	Description    string     `json:"description"`
	GenDescription *bool      `json:"gen_description"`
	PublishDate    *time.Time `json:"publish_date"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	ShortURL       string     `json:"short_url"`
	InMenus        *bool      `json:"in_menus"`
	SortOrder      *int       `json:"sort_order"`
	KeywordIDs     []uint     `json:"keyword_ids"`
	Keywords       []string   `json:"keywords"`
	Content        string     `json:"content"`
	Format         string     `json:"format"`
	Link           string     `json:"link"`
}

func (r pageRequest) input() service.PageInput {
	return service.PageInput{
		Title:          r.Title,
		Slug:           r.Slug,
		Status:         r.Status,
		MetaTitle:      r.MetaTitle,
		Description:    r.Description,
		GenDescription: r.GenDescription,
		PublishDate:    r.PublishDate,
		ExpiryDate:     r.ExpiryDate,
		ShortURL:       r.ShortURL,
		InMenus:        r.InMenus,
		SortOrder:      r.SortOrder,
		KeywordIDs:     r.KeywordIDs,
		Keywords:       r.Keywords,
		Content:        r.Content,
		Format:         r.Format,
		Link:           r.Link,
	}
}

// ListPageTypes 返回可创建的页面子类型。
func (a *API) ListPageTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"types": a.pages.ListConcreteTypes()})
}

// ListPages 返回全部页面的基础信息。
func (a *API) ListPages(c *gin.Context) {
	pages, err := a.pages.List(service.PageFilter{InMenusOnly: c.Query("in_menus") == "1"})
	if err != nil {
		respondServiceError(c, err, "获取页面失败")
		return
	}
	out := make([]gin.H, 0, len(pages))
	for i := range pages {
		out = append(out, pagePayload(&pages[i]))
	}
	c.JSON(http.StatusOK, gin.H{"pages": out})
}

// GetPage 获取页面并按子类型返回完整字段。
func (a *API) GetPage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的页面ID")
		return
	}
	page, err := a.pages.GetConcrete(id)
	if err != nil {
		respondServiceError(c, err, "获取页面失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": pagePayload(page)})
}

// CreatePage 按 content_model 创建页面。
func (a *API) CreatePage(c *gin.Context) {
	var req pageRequest
	if !bindJSON(c, &req, "无效的页面数据") {
		return
	}
	page, err := a.pages.Create(req.ContentModel, req.input())
	if err != nil {
		respondServiceError(c, err, "创建页面失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"page": pagePayload(page)})
}

// UpdatePage 更新页面，子类型保持不变。
func (a *API) UpdatePage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的页面ID")
		return
	}
	var req pageRequest
	if !bindJSON(c, &req, "无效的页面数据") {
		return
	}
	page, err := a.pages.Update(id, req.input())
	if err != nil {
		respondServiceError(c, err, "更新页面失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": pagePayload(page)})
}

// DeletePage 删除页面
func (a *API) DeletePage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的页面ID")
		return
	}
	if err := a.pages.Delete(id); err != nil {
		respondServiceError(c, err, "删除页面失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "页面删除成功"})
}
