package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/service"
)

type categoryRequest struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	ParentID *uint  `json:"parent_id"`
	Visible  *bool  `json:"visible"`
}

func (r categoryRequest) input() service.CategoryInput {
	return service.CategoryInput{Title: r.Title, Slug: r.Slug, ParentID: r.ParentID, Visible: r.Visible}
}

// ListCategories 按标题返回分类，top_level=1 时只返回顶级分类。
func (a *API) ListCategories(c *gin.Context) {
	categories, err := a.categories.List(service.CategoryFilter{TopLevelOnly: c.Query("top_level") == "1"})
	if err != nil {
		respondServiceError(c, err, "获取分类失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categoryPayloads(categories)})
}

// GetCategory 获取单个分类
func (a *API) GetCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的分类ID")
		return
	}
	category, err := a.categories.Get(id)
	if err != nil {
		respondServiceError(c, err, "获取分类失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": categoryPayload(*category)})
}

// CreateCategory 创建分类
func (a *API) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req, "无效的分类数据") {
		return
	}
	category, err := a.categories.Create(req.input())
	if err != nil {
		respondServiceError(c, err, "创建分类失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": categoryPayload(*category)})
}

// UpdateCategory 更新分类
func (a *API) UpdateCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的分类ID")
		return
	}
	var req categoryRequest
	if !bindJSON(c, &req, "无效的分类数据") {
		return
	}
	category, err := a.categories.Update(id, req.input())
	if err != nil {
		respondServiceError(c, err, "更新分类失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": categoryPayload(*category)})
}

// DeleteCategory 删除分类
func (a *API) DeleteCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的分类ID")
		return
	}
	if err := a.categories.Delete(id); err != nil {
		respondServiceError(c, err, "删除分类失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "分类删除成功"})
}

type keywordRequest struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// ListKeywords 获取关键词，支持 q 参数模糊搜索。
func (a *API) ListKeywords(c *gin.Context) {
	keywords, err := a.keywords.List(c.Query("q"))
	if err != nil {
		respondServiceError(c, err, "获取关键词失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"keywords": keywordPayloads(keywords)})
}

// CreateKeyword 创建关键词，同名关键词已存在时直接返回。
func (a *API) CreateKeyword(c *gin.Context) {
	var req keywordRequest
	if !bindJSON(c, &req, "无效的关键词数据") {
		return
	}
	keyword, err := a.keywords.Create(req.Title)
	if err != nil {
		respondServiceError(c, err, "创建关键词失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"keyword": keywordPayload(*keyword)})
}

// UpdateKeyword 更新关键词
func (a *API) UpdateKeyword(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的关键词ID")
		return
	}
	var req keywordRequest
	if !bindJSON(c, &req, "无效的关键词数据") {
		return
	}
	keyword, err := a.keywords.Update(id, req.Title, req.Slug)
	if err != nil {
		respondServiceError(c, err, "更新关键词失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"keyword": keywordPayload(*keyword)})
}

// DeleteKeyword 删除关键词
func (a *API) DeleteKeyword(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的关键词ID")
		return
	}
	if err := a.keywords.Delete(id); err != nil {
		respondServiceError(c, err, "删除关键词失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "关键词删除成功"})
}
