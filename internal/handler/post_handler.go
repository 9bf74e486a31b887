package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/service"
)

type postRequest struct {
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Status         string     `json:"status"`
	Content        string     `json:"content"`
	Format         string     `json:"format"`
	MetaTitle      string     `json:"meta_title"`
	Description    string     `json:"description"`
	GenDescription *bool      `json:"gen_description"`
	PublishDate    *time.Time `json:"publish_date"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	ShortURL       string     `json:"short_url"`
	AllowComments  *bool      `json:"allow_comments"`
	CategoryIDs    []uint     `json:"category_ids"`
	KeywordIDs     []uint     `json:"keyword_ids"`
	Keywords       []string   `json:"keywords"`
	RelatedPostIDs []uint     `json:"related_post_ids"`
	UserID         uint       `json:"user_id"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{
		Title:          r.Title,
		Slug:           r.Slug,
		Status:         r.Status,
		Content:        r.Content,
		Format:         r.Format,
		MetaTitle:      r.MetaTitle,
		Description:    r.Description,
		GenDescription: r.GenDescription,
		PublishDate:    r.PublishDate,
		ExpiryDate:     r.ExpiryDate,
		ShortURL:       r.ShortURL,
		AllowComments:  r.AllowComments,
		CategoryIDs:    r.CategoryIDs,
		KeywordIDs:     r.KeywordIDs,
		Keywords:       r.Keywords,
		RelatedPostIDs: r.RelatedPostIDs,
		UserID:         r.UserID,
	}
}

// ListPosts 获取文章列表，非超级管理员只能看到自己的文章。
func (a *API) ListPosts(c *gin.Context) {
	actor := currentActor(c)
	result, err := a.posts.List(service.PostFilter{
		Search:      c.Query("search"),
		Status:      c.Query("status"),
		CategoryIDs: parseUintQuerySlice(c.QueryArray("category_id")),
		Actor:       &actor,
		Page:        parseIntQuery(c, "page", 1),
		PerPage:     parseIntQuery(c, "per_page", 20),
	})
	if err != nil {
		respondServiceError(c, err, "获取文章列表失败")
		return
	}

	posts := make([]gin.H, 0, len(result.Posts))
	for _, post := range result.Posts {
		posts = append(posts, postPayload(post))
	}
	c.JSON(http.StatusOK, gin.H{
		"posts":           posts,
		"total":           result.Total,
		"published_count": result.PublishedCount,
		"draft_count":     result.DraftCount,
		"page":            result.Page,
		"per_page":        result.PerPage,
		"total_pages":     result.TotalPages,
	})
}

// GetPost 获取单篇文章
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	post, err := a.posts.GetForActor(currentActor(c), id)
	if err != nil {
		respondServiceError(c, err, "获取文章失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": postPayload(*post)})
}

// CreatePost 创建新文章
func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req, "无效的文章数据") {
		return
	}

	post, err := a.posts.Create(currentActor(c), req.input())
	if err != nil {
		respondServiceError(c, err, "创建文章失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "文章创建成功", "post": postPayload(*post)})
}

// UpdatePost 更新文章
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	var req postRequest
	if !bindJSON(c, &req, "无效的文章数据") {
		return
	}

	post, err := a.posts.Update(currentActor(c), id, req.input())
	if err != nil {
		respondServiceError(c, err, "更新文章失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "文章更新成功", "post": postPayload(*post)})
}

// DeletePost 删除文章
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	if err := a.posts.Delete(currentActor(c), id); err != nil {
		respondServiceError(c, err, "删除文章失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "文章删除成功"})
}

// ListRelatedCandidates 返回可选作相关文章的全部文章。
func (a *API) ListRelatedCandidates(c *gin.Context) {
	posts, err := a.posts.ListVisible(currentActor(c))
	if err != nil {
		respondServiceError(c, err, "获取文章失败")
		return
	}
	out := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		out = append(out, gin.H{"id": post.ID, "title": post.Title, "slug": post.Slug, "status": post.Status})
	}
	c.JSON(http.StatusOK, gin.H{"posts": out})
}
