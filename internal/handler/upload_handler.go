package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/service"
)

type imageRequest struct {
	AssetKey        string `json:"asset_key"`
	Description     string `json:"description"`
	IsVisible       *bool  `json:"is_visible"`
	IsFeaturedImage *bool  `json:"is_featured_image"`
	Src             string `json:"src"`
	Filename        string `json:"filename"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
}

func (r imageRequest) input() service.FeaturedImageInput {
	return service.FeaturedImageInput{
		AssetKey:        r.AssetKey,
		Description:     r.Description,
		IsVisible:       r.IsVisible,
		IsFeaturedImage: r.IsFeaturedImage,
		Src:             r.Src,
		Filename:        r.Filename,
		Width:           r.Width,
		Height:          r.Height,
	}
}

// UploadImage 处理图片上传请求，返回存储 key 与图片尺寸。
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "未找到上传的图片")
		return
	}
	if file.Size > service.MaxImageUploadBytes {
		respondError(c, http.StatusBadRequest, service.ErrImageTooLarge.Error())
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "只允许上传图片文件")
		return
	}

	reader, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "读取上传文件失败")
		return
	}
	defer reader.Close()

	asset, err := a.images.Upload(c.Request.Context(), file.Filename, contentType, reader)
	if err != nil {
		respondServiceError(c, err, "保存文件失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "上传成功",
		"data": gin.H{
			"asset_key": asset.Key,
			"url":       asset.URL,
			"filename":  asset.Filename,
			"width":     asset.Width,
			"height":    asset.Height,
		},
	})
}

// ListPostImages 返回文章下的配图。
func (a *API) ListPostImages(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}
	if _, err := a.posts.GetForActor(currentActor(c), postID); err != nil {
		respondServiceError(c, err, "获取配图失败")
		return
	}
	images, err := a.images.ListForPost(postID)
	if err != nil {
		respondServiceError(c, err, "获取配图失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": imagePayloads(images)})
}

// AttachPostImage 为文章新增配图。
func (a *API) AttachPostImage(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}
	var req imageRequest
	if !bindJSON(c, &req, "无效的配图数据") {
		return
	}
	if _, err := a.posts.Authorize(currentActor(c), postID); err != nil {
		respondServiceError(c, err, "保存配图失败")
		return
	}
	img, err := a.images.Attach(postID, req.input())
	if err != nil {
		respondServiceError(c, err, "保存配图失败")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"image": imagePayload(*img)})
}

func (a *API) authorizeImage(c *gin.Context) (*db.FeaturedImage, bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的配图ID")
		return nil, false
	}
	img, err := a.images.Get(id)
	if err != nil {
		respondServiceError(c, err, "获取配图失败")
		return nil, false
	}
	if img.BlogPostID != nil {
		if _, err := a.posts.Authorize(currentActor(c), *img.BlogPostID); err != nil {
			respondServiceError(c, err, "获取配图失败")
			return nil, false
		}
	}
	return img, true
}

// UpdateImage 更新配图信息。
func (a *API) UpdateImage(c *gin.Context) {
	img, ok := a.authorizeImage(c)
	if !ok {
		return
	}
	var req imageRequest
	if !bindJSON(c, &req, "无效的配图数据") {
		return
	}
	updated, err := a.images.Update(img.ID, req.input())
	if err != nil {
		respondServiceError(c, err, "更新配图失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"image": imagePayload(*updated)})
}

// DeleteImage 删除配图及存储对象。
func (a *API) DeleteImage(c *gin.Context) {
	img, ok := a.authorizeImage(c)
	if !ok {
		return
	}
	if err := a.images.Delete(c.Request.Context(), img.ID); err != nil {
		respondServiceError(c, err, "删除配图失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "配图删除成功"})
}
