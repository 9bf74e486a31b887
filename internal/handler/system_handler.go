package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/service"
)

type settingsRequest struct {
	SiteName          string `json:"site_name"`
	SiteTagline       string `json:"site_tagline"`
	ContactRecipient  string `json:"contact_recipient"`
	NewsletterSubject string `json:"newsletter_subject"`
	NewsletterBody    string `json:"newsletter_body"`
}

func settingsPayload(settings service.SystemSettings) gin.H {
	return gin.H{
		"site_name":          settings.SiteName,
		"site_tagline":       settings.SiteTagline,
		"contact_recipient":  settings.ContactRecipient,
		"newsletter_subject": settings.NewsletterSubject,
		"newsletter_body":    settings.NewsletterBody,
	}
}

// GetSystemSettings 返回系统设置。
func (a *API) GetSystemSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		respondServiceError(c, err, "获取系统设置失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settingsPayload(settings)})
}

// UpdateSystemSettings 保存系统设置，仅超级管理员可用。
func (a *API) UpdateSystemSettings(c *gin.Context) {
	if !currentActor(c).IsSuperuser {
		respondError(c, http.StatusForbidden, "仅超级管理员可以修改系统设置")
		return
	}

	var req settingsRequest
	if !bindJSON(c, &req, "无效的系统设置") {
		return
	}

	settings, err := a.system.UpdateSettings(service.SystemSettingsInput{
		SiteName:          req.SiteName,
		SiteTagline:       req.SiteTagline,
		ContactRecipient:  req.ContactRecipient,
		NewsletterSubject: req.NewsletterSubject,
		NewsletterBody:    req.NewsletterBody,
	})
	if err != nil {
		respondServiceError(c, err, "保存系统设置失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "系统设置已更新", "settings": settingsPayload(settings)})
}

// ListMessages 分页返回联系留言。
func (a *API) ListMessages(c *gin.Context) {
	result, err := a.messages.List(parseIntQuery(c, "page", 1), parseIntQuery(c, "per_page", 20))
	if err != nil {
		respondServiceError(c, err, "获取留言失败")
		return
	}
	messages := make([]gin.H, 0, len(result.Messages))
	for _, message := range result.Messages {
		messages = append(messages, messagePayload(message))
	}
	c.JSON(http.StatusOK, gin.H{
		"messages":    messages,
		"total":       result.Total,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
	})
}

// GetMessage 获取单条留言
func (a *API) GetMessage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的留言ID")
		return
	}
	message, err := a.messages.Get(id)
	if err != nil {
		respondServiceError(c, err, "获取留言失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": messagePayload(*message)})
}

// ListSchemas 返回全部后台模型的展示配置。
func (a *API) ListSchemas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": a.admin.Models()})
}

// GetSchema 返回单个模型的列表与表单配置。
func (a *API) GetSchema(c *gin.Context) {
	model, ok := a.admin.Lookup(c.Param("model"))
	if !ok {
		respondError(c, http.StatusNotFound, "unknown model")
		return
	}
	c.JSON(http.StatusOK, gin.H{"model": model})
}
