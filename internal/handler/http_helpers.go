package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/logger"
	"github.com/sitepress/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseUintQuerySlice(values []string) []uint {
	ids := make([]uint, 0, len(values))
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			parsed, err := strconv.ParseUint(trimmed, 10, 32)
			if err != nil {
				continue
			}
			ids = append(ids, uint(parsed))
		}
	}
	return ids
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

var (
	notFoundErrors = []error{
		service.ErrPostNotFound,
		service.ErrCategoryNotFound,
		service.ErrKeywordNotFound,
		service.ErrPageNotFound,
		service.ErrImageNotFound,
		service.ErrMessageNotFound,
	}
	badRequestErrors = []error{
		service.ErrCategoryParentInvalid,
		service.ErrCategoryHasChildren,
		service.ErrUnknownContentModel,
		service.ErrImageUnsupported,
		service.ErrImageTooLarge,
		service.ErrInvalidEmail,
		service.ErrContactRecipientInvalid,
	}
)

// respondServiceError 将服务层错误映射为 HTTP 状态码，未知错误记录日志后返回 fallback。
func respondServiceError(c *gin.Context, err error, fallback string) {
	var validation *content.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "field": validation.Field})
		return
	}
	if errors.Is(err, service.ErrPostForbidden) {
		respondError(c, http.StatusForbidden, err.Error())
		return
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			respondError(c, http.StatusNotFound, target.Error())
			return
		}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			respondError(c, http.StatusBadRequest, target.Error())
			return
		}
	}

	logger.Errorw(fallback, "path", c.Request.URL.Path, "error", err)
	respondError(c, http.StatusInternalServerError, fallback)
}
