package handler

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/logger"
)

const (
	flashSuccess = "success"
	flashError   = "error"
)

// flashMessage 是下一次页面渲染时展示一次的提示。
type flashMessage struct {
	Level   string
	Message string
}

func addFlash(c *gin.Context, level, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, level)
	if err := session.Save(); err != nil {
		logger.Warnw("save flash failed", "level", level, "error", err)
	}
}

func popFlashes(c *gin.Context) []flashMessage {
	session := sessions.Default(c)
	var out []flashMessage
	for _, level := range []string{flashSuccess, flashError} {
		for _, raw := range session.Flashes(level) {
			if message, ok := raw.(string); ok {
				out = append(out, flashMessage{Level: level, Message: message})
			}
		}
	}
	if len(out) > 0 {
		if err := session.Save(); err != nil {
			logger.Warnw("consume flash failed", "error", err)
		}
	}
	return out
}
