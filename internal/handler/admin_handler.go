package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/logger"
	"gorm.io/gorm"
)

const (
	sessionUserID      = "user_id"
	sessionUsername    = "username"
	sessionIsSuperuser = "is_superuser"

	actorContextKey = "__actor"
)

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Content-Type"), "application/json") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "管理员登录",
	})
}

// Login 校验用户名与密码，成功后写入会话。
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid login payload")
		return
	}

	var user db.User
	err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Errorw("load user failed", "username", req.Username, "error", err)
		respondError(c, http.StatusInternalServerError, "failed to login")
		return
	}
	if err != nil || !user.CheckPassword(req.Password) {
		if wantsJSON(c) {
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		a.renderHTML(c, http.StatusUnauthorized, "login.html", gin.H{"title": "管理员登录", "error": "用户名或密码错误"})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserID, user.ID)
	session.Set(sessionUsername, user.Username)
	session.Set(sessionIsSuperuser, user.IsSuperuser)
	if err := session.Save(); err != nil {
		logger.Errorw("save session failed", "error", err)
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	logger.Infow("admin login", "user_id", user.ID, "username", user.Username)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"user": userPayload(user)})
		return
	}
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logger.Warnw("clear session failed", "error", err)
	}
	c.Redirect(http.StatusFound, "/admin/login")
}

// ShowDashboard 渲染后台主面板
func (a *API) ShowDashboard(c *gin.Context) {
	session := sessions.Default(c)
	actor := currentActor(c)

	var postCount, pageCount, messageCount int64
	postQuery := a.db.Model(&db.BlogPost{})
	if owner := a.posts.Policy().RestrictTo(actor, db.ModelBlogPost); owner != 0 {
		postQuery = postQuery.Where("user_id = ?", owner)
	}
	postQuery.Count(&postCount)
	a.db.Model(&db.Page{}).Count(&pageCount)
	a.db.Model(&db.ContactMessage{}).Count(&messageCount)

	a.renderHTML(c, http.StatusOK, "dashboard.html", gin.H{
		"title":        "管理面板",
		"username":     session.Get(sessionUsername),
		"postCount":    postCount,
		"pageCount":    pageCount,
		"messageCount": messageCount,
	})
}

// CurrentSession 返回当前登录用户。
func (a *API) CurrentSession(c *gin.Context) {
	actor := currentActor(c)
	c.JSON(http.StatusOK, gin.H{
		"user_id":      actor.ID,
		"username":     sessions.Default(c).Get(sessionUsername),
		"is_superuser": actor.IsSuperuser,
	})
}

// AuthRequired 校验会话，API 请求返回 401，页面请求跳转到登录页。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(sessionUserID).(uint)
		if !ok || userID == 0 {
			if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
				respondError(c, http.StatusUnauthorized, "authentication required")
				c.Abort()
				return
			}
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}

		superuser, _ := session.Get(sessionIsSuperuser).(bool)
		c.Set(actorContextKey, content.Actor{ID: userID, IsSuperuser: superuser})
		c.Next()
	}
}

func currentActor(c *gin.Context) content.Actor {
	if value, exists := c.Get(actorContextKey); exists {
		if actor, ok := value.(content.Actor); ok {
			return actor
		}
	}
	return content.Actor{}
}

func userPayload(user db.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"is_superuser": user.IsSuperuser,
	}
}
