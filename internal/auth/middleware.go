package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const adminContextKey = "admin"

// LoginPath 未登录时页面跳转地址
const LoginPath = "/admin/login"

// AdminFromRequest 从请求 cookie 解析管理员，任何失败都视为未登录
func (m *TokenManager) AdminFromRequest(r *http.Request) *AdminClaims {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	return m.Verify(cookie.Value)
}

// RequireAdminAPI API 路由鉴权，未登录返回 401
func (m *TokenManager) RequireAdminAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := m.AdminFromRequest(c.Request)
		if admin == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(adminContextKey, admin)
		c.Next()
	}
}

// RequireAdminPage 页面路由鉴权，未登录跳转登录页
func (m *TokenManager) RequireAdminPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := m.AdminFromRequest(c.Request)
		if admin == nil {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Set(adminContextKey, admin)
		c.Next()
	}
}

// CurrentAdmin 读取中间件写入的管理员
func CurrentAdmin(c *gin.Context) *AdminClaims {
	v, ok := c.Get(adminContextKey)
	if !ok {
		return nil
	}
	admin, _ := v.(*AdminClaims)
	return admin
}
