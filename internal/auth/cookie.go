package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CookieName 管理员会话 cookie
const CookieName = "admin_token"

// SetAdminCookie 写入 HttpOnly、SameSite=Lax 的会话 cookie，生产环境加 Secure
func SetAdminCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", secure, true)
}

// ClearAdminCookie 清除会话 cookie
func ClearAdminCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}
