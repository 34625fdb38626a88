package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sankha1545/Bhakasamilani/internal/apperr"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
)

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// respondError 业务错误转 HTTP 响应，Upstream 只返回通用提示
func respondError(c *gin.Context, err error, fallback string) {
	status := apperr.Status(err)
	if apperr.Is(err, apperr.KindUpstream) {
		logger.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	ErrorResponse(c, status, apperr.Message(err, fallback))
}

// noStore 会话相关响应禁止缓存
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}
