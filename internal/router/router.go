package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sankha1545/Bhakasamilani/internal/auth"
	"github.com/sankha1545/Bhakasamilani/internal/config"
	"github.com/sankha1545/Bhakasamilani/internal/handler"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
)

// RequestIdHeader 请求 id 响应头
const RequestIdHeader = "X-Request-Id"

// Handlers 路由依赖的处理器
type Handlers struct {
	Donation *handler.DonationHandler
	Webhook  *handler.WebhookHandler
	Admin    *handler.AdminHandler
	Contact  *handler.ContactHandler
	Event    *handler.EventHandler
}

func Setup(h Handlers, tokens *auth.TokenManager, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(requestLogger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "donation-service",
		})
	})

	api := r.Group("/api")
	{
		donations := api.Group("/donations")
		{
			donations.POST("/create-order", h.Donation.CreateOrder)
			donations.POST("/verify", h.Donation.VerifyPayment)
		}

		api.POST("/razorpay/webhook", h.Webhook.Receive)
		api.POST("/contact", h.Contact.Submit)

		api.GET("/events", h.Event.GetEvents)
		api.POST("/events", tokens.RequireAdminAPI(), h.Event.CreateEvent)

		admin := api.Group("/admin")
		{
			admin.POST("/login", h.Admin.Login)
			admin.POST("/logout", h.Admin.Logout)

			protected := admin.Group("", tokens.RequireAdminAPI())
			{
				protected.GET("/me", h.Admin.Me)
				protected.GET("/donations", h.Admin.GetDonations)
				protected.GET("/analytics", h.Admin.GetAnalytics)
				protected.GET("/analytics/export", h.Admin.ExportAnalytics)
			}
		}
	}

	if cfg.AdminDir != "" {
		r.Group("/admin/dashboard", tokens.RequireAdminPage()).Static("", cfg.AdminDir)
	}
	if cfg.StaticDir != "" {
		r.NoRoute(staticFallback(cfg.StaticDir))
	}

	return r
}

// staticFallback 未匹配的 GET 请求交给前台静态站点
func staticFallback(dir string) gin.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		fs.ServeHTTP(c.Writer, c.Request)
	}
}

// requestLogger 访问日志，附带请求 id
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestId := c.GetHeader(RequestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}
		c.Header(RequestIdHeader, requestId)

		c.Next()

		logger.Info("%s %s %d %s request_id=%s ip=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), requestId, c.ClientIP())
	}
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Razorpay-Signature")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
