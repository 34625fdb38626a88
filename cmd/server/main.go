package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/sankha1545/Bhakasamilani/internal/auth"
	"github.com/sankha1545/Bhakasamilani/internal/config"
	"github.com/sankha1545/Bhakasamilani/internal/database"
	"github.com/sankha1545/Bhakasamilani/internal/handler"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
	"github.com/sankha1545/Bhakasamilani/internal/logic"
	"github.com/sankha1545/Bhakasamilani/internal/notify"
	"github.com/sankha1545/Bhakasamilani/internal/payment"
	"github.com/sankha1545/Bhakasamilani/internal/router"
	"github.com/sankha1545/Bhakasamilani/internal/scheduler"
	"github.com/sankha1545/Bhakasamilani/internal/sender"
	"github.com/sankha1545/Bhakasamilani/internal/webhook"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 加载配置
	cfg := config.Load()

	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	if cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "" {
		logger.Warn("Razorpay keys are not configured, order creation will fail")
	}
	if cfg.Razorpay.WebhookSecret == "" {
		logger.Warn("Razorpay webhook secret is not configured, webhooks will be rejected")
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT secret is not configured, admin login will fail")
	}

	gateway := payment.NewRazorpayClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	verifier := payment.NewVerifier(cfg.Razorpay.KeySecret, cfg.Razorpay.WebhookSecret)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// 邮件发送
	var emailSender sender.EmailSender
	if cfg.SMTP.Enabled() {
		emailSender = sender.NewSMTPEmailSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From, cfg.SMTP.Secure)
	} else {
		logger.Warn("SMTP is not fully configured, contact notifications are disabled")
	}
	notifier, err := notify.NewNotifier(db, emailSender, cfg.Notify.PoolSize, cfg.Notify.MaxAttempts)
	if err != nil {
		logger.Fatal("Failed to initialize notifier: %v", err)
	}
	defer notifier.Release()

	loc := cfg.Donation.Location()

	donationLogic, err := logic.NewDonationLogic(db, gateway, verifier, cfg.Donation)
	if err != nil {
		logger.Fatal("Failed to initialize donation logic: %v", err)
	}
	webhookLogic := logic.NewWebhookLogic(db, verifier, webhook.NewProcessorManager(donationLogic))

	handlers := router.Handlers{
		Donation: handler.NewDonationHandler(donationLogic),
		Webhook:  handler.NewWebhookHandler(webhookLogic),
		Admin: handler.NewAdminHandler(
			logic.NewAdminLogic(db, tokens),
			donationLogic,
			logic.NewAnalyticsLogic(db, loc),
			tokens,
			cfg.Server.IsProduction(),
			loc,
		),
		Contact: handler.NewContactHandler(logic.NewContactLogic(db, notifier, cfg.SMTP)),
		Event:   handler.NewEventHandler(logic.NewTempleEventLogic(db)),
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(handlers, tokens, cfg.Server)

	// 启动定时任务
	tasks, err := scheduler.NewManager(db, notifier, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize scheduler: %v", err)
	}
	tasks.Start()
	defer tasks.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}
}
