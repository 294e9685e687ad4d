package router

import (
	"fmt"
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/cache"
	"github.com/yash9025/WriteOffGenie-sub000/internal/config"
	adminhandlers "github.com/yash9025/WriteOffGenie-sub000/internal/http/handlers/admin"
	publichandlers "github.com/yash9025/WriteOffGenie-sub000/internal/http/handlers/public"
	"github.com/yash9025/WriteOffGenie-sub000/internal/logger"
	"github.com/yash9025/WriteOffGenie-sub000/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按伙伴端/管理端分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "wog"
	}
	redisClient := cache.Client()
	partnerLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:partner_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 上游回调接口
		apiV1.POST("/webhooks/subscription", publicHandler.SubscriptionWebhook)

		// 伙伴认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(redisClient, partnerLoginRule, KeyByIPAndJSONField("email")), publicHandler.PartnerLogin)
		}

		// 伙伴接口（需鉴权）
		user := apiV1.Group("/user")
		user.Use(PartnerJWTAuthMiddleware(cfg.PartnerJWT.SecretKey, c.PartnerRepo))
		{
			user.GET("/me", publicHandler.GetMyProfile)
			user.PUT("/me/password", publicHandler.ChangeMyPassword)
			user.GET("/dashboard", publicHandler.GetMyDashboard)
			user.GET("/transactions", publicHandler.ListMyTransactions)
			user.GET("/referrals", publicHandler.ListMyReferrals)
			user.POST("/referrals", publicHandler.InviteCPA)
			user.GET("/clients", publicHandler.ListMyClients)
			user.GET("/payouts", publicHandler.ListMyPayouts)
			user.POST("/payouts", publicHandler.ApplyPayout)
			user.GET("/payouts/:id", publicHandler.GetMyPayout)
			user.GET("/bank-accounts", publicHandler.ListMyBankAccounts)
			user.POST("/bank-accounts", publicHandler.CreateMyBankAccount)
			user.PUT("/bank-accounts/:id", publicHandler.UpdateMyBankAccount)
			user.DELETE("/bank-accounts/:id", publicHandler.DeleteMyBankAccount)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 平台总览
				authorized.GET("/dashboard/overview", adminHandler.GetPlatformOverview)

				// 伙伴管理
				authorized.POST("/partners", adminHandler.CreateAgent)
				authorized.GET("/partners", adminHandler.ListPartners)
				authorized.GET("/partners/:id", adminHandler.GetPartner)
				authorized.GET("/partners/:id/dashboard", adminHandler.GetPartnerDashboard)
				authorized.PATCH("/partners/:id/status", adminHandler.UpdatePartnerStatus)

				// 提现结算
				authorized.GET("/payouts", adminHandler.ListPayouts)
				authorized.GET("/payouts/:id", adminHandler.GetPayout)
				authorized.POST("/payouts/:id/review", adminHandler.ReviewPayout)

				// 账本
				authorized.GET("/ledger", adminHandler.ListLedgerTransactions)
				authorized.GET("/ledger/by-event/:event_id", adminHandler.GetLedgerTransactionByEvent)
				authorized.POST("/revenue-events/replay", adminHandler.ReplayRevenueEvent)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
