// Package main 是应用程序入口
package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/dumeirei/affiliate-settlement-backend/docs"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/config"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/jwt"
	"github.com/dumeirei/affiliate-settlement-backend/internal/common/metrics"
	commonMiddleware "github.com/dumeirei/affiliate-settlement-backend/internal/common/middleware"
	adminHandler "github.com/dumeirei/affiliate-settlement-backend/internal/handler/admin"
	"github.com/dumeirei/affiliate-settlement-backend/internal/middleware"
	settlementService "github.com/dumeirei/affiliate-settlement-backend/internal/service/settlement"
)

// routerDeps 路由依赖
type routerDeps struct {
	cfg         *config.Config
	logger      *zap.Logger
	db          *gorm.DB
	redisClient *redis.Client
	metrics     *metrics.Metrics
	reportSvc   *settlementService.ReportService
}

// setupRouter 设置路由
func setupRouter(r *gin.Engine, deps *routerDeps) {
	cfg := deps.cfg

	// 创建 JWT 管理器，只校验管理端签发的令牌
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:     cfg.JWT.Secret,
		ExpireTime: cfg.JWT.AccessTokenDuration(),
		Issuer:     cfg.JWT.Issuer,
	})

	// 初始化处理器
	settlementH := adminHandler.NewSettlementHandler(deps.reportSvc)

	// 全局中间件
	r.Use(middleware.Recovery(deps.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.CORS(&cfg.CORS))
	r.Use(middleware.AccessLog(deps.logger))
	r.Use(commonMiddleware.Tracing(&commonMiddleware.TracingConfig{
		ServiceName: cfg.Tracing.ServiceName,
		SkipPaths:   []string{"/health", "/ping", "/ready", cfg.Metrics.Path},
	}))
	if deps.metrics != nil {
		r.Use(deps.metrics.Middleware())
		r.GET(cfg.Metrics.Path, metrics.Handler())
	}

	// 健康检查
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(deps.db, deps.redisClient))

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 管理端接口
	admin := r.Group("/api/admin")
	admin.Use(middleware.AdminAuth(jwtManager))
	admin.Use(middleware.NoCache())
	{
		affiliates := admin.Group("/affiliates")
		affiliates.Use(middleware.AdminRateLimit(deps.redisClient, deps.logger, cfg.Business.Affiliate.ReportRateLimit, time.Minute))
		{
			affiliates.GET("/managers/settlement", settlementH.ManagerSettlement)
			affiliates.GET("/agents/settlement", settlementH.AgentSettlement)
		}
	}
}
