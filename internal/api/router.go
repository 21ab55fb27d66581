package api

import (
	"context"
	"net/http"
	"time"

	adminHandler "meal-recommender/internal/api/handlers/admin"
	"meal-recommender/internal/api/handlers/health"
	recommendHandler "meal-recommender/internal/api/handlers/recommend"
	"meal-recommender/internal/api/middleware"
	"meal-recommender/internal/core/ai/cache"
	aiService "meal-recommender/internal/core/ai/service"
	"meal-recommender/internal/core/recommend"
	"meal-recommender/internal/infrastructure/config"
	"meal-recommender/internal/infrastructure/storage"
	"meal-recommender/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 請求體大小限制 (1MB)；本服務只收 JSON，不收圖片
const maxBodySize = 1 << 20

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, store *storage.Redis, cacheManager *cache.CacheManager) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 重排序器：OpenRouter 未啟用時退回規則排序，管線照常運作
	var reranker recommend.Reranker = recommend.NullReranker{}
	if cfg.OpenRouter.Enabled {
		svc, err := aiService.NewService(cfg, cacheManager)
		if err != nil {
			common.LogWarn("AI 服務初始化失敗，改用規則排序", zap.Error(err))
		} else {
			reranker = recommend.NewLLMReranker(svc)
		}
	} else {
		common.LogInfo("OpenRouter 未啟用，使用規則排序")
	}

	// 初始化推薦管線
	recommendSvc := recommend.NewService(store, store, reranker, &cfg.Recommend)

	common.LogInfo("Services initialized",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("llm_rerank", cfg.OpenRouter.Enabled),
		zap.String("model", cfg.OpenRouter.Model),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
	)

	// 全局中間件：請求超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Server.RequestTimeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", cfg.Server.RequestTimeout),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
			})
			c.Abort()
		}
	})

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, store)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		recHandler := recommendHandler.NewHandler(recommendSvc)

		recommendGroup := api.Group("/recommendations")
		if cfg.RateLimit.Enabled {
			recommendGroup.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}
		recommendGroup.Use(middleware.Deduplication(cfg))
		{
			// 今日餐點批次推薦
			recommendGroup.POST("/today", recHandler.HandleToday)
		}

		seedHandler := adminHandler.NewHandler(store)
		adminGroup := api.Group("/admin")
		{
			// 菜單與檔案批次種子寫入
			adminGroup.PUT("/menus", seedHandler.HandleUpsertMenus)
			adminGroup.PUT("/profiles", seedHandler.HandleUpsertProfiles)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
