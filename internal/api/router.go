package api

import (
	"fmt"
	"net/http"
	"time"

	authHandler "github.com/baldhadhaval08/pantry-wizard/internal/api/handlers/auth"
	"github.com/baldhadhaval08/pantry-wizard/internal/api/handlers/health"
	historyHandler "github.com/baldhadhaval08/pantry-wizard/internal/api/handlers/history"
	pantryHandler "github.com/baldhadhaval08/pantry-wizard/internal/api/handlers/pantry"
	recipeHandler "github.com/baldhadhaval08/pantry-wizard/internal/api/handlers/recipe"
	"github.com/baldhadhaval08/pantry-wizard/internal/api/middleware"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/auth"
	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services 路由需要的服務
type Services struct {
	Auth    *auth.Service
	Pantry  pantryHandler.Store
	Recipes recipeHandler.Service
	Reports historyHandler.Service
	DB      health.Pinger
	Queue   health.QueueReporter
}

// SetupRouter 設置路由，回傳的 cleanup 需在關閉時呼叫
func SetupRouter(cfg *config.Config, svc Services) (*gin.Engine, func(), error) {
	if svc.Auth == nil || svc.Pantry == nil || svc.Recipes == nil || svc.Reports == nil {
		return nil, nil, fmt.Errorf("router: missing required services")
	}

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
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	router.Use(dedup.Handler())
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 生成的菜餚圖片
	router.Static("/static", cfg.Image.StaticDir)

	// 健康檢查路由
	healthH := health.NewHandler(cfg.App.Version, svc.DB, svc.Queue)
	router.GET("/health", healthH.HealthCheck)
	router.GET("/ready", healthH.ReadinessCheck)
	router.GET("/live", healthH.LivenessCheck)

	authH := authHandler.NewHandler(svc.Auth)
	pantryH := pantryHandler.NewHandler(svc.Pantry)
	recipeH := recipeHandler.NewHandler(svc.Recipes)
	historyH := historyHandler.NewHandler(svc.Reports)
	requireAuth := middleware.Auth(svc.Auth.Tokens())

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authH.Register)
			authGroup.POST("/login", authH.Login)
			authGroup.GET("/profile", requireAuth, authH.Profile)
			authGroup.PUT("/profile", requireAuth, authH.UpdateProfile)
		}

		pantryGroup := api.Group("/pantry", requireAuth)
		{
			pantryGroup.GET("", pantryH.List)
			pantryGroup.POST("", pantryH.Create)
			pantryGroup.PUT("/:id", pantryH.Update)
			pantryGroup.DELETE("/:id", pantryH.Delete)
		}

		recipeGroup := api.Group("/recipes", requireAuth)
		{
			recipeGroup.POST("/generate", recipeH.Generate)
			recipeGroup.GET("/daily", recipeH.Daily)
			recipeGroup.POST("/save", recipeH.Save)
		}

		historyGroup := api.Group("/history", requireAuth)
		{
			historyGroup.GET("", historyH.List)
			historyGroup.GET("/reports/weekly", historyH.Weekly)
		}
	}

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		common.WriteError(c, common.ErrMethodNotAllowed)
	})
	router.NoRoute(func(c *gin.Context) {
		common.WriteErrorResponse(c, http.StatusNotFound, common.ErrCodeNotFound, "Route not found")
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, dedup.Close, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	// 未設定來源時允許全部，但不帶憑證
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
