package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/api"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/cache"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/ollama"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/service"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/auth"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/image"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/recipe"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/report"
	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"
	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/database"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"
	"github.com/baldhadhaval08/pantry-wizard/internal/repository"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("llm_mode", cfg.LLM.Mode),
		zap.String("image_mode", cfg.Image.Mode),
		zap.String("database", cfg.Database.Driver),
		zap.Bool("redis", cfg.Redis.Enabled),
	)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	// 資料庫
	db, err := database.Open(cfg.Database)
	if err != nil {
		common.LogFatal("Failed to open database", zap.Error(err))
	}
	defer database.Close(db)

	// Redis 可選；未啟用時鎖與快取都在行程內
	rdb, err := database.OpenRedis(startCtx, cfg.Redis)
	if err != nil {
		common.LogFatal("Failed to connect to redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// 文字生成後端
	aiService, err := service.NewService(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize AI service", zap.Error(err))
	}
	defer aiService.Close()

	if cfg.LLM.Mode == config.LLMModeOllama || cfg.Image.Mode == config.ImageModeOllama {
		checkOllama(startCtx, cfg.Ollama)
	}

	// 圖片
	imageCache := cache.New(cfg.Cache, rdb)
	if imageCache != nil {
		defer imageCache.Close()
	}
	if err := image.EnsurePlaceholder(cfg.Image); err != nil {
		common.LogWarn("Failed to create placeholder image", zap.Error(err))
	}
	imageService := image.NewService(cfg.Image, cfg.Ollama.ImageModel, ollama.NewClient(cfg.Ollama), imageCache)

	// 資料存取
	users := repository.NewUserRepository(db)
	pantry := repository.NewPantryRepository(db)
	history := repository.NewHistoryRepository(db)
	daily := repository.NewDailyRepository(db)

	var locker recipe.Locker = recipe.NewMemoryLocker()
	if rdb != nil {
		locker = recipe.NewRedisLocker(rdb, cfg.Daily.PollInterval)
	}

	orchestrator := recipe.NewOrchestrator(aiService,
		recipe.NewNoveltyFilter(cfg.Generation.SimilarityThreshold, cfg.Generation.CompareDescription),
		recipe.Policy{
			MaxAttempts:    cfg.Generation.MaxAttempts,
			Timeout:        cfg.LLM.Timeout,
			FreshDirective: cfg.Generation.FreshDirective,
		},
	)

	recipeService := recipe.NewService(recipe.Deps{
		Profiles:     users,
		Pantry:       pantry,
		History:      history,
		Daily:        daily,
		Orchestrator: orchestrator,
		Images:       imageService,
		Locker:       locker,
		Generation:   cfg.Generation,
		DailyConfig:  cfg.Daily,
	})

	// 設置路由
	router, cleanup, err := api.SetupRouter(cfg, api.Services{
		Auth:    auth.NewService(users, auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)),
		Pantry:  pantry,
		Recipes: recipeService,
		Reports: report.NewService(history),
		DB:      func(ctx context.Context) error { return database.Ping(ctx, db) },
		Queue:   aiService,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.String("backend", aiService.Mode()),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}

// checkOllama 模型未下載時只警告，請求會回報後端不可用
func checkOllama(ctx context.Context, cfg config.OllamaConfig) {
	client := ollama.NewClient(cfg)
	defer client.Close()

	if err := client.CheckModel(ctx); err != nil {
		common.LogWarn("Ollama model check failed", zap.Error(err))
	}
}
