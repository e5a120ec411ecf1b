package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"story-visualizer/internal/assetstore"
	"story-visualizer/internal/cache"
	"story-visualizer/internal/config"
	"story-visualizer/internal/database"
	"story-visualizer/internal/handler"
	"story-visualizer/internal/ledger"
	"story-visualizer/internal/logger"
	"story-visualizer/internal/media"
	"story-visualizer/internal/provider"
	"story-visualizer/internal/provider/googletts"
	"story-visualizer/internal/provider/openaiimg"
	"story-visualizer/internal/provider/playht"
	"story-visualizer/internal/provider/searchimg"
	"story-visualizer/internal/repository"
	"story-visualizer/internal/scanner"
	"story-visualizer/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- PostgreSQL ---
	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	if err := database.ApplyMigrations(pool, zapLogger); err != nil {
		zapLogger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	// --- Redis (optional voice cache) ---
	var voiceCache *cache.VoiceCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			zapLogger.Warn("Redis unavailable, voice cache disabled", zap.Error(err))
		} else {
			voiceCache = cache.NewVoiceCache(redisClient, cfg.VoiceCacheTTL, zapLogger)
			defer redisClient.Close()
		}
	}

	// --- Repositories ---
	accountRepo := repository.NewPgAccountRepository(pool, zapLogger)
	storyRepo := repository.NewPgStoryRepository(pool, zapLogger)
	promptRepo := repository.NewPgPromptRepository(pool, zapLogger)
	purchaseRepo := repository.NewPgPurchaseRepository(pool, zapLogger)

	// --- Core collaborators ---
	store := assetstore.New(cfg.StorageRoot, cfg.BaseURL, zapLogger)
	pointLedger := ledger.New(accountRepo, cfg.StartingPoints, zapLogger)
	completionScanner := scanner.New(store, zapLogger)
	encoder := media.NewFFmpegEncoder(cfg.FFmpegPath, cfg.FFprobePath, zapLogger)
	assembler := media.NewAssembler(store, completionScanner, encoder, zapLogger)

	// --- Providers ---
	var premiumNarration provider.NarrationProvider
	if cfg.PlayHTAPIKey != "" {
		premiumNarration = playht.New(playht.Config{APIKey: cfg.PlayHTAPIKey, UserID: cfg.PlayHTUserID}, zapLogger)
	}
	var premiumImage provider.ImageProvider
	if cfg.OpenAIAPIKey != "" {
		premiumImage = openaiimg.New(cfg.OpenAIAPIKey, zapLogger)
	}
	var freeImage provider.ImageProvider
	if cfg.GoogleAPIKey != "" && cfg.GoogleCSEID != "" {
		freeImage = searchimg.New(searchimg.Config{APIKey: cfg.GoogleAPIKey, CSEID: cfg.GoogleCSEID}, zapLogger)
	}
	freeNarration := googletts.New(zapLogger)

	// --- Services ---
	storyService := service.NewStoryService(storyRepo, pointLedger, store, zapLogger)
	generationService := service.NewGenerationService(service.GenerationConfig{
		Ledger:           pointLedger,
		Store:            store,
		Prompts:          promptRepo,
		FreeNarration:    freeNarration,
		PremiumNarration: premiumNarration,
		FreeImage:        freeImage,
		PremiumImage:     premiumImage,
		VoiceCache:       voiceCache,
		ProviderTimeout:  cfg.ProviderTimeout,
	}, zapLogger)
	purchaseService := service.NewPurchaseService(purchaseRepo, zapLogger)
	statsService := service.NewStatsService(accountRepo, storyRepo, promptRepo)

	h := handler.New(cfg, storyService, generationService, purchaseService, statsService,
		pointLedger, completionScanner, assembler, store, zapLogger)
	router := h.NewRouter(cfg.StorageRoot)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zapLogger.Info("Starting HTTP server",
		zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
