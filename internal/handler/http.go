package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"story-visualizer/internal/assetstore"
	"story-visualizer/internal/config"
	"story-visualizer/internal/ledger"
	"story-visualizer/internal/media"
	"story-visualizer/internal/scanner"
	"story-visualizer/internal/service"
)

// Handler owns the /api surface and fans requests out to the services.
type Handler struct {
	cfg        *config.Config
	stories    *service.StoryService
	generation *service.GenerationService
	purchases  *service.PurchaseService
	stats      *service.StatsService
	ledger     *ledger.Ledger
	scanner    *scanner.Scanner
	assembler  *media.Assembler
	store      *assetstore.Store
	logger     *zap.Logger
}

func New(
	cfg *config.Config,
	stories *service.StoryService,
	generation *service.GenerationService,
	purchases *service.PurchaseService,
	stats *service.StatsService,
	l *ledger.Ledger,
	sc *scanner.Scanner,
	assembler *media.Assembler,
	store *assetstore.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		cfg:        cfg,
		stories:    stories,
		generation: generation,
		purchases:  purchases,
		stats:      stats,
		ledger:     l,
		scanner:    sc,
		assembler:  assembler,
		store:      store,
		logger:     logger.Named("HTTPHandler"),
	}
}

// assetURL maps a produced file's path onto its public URL.
func (h *Handler) assetURL(path string) string {
	return h.store.PublicURL(path)
}

// NewRouter builds the gin engine with middleware, static storage serving and
// every /api route registered.
func (h *Handler) NewRouter(storageRoot string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Generated assets are served directly; the API returns their URLs.
	router.Static("/storage", storageRoot)

	h.RegisterRoutes(router.Group("/api"))
	return router
}

// RegisterRoutes attaches every endpoint to the given group.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/", h.landing)

	api.POST("/story/initialize", h.initializeStory)

	api.POST("/chapter/initialize", h.initializeChapter)
	api.POST("/chapter/delete", h.deleteChapter)

	scenario := api.Group("/scenario")
	{
		scenario.POST("/initialize", h.initializeScene)
		scenario.DELETE("/delete", h.deleteScene)
		scenario.POST("/adjust/position/left", h.moveSceneLeft)
		scenario.POST("/adjust/position/right", h.moveSceneRight)
		scenario.GET("/getCount", h.sceneCount)
		scenario.POST("/assets/fetch", h.sceneAssets)

		scenario.POST("/content/save", h.saveContent)
		scenario.POST("/content/fetch", h.fetchContent)
		scenario.POST("/prompt/save", h.savePrompt)
		scenario.POST("/prompt/fetch", h.fetchPrompt)
		scenario.POST("/sfx/save", h.saveSfx)
		scenario.POST("/sfx/get", h.fetchSfx)

		scenario.POST("/narrate/free/create", h.narrateFree)
		scenario.POST("/narrate/premium/create", h.narratePremium)
		scenario.POST("/image/free/create", h.imageFree)
		scenario.POST("/image/premium/create", h.imagePremium)

		scenario.POST("/complete/chapter/fetch", h.fetchChapterManifest)
		scenario.POST("/complete/story/fetch", h.fetchStoryManifest)
		scenario.POST("/complete/v1/create-pdf", h.createPDF)
	}

	api.GET("/narrate/voices", h.listVoices)

	video := api.Group("/video")
	{
		video.POST("/v1/generate", h.generateVideoV1)
		video.POST("/v2/generate", h.generateVideoV2)
	}

	token := api.Group("/token")
	{
		token.POST("/fund", h.fundTokens)
		token.POST("/deduct", h.deductTokens)
	}

	purchase := api.Group("/purchase")
	{
		purchase.POST("/validate", h.validatePurchase)
		purchase.POST("/create", h.createPurchase)
		purchase.POST("/refund", h.refundPurchase)
		purchase.GET("/transactions", h.listPurchases)
	}

	statistics := api.Group("/statistics")
	{
		statistics.GET("/access/count", h.accountStats)
		statistics.GET("/story/count", h.storyStats)
		statistics.GET("/prompt/count", h.promptStats)
		statistics.GET("/prompt/all", h.allPrompts)
	}
}

// landing reports what is running, mirroring the root payload clients probe.
func (h *Handler) landing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"app":         h.cfg.AppName,
		"base":        h.cfg.BaseURL,
		"port":        h.cfg.Port,
		"version":     h.cfg.Version,
		"environment": h.cfg.Environment,
	})
}
