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
	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/internal/api"
	"github.com/themobileprof/momvitals-be/internal/api/middleware"
	"github.com/themobileprof/momvitals-be/internal/assistant"
	"github.com/themobileprof/momvitals-be/internal/audit"
	"github.com/themobileprof/momvitals-be/internal/classifier"
	"github.com/themobileprof/momvitals-be/internal/config"
	"github.com/themobileprof/momvitals-be/internal/db"
	"github.com/themobileprof/momvitals-be/internal/insight"
	"github.com/themobileprof/momvitals-be/internal/logger"
	"github.com/themobileprof/momvitals-be/internal/memory"
	"github.com/themobileprof/momvitals-be/internal/profile"
	"github.com/themobileprof/momvitals-be/internal/risk"
	"github.com/themobileprof/momvitals-be/internal/routine"
	"github.com/themobileprof/momvitals-be/internal/subscription"
	"github.com/themobileprof/momvitals-be/internal/ws"
	"github.com/themobileprof/momvitals-be/pkg/deepseek"
	"github.com/themobileprof/momvitals-be/pkg/gemini"
	"github.com/themobileprof/momvitals-be/pkg/llm"
	"github.com/themobileprof/momvitals-be/pkg/openai"
)

const maxBodyBytes = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "momvitals-be")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	// Initialize database
	database, err := db.Open(ctx, cfg.DatabaseURL, db.Pool{
		MaxOpenConns:    cfg.DBMaxConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		zapLogger.Fatal("failed to migrate database", zap.Error(err))
	}
	zapLogger.Info("database connected")

	// Profile cache: Redis when configured, memory otherwise
	var profiles profile.Cache
	if cfg.RedisAddr != "" {
		client, err := profile.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			zapLogger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		profiles = profile.NewRedisCache(client, "", cfg.ProfileTTL)
		zapLogger.Info("profile cache using redis", zap.String("addr", cfg.RedisAddr))
	} else {
		profiles = profile.NewMemoryCache(cfg.ProfileTTL)
		zapLogger.Info("profile cache using memory")
	}

	// Audit trail: SQLite file unless memory is requested
	var trail audit.Store
	if cfg.AuditPath == config.AuditMemory {
		trail = audit.NewMemoryStore()
	} else {
		sqliteStore, err := audit.NewSQLiteStore(ctx, cfg.AuditPath)
		if err != nil {
			zapLogger.Fatal("failed to open audit store", zap.Error(err))
		}
		defer sqliteStore.Close()
		trail = sqliteStore
	}

	// Model client
	insightSvc, err := insight.NewService(newLLMClient(cfg, zapLogger), insight.Config{
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to create insight service", zap.Error(err))
	}
	zapLogger.Info("insight service ready", zap.String("provider", cfg.LLMProvider), zap.Bool("enabled", insightSvc.Enabled()))

	// Initialize components
	thresholds := risk.DefaultThresholds()
	thresholds.SugarHighAbove = cfg.SugarHighThreshold
	engine := risk.NewEngineWithThresholds(thresholds)
	catalog := routine.NewCatalog()
	subMgr := subscription.NewManager(database.DB)

	chatEngine := assistant.NewEngine(classifier.NewClassifier(), engine, profiles, zapLogger).
		WithHistory(memory.NewHistory(cfg.ChatHistorySize))
	if insightSvc.Enabled() {
		chatEngine.WithAnswerer(insightSvc)
	}

	assessor := api.NewAssessor(engine, insightSvc, catalog, trail, zapLogger)

	// Initialize handlers
	authHandler := api.NewAuthHandler(database, subMgr, cfg.JWTSecret, cfg.TokenTTL, zapLogger)
	assessHandler := api.NewAssessHandler(assessor)
	vitalsHandler := api.NewVitalsHandler(database, profiles, assessor, cfg.Location, zapLogger)
	routineHandler := api.NewRoutineHandler(catalog, engine, profiles, zapLogger)
	reminderHandler := api.NewReminderHandler(database, cfg.Location, zapLogger)
	chatHandler := api.NewChatHandler(chatEngine, assessor, zapLogger)
	auditHandler := api.NewAuditHandler(trail, zapLogger)
	healthHandler := api.NewHealthHandler(database, insightSvc)
	wsHandler := ws.NewChatHandler(chatEngine, assessor, cfg.JWTSecret, cfg.CORSOrigins, zapLogger)

	// Setup Gin router
	if cfg.LogFormat != "console" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.LimitBodySize(maxBodyBytes))

	// Apply global rate limiting (100 req/min per IP, burst of 200)
	router.Use(middleware.PerIP(100.0/60.0, 200))

	router.GET("/health", healthHandler.Health)

	// Auth routes (public)
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.JWTAuth(cfg.JWTSecret), authHandler.Me)
	}

	// Stateless rule-only assessment (public, 20 req/min per IP)
	router.POST("/api/assess", middleware.PerIP(20.0/60.0, 20), assessHandler.Assess)

	// Protected routes with per-user rate limiting (500/hour)
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuth(cfg.JWTSecret))
	protected.Use(middleware.PerUser(500.0/3600.0, 100))
	{
		protected.POST("/vitals", vitalsHandler.Submit)
		protected.GET("/vitals/latest", vitalsHandler.Latest)
		protected.GET("/vitals/history", vitalsHandler.History)
		protected.GET("/vitals/export", vitalsHandler.Export)
		protected.GET("/assessment", vitalsHandler.Assessment)

		protected.GET("/routines", routineHandler.List)
		protected.GET("/routines/:slug", routineHandler.PremiumGate(subMgr), routineHandler.Get)

		protected.GET("/reminders", reminderHandler.GetReminders)
		protected.POST("/reminders", reminderHandler.CreateReminder)
		protected.PUT("/reminders/:id", reminderHandler.UpdateReminder)
		protected.DELETE("/reminders/:id", reminderHandler.DeleteReminder)

		protected.GET("/chat/:channel", chatHandler.Greeting)
		protected.POST("/chat/:channel", chatHandler.Send)
		protected.GET("/chat/:channel/history", chatHandler.History)
		protected.DELETE("/chat/:channel/history", chatHandler.ClearHistory)

		protected.GET("/audit", auditHandler.Latest)
	}

	// WebSocket chat route (protected via query param/header)
	router.GET("/ws/chat", wsHandler.HandleChat)

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		zapLogger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server exited")
}

// newLLMClient returns the configured provider's client, or nil when model
// insights are disabled
func newLLMClient(cfg *config.Config, logger *zap.Logger) llm.Client {
	switch cfg.LLMProvider {
	case config.ProviderDeepSeek:
		return deepseek.NewHTTPClient(deepseek.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		})
	case config.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:     cfg.LLMAPIKey,
			BaseURL:    cfg.LLMBaseURL,
			Model:      cfg.LLMModel,
			Timeout:    cfg.LLMTimeout,
			RetryCount: 2,
		}, logger)
	case config.ProviderGemini:
		return gemini.NewClient(gemini.Config{
			APIKey:     cfg.LLMAPIKey,
			BaseURL:    cfg.LLMBaseURL,
			Model:      cfg.LLMModel,
			Timeout:    cfg.LLMTimeout,
			RetryCount: 2,
		}, logger)
	default:
		return nil
	}
}
