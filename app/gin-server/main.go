package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/stratus-tools/bug-advisor/config"
	"github.com/stratus-tools/bug-advisor/internal/api/handlers"
	"github.com/stratus-tools/bug-advisor/internal/api/middleware"
	"github.com/stratus-tools/bug-advisor/internal/api/routes"
	"github.com/stratus-tools/bug-advisor/internal/cache"
	"github.com/stratus-tools/bug-advisor/internal/logger"
	"github.com/stratus-tools/bug-advisor/internal/providers/llm"
	pgrepo "github.com/stratus-tools/bug-advisor/internal/repositories/postgres"
	"github.com/stratus-tools/bug-advisor/internal/services"
	"github.com/stratus-tools/bug-advisor/internal/sessions"
	"github.com/stratus-tools/bug-advisor/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL init failed")
	}
	log.Info("PostgreSQL connected")

	if err := config.Bootstrap(config.PostgresDB); err != nil {
		log.WithError(err).Fatal("schema bootstrap failed")
	}

	// Redis is optional: without it sessions live in memory, the hot
	// cache tier is skipped, and rate limiting is off.
	if err := config.InitRedis(); err != nil {
		log.WithError(err).Warn("Redis unavailable, running degraded")
	} else {
		log.Info("Redis connected")
	}

	var (
		hotCache     cache.Cache    = cache.NewNoopCache()
		sessionStore sessions.Store = sessions.NewMemoryStore()
	)
	if config.RedisClient != nil {
		hotCache = cache.NewRedisCache(config.RedisClient)
		sessionStore = sessions.NewRedisStore(config.RedisClient)
	}

	// Repositories
	logRepo := pgrepo.NewQueryLogRepo(config.PostgresDB)
	statsRepo := pgrepo.NewStatsRepo(config.PostgresDB)
	cacheRepo := pgrepo.NewCacheRepo(config.PostgresDB)
	configRepo := pgrepo.NewConfigRepo(config.PostgresDB)
	feedbackRepo := pgrepo.NewFeedbackRepo(config.PostgresDB)
	adminRepo := pgrepo.NewAdminUserRepo(config.PostgresDB)

	// Services
	settingsSvc := services.NewSettingsService(configRepo)
	statsSvc := services.NewStatsService(logRepo, statsRepo, feedbackRepo, log)
	configSvc := services.NewConfigService(configRepo, settingsSvc)
	authSvc := services.NewAuthService(adminRepo, sessionStore)
	feedbackSvc := services.NewFeedbackService(feedbackRepo, logRepo)

	factory := llm.DefaultFactory{
		VertexProject:  os.Getenv("VERTEX_PROJECT_ID"),
		VertexLocation: os.Getenv("VERTEX_LOCATION"),
	}
	analysisSvc := services.NewAnalysisService(hotCache, cacheRepo, statsSvc, settingsSvc, factory, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rebuilder := &workers.StatsRebuilder{
		Stats:    statsSvc,
		Logger:   log,
		Interval: time.Hour,
	}
	if err := rebuilder.Start(ctx); err != nil {
		log.WithError(err).Fatal("stats rebuilder start failed")
	}

	// HTTP
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Analyze:     handlers.NewAnalyzeHandler(analysisSvc),
		Feedback:    handlers.NewFeedbackHandler(feedbackSvc),
		Products:    handlers.NewProductsHandler(),
		Health:      handlers.NewHealthHandler(config.PostgresDB, config.RedisClient, settingsSvc),
		Admin:       handlers.NewAdminHandler(authSvc, configSvc, statsSvc, analysisSvc),
		RateLimit:   middleware.RateLimit(config.RedisClient, settingsSvc, log),
		Maintenance: middleware.Maintenance(settingsSvc),
		SessionAuth: middleware.SessionAuth(authSvc),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("starting server")
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
