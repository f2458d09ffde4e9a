package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/inkwellhq/inkwell/backend/internal/analytics"
	"github.com/inkwellhq/inkwell/backend/internal/cache"
	"github.com/inkwellhq/inkwell/backend/internal/database"
	"github.com/inkwellhq/inkwell/backend/internal/feed"
	"github.com/inkwellhq/inkwell/backend/internal/handlers"
	"github.com/inkwellhq/inkwell/backend/internal/logger"
	"github.com/inkwellhq/inkwell/backend/internal/metrics"
	"github.com/inkwellhq/inkwell/backend/internal/middleware"
	"github.com/inkwellhq/inkwell/backend/internal/repository"
	"github.com/inkwellhq/inkwell/backend/internal/search"
	"github.com/inkwellhq/inkwell/backend/internal/telemetry"
	"github.com/inkwellhq/inkwell/backend/internal/util"
)

const serviceName = "inkwell-api"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== Inkwell server starting ===")

	metrics.Initialize()

	// Initialize database and run migrations
	if err := database.Initialize(); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis backs the trending cache and the rate limiter. The API serves
	// without it, so a connection failure only logs.
	cacheClient, err := cache.NewClient()
	if err != nil {
		logger.Log.Warn("Redis unavailable, caching and rate limiting disabled", zap.Error(err))
		cacheClient = nil
	} else {
		defer cacheClient.Close()
	}

	// Elasticsearch is optional too: without it, search serves from the
	// database fallback
	var searchClient *search.Client
	if os.Getenv("ELASTICSEARCH_URL") != "" {
		searchClient, err = search.NewClient()
		if err != nil {
			logger.Log.Warn("Elasticsearch unavailable, search falls back to database", zap.Error(err))
			searchClient = nil
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := searchClient.InitializeIndices(ctx); err != nil {
				logger.Log.Warn("Failed to initialize search indices", zap.Error(err))
			}
			cancel()
		}
	} else {
		logger.Log.Info("ELASTICSEARCH_URL not set, search serves from database")
	}

	tracerProvider, err := telemetry.InitTracer(telemetry.ConfigFromEnv(serviceName))
	if err != nil {
		logger.Log.Warn("Failed to initialize tracing", zap.Error(err))
	}

	// Wire repositories, services, and handlers
	feedService := feed.NewService(repository.NewFeedRepository(database.DB))
	if cacheClient != nil {
		feedService.SetCache(cacheClient)
	}

	h := handlers.NewHandlers(
		feedService,
		repository.NewPostRepository(database.DB),
		analytics.NewTracker(database.DB),
	)
	if searchClient != nil {
		h.SetSearchClient(searchClient)
	}

	// Setup Gin router
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.MetricsMiddleware(),
		otelgin.Middleware(serviceName),
	)

	// CORS middleware
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"} // Configure properly for production
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-User-ID", "X-Request-ID"}
	r.Use(cors.New(config))

	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Health check and Prometheus scrape endpoints
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rateLimitMax := util.ParseInt(os.Getenv("RATE_LIMIT_REQUESTS"), 300)
	rateLimitWindow := time.Duration(util.ParseInt(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 60)) * time.Second

	// API routes
	api := r.Group("/api/v1")
	api.Use(
		middleware.IdentityMiddleware(),
		middleware.SpanEnrichmentMiddleware(),
		middleware.RateLimitMiddleware(cacheClient, rateLimitMax, rateLimitWindow),
	)
	{
		// Feed routes
		api.GET("/feed", h.GetFeed)
		api.GET("/feed/trending", h.GetTrendingFeed)

		// Post routes
		api.POST("/posts", h.CreatePost)
		api.GET("/posts", h.BrowsePosts)
		api.GET("/posts/:id", h.GetPost)
		api.POST("/posts/:id/publish", h.PublishPost)
		api.DELETE("/posts/:id", h.DeletePost)

		// Engagement routes
		api.POST("/posts/:id/view", h.RecordView)
		api.POST("/posts/:id/read", h.MarkRead)
		api.POST("/posts/:id/reactions", h.React)
		api.DELETE("/posts/:id/reactions", h.Unreact)
		api.POST("/posts/:id/comments", h.CreateComment)
		api.GET("/posts/:id/comments", h.GetComments)
		api.POST("/posts/:id/click", h.TrackPostClick)

		// Taxonomy routes
		api.GET("/categories", h.GetCategories)
		api.GET("/tags", h.GetTags)

		// Follow routes
		api.POST("/follows/authors/:id", h.FollowAuthor)
		api.DELETE("/follows/authors/:id", h.UnfollowAuthor)
		api.POST("/follows/categories/:id", h.FollowCategory)
		api.DELETE("/follows/categories/:id", h.UnfollowCategory)
		api.POST("/follows/tags/:id", h.FollowTag)
		api.DELETE("/follows/tags/:id", h.UnfollowTag)
		api.GET("/follows", h.GetFollows)

		// Search routes
		api.GET("/search/posts", h.SearchPosts)

		// Analytics routes
		api.GET("/analytics/ctr", h.GetCTR)
	}

	// Server configuration
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info("Inkwell backend listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := telemetry.Shutdown(ctx, tracerProvider); err != nil {
		logger.Log.Warn("Tracer shutdown failed", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
