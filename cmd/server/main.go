package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bhoomisetu/search/internal/config"
	"bhoomisetu/search/internal/handler"
	"bhoomisetu/search/internal/logger"
	"bhoomisetu/search/internal/repository"
	"bhoomisetu/search/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("Bhoomisetu search engine starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	gin.SetMode(cfg.Server.GinMode)

	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer repo.Close()
	zlog.Info("Connected to PostgreSQL database")

	var geocoder service.LocationNormalizer = service.NewGeocoder(cfg.Geocoding, zlog)
	if cfg.Geocoding.GoogleAPIKey == "" && cfg.Geocoding.MapboxAPIKey == "" {
		zlog.Warn("No geocoding API key configured, location normalization degrades to local parsing")
	}

	if cfg.Redis.Addr != "" {
		kv, err := repository.NewRedisKV(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CacheTTL)
		if err != nil {
			zlog.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer kv.Close()
		geocoder = service.NewCachedGeocoder(geocoder, kv, zlog)
		zlog.Info("Geocode cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	ranker := service.NewRankingClient(cfg.Ranking, zlog)
	searchService := service.NewSearchService(
		repo,
		geocoder,
		ranker,
		zlog,
		cfg.Search.DefaultLimit,
		cfg.Search.MaxLimit,
	)

	searchHandler := handler.NewSearchHandler(searchService)
	locationHandler := handler.NewLocationHandler(geocoder)
	embeddingHandler := handler.NewEmbeddingHandler(repo)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "bhoomisetu-search",
			"version": Version,
			"geocoding": gin.H{
				"google": cfg.Geocoding.GoogleAPIKey != "",
				"mapbox": cfg.Geocoding.MapboxAPIKey != "",
			},
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/search", searchHandler.Search)
		apiV1.GET("/search/properties", searchHandler.Search)
		apiV1.GET("/search/suggestions", searchHandler.Suggestions)
		apiV1.GET("/locations/geocode", locationHandler.Geocode)
		apiV1.POST("/embeddings/batch", embeddingHandler.BatchUpdate)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		zlog.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("Forced shutdown", zap.Error(err))
	}
	zlog.Info("Server stopped")
}
