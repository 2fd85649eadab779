package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/miroads/go-road-risk/internal/api"
	"github.com/miroads/go-road-risk/internal/config"
	"github.com/miroads/go-road-risk/internal/directions"
	"github.com/miroads/go-road-risk/internal/ingestion"
	"github.com/miroads/go-road-risk/internal/logging"
	"github.com/miroads/go-road-risk/internal/repository"
	"github.com/miroads/go-road-risk/internal/risk"
	"github.com/miroads/go-road-risk/internal/textanalysis"
	"github.com/miroads/go-road-risk/internal/weather"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start ingestion manager
	feed := ingestion.NewFeedClient(cfg.Feed.URLs)
	mgr := ingestion.NewManager(cfg, db, feed)
	mgr.Start(ctx)

	weatherClient := weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey)
	directionsClient := directions.NewGoogleClient(cfg.Directions.BaseURL, cfg.Directions.APIKey)

	var analyzer risk.Analyzer
	if cfg.TextAnalysis.Enabled {
		analyzer = textanalysis.NewClient(cfg.TextAnalysis.BaseURL, cfg.TextAnalysis.APIKey)
		slog.Info("text analysis enrichment enabled")
	}

	aggregator := risk.NewAggregator(weatherClient, db, analyzer)
	aggregator.SampleTarget = cfg.Risk.SampleTarget
	aggregator.RouteThresholdMiles = cfg.Risk.RouteThresholdMiles
	aggregator.LookbackDays = cfg.Risk.LookbackDays

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(5)) // 5 req/s global limit

	handler := api.NewHandler(db, mgr, directionsClient, weatherClient, aggregator, cfg.Risk.NearbyRadiusMiles)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mgr.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
