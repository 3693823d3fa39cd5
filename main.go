package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adil-osmanov/german-app/internal/ai"
	"github.com/adil-osmanov/german-app/internal/config"
	"github.com/adil-osmanov/german-app/internal/database"
	"github.com/adil-osmanov/german-app/internal/enrich"
	"github.com/adil-osmanov/german-app/internal/handlers"
	appmetrics "github.com/adil-osmanov/german-app/internal/metrics"
)

func main() {
	cfg := config.Load()

	// Connect to the database
	db, err := database.Connect(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// The AI proxy is optional; without a key its endpoints answer with a
	// structured error instead of failing at startup
	var generator handlers.LessonGenerator
	if cfg.AnthropicAPIKey != "" {
		client, err := ai.New(cfg.AnthropicAPIKey)
		if err != nil {
			log.Fatalf("Failed to create AI client: %v", err)
		}
		generator = client
	} else {
		log.Println("ANTHROPIC_API_KEY not set, AI endpoints disabled")
	}

	enricher := enrich.New(cfg.DictionaryAPIURL)
	appmetrics.MustRegister(prometheus.DefaultRegisterer)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(handlers.MetricsMiddleware)

	h := handlers.NewHandler(db, enricher, generator, cfg.DefaultUsername)
	h.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
