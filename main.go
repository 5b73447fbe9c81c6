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

	"github.com/isdelr/planforge-be/internal/api"
	"github.com/isdelr/planforge-be/internal/auth"
	"github.com/isdelr/planforge-be/internal/completion"
	"github.com/isdelr/planforge-be/internal/config"
	"github.com/isdelr/planforge-be/internal/database"
	"github.com/isdelr/planforge-be/internal/logger"
	"github.com/isdelr/planforge-be/internal/monitoring"
	"github.com/isdelr/planforge-be/internal/services"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	auth.Init(cfg.JWTSecret)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up the completion client
	completionClient := completion.New(cfg.OpenAIAPIKey)

	// Set up services
	userService := services.NewUserService(db)
	planService := services.NewPlanService(db, completionClient)
	trendingService := services.NewTrendingService()

	// Set up and run the background trending-ideas refresher
	refresher, err := monitoring.NewTrendingRefresher(trendingService, completionClient, cfg.TrendingRefresh)
	if err != nil {
		log.Fatalf("Failed to initialize trending refresher: %v", err)
	}
	go refresher.Run()

	// Set up router
	router := api.NewRouter(userService, planService, trendingService, cfg.StaticDir)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
