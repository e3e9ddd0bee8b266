package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis"
	"github.com/xpanvictor/xarvis-voice/internal/app"
	"github.com/xpanvictor/xarvis-voice/internal/config"
	"github.com/xpanvictor/xarvis-voice/internal/database"
	"github.com/xpanvictor/xarvis-voice/internal/db"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
	"gorm.io/gorm"
)

// @title Xarvis Voice API
// @version 1.0
// @description Real-time voice conversation engine.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// This is the main entry point for the API server.
// Loads in all system components
// Exposes functionalities
func main() {
	// fetch cfg
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// load global logger
	logger := Logger.New(cfg.Debug)
	defer func() { _ = logger.Sync() }()
	logger.Info("Logger initialized")

	// fetch database connection
	var gdb *gorm.DB
	if cfg.DB.Enabled() {
		gdb, err = db.InitDB(cfg.DB)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		// handle migrations
		if err := database.MigrateDB(gdb); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
	} else {
		logger.Info("No database configured, conversation history stays in memory")
	}

	var rc *redis.Client
	if cfg.Cache.Backend == "redis" {
		rc, err = database.NewRedis(cfg.Redis)
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
	}

	ctx := context.Background()
	application, err := app.NewApp(ctx, cfg, logger, gdb, rc)
	if err != nil {
		logger.Fatalf("Failed to build application: %v", err)
	}
	if err := application.Start(); err != nil {
		logger.Fatalf("Failed to start background tasks: %v", err)
	}

	// listen with graceful exit
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: application.Router().Handler(),
	}
	go func() {
		logger.Infof("Listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server exiting: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	// hijacked websocket connections are not covered by Shutdown
	if err := application.Close(); err != nil {
		logger.Errorf("Shutdown err: %v", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown err: %v", err)
	}
	logger.Info("Shutdown system")
}
