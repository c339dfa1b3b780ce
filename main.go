package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"example/storefront/internal/auth"
	"example/storefront/internal/config"
	"example/storefront/internal/logger"
	"example/storefront/internal/realtime"
	"example/storefront/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env before anything reads the environment, including the logger
	envErr := godotenv.Load()

	logger.Init()
	defer logger.Sync()

	logger.Log.Info("Starting storefront API server")
	if envErr != nil {
		logger.Log.Warnw("No .env file found, using existing environment variables", "error", envErr)
	}

	cfg := config.Load()

	db, err := server.InitDatabase(cfg)
	if err != nil {
		logger.Log.Fatalw("Failed to initialize database", "error", err)
	}
	defer db.Close()

	hub := realtime.NewHub(server.CatalogStock{DB: db})
	wsHandler := realtime.NewHandler(hub, cfg.AllowedOrigins)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	api := server.NewServer(db, cfg, tokens, wsHandler)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.Router(),
	}

	go func() {
		logger.Log.Infow("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Log.Fatalw("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP shutdown error", "error", err)
	}

	hub.Shutdown()
	logger.Log.Info("Server stopped")
}
