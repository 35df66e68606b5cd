package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/chantier/internal/logger"
	"github.com/existflow/chantier/server"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "postgres://localhost:5432/chantier?sslmode=disable"
	}

	cfg := logger.DefaultConfig()
	cfg.Console = true
	cfg.FilePath = os.Getenv("LOG_FILE")
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.Level = logger.ParseLevel(lvl)
	}
	if err := logger.Init(cfg); err != nil {
		log.Printf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	srv, err := server.New(server.Config{
		DatabaseURL: dbURL,
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AccessLog:   os.Getenv("ACCESS_LOG") == "true",
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Chantier API server starting on :%s", port)
		errCh <- srv.Start(":" + port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		log.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown failed: %v", err)
		}
	}
}
