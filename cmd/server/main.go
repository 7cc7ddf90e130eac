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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"

	"github.com/pawmarket/media-store/pkg/mediastore/api"
	"github.com/pawmarket/media-store/pkg/mediastore/config"
)

func main() {
	// Load .env file if present; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load(config.WithEnv(""))
	if err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	svc, err := cfg.BuildService()
	if err != nil {
		log.Fatalf("Failed to build media service: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/media", api.NewMediaHandler(svc).Routes())
	})

	// The local backend delivers through the web server's static root; serve
	// it here so uploads are reachable without a separate web server in front.
	if cfg.StorageType == "local" && cfg.PublicRoot != "" {
		prefix := cfg.URLPrefix
		if prefix == "" {
			prefix = "/static"
		}
		fileServer := http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.PublicRoot)))
		r.Handle(prefix+"/*", fileServer)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	go func() {
		log.Printf("Media store server starting on port %s (env: %s)", cfg.Port, cfg.Environment)
		log.Printf("Storage backend: %s, metadata store: %s", cfg.StorageType, cfg.DatabaseType)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
