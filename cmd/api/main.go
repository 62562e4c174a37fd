package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/minqi/ai-chat/backend/internal/config"
	"github.com/minqi/ai-chat/backend/internal/handler"
	"github.com/minqi/ai-chat/backend/internal/model/persona"
	"github.com/minqi/ai-chat/backend/internal/service/ai"
	"github.com/minqi/ai-chat/backend/internal/service/session"
	"github.com/minqi/ai-chat/backend/internal/service/upload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	sessionStore := session.NewStore()

	uploadSvc, err := upload.NewProcessor(cfg.Upload.Dir)
	if err != nil {
		log.Fatalf("failed to prepare upload directory: %v", err)
	}

	aiService := ai.NewService(cfg.AI)
	if !aiService.Configured() {
		log.Println("warning: TOGETHER_API_KEY not set, chat requests will fail until it is configured")
	}

	logStartupBanner(cfg)

	router := handler.NewRouter(aiService, sessionStore, personaStore, uploadSvc, cfg.Upload.MaxBytes)
	startServer(ctx, cfg.Server, router)
}

// logStartupBanner reports the effective configuration without leaking
// the API key itself.
func logStartupBanner(cfg *config.Config) {
	log.Println("=== AI Chat Server ===")
	log.Printf("upstream base URL: %s", cfg.AI.BaseURL)
	log.Printf("upstream model: %s", cfg.AI.Model)
	log.Printf("API key (length): %d characters", len(cfg.AI.APIKey))
	log.Printf("upload folder: %s", cfg.Upload.Dir)
	log.Printf("max upload size: %d bytes", cfg.Upload.MaxBytes)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("AI chat backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
