package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"portfolio/api/internal/app"
	"portfolio/api/internal/assistant"
	"portfolio/api/internal/auth"
	"portfolio/api/internal/config"
	"portfolio/api/internal/email"
	"portfolio/api/internal/media"
	"portfolio/api/internal/moderation"
	"portfolio/api/internal/search"
	"portfolio/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	gate := auth.NewGate(cfg.AdminSecret, cfg.AdminBcrypt)
	if !gate.Configured() {
		log.Printf("WARNING: no admin secret configured, every admin call will be rejected")
	}

	deps := app.Deps{Gate: gate}
	var fallback search.Searcher

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()

		if err := store.ApplyMigrations(ctx, db, store.Migrations(cfg.MigrationsDir)); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}

		pg := store.NewPostgresStore(db)
		deps.Content = pg
		deps.Moderation = pg
		fallback = search.NewPgFTS(db)
	} else {
		log.Printf("DATABASE_URL not set, using in-memory store (data is lost on restart)")
		mem := store.NewMemoryStore()
		deps.Content = mem
		deps.Moderation = mem
		fallback = search.NewMemory()
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for the blocked-visitor set")
		redisStore, err := moderation.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		deps.Moderation = redisStore
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	deps.Search = search.NewService(meiliClient, fallback)

	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		minioCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		objects, err := media.NewMinio(minioCtx, media.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MediaPublicURL,
		})
		cancel()
		if err != nil {
			log.Printf("WARNING: media storage unavailable, uploads disabled: %v", err)
		} else {
			deps.Media = objects
		}
	}

	mailer := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		NotifyTo: cfg.NotifyEmail,
	})
	if mailer.IsConfigured() {
		deps.Notifier = mailer
	}

	gemini := assistant.NewGemini(assistant.Config{
		BaseURL: cfg.AssistantURL,
		APIKey:  cfg.AssistantKey,
		Model:   cfg.AssistantModel,
		Timeout: cfg.AssistantTimeout,
	})
	if gemini.Configured() {
		deps.Assistant = gemini
	}

	service := app.New(deps)
	if err := service.Bootstrap(ctx); err != nil {
		log.Printf("WARNING: bootstrap error (search index may be stale): %v", err)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin, cfg.RequestTimeout)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Portfolio API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
