// propdash dashboard server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ashureev/propdash/internal/api"
	"github.com/ashureev/propdash/internal/apiclient"
	"github.com/ashureev/propdash/internal/auth"
	"github.com/ashureev/propdash/internal/chat"
	"github.com/ashureev/propdash/internal/config"
	"github.com/ashureev/propdash/internal/credential"
	"github.com/ashureev/propdash/internal/identity"
	"github.com/ashureev/propdash/internal/intent"
	"github.com/ashureev/propdash/internal/metrics"
	"github.com/ashureev/propdash/internal/middleware"
	"github.com/ashureev/propdash/internal/render"
	"github.com/ashureev/propdash/internal/store"
	"github.com/ashureev/propdash/web"
)

const (
	chatSweepInterval = 5 * time.Minute
	chatIdleTimeout   = 2 * time.Hour
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "api", cfg.APIBaseURL)

	durable, err := store.Open(cfg)
	if err != nil {
		slog.Error("Failed to open credential store", "backend", cfg.CredentialBackend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := durable.Close(); closeErr != nil {
			slog.Error("Failed to close credential store", "error", closeErr)
		}
	}()
	slog.Info("Credential store connected", "backend", cfg.CredentialBackend)

	vocab := intent.DefaultVocabulary()
	if cfg.VocabularyPath != "" {
		vocab, err = intent.LoadVocabulary(cfg.VocabularyPath)
		if err != nil {
			slog.Error("Failed to load intent vocabulary", "path", cfg.VocabularyPath, "error", err)
			os.Exit(1)
		}
		slog.Info("Intent vocabulary loaded", "path", cfg.VocabularyPath)
	}
	classifier := intent.New(vocab)

	vault := credential.NewVault(durable, credential.NewMemoryStore())
	client := apiclient.New(cfg.APIBaseURL, vault, apiclient.WithTimeout(cfg.APITimeout))
	session := auth.NewSession(vault, client)
	client.OnSessionExpired(session.Expire)

	transcript, err := chat.NewTranscriptLogger(cfg.ChatLog, logger)
	if err != nil {
		slog.Error("Failed to initialize chat transcript", "error", err)
		os.Exit(1)
	}
	chatMgr := chat.NewManager(session, client, classifier, transcript)
	defer chatMgr.CloseAll()

	limiter := chat.NewRateLimiter(cfg.ChatRateLimit.RequestsPerWindow, cfg.ChatRateLimit.WindowDuration)
	renderer := render.NewHTML()

	// Initialize handlers.
	baseHandler := api.NewHandler(session, client, cfg.MaxRequestBody)
	healthHandler := api.NewHealthHandler(baseHandler, durable)
	sessionHandler := api.NewSessionHandler(baseHandler)
	chatHandler := api.NewChatHandler(baseHandler, chatMgr, limiter, renderer)
	dashboardHandler := api.NewDashboardHandler(baseHandler)
	staffHandler := api.NewStaffHandler(baseHandler)
	propertyHandler := api.NewPropertyHandler(baseHandler)
	wsHandler := chat.NewWebSocketHandler(chatMgr, session, limiter, renderer, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	// Public routes.
	r.Handle("/metrics", metrics.Handler())
	healthHandler.RegisterRoutes(r)
	sessionHandler.RegisterRoutes(r)
	chatHandler.RegisterRoutes(r)
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	// Dashboard routes wait for the stored token to be validated.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(session))
		dashboardHandler.RegisterRoutes(r)
		staffHandler.RegisterRoutes(r)
		propertyHandler.RegisterRoutes(r)
	})

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket feed
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := session.Init(ctx); err != nil {
			slog.Error("Failed to restore session", "error", err)
		}
		slog.Info("Auth session ready", "authenticated", session.IsAuthenticated())
	}()

	chatMgr.StartSweeper(ctx, chatSweepInterval, chatIdleTimeout)
	limiter.StartEviction(ctx)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
