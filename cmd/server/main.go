package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"ultrachat-backend/internal/config"
	"ultrachat-backend/internal/database"
	"ultrachat-backend/internal/handlers"
	"ultrachat-backend/internal/llm"
	"ultrachat-backend/internal/logger"
	"ultrachat-backend/internal/middleware"
	"ultrachat-backend/internal/repository"
	"ultrachat-backend/internal/router"
	"ultrachat-backend/internal/services"
	"ultrachat-backend/internal/session"
	"ultrachat-backend/internal/views"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	log.Info("🚀 Starting UltraChat...")
	log.Info("✓ Environment variables loaded")
	if cfg.UsesDevSecret() {
		log.Warn("SECRET_KEY not set, using the development secret")
	}

	// ──── Step 2: Open the Chat Store ────
	users, chats, closeStore, err := openStores(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("✗ Database initialization failed")
	}
	defer closeStore()
	log.WithField("driver", cfg.DBDriver).Info("✓ Database ready")

	// ──── Step 3: Initialize Sessions ────
	sessions := session.NewManager(cfg.SecretKey, cfg.SessionTTL)
	stopSweeper := sessions.StartSweeper(time.Minute)
	defer stopSweeper()
	log.WithField("ttl", cfg.SessionTTL.String()).Info("✓ Session manager started")

	// ──── Step 4: Initialize Completion Client ────
	completer, closeCompleter, err := newCompleter(cfg)
	if err != nil {
		log.WithError(err).Fatal("✗ Completion client initialization failed")
	}
	defer closeCompleter()
	log.WithFields(logrus.Fields{"provider": cfg.LLMProvider, "model": cfg.LLMModel}).Info("✓ Completion client initialized")
	if (cfg.LLMProvider == "openai" && cfg.OpenAIAPIKey == "") || (cfg.LLMProvider == "gemini" && cfg.GeminiAPIKey == "") {
		log.Warn("no completion API key set, chat requests will fail")
	}

	// ──── Initialize Services ────
	authService := services.NewAuthService(users, sessions)
	chatService := services.NewChatService(chats, completer, services.ChatOptions{
		SystemPrompt: cfg.SystemPrompt,
		Timeout:      cfg.CompletionTimeout,
	})

	renderer, err := views.New()
	if err != nil {
		log.WithError(err).Fatal("✗ Template parsing failed")
	}

	// ──── Initialize Handlers ────
	sessionAuth := middleware.NewSessionAuth(sessions, !cfg.IsDevelopment())
	authHandler := handlers.NewAuthHandler(authService, sessionAuth, renderer, log)
	dashboardHandler := handlers.NewDashboardHandler(chatService, renderer, cfg.HistoryLimit, log)
	chatHandler := handlers.NewChatHandler(chatService, renderer, log)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(sessionAuth, authHandler, dashboardHandler, chatHandler, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.CompletionTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Infof("✓ UltraChat ready on http://localhost:%s", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.WithError(err).Fatal("Server error")
	}
}

func openStores(cfg *config.Config, log logrus.FieldLogger) (services.UserStore, services.ChatStore, func(), error) {
	switch cfg.DBDriver {
	case "sqlite":
		db, err := database.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.RunSQLiteMigrations(db, database.SQLiteMigrations, log); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return repository.NewSQLiteUserRepo(db), repository.NewSQLiteChatRepo(db), func() { db.Close() }, nil

	case "postgres":
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.RunMigrations(pool, database.PostgresMigrations, log); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return repository.NewUserRepo(pool), repository.NewChatRepo(pool), pool.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// newCompleter never checks API keys; a missing key surfaces on the first chat.
func newCompleter(cfg *config.Config) (llm.Completer, func(), error) {
	switch cfg.LLMProvider {
	case "openai":
		client := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
		return llm.NewOpenAICompleter(client, cfg.LLMModel), func() {}, nil

	case "gemini":
		c := llm.NewGeminiCompleter(cfg.GeminiAPIKey, cfg.LLMModel)
		return c, func() { c.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}
}
