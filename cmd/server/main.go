// File Intake Service - Server Entry Point
//
// Accepts PDF uploads, stores their extracted text and runs it through the
// external AI service on request.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/file-intake/internal/ai"
	"github.com/file-intake/internal/config"
	"github.com/file-intake/internal/dedup"
	"github.com/file-intake/internal/handler"
	"github.com/file-intake/internal/intake"
	"github.com/file-intake/internal/logger"
	"github.com/file-intake/internal/pdf"
	"github.com/file-intake/internal/rules"
	"github.com/file-intake/internal/service"
	"github.com/file-intake/internal/store"
	"github.com/file-intake/pkg/sanitizer"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	// Determine if we're in development mode
	isDev := os.Getenv("GIN_MODE") != "release"

	// Initialize logger
	zapLogger, err := logger.New(logger.Options{
		Development: isDev,
		Service:     "file-intake",
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting file intake service",
		zap.Bool("development", isDev),
	)

	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		zapLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	zapLogger.Info("configuration loaded",
		zap.String("port", cfg.Server.Port),
		zap.String("ai_base_url", cfg.AI.BaseURL),
		zap.Bool("mock_mode", cfg.AI.MockMode),
		zap.Bool("tagging_enabled", cfg.Tagging.Enabled),
		zap.Bool("dedup_enabled", cfg.Redis.URL != ""),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Relational store
	db, err := store.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		zapLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
		zapLogger.Info("database migrations applied")
	}

	readiness := []handler.ReadinessCheck{
		{Name: "database", Check: db.Ping},
	}

	// Optional upload de-duplication
	var dedupIndex service.DedupIndex
	if cfg.Redis.URL != "" {
		idx, err := dedup.New(cfg.Redis.URL, cfg.Redis.DedupTTL)
		if err != nil {
			zapLogger.Fatal("failed to configure redis", zap.Error(err))
		}
		defer idx.Close()
		dedupIndex = idx
		readiness = append(readiness, handler.ReadinessCheck{Name: "redis", Check: idx.Ping})
	}

	// Document tagging
	var tagger service.Tagger
	if cfg.Tagging.Enabled {
		tagger = rules.NewEngine(rules.DefaultRules(), cfg.Tagging.ConfidenceThreshold, zapLogger)
	}

	fileIntake := service.NewFileIntake(
		db,
		dedupIndex,
		pdf.NewExtractor(zapLogger),
		tagger,
		sanitizer.New(cfg.Upload.MaxTextSize, cfg.Upload.RedactSensitive),
		service.FileIntakeConfig{
			MaxFileSize: cfg.Upload.MaxFileSize,
			RecentCount: cfg.Upload.RecentCount,
		},
		zapLogger,
	)

	// AI pipeline
	catalog, err := ai.NewPromptCatalog(cfg.AI.Prompts)
	if err != nil {
		zapLogger.Fatal("failed to build prompt catalog", zap.Error(err))
	}

	var transport ai.Transport
	if cfg.AI.MockMode {
		zapLogger.Warn("running in mock mode - AI responses are simulated")
		transport = ai.NewMockTransport(zapLogger)
	} else {
		httpTransport, err := ai.NewHTTPTransport(&cfg.AI, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to create AI transport", zap.Error(err))
		}
		transport = httpTransport
	}

	interpreter, err := ai.NewResponseInterpreter()
	if err != nil {
		zapLogger.Fatal("failed to create response interpreter", zap.Error(err))
	}

	processor := service.NewProcessor(
		ai.NewRequestBuilder(catalog),
		transport,
		interpreter,
		zapLogger,
	)

	// Folder intake
	if cfg.Intake.WatchDir != "" {
		watcher := intake.NewWatcher(intake.Config{
			Dir:         cfg.Intake.WatchDir,
			OwnerEmail:  cfg.Intake.OwnerEmail,
			SettleDelay: cfg.Intake.SettleDelay,
		}, fileIntake, zapLogger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				zapLogger.Error("intake watcher stopped", zap.Error(err))
			}
		}()
	}

	// Initialize handlers
	filesHandler := handler.NewFilesHandler(fileIntake, cfg.Upload.MaxFileSize, zapLogger)

	// Setup Gin router
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Health: handler.NewHealthHandler(zapLogger),
		Ready:  handler.NewReadyHandler(readiness, zapLogger),
		Files:  filesHandler,
		AI:     handler.NewAIHandler(processor, filesHandler, zapLogger),
		APIKey: cfg.Auth.APIKey,
	}, zapLogger)
	router.MaxMultipartMemory = cfg.Upload.MaxFileSize

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		zapLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	zapLogger.Info("shutting down server...")

	// Give the server 10 seconds to finish processing
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server stopped")
}
