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

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/kgwiazdak/sprint-planning-copilot/pkg/validator"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/adapter/handler"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/adapter/repository"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/infrastructure/database"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/infrastructure/queue"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/infrastructure/storage"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/usecase/extraction"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/usecase/jirapush"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/usecase/voice"
	pkgai "github.com/kgwiazdak/sprint-planning-copilot/pkg/ai"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/config"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/jira"
	"github.com/kgwiazdak/sprint-planning-copilot/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	log.Println("🔄 Applying schema migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	// Import queue
	log.Println("📦 Connecting to Redis...")
	importQueue, err := queue.NewRedisQueue(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer importQueue.Close()

	// Object storage, one client per bucket
	log.Println("🪣 Connecting to object storage...")
	recordingStore, err := storage.NewMinIOClient(&cfg.Storage, cfg.Storage.RecordingBucket)
	if err != nil {
		log.Fatalf("Failed to initialize recording bucket: %v", err)
	}
	artifactStore, err := storage.NewMinIOClient(&cfg.Storage, cfg.Storage.ArtifactBucket)
	if err != nil {
		log.Fatalf("Failed to initialize artifact bucket: %v", err)
	}
	voiceStore, err := storage.NewMinIOClient(&cfg.Storage, cfg.Storage.VoiceBucket)
	if err != nil {
		log.Fatalf("Failed to initialize voice sample bucket: %v", err)
	}

	// Repositories
	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	runRepo := repository.NewExtractionRunRepository(db)
	userRepo := repository.NewUserRepository(db)

	// AI providers
	log.Println("🤖 Initializing AI components...")
	var transcriber pkgai.Transcriber
	if cfg.Transcription.UseMock {
		log.Println("⚠️  Transcription running in MOCK mode")
		transcriber = pkgai.NewMockTranscriber()
	} else {
		transcriber = pkgai.NewAssemblyAIClient(&cfg.Transcription)
	}

	var extractor pkgai.Extractor
	if cfg.Extractor.UseMock {
		log.Println("⚠️  Task extraction running in MOCK mode")
		extractor = pkgai.NewMockExtractor()
	} else {
		extractor = pkgai.NewGroqClient(&cfg.Extractor)
	}

	// Tracker client
	var issueCreator jira.IssueCreator
	if cfg.Jira.UseMock {
		log.Println("⚠️  Jira running in MOCK mode")
		issueCreator = jira.NewMockClient(cfg.Jira.ProjectKey)
	} else {
		issueCreator = jira.NewClient(&cfg.Jira)
	}

	// Voice profiles: reconcile users with the sample bucket before the
	// worker can pick up any job
	log.Println("🎙️ Syncing voice profiles...")
	syncer := voice.NewSyncer(voiceStore, userRepo, logger)
	if _, err := syncer.Sync(context.Background()); err != nil {
		log.Printf("⚠️  Voice profile sync failed: %v", err)
	}

	// Extraction pipeline and worker
	telemetry := extraction.NewTelemetryRecorder(artifactStore, logger)
	extractionService := extraction.NewService(
		meetingRepo, runRepo, userRepo,
		transcriber, extractor, telemetry,
		recordingStore, voiceStore, artifactStore,
		cfg, logger,
	)
	worker := extraction.NewWorker(importQueue, meetingRepo, extractionService, cfg, logger)
	if cfg.Worker.Enabled {
		worker.Start()
		defer worker.Stop()
	} else {
		log.Println("⚠️  Import worker disabled, submissions will stay queued")
	}

	// Push service
	pushService := jirapush.NewService(taskRepo, userRepo, issueCreator, logger)

	// Bearer-token auth for mutating routes
	var tokens *jwt.Manager
	if cfg.Auth.Enabled {
		log.Println("🔑 Bearer-token auth enabled")
		tokens = jwt.NewManager(cfg.Auth.TokenSecret, cfg.Auth.TokenExpiry)
	} else {
		log.Println("⚠️  Bearer-token auth disabled")
	}

	// Handlers and routes
	log.Println("🛣️  Setting up routes...")
	meetingHandler := handler.NewMeetingHandler(meetingRepo, taskRepo, importQueue, worker, logger)
	taskHandler := handler.NewTaskHandler(taskRepo, pushService)
	userHandler := handler.NewUserHandler(userRepo)
	storageHandler := handler.NewStorageHandler(recordingStore, cfg.Storage.UploadURLExpiry, logger)

	router := handler.NewRouter(cfg, meetingHandler, taskHandler, userHandler, storageHandler, tokens)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
