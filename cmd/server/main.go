package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"drivehub/internal/auth"
	"drivehub/internal/blob"
	"drivehub/internal/config"
	"drivehub/internal/domain/repositories"
	"drivehub/internal/handler"
	"drivehub/internal/middleware"
	"drivehub/internal/repository/memory"
	"drivehub/internal/repository/postgres"
	"drivehub/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.MaxLogFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage_backend", cfg.StorageBackend,
	)

	ctx := context.Background()

	// Metadata store: postgres when DATABASE_URL is set, in-memory otherwise
	folderRepo, fileRepo := buildRepositories(ctx, cfg, logger)

	// Blob store
	blobStore := buildBlobStore(ctx, cfg)

	// Local browser root allowlist
	localRoots, err := config.LoadLocalRoots(cfg.LocalRootsFile)
	if err != nil {
		log.Fatalf("Failed to load local roots: %v", err)
	}

	// Services
	fileService := service.NewFileService(fileRepo, folderRepo, blobStore, logger)
	folderService := service.NewFolderService(folderRepo, fileService, logger)
	localService := service.NewLocalService(cfg.LocalDefaultDir, localRoots, logger)

	// Handlers
	folderHandler := handler.NewFolderHandler(folderService, logger)
	fileHandler := handler.NewFileHandler(fileService, logger)
	localHandler := handler.NewLocalHandler(localService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.Create)
	mux.HandleFunc("GET /api/folders", folderHandler.List)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.Get)
	mux.HandleFunc("PUT /api/folders/{id}", folderHandler.Update)
	mux.HandleFunc("PUT /api/folders/{id}/move", folderHandler.Move)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.Delete)

	// File routes
	mux.HandleFunc("POST /api/files/upload", fileHandler.Upload)
	mux.HandleFunc("GET /api/files", fileHandler.List)
	mux.HandleFunc("GET /api/files/{id}/download", fileHandler.Download)
	mux.HandleFunc("PUT /api/files/{id}", fileHandler.Update)
	mux.HandleFunc("PUT /api/files/{id}/move", fileHandler.Move)
	mux.HandleFunc("DELETE /api/files/{id}", fileHandler.Delete)

	// Local browser routes
	mux.HandleFunc("GET /api/local/files", localHandler.List)
	mux.HandleFunc("GET /api/local/download", localHandler.Download)

	// Build middleware chain (applied in reverse order, they wrap each other)
	// Order: CORS -> Recovery -> Auth -> Routes
	var root http.Handler = mux

	if cfg.AuthDisabled {
		logger.Warn("AUTH DISABLED: every request acts as the dev owner", "owner_id", cfg.DevOwnerID)
		root = middleware.StaticOwner(cfg.DevOwnerID)(root)
	} else {
		verifier, err := auth.NewVerifier(cfg.JWTSecret)
		if err != nil {
			log.Fatalf("Failed to create token verifier: %v", err)
		}
		root = middleware.Auth(verifier)(root)
	}

	root = middleware.Recovery(logger)(root)

	// CORS - must wrap auth so OPTIONS pre-flight requests pass through
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // large downloads
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildRepositories selects the metadata store backend: postgres when a
// DATABASE_URL is configured, in-memory otherwise.
func buildRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.FolderRepository, repositories.FileRepository) {
	if cfg.DatabaseURL == "" {
		logger.Warn("no DATABASE_URL configured, using in-memory metadata store")
		return memory.NewFolderRepository(), memory.NewFileRepository()
	}

	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}

	logger.Info("database connected")

	repoConfig := &postgres.RepositoryConfig{Pool: pool, Logger: logger}
	return postgres.NewFolderRepository(repoConfig), postgres.NewFileRepository(repoConfig)
}

// buildBlobStore selects the blob store backend.
func buildBlobStore(ctx context.Context, cfg *config.Config) blob.Store {
	switch cfg.StorageBackend {
	case config.StorageS3:
		store, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			KeyPrefix:       cfg.S3KeyPrefix,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatalf("Failed to create S3 blob store: %v", err)
		}
		return store
	case config.StorageMemory:
		return blob.NewMemoryStore()
	default:
		store, err := blob.NewFSStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("Failed to create blob store: %v", err)
		}
		return store
	}
}
