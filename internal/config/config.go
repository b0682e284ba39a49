package config

import (
	"os"
)

// Storage backend selectors for blob content.
const (
	StorageFS     = "fs"
	StorageS3     = "s3"
	StorageMemory = "memory"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string

	// DatabaseURL selects the metadata store: a postgres URL, or empty
	// for the in-memory store (DB-less development).
	DatabaseURL string

	// Blob storage
	StorageBackend string
	UploadDir      string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3KeyPrefix    string
	S3AccessKey    string
	S3SecretKey    string

	// Auth
	JWTSecret    string
	AuthDisabled bool
	DevOwnerID   string

	// Local browser
	LocalDefaultDir string
	LocalRootsFile  string

	// Logging
	LogDir      string
	MaxLogFiles int
}

func Load() *Config {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "/"
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageFS),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3KeyPrefix:    getEnv("S3_KEY_PREFIX", ""),
		S3AccessKey:    getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		AuthDisabled: getEnv("AUTH_DISABLED", "false") == "true",
		DevOwnerID:   getEnv("DEV_OWNER_ID", "dev-owner"),

		LocalDefaultDir: getEnv("LOCAL_BROWSE_DIR", home),
		LocalRootsFile:  getEnv("LOCAL_ROOTS_FILE", ""),

		LogDir:      getEnv("LOG_DIR", ""),
		MaxLogFiles: 10,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
