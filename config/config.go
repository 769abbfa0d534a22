package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMaxUploadBytes   = 10 << 20 // 10 MiB per file
	defaultMaxImageDim      = 1920
	defaultJpegQuality      = 80
	defaultMaxFiles         = 10
	defaultUploadTimeoutSec = 30
)

// BlobDriver selects where processed images are durably stored.
const (
	BlobDriverLocal = "local"
	BlobDriverS3    = "s3"
)

type Config struct {
	// database path (sqlite)
	DatabasePath string

	// blob storage configuration
	BlobDriver       string
	MediaStoragePath string // local driver: root directory for stored objects
	PublicBaseURL    string // local driver: URL prefix the objects are served under

	// s3/minio driver settings
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	// upload policy
	MaxUploadBytes    int64
	AllowedMimeTypes  []string
	MaxFilesPerSubmit int

	// transcoder settings
	MaxImageDimension    int
	JpegQuality          int
	AutoRotate           bool
	TranscodeConcurrency int

	// per-file blob upload timeout
	UploadTimeout time.Duration

	// auth
	JWTSecret string

	// http
	AllowedOrigins []string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvBoolOrDefault(envVar string, defaultVal bool) bool {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s'. Using default %t. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "showcase.db")

	driver := strings.ToLower(getEnvOrDefault("BLOB_DRIVER", BlobDriverLocal))
	if driver != BlobDriverLocal && driver != BlobDriverS3 {
		return Config{}, fmt.Errorf("unknown BLOB_DRIVER '%s' (expected %s or %s)", driver, BlobDriverLocal, BlobDriverS3)
	}

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	cfg := Config{
		DatabasePath:     dbPath,
		BlobDriver:       driver,
		MediaStoragePath: absMediaStorage,
		PublicBaseURL:    strings.TrimRight(getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080/api/media"), "/"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    getEnvOrDefault("S3_BUCKET", "showcase-photos"),
		S3UseSSL:    getEnvBoolOrDefault("S3_USE_SSL", true),

		MaxUploadBytes:    int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		AllowedMimeTypes:  splitAndTrim(getEnvOrDefault("ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/webp,image/gif")),
		MaxFilesPerSubmit: getEnvIntOrDefault("MAX_FILES_PER_SUBMISSION", defaultMaxFiles),

		MaxImageDimension:    getEnvIntOrDefault("MAX_IMAGE_DIMENSION", defaultMaxImageDim),
		JpegQuality:          getEnvIntOrDefault("JPEG_QUALITY", defaultJpegQuality),
		AutoRotate:           getEnvBoolOrDefault("AUTO_ROTATE", true),
		TranscodeConcurrency: getEnvIntOrDefault("TRANSCODE_CONCURRENCY", runtime.NumCPU()),

		UploadTimeout: time.Duration(getEnvIntOrDefault("UPLOAD_TIMEOUT_SECONDS", defaultUploadTimeoutSec)) * time.Second,

		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),

		AllowedOrigins: splitAndTrim(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.BlobDriver == BlobDriverS3 && (cfg.S3Endpoint == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "") {
		return Config{}, fmt.Errorf("S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY must be set when BLOB_DRIVER=s3")
	}

	return cfg, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
