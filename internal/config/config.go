package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Host string
	Port string

	// Database settings
	DatabaseDriver string
	DatabasePath   string
	DatabaseURL    string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Cache settings
	CacheSize int
	CacheTTL  time.Duration

	// AI service settings
	AIServiceURL   string
	AITimeout      time.Duration
	TranslateURL   string
	TargetLanguage string

	// Legal section catalog (YAML). Empty means built-in defaults.
	LegalCatalogPath string

	// Evidence storage settings
	StorageBackend string
	MediaRoot      string
	S3Bucket       string
	S3Prefix       string
	MaxUploadSize  int64

	// Event stream settings
	KafkaBrokers []string
	KafkaTopic   string

	// PDF report settings
	PDFEnabled     bool
	PDFBrowserPath string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not an error if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Host:             getEnv("HOST", "0.0.0.0"),
		Port:             getEnv("PORT", "8080"),
		DatabaseDriver:   getEnv("DATABASE_DRIVER", "sqlite"),
		DatabasePath:     getEnv("DATABASE_PATH", "./data/fir.db"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		AIServiceURL:     getEnv("AI_SERVICE_URL", "http://localhost:5001"),
		TranslateURL:     getEnv("TRANSLATE_URL", "http://localhost:5000/translate"),
		TargetLanguage:   getEnv("TARGET_LANGUAGE", "en"),
		LegalCatalogPath: getEnv("LEGAL_CATALOG_PATH", ""),
		StorageBackend:   getEnv("STORAGE_BACKEND", "local"),
		MediaRoot:        getEnv("MEDIA_ROOT", "./data/media"),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Prefix:         getEnv("S3_PREFIX", "evidence"),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "fir-events"),
		PDFBrowserPath:   getEnv("PDF_BROWSER_PATH", ""),
	}

	// Parse integer values
	var err error
	cfg.CacheSize, err = strconv.Atoi(getEnv("CACHE_SIZE", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_SIZE: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("CACHE_TTL", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = time.Duration(cacheTTL) * time.Minute

	aiTimeout, err := strconv.Atoi(getEnv("AI_TIMEOUT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid AI_TIMEOUT: %w", err)
	}
	cfg.AITimeout = time.Duration(aiTimeout) * time.Second

	maxUpload, err := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
	}
	cfg.MaxUploadSize = int64(maxUpload) << 20

	cfg.PDFEnabled = getEnv("PDF_ENABLED", "true") == "true"

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks combinations that cannot be expressed by defaults alone
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.StorageBackend {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}

	return nil
}

// DSN returns the data source for the configured driver
func (c *Config) DSN() string {
	if c.DatabaseDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
