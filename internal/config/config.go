package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	DatabaseURL    string
	MigrationsDir  string
	AdminSecret    string
	AdminBcrypt    string
	CORSOrigin     string
	RequestTimeout time.Duration
	// Redis holds the blocked-visitor set when configured
	RedisURL       string
	MeiliURL       string
	MeiliMasterKey string
	// Media (MinIO / S3)
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MediaPublicURL string
	// SMTP Configuration
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	NotifyEmail  string
	// AI assistant
	AssistantURL     string
	AssistantKey     string
	AssistantModel   string
	AssistantTimeout time.Duration
}

// Load reads the environment, after merging a local .env file if one exists.
// Variables already set in the environment take precedence over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}
	return Config{
		Addr:           getenv("API_ADDR", ":8080"),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		MigrationsDir:  getenv("PORTFOLIO_MIGRATIONS_DIR", ""),
		AdminSecret:    getenv("PORTFOLIO_ADMIN_SECRET", ""),
		AdminBcrypt:    getenv("PORTFOLIO_ADMIN_SECRET_BCRYPT", ""),
		CORSOrigin:     getenv("PORTFOLIO_CORS_ORIGIN", "*"),
		RequestTimeout: time.Duration(getenvInt("PORTFOLIO_REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		RedisURL:       getenv("REDIS_URL", ""),
		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "portfolio"),
		MinioUseSSL:    getenvBool("MINIO_USE_SSL", false),
		MediaPublicURL: getenv("MEDIA_PUBLIC_URL", ""),
		// SMTP - empty by default, notifications disabled if not configured
		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenv("SMTP_PORT", "587"),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", ""),
		SMTPFromName: getenv("SMTP_FROM_NAME", "Portfolio"),
		NotifyEmail:  getenv("NOTIFY_EMAIL", ""),
		// AI assistant - chat replies degrade to a fallback message without a key
		AssistantURL:     getenv("ASSISTANT_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
		AssistantKey:     getenv("ASSISTANT_API_KEY", ""),
		AssistantModel:   getenv("ASSISTANT_MODEL", "gemini-1.5-flash"),
		AssistantTimeout: time.Duration(getenvInt("ASSISTANT_TIMEOUT_SECONDS", 20)) * time.Second,
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
