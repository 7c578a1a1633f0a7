package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	CORSOrigins []string

	JWTSecret     string
	AdminUsername string
	AdminPassword string
	// AuthRequired gates the JWT middleware on mutating routes. The
	// directory service contract does not change either way.
	AuthRequired bool

	// StorageBackend selects where uploaded images live: "local" or "s3".
	StorageBackend string
	UploadDir      string
	PublicBaseURL  string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	// Optional integrations; empty values disable them.
	RedisAddress string
	NATSURL      string
	OTELEndpoint string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

func Load() (*Config, error) {
	// .env is a convenience for local runs; environment variables are
	// the source of truth.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "4000"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "realestate"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AuthRequired:  getBool("ADMIN_AUTH_REQUIRED", false),

		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost:4000"),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "property-images"),
		MinIOUseSSL:    getBool("MINIO_USE_SSL", false),

		RedisAddress: os.Getenv("REDIS_ADDRESS"),
		NATSURL:      os.Getenv("NATS_URL"),
		OTELEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getEnv("SMTP_FROM", "noreply@localhost"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("FATAL: JWT_SECRET is not set. This is required for security.")
	}
	if cfg.AdminPassword == "" {
		log.Println("Warning: ADMIN_PASSWORD is not set, admin login is disabled")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value %q, defaulting to %v", key, raw, fallback)
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value %q, defaulting to %d", key, raw, fallback)
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
