package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPass      string
	DBName      string
	DBPort      string

	RedisURL         string
	VoteCountTTL     time.Duration
	ScoringRulesPath string

	CloudinaryURL          string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	AuditSchedule string
	AuditAutoFix  bool
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPass:      os.Getenv("DB_PASS"),
		DBName:      getEnv("DB_NAME", "careerhub"),
		DBPort:      getEnv("DB_PORT", "5432"),

		RedisURL:         os.Getenv("REDIS_URL"),
		ScoringRulesPath: os.Getenv("SCORING_CONFIG"),

		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "careerhub/badges"),

		AuditSchedule: getEnv("AUDIT_SCHEDULE", "@every 6h"),
	}

	var err error
	cfg.VoteCountTTL, err = parseDuration(getEnv("VOTE_COUNT_CACHE_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid VOTE_COUNT_CACHE_TTL: %w", err)
	}
	cfg.AuditAutoFix, err = strconv.ParseBool(getEnv("AUDIT_AUTOFIX", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIT_AUTOFIX: %w", err)
	}

	return cfg, nil
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the DB_* variables.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}

// CloudinaryConfigured reports whether enough credentials exist to build an upload client.
func (c *Config) CloudinaryConfigured() bool {
	if c.CloudinaryURL != "" {
		return true
	}
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
