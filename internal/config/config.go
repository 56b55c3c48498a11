// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config centralizes runtime settings for the API server.
type Config struct {
	Port      string
	JWTSecret string

	DB DBConfig

	Redis RedisConfig

	Upload UploadConfig

	R2 R2Config

	LoginRateLimitRPS   float64
	LoginRateLimitBurst int
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	URL string
}

// RedisConfig holds the settings pub/sub connection. Leave Addr empty to
// disable cross-instance settings propagation (single-node deployments).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// UploadConfig holds local file storage settings.
type UploadConfig struct {
	Dir     string
	BaseURL string
}

// R2Config holds Cloudflare R2 credentials. When AccountID is set, uploads
// go to R2 instead of local disk.
type R2Config struct {
	AccountID string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}

// Load reads configuration from environment variables, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		DB: DBConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Channel:  getEnv("REDIS_SETTINGS_CHANNEL", "settings_updates"),
		},
		Upload: UploadConfig{
			Dir:     getEnv("UPLOAD_DIR", "uploads"),
			BaseURL: getEnv("UPLOAD_BASE_URL", "/api/files"),
		},
		R2: R2Config{
			AccountID: getEnv("R2_ACCOUNT_ID", ""),
			AccessKey: getEnv("R2_ACCESS_KEY", ""),
			SecretKey: getEnv("R2_SECRET_KEY", ""),
			Bucket:    getEnv("R2_BUCKET", ""),
			PublicURL: getEnv("R2_PUBLIC_URL", ""),
		},
		LoginRateLimitRPS:   getEnvFloat("LOGIN_RATE_LIMIT_RPS", 0.1),
		LoginRateLimitBurst: getEnvInt("LOGIN_RATE_LIMIT_BURST", 5),
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
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

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
