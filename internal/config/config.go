package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	RedisURL   string
	JWTSecret  string

	// Media pipeline
	MediaRoot     string
	FFmpegPath    string
	PublicBaseURL string

	LinkPreviewTTL time.Duration
}

func Load() *Config {
	// .env je opcionalan; env vars uvijek pobjeđuju
	godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "wallline"),
		DBPassword: getEnv("DB_PASSWORD", "wallline_dev_password"),
		DBName:     getEnv("DB_NAME", "wallline"),
		RedisURL:   getEnv("REDIS_URL", "localhost:6379"),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),

		MediaRoot:     getEnv("MEDIA_ROOT", "./media"),
		FFmpegPath:    getEnv("FFMPEG_PATH", "ffmpeg"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		LinkPreviewTTL: time.Duration(getEnvInt("LINK_PREVIEW_TTL_HOURS", 24)) * time.Hour,
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
