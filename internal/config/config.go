package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Development bool

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr string

	JWTSecret string

	S3Region string
	S3Bucket string
}

func Load() *Config {
	// Optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Development: getEnv("APP_ENV", "development") != "production",
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "whisper"),
		DBPassword:  getEnv("DB_PASSWORD", "whisper_dev_password"),
		DBName:      getEnv("DB_NAME", "whisper"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
		S3Region:    getEnv("S3_REGION", "eu-central-1"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}
