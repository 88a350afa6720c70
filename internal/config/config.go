package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	PG        PGConfig
	Scheduler SchedulerConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host          string
	Port          int
	Email         string
	Password      string
	SenderName    string
	OperatorEmail string
}

// PGConfig configures the payment-provider aggregator client.
type PGConfig struct {
	BaseURL        string
	APIKey         string
	APISecret      string
	TimeoutSeconds int
}

type SchedulerConfig struct {
	MaxRetries         int
	BackoffBaseSeconds int
	// RunHour is the local hour (0-23) the daily batch fires at.
	RunHour int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/billing.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:          getEnv("SMTP_HOST", ""),
			Port:          getEnvAsInt("SMTP_PORT", 587),
			Email:         getEnv("SMTP_EMAIL", ""),
			Password:      getEnv("SMTP_PASSWORD", ""),
			SenderName:    getEnv("SMTP_SENDER_NAME", "Billing"),
			OperatorEmail: getEnv("OPERATOR_ALERT_EMAIL", ""),
		},
		PG: PGConfig{
			BaseURL:        getEnv("PG_API_BASE_URL", "https://api.iamport.kr"),
			APIKey:         getEnv("PG_API_KEY", ""),
			APISecret:      getEnv("PG_API_SECRET", ""),
			TimeoutSeconds: getEnvAsInt("PG_API_TIMEOUT_SECONDS", 10),
		},
		Scheduler: SchedulerConfig{
			MaxRetries:         getEnvAsInt("SCHEDULER_MAX_RETRIES", 10),
			BackoffBaseSeconds: getEnvAsInt("SCHEDULER_BACKOFF_BASE_SECONDS", 1),
			RunHour:            getEnvAsInt("SCHEDULER_RUN_HOUR", 4),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
