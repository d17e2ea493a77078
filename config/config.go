package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
)

type Config struct {
	Port          string
	ServiceName   string
	JaegerAddress string
	LogFile       string

	RemoteBaseURL string
	FeedURL       string
	JWTSecret     string
	RemoteToken   string

	QueueDBPath       string
	QueueDrainSeconds int
	SyncMaxRetries    int

	FeedMaxReconnect      int
	FeedBackoffMaxSeconds int

	OptimisticTTLSeconds int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logger.WithFields(logger.Fields{"path": "config"}).Info("No .env file found, using environment")
	}
	return &Config{
		Port:                  envOr("PORT", "8080"),
		ServiceName:           envOr("SERVICE_NAME", "cleaning-scheduler"),
		JaegerAddress:         envOr("JAEGER_ADDRESS", "http://localhost:14268/api/traces"),
		LogFile:               envOr("LOG_FILE", "logs/logfile.log"),
		RemoteBaseURL:         envOr("REMOTE_BASE_URL", "https://localhost:8090"),
		FeedURL:               envOr("FEED_URL", "wss://localhost:8090/feed"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		RemoteToken:           os.Getenv("REMOTE_TOKEN"),
		QueueDBPath:           envOr("QUEUE_DB_PATH", "queue.db"),
		QueueDrainSeconds:     envIntOr("QUEUE_DRAIN_SECONDS", 30),
		SyncMaxRetries:        envIntOr("SYNC_MAX_RETRIES", 3),
		FeedMaxReconnect:      envIntOr("FEED_MAX_RECONNECT", 10),
		FeedBackoffMaxSeconds: envIntOr("FEED_BACKOFF_MAX_SECONDS", 30),
		OptimisticTTLSeconds:  envIntOr("OPTIMISTIC_TTL_SECONDS", 30),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logger.WithFields(logger.Fields{"path": "config", "key": key}).Error("Invalid integer value: ", err)
		return fallback
	}
	return parsed
}
