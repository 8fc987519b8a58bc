package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort string
	Debug      bool

	// Database（留空则关闭归档）
	DatabaseURL string

	// 智慧交通后端
	BackendURL string

	// Polling
	PollIntervalOperational time.Duration // 仪表盘、停车视图
	PollIntervalAnalytics   time.Duration // 分析视图

	// 短时通知存活时长
	MessageTTL time.Duration
}

func Load() (*Config, error) {
	// 尝试加载 .env 文件（可选）
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("PORT", "4000"),
		Debug:                   getEnvBool("DEBUG", false),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		BackendURL:              getEnv("BACKEND_URL", "http://localhost:8000"),
		PollIntervalOperational: getEnvDuration("POLL_INTERVAL_OPERATIONAL", 5*time.Second),
		PollIntervalAnalytics:   getEnvDuration("POLL_INTERVAL_ANALYTICS", 10*time.Second),
		MessageTTL:              getEnvDuration("MESSAGE_TTL", 4*time.Second),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
