package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	BotToken       string
	ManagerChatID  int64
	WebhookBaseURL string
	ServerPort     string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPass         string
	DBName         string
	RedisURL       string
	RedisTTL       time.Duration
	Env            string
	FAQPath        string

	ReconnectAttempts  int
	ReconnectBaseDelay time.Duration
}

func LoadConfig() Config {
	return Config{
		BotToken:       getEnv("BOT_TOKEN", ""),
		ManagerChatID:  getEnvAsInt64("MANAGER_GROUP_CHAT_ID", 0),
		WebhookBaseURL: getEnv("WEBHOOK_BASE_URL", ""),
		ServerPort:     getEnv("PORT", "10000"),
		DBHost:         getEnv("DB_HOST", "postgres"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPass:         getEnv("DB_PASSWORD", "password"),
		DBName:         getEnv("DB_NAME", "donorbot"),
		RedisURL:       getEnv("REDIS_URL", "redis:6379"),
		RedisTTL:       getEnvAsDuration("REDIS_TTL", 5*time.Minute),
		Env:            getEnv("ENV", "dev"),
		FAQPath:        getEnv("FAQ_PATH", "configs/faq.yaml"),

		ReconnectAttempts:  getEnvAsInt("DB_RECONNECT_ATTEMPTS", 3),
		ReconnectBaseDelay: getEnvAsDuration("DB_RECONNECT_BASE_DELAY", time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := time.ParseDuration(value); err == nil {
			return v
		}
	}
	return fallback
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}
