package config

import (
	"os"
	"testing"
	"time"
)

func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"BOT_TOKEN", "MANAGER_GROUP_CHAT_ID", "WEBHOOK_BASE_URL", "PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"REDIS_URL", "REDIS_TTL", "ENV", "FAQ_PATH",
		"DB_RECONNECT_ATTEMPTS", "DB_RECONNECT_BASE_DELAY",
	} {
		unsetenv(t, key)
	}

	cfg := LoadConfig()

	if cfg.ServerPort != "10000" {
		t.Errorf("ServerPort = %q, want 10000", cfg.ServerPort)
	}
	if cfg.ManagerChatID != 0 {
		t.Errorf("ManagerChatID = %d, want 0", cfg.ManagerChatID)
	}
	if cfg.FAQPath != "configs/faq.yaml" {
		t.Errorf("FAQPath = %q", cfg.FAQPath)
	}
	if cfg.ReconnectAttempts != 3 {
		t.Errorf("ReconnectAttempts = %d, want 3", cfg.ReconnectAttempts)
	}
	if cfg.ReconnectBaseDelay != time.Second {
		t.Errorf("ReconnectBaseDelay = %v, want 1s", cfg.ReconnectBaseDelay)
	}
	if cfg.RedisTTL != 5*time.Minute {
		t.Errorf("RedisTTL = %v, want 5m", cfg.RedisTTL)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("MANAGER_GROUP_CHAT_ID", "-1001234567890")
	t.Setenv("DB_RECONNECT_ATTEMPTS", "5")
	t.Setenv("DB_RECONNECT_BASE_DELAY", "250ms")

	cfg := LoadConfig()

	if cfg.BotToken != "123:abc" {
		t.Errorf("BotToken = %q", cfg.BotToken)
	}
	if cfg.ManagerChatID != -1001234567890 {
		t.Errorf("ManagerChatID = %d", cfg.ManagerChatID)
	}
	if cfg.ReconnectAttempts != 5 {
		t.Errorf("ReconnectAttempts = %d", cfg.ReconnectAttempts)
	}
	if cfg.ReconnectBaseDelay != 250*time.Millisecond {
		t.Errorf("ReconnectBaseDelay = %v", cfg.ReconnectBaseDelay)
	}
}

func TestMalformedNumbersFallBack(t *testing.T) {
	t.Setenv("MANAGER_GROUP_CHAT_ID", "not-a-number")
	t.Setenv("DB_RECONNECT_ATTEMPTS", "many")
	t.Setenv("DB_RECONNECT_BASE_DELAY", "soon")

	cfg := LoadConfig()

	if cfg.ManagerChatID != 0 {
		t.Errorf("ManagerChatID = %d, want fallback 0", cfg.ManagerChatID)
	}
	if cfg.ReconnectAttempts != 3 {
		t.Errorf("ReconnectAttempts = %d, want fallback 3", cfg.ReconnectAttempts)
	}
	if cfg.ReconnectBaseDelay != time.Second {
		t.Errorf("ReconnectBaseDelay = %v, want fallback 1s", cfg.ReconnectBaseDelay)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{
		DBHost: "localhost", DBPort: "5433",
		DBUser: "bot", DBPass: "secret", DBName: "donors",
	}
	want := "host=localhost user=bot password=secret dbname=donors port=5433 sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN() = %q, want %q", got, want)
	}
}
