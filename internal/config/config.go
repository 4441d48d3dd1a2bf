package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           int
	APIToken       string
	LogLevel       string
	PlannerURL     string
	PlannerTimeout time.Duration
	StoreDriver    string
	SQLitePath     string
	DatabaseURL    string
	Namespace      string
	NatsURL        string
	NatsToken      string
	SlackBotToken  string
	SlackChannel   string
	NodeID         int64
	MaxQueryWords  int
	RecentLimit    int
	PaymentDelay   time.Duration
}

// Load reads the environment. Variables from WAYFARER_ENV_FILE (default
// .env) are applied first; values already in the environment win.
func Load() Config {
	_ = godotenv.Load(envStr("WAYFARER_ENV_FILE", ".env"))

	return Config{
		Port:           envInt("WAYFARER_PORT", 8760),
		APIToken:       envStr("WAYFARER_API_TOKEN", ""),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		PlannerURL:     envStr("PLANNER_URL", "http://127.0.0.1:5001"),
		PlannerTimeout: envDuration("PLANNER_TIMEOUT", 120*time.Second),
		StoreDriver:    strings.ToLower(envStr("STORE_DRIVER", "sqlite")),
		SQLitePath:     expandHome(envStr("SQLITE_PATH", "~/.wayfarer/wayfarer.db")),
		DatabaseURL:    envStr("DATABASE_URL", ""),
		Namespace:      envStr("WAYFARER_NAMESPACE", "wayfarer"),
		NatsURL:        envStr("NATS_URL", ""),
		NatsToken:      envStr("NATS_TOKEN", ""),
		SlackBotToken:  envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:   envStr("SLACK_CHANNEL", ""),
		NodeID:         int64(envInt("NODE_ID", 1)),
		MaxQueryWords:  envInt("MAX_QUERY_WORDS", 1200),
		RecentLimit:    envInt("RECENT_CONVERSATIONS", 3),
		PaymentDelay:   envDuration("PAYMENT_DELAY", 3*time.Second),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
