package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds client and devserver settings
type Config struct {
	BaseURL        string
	WSBaseURL      string
	StorePath      string
	StoreKey       []byte
	LogLevel       string
	Dev            bool
	PingInterval   time.Duration
	ReconnectDelay time.Duration
	AssistantDelay time.Duration
	HTTPTimeout    time.Duration

	// devserver
	Port         string
	DatabasePath string
	JWTSecret    string
	MediaDir     string
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	// A missing .env file is normal outside development
	_ = godotenv.Load()

	baseURL := strings.TrimRight(getEnv("LINKUP_BASE_URL", "http://localhost:8000"), "/")

	cfg := &Config{
		BaseURL:        baseURL,
		WSBaseURL:      strings.TrimRight(getEnv("LINKUP_WS_BASE_URL", ""), "/"),
		StorePath:      getEnv("LINKUP_STORE_PATH", defaultStorePath()),
		LogLevel:       getEnv("LINKUP_LOG_LEVEL", "info"),
		Dev:            getEnvBool("LINKUP_DEV", false),
		PingInterval:   getEnvDuration("LINKUP_PING_INTERVAL", 30*time.Second),
		ReconnectDelay: getEnvDuration("LINKUP_RECONNECT_DELAY", 3*time.Second),
		AssistantDelay: getEnvDuration("LINKUP_ASSISTANT_DELAY", 1500*time.Millisecond),
		HTTPTimeout:    getEnvDuration("LINKUP_HTTP_TIMEOUT", 15*time.Second),
		Port:           getEnv("PORT", "8000"),
		DatabasePath:   getEnv("DATABASE_PATH", "linkup-dev.db"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		MediaDir:       getEnv("MEDIA_DIR", "media"),
	}

	if cfg.WSBaseURL == "" {
		cfg.WSBaseURL = DeriveWSBase(baseURL)
	}

	if key := getEnv("LINKUP_STORE_KEY", ""); key != "" {
		raw, err := hex.DecodeString(key)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("LINKUP_STORE_KEY must be 64 hex characters")
		}
		cfg.StoreKey = raw
	}

	return cfg, nil
}

// DeriveWSBase maps an http(s) base URL to its ws(s) counterpart
func DeriveWSBase(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	default:
		return baseURL
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "linkup-store.db"
	}
	return filepath.Join(home, ".linkup", "store.db")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
