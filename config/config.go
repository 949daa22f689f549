package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Store    StoreConfig
	HTTP     HTTPConfig
	DB       DBConfig
	Rabbit   RabbitConfig
	Telegram TelegramConfig
	Log      LogConfig
}

type StoreConfig struct {
	Latency time.Duration
}

type HTTPConfig struct {
	Addr        string
	CORSOrigins []string
}

type DBConfig struct {
	Enabled     bool
	AutoMigrate bool
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
}

type RabbitConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
	Exchange string
}

// Enabled reports whether catalog events should be published.
func (r RabbitConfig) Enabled() bool { return r.Host != "" }

type TelegramConfig struct {
	Token             string
	AdminPasswordHash string // bcrypt hash; empty disables admin commands
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads .env (if present) and then the environment. Malformed numbers
// are an error rather than a silent zero.
func Load() (*Config, error) {
	_ = godotenv.Load()

	latencyMs, err := getInt("STORE_LATENCY_MS", 500, 0)
	if err != nil {
		return nil, err
	}
	dbPort, err := getInt("DB_PORT", 5432, 1)
	if err != nil {
		return nil, err
	}
	mqPort, err := getInt("RABBITMQ_PORT", 5672, 1)
	if err != nil {
		return nil, err
	}

	return &Config{
		Store: StoreConfig{
			Latency: time.Duration(latencyMs) * time.Millisecond,
		},
		HTTP: HTTPConfig{
			Addr:        getEnv("HTTP_ADDR", ":8080"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:19006")),
		},
		DB: DBConfig{
			Enabled:     getBool("DB_ENABLED"),
			AutoMigrate: getBool("AUTO_MIGRATE"),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Database:    getEnv("DB_NAME", "menu"),
		},
		Rabbit: RabbitConfig{
			Host:     getEnv("RABBITMQ_HOST", ""),
			Port:     mqPort,
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", "/"),
			Exchange: getEnv("MENU_EXCHANGE", "menu_events"),
		},
		Telegram: TelegramConfig{
			Token:             getEnv("TOKEN", ""),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getBool("LOG_PRETTY"),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getInt parses key as a decimal integer no smaller than min.
func getInt(key string, def, min int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	if n < min {
		return 0, fmt.Errorf("%s: %d is below %d", key, n, min)
	}
	return n, nil
}

// getBool accepts "1" or "true" in any case.
func getBool(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
