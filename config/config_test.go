package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"STORE_LATENCY_MS", "HTTP_ADDR", "CORS_ORIGINS", "DB_ENABLED", "AUTO_MIGRATE",
		"DB_HOST", "DB_PORT", "DB_NAME", "RABBITMQ_HOST", "MENU_EXCHANGE", "TOKEN", "LOG_LEVEL", "LOG_PRETTY",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Store.Latency != 500*time.Millisecond {
		t.Errorf("Store.Latency = %s, want 500ms", cfg.Store.Latency)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if len(cfg.HTTP.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v", cfg.HTTP.CORSOrigins)
	}
	if cfg.DB.Enabled || cfg.DB.AutoMigrate {
		t.Error("DB should be disabled by default")
	}
	if cfg.DB.Port != 5432 || cfg.DB.Database != "menu" {
		t.Errorf("DB = %+v", cfg.DB)
	}
	if cfg.Rabbit.Enabled() || cfg.Rabbit.Exchange != "menu_events" || cfg.Rabbit.Port != 5672 {
		t.Errorf("Rabbit = %+v", cfg.Rabbit)
	}
	if cfg.Log.Level != "info" || cfg.Log.Pretty {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_LATENCY_MS", "25")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("DB_ENABLED", "TRUE")
	t.Setenv("AUTO_MIGRATE", "1")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("RABBITMQ_HOST", "mq.local")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Store.Latency != 25*time.Millisecond {
		t.Errorf("Store.Latency = %s", cfg.Store.Latency)
	}
	if cfg.HTTP.Addr != ":9000" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.HTTP.CORSOrigins) != 2 || cfg.HTTP.CORSOrigins[0] != want[0] || cfg.HTTP.CORSOrigins[1] != want[1] {
		t.Errorf("CORSOrigins = %v, want %v", cfg.HTTP.CORSOrigins, want)
	}
	if !cfg.DB.Enabled || !cfg.DB.AutoMigrate || cfg.DB.Port != 6543 {
		t.Errorf("DB = %+v", cfg.DB)
	}
	if !cfg.Rabbit.Enabled() {
		t.Error("Rabbit should be enabled when RABBITMQ_HOST is set")
	}
	if !cfg.Log.Pretty {
		t.Error("Log.Pretty should be set")
	}
}

func TestLoad_MalformedNumbers(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STORE_LATENCY_MS", "abc"},
		{"STORE_LATENCY_MS", "-5"},
		{"STORE_LATENCY_MS", "1.5"},
		{"DB_PORT", "postgres"},
		{"DB_PORT", "0"},
		{"RABBITMQ_PORT", "56 72"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg, err := Load()
			if err == nil {
				t.Fatalf("Load() = %+v, want error", cfg)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not name %s", err, tt.key)
			}
		})
	}
}

func TestLoad_ZeroLatencyIsAllowed(t *testing.T) {
	t.Setenv("STORE_LATENCY_MS", " 0 ")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Store.Latency != 0 {
		t.Errorf("Store.Latency = %s, want 0", cfg.Store.Latency)
	}
}
