package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q", cfg.Env)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.ProcessingDelay != 1500*time.Millisecond {
		t.Errorf("ProcessingDelay = %v", cfg.ProcessingDelay)
	}
	if cfg.VisualizationDelay != 500*time.Millisecond {
		t.Errorf("VisualizationDelay = %v", cfg.VisualizationDelay)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.IsProduction() {
		t.Error("development config reported as production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("PROCESSING_DELAY", "0s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_TLS", "true")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production")
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.ProcessingDelay != 0 {
		t.Errorf("ProcessingDelay = %v", cfg.ProcessingDelay)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.RedisTLS {
		t.Error("expected RedisTLS")
	}
}

func TestGetEnvAsDurationInvalid(t *testing.T) {
	t.Setenv("SESSION_TTL", "bogus")
	cfg := Load()
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
}
