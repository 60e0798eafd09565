package config

import (
	"os"
	"testing"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "LOCAL_DB_PATH", "DELETE_POLICY", "AMQP_URL", "CORS_ORIGINS"} {
		unsetEnv(t, key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if cfg.DeletePolicy != "optimistic" || cfg.LocalDBPath != "data/local.db" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PROJECT_ID", "demo")
	t.Setenv("PORT", "9090")
	t.Setenv("DELETE_POLICY", "pessimistic")
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProjectID != "demo" || cfg.Port != 9090 || cfg.DeletePolicy != "pessimistic" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "eighty")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-numeric port")
	}
}
