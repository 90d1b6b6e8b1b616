package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "PORT", "DB_PATH", "JWT_SECRET", "TOKEN_TTL",
		"BCRYPT_COST", "DEFAULT_CURRENCY", "LOG_LEVEL", "CORS_ORIGIN",
	} {
		unsetenv(t, key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8080 || cfg.Addr() != ":8080" {
		t.Errorf("port = %d, addr = %s", cfg.Port, cfg.Addr())
	}
	if cfg.DBPath != "./data/splitledger.db" {
		t.Errorf("db path = %s", cfg.DBPath)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("token ttl = %s", cfg.TokenTTL)
	}
	if cfg.DefaultCurrency != "USD" || cfg.CORSOrigin != "*" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Env != "production" || cfg.IsDevelopment() {
		t.Errorf("env = %q, want production", cfg.Env)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Errorf("jwt secret = %q", cfg.JWTSecret)
	}
}

func TestLoadDevelopmentSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.IsDevelopment() || cfg.JWTSecret != devJWTSecret {
		t.Errorf("development mode should fall back to the dev secret: %+v", cfg)
	}
}

func TestLoadFromEnvAndFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=9090\nDEFAULT_CURRENCY=EUR\nTOKEN_TTL=2h\nJWT_SECRET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("environment should win over the file: port = %d", cfg.Port)
	}
	if cfg.DefaultCurrency != "EUR" || cfg.TokenTTL != 2*time.Hour {
		t.Errorf("file values not applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad port", map[string]string{"PORT": "not-an-int"}, "parse env:"},
		{"bad currency", map[string]string{"DEFAULT_CURRENCY": "ZZZ"}, "DEFAULT_CURRENCY"},
		{"production without secret", map[string]string{"APP_ENV": "production"}, "JWT_SECRET"},
		{"no env and no secret", map[string]string{}, "JWT_SECRET"},
		{"negative ttl", map[string]string{"TOKEN_TTL": "-1h"}, "TOKEN_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
