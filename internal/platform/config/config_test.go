package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.DatabaseURL = "postgres://localhost/backoffice"
	return cfg
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestValidateProductionSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = "production"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing JWT secret to fail in production")
	}
	cfg.JWTSecret = "secret"
	cfg.DataEncryptionKey = "key"
	cfg.RunSeed = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnsafePayrollFunction(t *testing.T) {
	cfg := validConfig()
	cfg.PayrollFunction = "calc(); DROP TABLE planillas"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unsafe function name to be rejected")
	}
	cfg.PayrollFunction = "nomina.calcular_planilla_personal"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected schema-qualified name to pass, got %v", err)
	}
}

func TestLoadAppliesFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("addr: \":9090\"\ndatabaseUrl: postgres://file/db\nshutdownTimeout: 5s\ncorsAllowedOrigins:\n  - https://rrhh.example.com\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("expected addr from file, got %s", cfg.Addr)
	}
	if cfg.DatabaseURL != "postgres://env/db" {
		t.Fatalf("expected env override, got %s", cfg.DatabaseURL)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("expected 5s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "https://rrhh.example.com" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.PayrollFunction != "calcular_planilla_personal" {
		t.Fatalf("expected default payroll function to survive overlay, got %s", cfg.PayrollFunction)
	}
}

func TestGetEnvListSplitsAndTrims(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com , ,https://b.example.com")
	got := getEnvList("CORS_ALLOWED_ORIGINS", nil)
	if len(got) != 2 || got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Fatalf("unexpected list: %v", got)
	}
}
