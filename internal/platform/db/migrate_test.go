package db

import (
	"context"
	"io/fs"
	"os"
	"testing"
	"testing/fstest"

	"backoffice/internal/platform/config"
)

func TestMigrationNamesSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"m/002_asistencia.sql": {Data: []byte("SELECT 1")},
		"m/001_init.sql":       {Data: []byte("SELECT 1")},
		"m/README.md":          {Data: []byte("notes")},
		"m/sub/003_x.sql":      {Data: []byte("SELECT 1")},
	}
	entries, err := fs.ReadDir(fsys, "m")
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	got := migrationNames(entries)
	if len(got) != 2 || got[0] != "001_init.sql" || got[1] != "002_asistencia.sql" {
		t.Fatalf("unexpected migration order: %v", got)
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(migrationNames(entries)) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
}

func TestMigrateAndSeedIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	cfg := config.Defaults()
	cfg.DatabaseURL = dsn
	cfg.SeedAdminEmail = "admin@example.com"
	cfg.SeedAdminPassword = "Admin12345"

	pool, err := Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("second migrate should be a no-op: %v", err)
	}
	if err := Seed(ctx, pool, cfg); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := Seed(ctx, pool, cfg); err != nil {
		t.Fatalf("second seed should be idempotent: %v", err)
	}

	var roles int
	if err := pool.QueryRow(ctx, `
    SELECT COUNT(1) FROM roles r JOIN companies c ON c.id = r.company_id WHERE c.name = $1
  `, cfg.SeedCompanyName).Scan(&roles); err != nil {
		t.Fatalf("count roles: %v", err)
	}
	if roles < 4 {
		t.Fatalf("expected seeded roles, got %d", roles)
	}
}
