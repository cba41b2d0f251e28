package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Sync.SnapshotRetention != 3 {
		t.Fatalf("expected retention 3, got %d", cfg.Sync.SnapshotRetention)
	}
	if cfg.Push.MaxConcurrent != 3 || cfg.Push.PacingInterval != time.Second {
		t.Fatalf("unexpected push defaults: %+v", cfg.Push)
	}
	if cfg.Zoho.Permission != "REGISTEREDUSERS" {
		t.Fatalf("expected default permission, got %q", cfg.Zoho.Permission)
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte(`
logging:
  level: debug
zoho:
  departmentId: D9
  categoryId: C9
database:
  dsn: postgres://file/db
sync:
  snapshotRetention: 5
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("KBSYNC_CONFIG", path)
	t.Setenv("DATABASE_DSN", "postgres://env/db")
	t.Setenv("TENANT_NAME", "acme")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected file log level, got %q", cfg.Logging.Level)
	}
	if cfg.Zoho.DepartmentID != "D9" || cfg.Zoho.CategoryID != "C9" {
		t.Fatalf("expected file zoho ids, got %+v", cfg.Zoho)
	}
	if cfg.Sync.SnapshotRetention != 5 {
		t.Fatalf("expected retention 5, got %d", cfg.Sync.SnapshotRetention)
	}
	if cfg.Database.DSN != "postgres://env/db" {
		t.Fatalf("expected env override to win, got %q", cfg.Database.DSN)
	}
	if cfg.ObjectStore.Tenant != "acme" {
		t.Fatalf("expected env tenant, got %q", cfg.ObjectStore.Tenant)
	}
	if got := cfg.ObjectStore.StoragePrefix(); got != "acme/zohodesk-data" {
		t.Fatalf("unexpected storage prefix %q", got)
	}
}

func TestValidatePerStage(t *testing.T) {
	cfg := defaultConfig()
	cfg.ObjectStore.Endpoint = "s3.example.com"
	cfg.ObjectStore.Bucket = "kb"
	cfg.ObjectStore.Tenant = "acme"

	if err := cfg.Validate("convert"); err != nil {
		t.Fatalf("convert should not need credentials: %v", err)
	}
	if err := cfg.Validate("fetch"); err == nil {
		t.Fatal("fetch without zoho credentials should fail validation")
	}
	if err := cfg.Validate("upload"); err == nil {
		t.Fatal("upload without openai key and dsn should fail validation")
	}

	cfg.Zoho.ClientID = "cid"
	cfg.Zoho.ClientSecret = "sec"
	cfg.Zoho.RefreshToken = "rt"
	cfg.Zoho.DepartmentID = "D1"
	cfg.Zoho.CategoryID = "C1"
	cfg.OpenAI.APIKey = "key"
	cfg.Database.DSN = "postgres://db"

	if err := cfg.Validate("all"); err != nil {
		t.Fatalf("fully configured all stage should validate: %v", err)
	}
}
