package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATA_STORE", "memory")
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BACKEND_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.HTTPAddress() != ":8080" {
		t.Fatalf("unexpected HTTP address %q", cfg.HTTPAddress())
	}
	if !cfg.UseInMemoryStore() {
		t.Fatal("expected in-memory metadata store")
	}
	if cfg.UseRedisSnapshots() {
		t.Fatal("expected memory snapshot store by default")
	}
	if cfg.WallpapersCollection != "wallpapers" {
		t.Fatalf("unexpected wallpapers collection %q", cfg.WallpapersCollection)
	}
	if !strings.HasPrefix(cfg.OAuthSuccessURL, cfg.FrontendURL) {
		t.Fatalf("expected OAuth success URL under frontend URL, got %q", cfg.OAuthSuccessURL)
	}
}

func TestLoadRejectsPostgresWithoutDatabaseURL(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATA_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BACKEND_API_KEY", "test-key")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DATA_STORE is postgres without DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsUnknownStores(t *testing.T) {
	t.Setenv("DATA_STORE", "cassandra")
	t.Setenv("BACKEND_API_KEY", "test-key")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown DATA_STORE")
	}

	t.Setenv("DATA_STORE", "memory")
	t.Setenv("SNAPSHOT_STORE", "etcd")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown SNAPSHOT_STORE")
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("DATA_STORE", "memory")
	t.Setenv("PORT", "not-a-port")
	t.Setenv("BACKEND_API_KEY", "test-key")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}
