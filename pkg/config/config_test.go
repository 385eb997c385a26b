package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeConfig puts a config.yaml in a temp dir and chdirs there so Load()
// finds it.
func writeConfig(t *testing.T, yamlContent string) {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})
}

func TestLoad_Defaults(t *testing.T) {
	writeConfig(t, "env: \"local\"\n")

	os.Unsetenv("PGHOST")
	os.Unsetenv("PORT")
	os.Unsetenv("BASE_URL")
	os.Unsetenv("SESSION_KEY")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "3080" {
		t.Errorf("expected default Port=3080, got %s", cfg.Port)
	}
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}
	if cfg.BaseURL != "http://localhost:3080" {
		t.Errorf("expected derived BaseURL, got %s", cfg.BaseURL)
	}
	if cfg.Upload.BatchSize != 500 {
		t.Errorf("expected default BatchSize=500, got %d", cfg.Upload.BatchSize)
	}
	if cfg.Upload.QueueDepth != 16 {
		t.Errorf("expected default QueueDepth=16, got %d", cfg.Upload.QueueDepth)
	}
	if cfg.Auth.EnableVerification {
		t.Error("expected auth verification disabled by default")
	}
	if cfg.SessionKey == "" {
		t.Error("expected local dev session key fallback")
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	writeConfig(t, `
port: "3443"
env: "local"
upload:
  batch_size: 100
`)

	os.Unsetenv("BASE_URL")
	os.Unsetenv("SESSION_KEY")
	t.Setenv("PORT", "4443")
	t.Setenv("UPLOAD_BATCH_SIZE", "250")

	cfg, err := Load("v1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "4443" {
		t.Errorf("expected Port=4443 (from env), got %s", cfg.Port)
	}
	if cfg.Upload.BatchSize != 250 {
		t.Errorf("expected BatchSize=250 (from env), got %d", cfg.Upload.BatchSize)
	}
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	writeConfig(t, `
env: "local"
upload:
  batch_size: 0
`)
	os.Unsetenv("UPLOAD_BATCH_SIZE")
	os.Unsetenv("SESSION_KEY")

	// env-default kicks in for a zero YAML value, so force it via env
	t.Setenv("UPLOAD_BATCH_SIZE", "-5")

	if _, err := Load("v1"); err == nil {
		t.Fatal("expected error for non-positive batch size")
	}
}

func TestLoad_SessionKeyRequiredOutsideLocal(t *testing.T) {
	writeConfig(t, "env: \"production\"\n")
	os.Unsetenv("SESSION_KEY")

	if _, err := Load("v1"); err == nil {
		t.Fatal("expected error for missing SESSION_KEY in production")
	}

	t.Setenv("SESSION_KEY", "secret")
	if _, err := Load("v1"); err != nil {
		t.Fatalf("Load() failed with SESSION_KEY set: %v", err)
	}
}

func TestLoad_AuthRequiresEndpoints(t *testing.T) {
	writeConfig(t, `
env: "local"
auth:
  enable_verification: true
`)
	os.Unsetenv("JWKS_ENDPOINTS")
	os.Unsetenv("SESSION_KEY")

	if _, err := Load("v1"); err == nil {
		t.Fatal("expected error when verification is on without endpoints")
	}
}

func TestParseJWKSEndpoints(t *testing.T) {
	endpoints := parseJWKSEndpoints("issuer-a=url-a, issuer-b=url-b")
	if len(endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(endpoints))
	}
	if endpoints["issuer-a"] != "url-a" {
		t.Errorf("expected url-a, got %s", endpoints["issuer-a"])
	}

	if len(parseJWKSEndpoints("")) != 0 {
		t.Error("expected empty map for empty input")
	}
}

func TestConnectionString(t *testing.T) {
	c := &DatabaseConfig{
		Host:     "db.local",
		Port:     5433,
		User:     "adlens",
		Password: "pw",
		Database: "adlens_engine",
		SSLMode:  "disable",
	}
	want := "host=db.local port=5433 user=adlens password=pw dbname=adlens_engine sslmode=disable"
	if got := c.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}
