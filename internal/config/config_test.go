package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("BUGDETECT_MODEL", "")
	t.Setenv("BUGDETECT_PORT", "")
	t.Setenv("BUGDETECT_LOG_LEVEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bugdetect.yaml")
	data := "server:\n  port: 8080\n  burst: 9\nmodel:\n  name: from-file\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEMINI_API_KEY", "k-123")
	t.Setenv("BUGDETECT_MODEL", "from-env")
	t.Setenv("BUGDETECT_PORT", "")
	t.Setenv("BUGDETECT_LOG_LEVEL", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 || cfg.Server.Burst != 9 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.CacheTTLSeconds != 300 {
		t.Errorf("cache ttl default lost: %d", cfg.Server.CacheTTLSeconds)
	}
	if cfg.Model.Name != "from-env" {
		t.Errorf("model name = %q, want env override", cfg.Model.Name)
	}
	if cfg.Model.APIKey != "k-123" {
		t.Errorf("api key = %q", cfg.Model.APIKey)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoad_BadPortEnv(t *testing.T) {
	t.Setenv("BUGDETECT_PORT", "eighty")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [1,"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(false); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if err := cfg.Validate(true); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	cfg.Model.APIKey = "k"
	if err := cfg.Validate(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := Default()
	bad.Server.Port = 0
	if err := bad.Validate(false); err == nil {
		t.Error("expected port error")
	}
	bad = Default()
	bad.Server.BatchWorkers = 0
	if err := bad.Validate(false); err == nil {
		t.Error("expected batch_workers error")
	}
	bad = Default()
	bad.Model.Name = ""
	if err := bad.Validate(false); err == nil {
		t.Error("expected model name error")
	}
}

func TestDefaultYAMLMatchesDefault(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(DefaultYAML), &cfg); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("DefaultYAML drifted from Default (-want +got):\n%s", diff)
	}
}
