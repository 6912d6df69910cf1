package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workspace.ID != "ws-1" || cfg.Storage.Backend != "sqlite" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.BasePath != "/v0" {
		t.Fatalf("server defaults = %+v", cfg.Server)
	}
	if !cfg.Seed || !cfg.Auth.AllowActorHeader {
		t.Fatalf("seed/auth defaults = %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yml := `workspace:
  id: ws-test
storage:
  backend: memory
server:
  addr: ":9999"
seed: false
`
	if err := os.WriteFile(filepath.Join(dir, "testops.yml"), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workspace.ID != "ws-test" || cfg.Storage.Backend != "memory" || cfg.Server.Addr != ":9999" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Seed {
		t.Fatal("seed not overridden")
	}
	// Unspecified fields keep their defaults.
	if cfg.Server.BasePath != "/v0" {
		t.Fatalf("base path = %q", cfg.Server.BasePath)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	_, err := FromYAML([]byte("storage:\n  backend: postgres\n"))
	if err == nil || !strings.Contains(err.Error(), "backend") {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateDefaultParses(t *testing.T) {
	cfg, err := FromYAML([]byte(GenerateDefault()))
	if err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("template invalid: %v", err)
	}
}
