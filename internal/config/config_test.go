package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	if cfg.Table.RootPath != want.Table.RootPath || cfg.Admin.HTTPPort != want.Admin.HTTPPort ||
		cfg.Commit.Coordinator != want.Commit.Coordinator || cfg.Logging.Level != want.Logging.Level {
		t.Fatalf("expected the default config for a missing file, got %+v", cfg)
	}
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablestore.yaml")
	yamlBody := "table:\n  root_path: /var/lib/tablestore\nadmin:\n  http_port: 9090\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Table.RootPath != "/var/lib/tablestore" {
		t.Fatalf("expected overridden root path, got %q", cfg.Table.RootPath)
	}
	if cfg.Admin.HTTPPort != 9090 {
		t.Fatalf("expected overridden http port 9090, got %d", cfg.Admin.HTTPPort)
	}
	// Fields not present in the file keep their Default() value.
	if cfg.Commit.Coordinator != Default().Commit.Coordinator {
		t.Fatalf("expected an untouched section to keep its default value")
	}
}
