package core

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regfile.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "log_level = \"debug\"\n[linker]\ndebug_declarations = true\n[jobs]\nworkers = 2\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" || !cfg.Linker.DebugDeclarations || cfg.Jobs.Workers != 2 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	def := DefaultConfig()
	if cfg.Jobs.QueueSize != def.Jobs.QueueSize || cfg.Systems.MaxBufferCount != def.Systems.MaxBufferCount || cfg.Assets.CatalogDir != def.Assets.CatalogDir {
		t.Errorf("missing keys lost their defaults: %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[jobs\n"},
		{"no workers", "[jobs]\nworkers = 0\n"},
		{"negative queue", "[jobs]\nqueue_size = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Errorf("LoadConfig accepted %q", tt.content)
			}
		})
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("LoadConfig accepted a missing file")
	}
}

func TestSetLogLevel(t *testing.T) {
	if err := SetLogLevel("debug"); err != nil {
		t.Errorf("SetLogLevel(debug): %v", err)
	}
	if err := SetLogLevel("loud"); err == nil {
		t.Errorf("SetLogLevel accepted an unknown level")
	}
	_ = SetLogLevel("info")
}
