package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Disassembly.ForceArch != "" {
		t.Errorf("Expected ForceArch=\"\", got %s", cfg.Disassembly.ForceArch)
	}
	if !cfg.Disassembly.PrologueEpilogueHeuristics {
		t.Error("Expected PrologueEpilogueHeuristics=true")
	}

	if cfg.Scanner.EnableFallback {
		t.Error("Expected EnableFallback=false by default")
	}
	if !cfg.Scanner.SectionScoped {
		t.Error("Expected SectionScoped=true")
	}

	if cfg.Output.Format != "text" {
		t.Errorf("Expected Format=text, got %s", cfg.Output.Format)
	}
	if !cfg.Output.ColorOutput {
		t.Error("Expected ColorOutput=true")
	}

	if cfg.API.ListenAddr != ":8787" {
		t.Errorf("Expected ListenAddr=:8787, got %s", cfg.API.ListenAddr)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "config.toml" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}
	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "machoscope" && path != "config.toml" {
			t.Errorf("Expected path in machoscope directory or fallback, got %s", path)
		}
	}
}

func TestGetLogPath(t *testing.T) {
	path := GetLogPath()

	if path == "" {
		t.Error("GetLogPath returned empty string")
	}

	switch runtime.GOOS {
	case "windows":
		if !filepath.IsAbs(path) && path != "logs" {
			t.Errorf("Expected absolute path on Windows, got %s", path)
		}
	case "darwin", "linux":
		if filepath.Base(path) != "logs" {
			t.Errorf("Expected path to end with logs, got %s", path)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Disassembly.ForceArch = "x86_64"
	cfg.Scanner.EnableFallback = true
	cfg.Output.ColorOutput = false
	cfg.API.ListenAddr = ":9000"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Disassembly.ForceArch != "x86_64" {
		t.Errorf("Expected ForceArch=x86_64, got %s", loaded.Disassembly.ForceArch)
	}
	if !loaded.Scanner.EnableFallback {
		t.Error("Expected EnableFallback=true")
	}
	if loaded.Output.ColorOutput {
		t.Error("Expected ColorOutput=false")
	}
	if loaded.API.ListenAddr != ":9000" {
		t.Errorf("Expected ListenAddr=:9000, got %s", loaded.API.ListenAddr)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}

	if cfg.Output.Format != "text" {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[scanner]
enable_fallback = "not a bool"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err := LoadFrom(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "config.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Parent directories were not created")
	}
}
