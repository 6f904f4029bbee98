// Package config loads and saves the TOML configuration file, adapted
// from the teacher's config/config.go: same BurntSushi/toml dependency,
// same DefaultConfig/Load/Save shape, same per-OS config-path resolution
// — only the section fields changed, from CPU/trace/statistics settings
// to disassembly/scanner/output/API settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the full machoscope configuration.
type Config struct {
	// Disassembly settings (components A, D).
	Disassembly struct {
		ForceArch                  string `toml:"force_arch"` // "", "arm64", or "x86_64": override auto-detection
		PrologueEpilogueHeuristics bool   `toml:"prologue_epilogue_heuristics"`
	} `toml:"disassembly"`

	// Scanner settings (component E).
	Scanner struct {
		EnableFallback bool `toml:"enable_fallback"`
		SectionScoped  bool `toml:"section_scoped"`
	} `toml:"scanner"`

	// Output settings (components F, J).
	Output struct {
		Format       string `toml:"format"` // "text" or "json"
		ColorOutput  bool   `toml:"color_output"`
		AnnotateRefs bool   `toml:"annotate_refs"`
	} `toml:"output"`

	// API server settings (component O).
	API struct {
		ListenAddr string `toml:"listen_addr"`
	} `toml:"api"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Disassembly.ForceArch = ""
	cfg.Disassembly.PrologueEpilogueHeuristics = true

	cfg.Scanner.EnableFallback = false
	cfg.Scanner.SectionScoped = true

	cfg.Output.Format = "text"
	cfg.Output.ColorOutput = true
	cfg.Output.AnnotateRefs = true

	cfg.API.ListenAddr = ":8787"

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "machoscope")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "machoscope")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "machoscope", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "machoscope", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file. A missing file
// is not an error: it yields the default configuration.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
