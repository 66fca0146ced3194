package lang

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config is the interpreter's layered configuration (SPEC_FULL.md AMBIENT
// STACK): environment variables, then an optional YAML file, then CLI
// flags, each layer overriding the previous, mirroring
// shibukawa-snapsql's LoadConfig. The base language spec only reads these
// from flags; the env/file layers are additive defaults a flag always
// overrides when present.
type Config struct {
	TabWidth      int  `yaml:"tab_width"`
	DebugBitmask  int  `yaml:"debug_bitmask"`
	ColorDiagnostics bool `yaml:"color_diagnostics"`
	MaxIndentDepth int `yaml:"max_indent_depth"`
}

// DefaultConfig returns the configuration in effect when no env, file, or
// flag overrides anything.
func DefaultConfig() Config {
	return Config{
		TabWidth:         defaultTabWidth,
		DebugBitmask:     0,
		ColorDiagnostics: false,
		MaxIndentDepth:   maxIndentDepth,
	}
}

// LoadConfig builds a Config by layering, in order: defaults, a `.env`
// file (if present), an optional YAML file at configPath, then the
// supplied flag overrides. Only the fields named in flagsSet are taken
// from flagOverrides; the others are left to the lower layers.
func LoadConfig(configPath string, flagOverrides Config, flagsSet map[string]bool) (Config, error) {
	cfg := DefaultConfig()

	if fileExists(".env") {
		if err := godotenv.Load(".env"); err != nil {
			return cfg, fmt.Errorf("failed to load .env file: %w", err)
		}
	}
	applyEnvOverrides(&cfg)

	if configPath != "" && fileExists(configPath) {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyFlagOverrides(&cfg, flagOverrides, flagsSet)
	return cfg, nil
}

// applyEnvOverrides reads MINILANG_* environment variables, the layer
// between the defaults and the YAML file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MINILANG_TAB_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TabWidth = n
		}
	}
	if v := os.Getenv("MINILANG_DEBUG"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DebugBitmask = n
		}
	}
	if v := os.Getenv("MINILANG_COLOR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ColorDiagnostics = b
		}
	}
}

// applyFlagOverrides copies only the fields flagsSet names, so a flag the
// user never passed doesn't clobber the env/file layers beneath it.
func applyFlagOverrides(cfg *Config, overrides Config, flagsSet map[string]bool) {
	if flagsSet["tab-width"] {
		cfg.TabWidth = overrides.TabWidth
	}
	if flagsSet["debug"] {
		cfg.DebugBitmask = overrides.DebugBitmask
	}
	if flagsSet["color"] {
		cfg.ColorDiagnostics = overrides.ColorDiagnostics
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
